package baselinker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"produkcja/internal/storage"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetOrders(ctx context.Context, dateFrom int64) ([]APIOrder, error) {
	args := m.Called(ctx, dateFrom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]APIOrder), args.Error(1)
}

func (m *MockAPI) GetOrderExtraFields(ctx context.Context) ([]ExtraField, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ExtraField), args.Error(1)
}

func (m *MockAPI) GetOrderTransactionData(ctx context.Context, orderID int64) (*time.Time, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockAPI) GetOrderSources(ctx context.Context) (map[int64]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]string), args.Error(1)
}

type MockSyncStorage struct {
	mock.Mock
}

func (m *MockSyncStorage) GetSyncState(ctx context.Context) (*storage.SyncState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.SyncState), args.Error(1)
}

func (m *MockSyncStorage) SetShipmentDateFieldID(ctx context.Context, fieldID int64) error {
	args := m.Called(ctx, fieldID)
	return args.Error(0)
}

func (m *MockSyncStorage) AdvanceWatermark(ctx context.Context, timestamp int64) error {
	args := m.Called(ctx, timestamp)
	return args.Error(0)
}

func (m *MockSyncStorage) UpsertSyncedOrder(ctx context.Context, so storage.SyncedOrder, products map[string]storage.SaveProduct) (bool, int, error) {
	args := m.Called(ctx, so, products)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func TestSync_NoClientConfigured(t *testing.T) {
	mockStorage := new(MockSyncStorage)
	service := NewSyncService(nil, mockStorage, slog.Default())

	result, err := service.Sync(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, result.OrdersSynced)
	mockStorage.AssertNotCalled(t, "GetSyncState", mock.Anything)
}

func TestSync_AdvancesWatermarkForwardOnly(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStorage := new(MockSyncStorage)
	service := NewSyncService(mockAPI, mockStorage, slog.Default())

	fieldID := int64(42)
	shipDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mockStorage.On("GetSyncState", mock.Anything).
		Return(&storage.SyncState{LastSyncTimestamp: 1000, ShipmentDateFieldID: &fieldID}, nil)
	mockAPI.On("GetOrderSources", mock.Anything).
		Return(map[int64]string{3: "allegro - sklep"}, nil)
	mockAPI.On("GetOrders", mock.Anything, int64(1000)).Return([]APIOrder{
		{
			OrderID: 501, DateAdd: 1100, OrderSourceID: 3,
			InvoiceFullname: "Jan Kowalski",
			Products: []APIProduct{
				{SKU: "U3-Bawelna-140x200", Quantity: 2},
				{SKU: "U3-Bawelna-140x200", Quantity: 1},
			},
		},
		{
			OrderID: 502, DateAdd: 1050, OrderSource: "shop",
			Products: []APIProduct{{SKU: "O5-Len-o80", Quantity: 4}},
		},
	}, nil)
	mockAPI.On("GetOrderTransactionData", mock.Anything, int64(501)).Return(&shipDate, nil)
	mockAPI.On("GetOrderTransactionData", mock.Anything, int64(502)).Return(nil, assert.AnError)

	// Количество одинаковых SKU внутри заказа складывается.
	mockStorage.On("UpsertSyncedOrder", mock.Anything,
		mock.MatchedBy(func(so storage.SyncedOrder) bool {
			return so.BaselinkerID == 501 &&
				so.Source != nil && *so.Source == "allegro - sklep" &&
				len(so.Positions) == 1 && so.Positions[0].Quantity == 3
		}), mock.Anything).Return(true, 1, nil)
	mockStorage.On("UpsertSyncedOrder", mock.Anything,
		mock.MatchedBy(func(so storage.SyncedOrder) bool {
			return so.BaselinkerID == 502 && so.Source != nil && *so.Source == "shop"
		}), mock.Anything).Return(true, 1, nil)

	// Курсор двигается к максимальной date_add.
	mockStorage.On("AdvanceWatermark", mock.Anything, int64(1100)).Return(nil)

	result, err := service.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.OrdersSynced)
	assert.Equal(t, 2, result.ProductsCreated)
	mockStorage.AssertExpectations(t)
	mockAPI.AssertExpectations(t)
}

func TestSync_NoNewOrdersKeepsWatermark(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStorage := new(MockSyncStorage)
	service := NewSyncService(mockAPI, mockStorage, slog.Default())

	fieldID := int64(42)
	mockStorage.On("GetSyncState", mock.Anything).
		Return(&storage.SyncState{LastSyncTimestamp: 2000, ShipmentDateFieldID: &fieldID}, nil)
	mockAPI.On("GetOrderSources", mock.Anything).Return(map[int64]string{}, nil)
	mockAPI.On("GetOrders", mock.Anything, int64(2000)).Return([]APIOrder{}, nil)

	result, err := service.Sync(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result.OrdersSynced)
	mockStorage.AssertNotCalled(t, "AdvanceWatermark", mock.Anything, mock.Anything)
}

func TestSync_DiscoversShipmentDateField(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStorage := new(MockSyncStorage)
	service := NewSyncService(mockAPI, mockStorage, slog.Default())

	mockStorage.On("GetSyncState", mock.Anything).
		Return(&storage.SyncState{LastSyncTimestamp: 3000}, nil)
	mockAPI.On("GetOrderExtraFields", mock.Anything).Return([]ExtraField{
		{ExtraFieldID: 7, Name: "Uwagi"},
		{ExtraFieldID: 42, Name: "allegro_data_wysylki_od"},
	}, nil)
	mockStorage.On("SetShipmentDateFieldID", mock.Anything, int64(42)).Return(nil)
	mockAPI.On("GetOrderSources", mock.Anything).Return(map[int64]string{}, nil)
	mockAPI.On("GetOrders", mock.Anything, int64(3000)).Return([]APIOrder{}, nil)

	_, err := service.Sync(context.Background())

	require.NoError(t, err)
	mockStorage.AssertCalled(t, "SetShipmentDateFieldID", mock.Anything, int64(42))
}
