package ledger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"produkcja/internal/apperr"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type MockLedgerStorage struct {
	mock.Mock
}

func (m *MockLedgerStorage) GetPositionWithActions(ctx context.Context, positionID int64) (*storage.PositionWithActions, error) {
	args := m.Called(ctx, positionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PositionWithActions), args.Error(1)
}

func (m *MockLedgerStorage) GetOrder(ctx context.Context, orderID int64) (*storage.OrderWithPositions, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.OrderWithPositions), args.Error(1)
}

func (m *MockLedgerStorage) GetCostConfig(ctx context.Context) (*storage.CostConfigRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.CostConfigRow), args.Error(1)
}

func (m *MockLedgerStorage) GetAction(ctx context.Context, actionID int64) (*storage.Action, error) {
	args := m.Called(ctx, actionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Action), args.Error(1)
}

func (m *MockLedgerStorage) CreateAction(ctx context.Context, req storage.CreateAction) (*storage.Action, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Action), args.Error(1)
}

func (m *MockLedgerStorage) UpdateActionQuantity(ctx context.Context, actionID int64, quantity int, cost float64) (*storage.Action, error) {
	args := m.Called(ctx, actionID, quantity, cost)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Action), args.Error(1)
}

func (m *MockLedgerStorage) DeleteAction(ctx context.Context, actionID int64) error {
	args := m.Called(ctx, actionID)
	return args.Error(0)
}

func worker(types ...production.ActionType) *storage.User {
	return &storage.User{
		ID:                 7,
		Code:               "anna",
		FirstName:          "Anna",
		LastName:           "Nowak",
		Role:               storage.RoleWorker,
		AllowedActionTypes: types,
	}
}

func admin() *storage.User {
	return &storage.User{ID: 1, Code: "admin", Role: storage.RoleAdmin}
}

func edgeO5() *string {
	s := "O5"
	return &s
}

func intPtr(v int) *int { return &v }

func testPosition() *storage.PositionWithActions {
	return &storage.PositionWithActions{
		OrderPosition: storage.OrderPosition{ID: 10, OrderID: 5, ProductID: 3, Quantity: 20},
		Product: storage.Product{
			ID: 3, SKU: "O5-Bawelna-Kwiaty-140x200",
			Shape: production.ShapeRectangular,
			Width: intPtr(140), Height: intPtr(200), EdgeType: edgeO5(),
		},
	}
}

func testCostConfig() *storage.CostConfigRow {
	return &storage.CostConfigRow{CostConfig: production.CostConfig{
		LagFactor:           1.5,
		CuttingFactor:       0.02,
		CornerSewingFactors: map[string]float64{"O5": 0.6708},
		SewingFactors:       map[string]float64{"O5": 1.489},
		MaterialWaste:       map[string]float64{"O5": 10},
	}}
}

func testOrder(status production.OrderStatus) *storage.OrderWithPositions {
	return &storage.OrderWithPositions{Order: storage.Order{ID: 5, Status: status}}
}

func TestRecordAction_Success(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	mockStorage.On("GetPositionWithActions", mock.Anything, int64(10)).Return(testPosition(), nil)
	mockStorage.On("GetCostConfig", mock.Anything).Return(testCostConfig(), nil)
	mockStorage.On("GetOrder", mock.Anything, int64(5)).Return(testOrder(production.StatusInProgress), nil)

	// eff = 330, (0.02*330+1.5)*3 = 24.3 - стоимость снимается при записи
	mockStorage.On("CreateAction", mock.Anything, storage.CreateAction{
		PositionID: 10,
		Type:       production.ActionCutting,
		Quantity:   3,
		Cost:       24.3,
		ActorID:    7,
	}).Return(&storage.Action{ID: 100, PositionID: 10, Type: production.ActionCutting, Quantity: 3, Cost: 24.3, ActorID: 7}, nil)

	action, err := service.RecordAction(context.Background(), 10, production.ActionCutting, 3, worker(production.ActionCutting))

	assert.NoError(t, err)
	assert.Equal(t, int64(100), action.ID)
	assert.InDelta(t, 24.3, action.Cost, 1e-9)
	mockStorage.AssertExpectations(t)
}

func TestRecordAction_InvalidQuantity(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	_, err := service.RecordAction(context.Background(), 10, production.ActionCutting, 0, worker(production.ActionCutting))

	var vErr *apperr.ValidationError
	assert.ErrorAs(t, err, &vErr)
	mockStorage.AssertNotCalled(t, "CreateAction", mock.Anything, mock.Anything)
}

func TestRecordAction_NotAuthorizedForType(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	// Работнику разрешён только крой, шитьё отклоняется до обращения к базе.
	_, err := service.RecordAction(context.Background(), 10, production.ActionSewing, 1, worker(production.ActionCutting))

	var pErr *apperr.PermissionError
	assert.ErrorAs(t, err, &pErr)
	// Сообщение уходит на экран работника, поэтому по-польски.
	assert.Contains(t, err.Error(), "nie masz uprawnień")
	mockStorage.AssertNotCalled(t, "GetPositionWithActions", mock.Anything, mock.Anything)
}

func TestRecordAction_FetchedOrderBlocksWorker(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	mockStorage.On("GetPositionWithActions", mock.Anything, int64(10)).Return(testPosition(), nil)
	mockStorage.On("GetCostConfig", mock.Anything).Return(testCostConfig(), nil)
	mockStorage.On("GetOrder", mock.Anything, int64(5)).Return(testOrder(production.StatusFetched), nil)

	_, err := service.RecordAction(context.Background(), 10, production.ActionCutting, 1, worker(production.ActionCutting))

	var vErr *apperr.ValidationError
	assert.ErrorAs(t, err, &vErr)
	mockStorage.AssertNotCalled(t, "CreateAction", mock.Anything, mock.Anything)
}

func TestRecordAction_FetchedOrderAllowsAdmin(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	mockStorage.On("GetPositionWithActions", mock.Anything, int64(10)).Return(testPosition(), nil)
	mockStorage.On("GetCostConfig", mock.Anything).Return(testCostConfig(), nil)
	mockStorage.On("GetOrder", mock.Anything, int64(5)).Return(testOrder(production.StatusFetched), nil)
	mockStorage.On("CreateAction", mock.Anything, mock.Anything).
		Return(&storage.Action{ID: 101}, nil)

	_, err := service.RecordAction(context.Background(), 10, production.ActionCutting, 1, admin())

	assert.NoError(t, err)
	mockStorage.AssertExpectations(t)
}

func TestRecordAction_CapacityErrorPassesThrough(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	mockStorage.On("GetPositionWithActions", mock.Anything, int64(10)).Return(testPosition(), nil)
	mockStorage.On("GetCostConfig", mock.Anything).Return(testCostConfig(), nil)
	mockStorage.On("GetOrder", mock.Anything, int64(5)).Return(testOrder(production.StatusInProgress), nil)
	mockStorage.On("CreateAction", mock.Anything, mock.Anything).
		Return(nil, &apperr.CapacityError{Remaining: 4})

	_, err := service.RecordAction(context.Background(), 10, production.ActionCutting, 5, worker(production.ActionCutting))

	var capErr *apperr.CapacityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, 4, capErr.Remaining)
}

func TestUpdateAction_OwnEntry(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	existing := &storage.Action{ID: 100, PositionID: 10, Type: production.ActionCutting, Quantity: 3, ActorID: 7}
	mockStorage.On("GetAction", mock.Anything, int64(100)).Return(existing, nil)
	mockStorage.On("GetPositionWithActions", mock.Anything, int64(10)).Return(testPosition(), nil)
	mockStorage.On("GetCostConfig", mock.Anything).Return(testCostConfig(), nil)
	// Стоимость пересчитывается на новое количество: (0.02*330+1.5)*2 = 16.2
	mockStorage.On("UpdateActionQuantity", mock.Anything, int64(100), 2, 16.2).
		Return(&storage.Action{ID: 100, Quantity: 2, Cost: 16.2}, nil)

	action, err := service.UpdateAction(context.Background(), 100, 2, worker(production.ActionCutting))

	assert.NoError(t, err)
	assert.Equal(t, 2, action.Quantity)
	mockStorage.AssertExpectations(t)
}

func TestUpdateAction_ForeignEntryRejected(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	foreign := &storage.Action{ID: 100, PositionID: 10, ActorID: 99}
	mockStorage.On("GetAction", mock.Anything, int64(100)).Return(foreign, nil)

	_, err := service.UpdateAction(context.Background(), 100, 2, worker(production.ActionCutting))

	var pErr *apperr.PermissionError
	assert.ErrorAs(t, err, &pErr)
	mockStorage.AssertNotCalled(t, "UpdateActionQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAction_AdminOverride(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	foreign := &storage.Action{ID: 100, PositionID: 10, Type: production.ActionCutting, ActorID: 99}
	mockStorage.On("GetAction", mock.Anything, int64(100)).Return(foreign, nil)
	mockStorage.On("GetPositionWithActions", mock.Anything, int64(10)).Return(testPosition(), nil)
	mockStorage.On("GetCostConfig", mock.Anything).Return(testCostConfig(), nil)
	mockStorage.On("UpdateActionQuantity", mock.Anything, int64(100), 1, 8.1).
		Return(&storage.Action{ID: 100, Quantity: 1, Cost: 8.1}, nil)

	_, err := service.UpdateAction(context.Background(), 100, 1, admin())

	assert.NoError(t, err)
	mockStorage.AssertExpectations(t)
}

func TestDeleteAction_OwnEntry(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	existing := &storage.Action{ID: 100, ActorID: 7}
	mockStorage.On("GetAction", mock.Anything, int64(100)).Return(existing, nil)
	mockStorage.On("DeleteAction", mock.Anything, int64(100)).Return(nil)

	err := service.DeleteAction(context.Background(), 100, worker())

	assert.NoError(t, err)
	mockStorage.AssertExpectations(t)
}

func TestDeleteAction_ForeignEntryRejected(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	foreign := &storage.Action{ID: 100, ActorID: 99}
	mockStorage.On("GetAction", mock.Anything, int64(100)).Return(foreign, nil)

	err := service.DeleteAction(context.Background(), 100, worker())

	var pErr *apperr.PermissionError
	assert.ErrorAs(t, err, &pErr)
	mockStorage.AssertNotCalled(t, "DeleteAction", mock.Anything, mock.Anything)
}

func TestDeleteAction_StorageError(t *testing.T) {
	mockStorage := new(MockLedgerStorage)
	service := NewLedgerService(mockStorage, slog.Default())

	mockStorage.On("GetAction", mock.Anything, int64(100)).Return(nil, errors.New("db down"))

	err := service.DeleteAction(context.Background(), 100, admin())

	assert.Error(t, err)
}
