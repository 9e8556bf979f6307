package get

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"produkcja/internal/apperr"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type MockOrdersGetter struct {
	mock.Mock
}

func (m *MockOrdersGetter) GetOrders(ctx context.Context, filter storage.OrderFilter) ([]*storage.OrderWithPositions, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.OrderWithPositions), args.Error(1)
}

func (m *MockOrdersGetter) GetOrdersForWorker(ctx context.Context) ([]*storage.OrderWithPositions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.OrderWithPositions), args.Error(1)
}

func (m *MockOrdersGetter) GetOrder(ctx context.Context, id int64) (*storage.OrderWithPositions, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.OrderWithPositions), args.Error(1)
}

func (m *MockOrdersGetter) GetPositionWithActions(ctx context.Context, positionID int64) (*storage.PositionWithActions, error) {
	args := m.Called(ctx, positionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PositionWithActions), args.Error(1)
}

func positionRouter(orders *MockOrdersGetter) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/api/positions/{positionID}", Position(slog.Default(), orders))
	return router
}

func TestGetPosition_Success(t *testing.T) {
	// 1. Мок хранилища: позиция с записями и суммами по этапам
	mockOrders := new(MockOrdersGetter)
	mockOrders.On("GetPositionWithActions", mock.Anything, int64(10)).
		Return(&storage.PositionWithActions{
			OrderPosition: storage.OrderPosition{ID: 10, OrderID: 5, ProductID: 3, Quantity: 20},
			Product:       storage.Product{ID: 3, SKU: "O5-Bawelna-Kwiaty-140x200"},
			Actions: []storage.Action{
				{ID: 100, PositionID: 10, Type: production.ActionCutting, Quantity: 17},
			},
			ActionTotals: map[production.ActionType]int{
				production.ActionCutting: 17,
				production.ActionSewing:  0,
				production.ActionIroning: 0,
				production.ActionPacking: 0,
			},
		}, nil)

	rr := httptest.NewRecorder()
	positionRouter(mockOrders).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/positions/10", nil))

	// 2. В ответе позиция целиком: товар, журнал и суммы
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp storage.PositionWithActions
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.ID)
	assert.Equal(t, "O5-Bawelna-Kwiaty-140x200", resp.Product.SKU)
	assert.Len(t, resp.Actions, 1)
	assert.Equal(t, 17, resp.ActionTotals[production.ActionCutting])
	assert.Equal(t, 0, resp.ActionTotals[production.ActionPacking])
	mockOrders.AssertExpectations(t)
}

func TestGetPosition_NotFound(t *testing.T) {
	mockOrders := new(MockOrdersGetter)
	mockOrders.On("GetPositionWithActions", mock.Anything, int64(99)).
		Return(nil, apperr.ErrNotFound)

	rr := httptest.NewRecorder()
	positionRouter(mockOrders).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/positions/99", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetPosition_InvalidID(t *testing.T) {
	mockOrders := new(MockOrdersGetter)

	rr := httptest.NewRecorder()
	positionRouter(mockOrders).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/positions/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockOrders.AssertNotCalled(t, "GetPositionWithActions", mock.Anything, mock.Anything)
}
