package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"produkcja/internal/apperr"
	"produkcja/internal/middleware/auth"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordAction(ctx context.Context, positionID int64, actionType production.ActionType, quantity int, actor *storage.User) (*storage.Action, error) {
	args := m.Called(ctx, positionID, actionType, quantity, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Action), args.Error(1)
}

func newRequest(body string, actor *storage.User) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithUser(req.Context(), actor))
}

func TestRecordAction_Success(t *testing.T) {
	// 1. Мок сервиса журнала
	mockLedger := new(MockRecorder)

	actor := &storage.User{ID: 7, Role: storage.RoleWorker,
		AllowedActionTypes: []production.ActionType{production.ActionCutting}}

	mockLedger.On("RecordAction", mock.Anything, int64(10), production.ActionCutting, 3, actor).
		Return(&storage.Action{ID: 100, PositionID: 10, Type: production.ActionCutting, Quantity: 3, Cost: 24.3, ActorID: 7}, nil)

	handler := Action(slog.Default(), mockLedger)

	// 2. Запрос с валидным JSON и пользователем в контексте
	req := newRequest(`{"position_id": 10, "action_type": "cutting", "quantity": 3}`, actor)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	// 3. Проверяем статус и тело
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp storage.Action
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(100), resp.ID)
	assert.InDelta(t, 24.3, resp.Cost, 1e-9)
	mockLedger.AssertExpectations(t)
}

func TestRecordAction_UnknownActionType(t *testing.T) {
	mockLedger := new(MockRecorder)
	handler := Action(slog.Default(), mockLedger)

	req := newRequest(`{"position_id": 10, "action_type": "folding", "quantity": 3}`, &storage.User{ID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockLedger.AssertNotCalled(t, "RecordAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordAction_CapacityConflict(t *testing.T) {
	mockLedger := new(MockRecorder)

	actor := &storage.User{ID: 7, Role: storage.RoleWorker,
		AllowedActionTypes: []production.ActionType{production.ActionCutting}}

	mockLedger.On("RecordAction", mock.Anything, int64(10), production.ActionCutting, 5, actor).
		Return(nil, &apperr.CapacityError{Remaining: 3})

	handler := Action(slog.Default(), mockLedger)

	req := newRequest(`{"position_id": 10, "action_type": "cutting", "quantity": 5}`, actor)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	// 409 и остаток в теле, чтобы фронтенд подставил его в форму.
	assert.Equal(t, http.StatusConflict, rr.Code)

	var resp struct {
		Error     string `json:"error"`
		Remaining *int   `json:"remaining"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Remaining)
	assert.Equal(t, 3, *resp.Remaining)
	assert.Contains(t, resp.Error, "3")
}

func TestRecordAction_InvalidJSON(t *testing.T) {
	handler := Action(slog.Default(), new(MockRecorder))

	req := newRequest(`{broken`, &storage.User{ID: 7})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
