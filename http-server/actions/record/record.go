package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/middleware/auth"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type ActionRecorder interface {
	RecordAction(ctx context.Context, positionID int64, actionType production.ActionType, quantity int, actor *storage.User) (*storage.Action, error)
}

// Action записывает выполненный этап в журнал. Лимит позиции проверяет
// сервис, здесь только разбор запроса.
func Action(log *slog.Logger, ledger ActionRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.actions.Record"

		var req struct {
			PositionID int64  `json:"position_id"`
			ActionType string `json:"action_type"`
			Quantity   int    `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		actionType, err := production.ParseActionType(req.ActionType)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusUnprocessableEntity, "nieznany typ akcji: "+req.ActionType)
			return
		}

		actor := auth.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		action, err := ledger.RecordAction(ctx, req.PositionID, actionType, req.Quantity, actor)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("действие записано",
			slog.Int64("action_id", action.ID),
			slog.Int64("position_id", action.PositionID),
			slog.String("type", string(action.Type)),
			slog.Int("quantity", action.Quantity),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, action)
	}
}
