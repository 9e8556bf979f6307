package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/middleware/auth"
	"produkcja/internal/storage"
)

type ActionUpdater interface {
	UpdateAction(ctx context.Context, actionID int64, quantity int, actor *storage.User) (*storage.Action, error)
}

// Action правит количество в своей записи. Чужие записи может править
// только администратор, стоимость пересчитывается по текущим ставкам.
func Action(log *slog.Logger, ledger ActionUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.actions.Update"

		actionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		actor := auth.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		action, err := ledger.UpdateAction(ctx, actionID, req.Quantity, actor)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("действие исправлено", slog.Int64("action_id", actionID), slog.Int("quantity", req.Quantity))

		render.JSON(w, r, action)
	}
}
