package delete

import (
	"context"
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

type ActionDeleter interface {
	DeleteAction(ctx context.Context, actionID int64, actor *storage.User) error
}

func Action(log *slog.Logger, ledger ActionDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.actions.Delete"

		actionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		actor := auth.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if err := ledger.DeleteAction(ctx, actionID, actor); err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("действие удалено", slog.Int64("action_id", actionID))

		render.JSON(w, r, map[string]string{"status": "success"})
	}
}
