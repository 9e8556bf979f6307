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
)

type WorkerDeleter interface {
	DeleteWorker(ctx context.Context, workerID int64) error
}

func Worker(log *slog.Logger, users WorkerDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.DeleteWorker"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := users.DeleteWorker(ctx, id); err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("работник удалён", slog.Int64("worker_id", id))

		render.JSON(w, r, map[string]string{"status": "success"})
	}
}
