package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/storage"
)

type WorkerSaver interface {
	SaveWorker(ctx context.Context, req storage.CreateWorker) (*storage.User, error)
}

func Worker(log *slog.Logger, users WorkerSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.SaveWorker"

		var req storage.CreateWorker
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		worker, err := users.SaveWorker(ctx, req)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("работник создан", slog.Int64("worker_id", worker.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, worker)
	}
}
