// Package sync - ручной запуск и состояние синхронизации с Baselinker.
package sync

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/storage"
)

type Syncer interface {
	Sync(ctx context.Context) (storage.SyncResult, error)
}

type StateGetter interface {
	GetSyncState(ctx context.Context) (*storage.SyncState, error)
}

// Trigger запускает синхронизацию немедленно, не дожидаясь таймера.
func Trigger(log *slog.Logger, syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync.Trigger"

		log.Info("ручной запуск синхронизации")

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		result, err := syncer.Sync(ctx)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, result)
	}
}

func Status(log *slog.Logger, state StateGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync.Status"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		st, err := state.GetSyncState(ctx)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, st)
	}
}
