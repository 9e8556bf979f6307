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

type OrderDeleter interface {
	DeleteOrder(ctx context.Context, id int64) error
	DeletePosition(ctx context.Context, positionID int64) error
}

// Order удаляет заказ вместе с позициями и записями журнала.
func Order(log *slog.Logger, orders OrderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.DeleteOrder"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if err := orders.DeleteOrder(ctx, id); err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("заказ удалён", slog.Int64("order_id", id))

		render.JSON(w, r, map[string]string{"status": "success"})
	}
}

func Position(log *slog.Logger, orders OrderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.DeletePosition"

		positionID, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := orders.DeletePosition(ctx, positionID); err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": "success"})
	}
}
