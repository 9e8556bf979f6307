package save

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
	"produkcja/internal/storage"
)

type OrderSaver interface {
	SaveOrder(ctx context.Context, req storage.SaveOrder) (int64, error)
	GetOrder(ctx context.Context, id int64) (*storage.OrderWithPositions, error)
	SavePosition(ctx context.Context, orderID int64, req storage.SavePosition) (*storage.PositionWithActions, error)
}

func Order(log *slog.Logger, orders OrderSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.SaveOrder"

		var req storage.SaveOrder
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		id, err := orders.SaveOrder(ctx, req)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		order, err := orders.GetOrder(ctx, id)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("заказ создан вручную", slog.Int64("order_id", id))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, order)
	}
}

// Position добавляет позицию в заказ. Дубликат товара в заказе отклоняется.
func Position(log *slog.Logger, orders OrderSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.SavePosition"

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		var req storage.SavePosition
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		position, err := orders.SavePosition(ctx, orderID, req)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, position)
	}
}
