package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/storage"
)

type OrdersGetter interface {
	GetOrders(ctx context.Context, filter storage.OrderFilter) ([]*storage.OrderWithPositions, error)
	GetOrdersForWorker(ctx context.Context) ([]*storage.OrderWithPositions, error)
	GetOrder(ctx context.Context, id int64) (*storage.OrderWithPositions, error)
	GetPositionWithActions(ctx context.Context, positionID int64) (*storage.PositionWithActions, error)
}

// Orders - список заказов для администратора с фильтрами по источнику,
// статусу, диапазону дат отгрузки и поиском по заказчику.
func Orders(log *slog.Logger, orders OrdersGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.Orders"

		filter := storage.OrderFilter{
			Source: r.URL.Query().Get("source"),
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("search"),
		}
		if v := r.URL.Query().Get("date_from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				respond.ErrStatus(w, r, http.StatusBadRequest, "invalid date_from")
				return
			}
			filter.DateFrom = &t
		}
		if v := r.URL.Query().Get("date_to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				respond.ErrStatus(w, r, http.StatusBadRequest, "invalid date_to")
				return
			}
			filter.DateTo = &t
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		list, err := orders.GetOrders(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

// WorkerOrders - список для цеха: заказы в работе и завершённые за неделю.
func WorkerOrders(log *slog.Logger, orders OrdersGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.WorkerOrders"

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		list, err := orders.GetOrdersForWorker(ctx)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

// Position - позиция с товаром, записями журнала и суммами по этапам.
// Экран работника запрашивает её перед записью действия.
func Position(log *slog.Logger, orders OrdersGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.Position"

		id, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		position, err := orders.GetPositionWithActions(ctx, id)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, position)
	}
}

func Order(log *slog.Logger, orders OrdersGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.Order"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.GetOrder(ctx, id)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, order)
	}
}
