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
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type OrderUpdater interface {
	UpdateOrder(ctx context.Context, id int64, req storage.UpdateOrder) error
	UpdateOrderStatus(ctx context.Context, id int64, status production.OrderStatus) error
	BulkUpdateOrderStatus(ctx context.Context, ids []int64, status production.OrderStatus) (int, error)
	UpdateShipmentDate(ctx context.Context, id int64, date *time.Time) error
	UpdatePositionQuantity(ctx context.Context, positionID int64, quantity int) (*storage.PositionWithActions, error)
	GetOrder(ctx context.Context, id int64) (*storage.OrderWithPositions, error)
}

func Order(log *slog.Logger, orders OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.UpdateOrder"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		var req storage.UpdateOrder
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := orders.UpdateOrder(ctx, id, req); err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		order, err := orders.GetOrder(ctx, id)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, order)
	}
}

// Status - ручная смена статуса администратором. Отменённый заказ
// обратно не открывается.
func Status(log *slog.Logger, orders OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.UpdateStatus"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		status, err := production.ParseOrderStatus(req.Status)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusUnprocessableEntity, "nieznany status: "+req.Status)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := orders.UpdateOrderStatus(ctx, id, status); err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("статус заказа изменён вручную", slog.Int64("order_id", id), slog.String("status", string(status)))

		render.JSON(w, r, map[string]string{"status": "success"})
	}
}

func BulkStatus(log *slog.Logger, orders OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.BulkStatus"

		var req struct {
			OrderIDs []int64 `json:"order_ids"`
			Status   string  `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}
		if len(req.OrderIDs) == 0 {
			respond.ErrStatus(w, r, http.StatusUnprocessableEntity, "order_ids nie może być puste")
			return
		}

		status, err := production.ParseOrderStatus(req.Status)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusUnprocessableEntity, "nieznany status: "+req.Status)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		updated, err := orders.BulkUpdateOrderStatus(ctx, req.OrderIDs, status)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, map[string]int{"updated": updated})
	}
}

func ShipmentDate(log *slog.Logger, orders OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.ShipmentDate"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		var req struct {
			ExpectedShipmentDate *string `json:"expected_shipment_date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		var date *time.Time
		if req.ExpectedShipmentDate != nil && *req.ExpectedShipmentDate != "" {
			t, err := time.Parse("2006-01-02", *req.ExpectedShipmentDate)
			if err != nil {
				respond.ErrStatus(w, r, http.StatusUnprocessableEntity, "nieprawidłowa data")
				return
			}
			date = &t
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := orders.UpdateShipmentDate(ctx, id, date); err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": "success"})
	}
}

// PositionQuantity меняет требуемое количество позиции. Уже записанные
// действия не пересматриваются, даже если новый лимит ниже суммы.
func PositionQuantity(log *slog.Logger, orders OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.PositionQuantity"

		positionID, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
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
		if req.Quantity <= 0 {
			respond.ErrStatus(w, r, http.StatusUnprocessableEntity, "ilość musi być większa od 0")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		position, err := orders.UpdatePositionQuantity(ctx, positionID, req.Quantity)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, position)
	}
}
