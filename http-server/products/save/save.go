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

type ProductSaver interface {
	SaveProduct(ctx context.Context, req storage.SaveProduct) (*storage.Product, error)
}

func Product(log *slog.Logger, products ProductSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.SaveProduct"

		var req storage.SaveProduct
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		product, err := products.SaveProduct(ctx, req)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("товар создан", slog.Int64("product_id", product.ID), slog.String("sku", product.SKU))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, product)
	}
}
