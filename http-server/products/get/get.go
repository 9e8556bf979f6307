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
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type ProductsGetter interface {
	GetProducts(ctx context.Context, filter storage.ProductFilter) ([]*storage.Product, error)
	GetProduct(ctx context.Context, id int64) (*storage.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*storage.Product, error)
	GetFabrics(ctx context.Context) ([]string, error)
	GetPatterns(ctx context.Context) ([]string, error)
}

// Products - каталог с фильтрами по ткани, узору, форме и поиском по артикулу.
func Products(log *slog.Logger, products ProductsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.Products"

		filter := storage.ProductFilter{
			Fabric:  r.URL.Query().Get("fabric"),
			Pattern: r.URL.Query().Get("pattern"),
			Shape:   r.URL.Query().Get("shape"),
			Search:  r.URL.Query().Get("search"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := products.GetProducts(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func Product(log *slog.Logger, products ProductsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.Product"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		product, err := products.GetProduct(ctx, id)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, product)
	}
}

// ProductBySKU - поиск по артикулу, используется при ручном добавлении позиций.
func ProductBySKU(log *slog.Logger, products ProductsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.ProductBySKU"

		sku := chi.URLParam(r, "sku")
		if sku == "" {
			respond.ErrStatus(w, r, http.StatusBadRequest, "sku is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		product, err := products.GetProductBySKU(ctx, sku)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, product)
	}
}

// Shapes - справочник форм изделий для фильтров фронтенда.
func Shapes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, production.Shapes)
	}
}

func Fabrics(log *slog.Logger, products ProductsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.Fabrics"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		fabrics, err := products.GetFabrics(ctx)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, fabrics)
	}
}

func Patterns(log *slog.Logger, products ProductsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.Patterns"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		patterns, err := products.GetPatterns(ctx)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, patterns)
	}
}
