package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/apperr"
	"produkcja/internal/storage"
)

type ConfigUpdater interface {
	UpdateCostConfig(ctx context.Context, req storage.UpdateCostConfig) (*storage.CostConfigRow, error)
}

// Config - частичное обновление ставок. Новые ставки действуют только
// на будущие записи, старые снимки стоимости не пересчитываются.
func Config(log *slog.Logger, costs ConfigUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.costs.UpdateConfig"

		var req storage.UpdateCostConfig
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid request payload")
			return
		}

		if err := validate(req); err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		cfg, err := costs.UpdateCostConfig(ctx, req)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		log.Info("ставки обновлены")

		render.JSON(w, r, cfg)
	}
}

func validate(req storage.UpdateCostConfig) error {
	for name, v := range map[string]*float64{
		"lag_factor":                req.LagFactor,
		"cutting_factor":            req.CuttingFactor,
		"ironing_factor":            req.IroningFactor,
		"prepacking_factor":         req.PrepackingFactor,
		"packing_factor":            req.PackingFactor,
		"depreciation_factor":       req.DepreciationFactor,
		"packaging_materials_price": req.PackagingMaterialsPrice,
	} {
		if v != nil && *v < 0 {
			return apperr.Configuration("%s nie może być ujemny", name)
		}
	}
	// material_waste не проверяем: отрицательный отход допустим,
	// край OGK удлиняет расчётную длину (по умолчанию -16).
	for _, m := range []*map[string]float64{req.CornerSewingFactors, req.SewingFactors} {
		if m == nil {
			continue
		}
		for _, v := range *m {
			if v < 0 {
				return apperr.Configuration("współczynnik nie może być ujemny")
			}
		}
	}
	return nil
}
