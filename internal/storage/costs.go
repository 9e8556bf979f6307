package storage

import (
	"time"

	"produkcja/internal/production"
)

// CostConfigRow - единственная версионируемая строка конфигурации стоимости.
type CostConfigRow struct {
	production.CostConfig
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateCostConfig - частичное обновление: nil-поля не трогаются.
type UpdateCostConfig struct {
	LagFactor               *float64            `json:"lag_factor"`
	CuttingFactor           *float64            `json:"cutting_factor"`
	IroningFactor           *float64            `json:"ironing_factor"`
	PrepackingFactor        *float64            `json:"prepacking_factor"`
	PackingFactor           *float64            `json:"packing_factor"`
	DepreciationFactor      *float64            `json:"depreciation_factor"`
	PackagingMaterialsPrice *float64            `json:"packaging_materials_price"`
	CornerSewingFactors     *map[string]float64 `json:"corner_sewing_factors"`
	SewingFactors           *map[string]float64 `json:"sewing_factors"`
	MaterialWaste           *map[string]float64 `json:"material_waste"`
}

// WorkerCostDetail - разбивка стоимости и количества по этапам для работника.
type WorkerCostDetail struct {
	WorkerID             int64              `json:"worker_id"`
	WorkerName           string             `json:"worker_name"`
	TotalCost            float64            `json:"total_cost"`
	ByActionType         map[string]float64 `json:"by_action_type"`
	QuantityByActionType map[string]int     `json:"quantity_by_action_type"`
}
