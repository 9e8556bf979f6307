package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"produkcja/internal/production"
	"produkcja/internal/storage"
)

// GetCostConfig возвращает единственную строку конфигурации, создавая её
// со значениями по умолчанию при первом обращении.
func (s *Storage) GetCostConfig(ctx context.Context) (*storage.CostConfigRow, error) {
	const op = "storage.mysql.GetCostConfig"

	row, err := s.scanCostConfig(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.insertDefaultConfig(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		row, err = s.scanCostConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row, nil
}

func (s *Storage) scanCostConfig(ctx context.Context) (*storage.CostConfigRow, error) {
	var (
		row    storage.CostConfigRow
		corner []byte
		sewing []byte
		waste  []byte
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT lag_factor, cutting_factor, ironing_factor, prepacking_factor, packing_factor,
               depreciation_factor, packaging_materials_price,
               corner_sewing_factors, sewing_factors, material_waste, updated_at
        FROM cost_config LIMIT 1`).Scan(
		&row.LagFactor, &row.CuttingFactor, &row.IroningFactor, &row.PrepackingFactor,
		&row.PackingFactor, &row.DepreciationFactor, &row.PackagingMaterialsPrice,
		&corner, &sewing, &waste, &row.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(corner, &row.CornerSewingFactors); err != nil {
		return nil, fmt.Errorf("decode corner_sewing_factors: %w", err)
	}
	if err := json.Unmarshal(sewing, &row.SewingFactors); err != nil {
		return nil, fmt.Errorf("decode sewing_factors: %w", err)
	}
	if err := json.Unmarshal(waste, &row.MaterialWaste); err != nil {
		return nil, fmt.Errorf("decode material_waste: %w", err)
	}
	return &row, nil
}

func (s *Storage) insertDefaultConfig(ctx context.Context) error {
	def := production.DefaultCostConfig()

	corner, _ := json.Marshal(def.CornerSewingFactors)
	sewing, _ := json.Marshal(def.SewingFactors)
	waste, _ := json.Marshal(def.MaterialWaste)

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO cost_config
            (lag_factor, cutting_factor, ironing_factor, prepacking_factor, packing_factor,
             depreciation_factor, packaging_materials_price,
             corner_sewing_factors, sewing_factors, material_waste, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		def.LagFactor, def.CuttingFactor, def.IroningFactor, def.PrepackingFactor,
		def.PackingFactor, def.DepreciationFactor, def.PackagingMaterialsPrice,
		corner, sewing, waste)
	return err
}

// UpdateCostConfig применяет частичное обновление: nil-поля не трогаются.
func (s *Storage) UpdateCostConfig(ctx context.Context, req storage.UpdateCostConfig) (*storage.CostConfigRow, error) {
	const op = "storage.mysql.UpdateCostConfig"

	current, err := s.GetCostConfig(ctx)
	if err != nil {
		return nil, err
	}

	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&current.LagFactor, req.LagFactor)
	apply(&current.CuttingFactor, req.CuttingFactor)
	apply(&current.IroningFactor, req.IroningFactor)
	apply(&current.PrepackingFactor, req.PrepackingFactor)
	apply(&current.PackingFactor, req.PackingFactor)
	apply(&current.DepreciationFactor, req.DepreciationFactor)
	apply(&current.PackagingMaterialsPrice, req.PackagingMaterialsPrice)
	if req.CornerSewingFactors != nil {
		current.CornerSewingFactors = *req.CornerSewingFactors
	}
	if req.SewingFactors != nil {
		current.SewingFactors = *req.SewingFactors
	}
	if req.MaterialWaste != nil {
		current.MaterialWaste = *req.MaterialWaste
	}

	corner, _ := json.Marshal(current.CornerSewingFactors)
	sewing, _ := json.Marshal(current.SewingFactors)
	waste, _ := json.Marshal(current.MaterialWaste)

	_, err = s.db.ExecContext(ctx, `
        UPDATE cost_config SET
            lag_factor = ?, cutting_factor = ?, ironing_factor = ?, prepacking_factor = ?,
            packing_factor = ?, depreciation_factor = ?, packaging_materials_price = ?,
            corner_sewing_factors = ?, sewing_factors = ?, material_waste = ?,
            updated_at = NOW()`,
		current.LagFactor, current.CuttingFactor, current.IroningFactor, current.PrepackingFactor,
		current.PackingFactor, current.DepreciationFactor, current.PackagingMaterialsPrice,
		corner, sewing, waste)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления конфигурации: %w", op, err)
	}

	return s.GetCostConfig(ctx)
}
