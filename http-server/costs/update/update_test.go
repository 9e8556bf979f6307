package update

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"produkcja/internal/production"
	"produkcja/internal/storage"
)

func floatPtr(v float64) *float64 { return &v }

func TestValidate_DefaultConfigRoundTrips(t *testing.T) {
	// Конфигурация по умолчанию должна проходить валидацию как есть:
	// material_waste для OGK отрицателен (-16), это легальное значение.
	def := production.DefaultCostConfig()

	req := storage.UpdateCostConfig{
		LagFactor:               floatPtr(def.LagFactor),
		CuttingFactor:           floatPtr(def.CuttingFactor),
		IroningFactor:           floatPtr(def.IroningFactor),
		PrepackingFactor:        floatPtr(def.PrepackingFactor),
		PackingFactor:           floatPtr(def.PackingFactor),
		DepreciationFactor:      floatPtr(def.DepreciationFactor),
		PackagingMaterialsPrice: floatPtr(def.PackagingMaterialsPrice),
		CornerSewingFactors:     &def.CornerSewingFactors,
		SewingFactors:           &def.SewingFactors,
		MaterialWaste:           &def.MaterialWaste,
	}

	assert.NoError(t, validate(req))
}

func TestValidate_NegativeMaterialWasteAllowed(t *testing.T) {
	waste := map[string]float64{"OGK": -16}

	assert.NoError(t, validate(storage.UpdateCostConfig{MaterialWaste: &waste}))
}

func TestValidate_NegativeScalarRejected(t *testing.T) {
	err := validate(storage.UpdateCostConfig{LagFactor: floatPtr(-0.1)})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "lag_factor")
}

func TestValidate_NegativeSewingFactorRejected(t *testing.T) {
	sewing := map[string]float64{"U3": -1}

	assert.Error(t, validate(storage.UpdateCostConfig{SewingFactors: &sewing}))
}
