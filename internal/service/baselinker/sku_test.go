package baselinker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSKU(t *testing.T) {
	tests := []struct {
		sku      string
		edge     string // пусто, если край не распознан
		fabric   string
		pattern  string
		shape    string
		width    int
		height   int
		diameter int
	}{
		{
			sku:    "U3-Bawelna-Kwiaty-140x200",
			edge:   "U3",
			fabric: "Bawelna", pattern: "Kwiaty",
			shape: "rectangular", width: 140, height: 200,
		},
		{
			sku:    "Druk-U3-Satyna-Paski-90x120",
			edge:   "U3",
			fabric: "Satyna", pattern: "Paski",
			shape: "rectangular", width: 90, height: 120,
		},
		{
			sku:    "O5 Len Gwiazdy 100v150",
			edge:   "O5",
			fabric: "Len", pattern: "Gwiazdy",
			shape: "oval", width: 100, height: 150,
		},
		{
			sku:    "OGK-Welur-o80",
			edge:   "OGK",
			fabric: "Welur",
			shape:  "round", diameter: 80,
		},
		{
			sku:    "LA-Flanela-120o",
			edge:   "LA",
			fabric: "Flanela",
			shape:  "round", diameter: 120,
		},
		{
			// Край в конце артикула.
			sku:    "Mela-50x70 U4",
			edge:   "U4",
			fabric: "Mela",
			shape:  "rectangular", width: 50, height: 70,
		},
		{
			// Длинный узор до сегмента с размерами.
			sku:    "U5-Bawelna-Biale-Kropki-200x220",
			edge:   "U5",
			fabric: "Bawelna", pattern: "Biale-Kropki",
			shape: "rectangular", width: 200, height: 220,
		},
		{
			// Без края и без размеров: форма по умолчанию, ткань из первого сегмента.
			sku:    "Poszewka-Basic",
			fabric: "Poszewka", pattern: "Basic",
			shape: "rectangular",
		},
	}

	for _, tt := range tests {
		t.Run(tt.sku, func(t *testing.T) {
			got := ParseSKU(tt.sku)

			assert.Equal(t, tt.sku, got.SKU)
			assert.Equal(t, tt.fabric, got.Fabric)
			assert.Equal(t, tt.pattern, got.Pattern)
			assert.Equal(t, tt.shape, got.Shape)

			if tt.edge == "" {
				assert.Nil(t, got.EdgeType)
			} else {
				assert.NotNil(t, got.EdgeType)
				assert.Equal(t, tt.edge, *got.EdgeType)
			}
			if tt.width != 0 {
				assert.NotNil(t, got.Width)
				assert.Equal(t, tt.width, *got.Width)
				assert.NotNil(t, got.Height)
				assert.Equal(t, tt.height, *got.Height)
			}
			if tt.diameter != 0 {
				assert.NotNil(t, got.Diameter)
				assert.Equal(t, tt.diameter, *got.Diameter)
			}
		})
	}
}

func TestParseSKU_EdgePrefixNeedsSeparator(t *testing.T) {
	// "U34" не должен распознаваться как край U3.
	got := ParseSKU("U34-Bawelna-100x100")
	assert.Nil(t, got.EdgeType)
	assert.Equal(t, "U34", got.Fabric)
}
