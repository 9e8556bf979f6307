package storage

import "produkcja/internal/production"

// Product - строка каталога. Width/Height заполнены для прямоугольных и
// овальных, Diameter для круглых, EdgeType пустой, если край не распознан.
type Product struct {
	ID       int64            `json:"id"`
	SKU      string           `json:"sku"`
	Fabric   string           `json:"fabric"`
	Pattern  string           `json:"pattern"`
	Shape    production.Shape `json:"shape"`
	Width    *int             `json:"width"`
	Height   *int             `json:"height"`
	Diameter *int             `json:"diameter"`
	EdgeType *string          `json:"edge_type"`
}

// Production переводит строку каталога в форму, которую понимает
// калькулятор стоимости.
func (p *Product) Production() production.Product {
	out := production.Product{
		ID:      p.ID,
		SKU:     p.SKU,
		Fabric:  p.Fabric,
		Pattern: p.Pattern,
		Shape:   p.Shape,
	}
	if p.Width != nil {
		out.Width = *p.Width
	}
	if p.Height != nil {
		out.Height = *p.Height
	}
	if p.Diameter != nil {
		out.Diameter = *p.Diameter
	}
	if p.EdgeType != nil {
		out.EdgeType = production.EdgeType(*p.EdgeType)
	}
	return out
}

type ProductFilter struct {
	Fabric  string
	Pattern string
	Shape   string
	Search  string
}

type SaveProduct struct {
	SKU      string  `json:"sku"`
	Fabric   string  `json:"fabric"`
	Pattern  string  `json:"pattern"`
	Shape    string  `json:"shape"`
	Width    *int    `json:"width"`
	Height   *int    `json:"height"`
	Diameter *int    `json:"diameter"`
	EdgeType *string `json:"edge_type"`
}
