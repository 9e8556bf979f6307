package production

import "fmt"

// ActionType - этап производства, который работник отмечает на позиции заказа.
type ActionType string

const (
	ActionCutting ActionType = "cutting"
	ActionSewing  ActionType = "sewing"
	ActionIroning ActionType = "ironing"
	ActionPacking ActionType = "packing"
)

// ActionTypes перечисляет все этапы в производственном порядке.
var ActionTypes = []ActionType{ActionCutting, ActionSewing, ActionIroning, ActionPacking}

func ParseActionType(s string) (ActionType, error) {
	switch ActionType(s) {
	case ActionCutting, ActionSewing, ActionIroning, ActionPacking:
		return ActionType(s), nil
	}
	return "", fmt.Errorf("unknown action type: %q", s)
}

type OrderStatus string

const (
	StatusFetched    OrderStatus = "fetched"
	StatusInProgress OrderStatus = "in_progress"
	StatusDone       OrderStatus = "done"
	StatusCancelled  OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusFetched, StatusInProgress, StatusDone, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status: %q", s)
}

type Shape string

const (
	ShapeRectangular Shape = "rectangular"
	ShapeRound       Shape = "round"
	ShapeOval        Shape = "oval"
)

var Shapes = []Shape{ShapeRectangular, ShapeRound, ShapeOval}

func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case ShapeRectangular, ShapeRound, ShapeOval:
		return Shape(s), nil
	}
	return "", fmt.Errorf("unknown shape: %q", s)
}

// EdgeType - тип обработки края (обшивки). Пустое значение допустимо:
// часть товаров приходит из синхронизации без распознанного края.
type EdgeType string

const (
	EdgeU3  EdgeType = "U3"
	EdgeU4  EdgeType = "U4"
	EdgeU5  EdgeType = "U5"
	EdgeO1  EdgeType = "O1"
	EdgeO3  EdgeType = "O3"
	EdgeO5  EdgeType = "O5"
	EdgeOGK EdgeType = "OGK"
	EdgeLA  EdgeType = "LA"
)

var EdgeTypes = []EdgeType{EdgeU3, EdgeU4, EdgeU5, EdgeO1, EdgeO3, EdgeO5, EdgeOGK, EdgeLA}

func ParseEdgeType(s string) (EdgeType, error) {
	for _, et := range EdgeTypes {
		if EdgeType(s) == et {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown edge type: %q", s)
}

// Product - геометрия и характеристики изделия, нужные формулам стоимости.
// Width/Height заполнены для rectangular/oval, Diameter для round, в сантиметрах.
type Product struct {
	ID       int64
	SKU      string
	Fabric   string
	Pattern  string
	Shape    Shape
	Width    int
	Height   int
	Diameter int
	EdgeType EdgeType // пусто, если край не определён
}

// CostConfig - единственная строка конфигурации, редактируется администратором.
// Карты ключуются строкой EdgeType; отсутствующий ключ трактуется как ноль.
type CostConfig struct {
	LagFactor               float64            `json:"lag_factor"`
	CuttingFactor           float64            `json:"cutting_factor"`
	IroningFactor           float64            `json:"ironing_factor"`
	PrepackingFactor        float64            `json:"prepacking_factor"`
	PackingFactor           float64            `json:"packing_factor"`
	DepreciationFactor      float64            `json:"depreciation_factor"`
	PackagingMaterialsPrice float64            `json:"packaging_materials_price"`
	CornerSewingFactors     map[string]float64 `json:"corner_sewing_factors"`
	SewingFactors           map[string]float64 `json:"sewing_factors"`
	MaterialWaste           map[string]float64 `json:"material_waste"`
}

// DefaultCostConfig - значения, с которыми создаётся конфигурация при первом запуске.
func DefaultCostConfig() CostConfig {
	return CostConfig{
		LagFactor:               0.35,
		CuttingFactor:           1.86,
		IroningFactor:           0.65,
		PrepackingFactor:        0.3539,
		PackingFactor:           0.2045,
		DepreciationFactor:      0.062,
		PackagingMaterialsPrice: 3.2,
		CornerSewingFactors: map[string]float64{
			"U3": 0.084, "U4": 0.084, "U5": 0.084,
			"O1": 0.1183, "O3": 0.6708, "O5": 0.6708,
			"OGK": 1.254, "LA": 0.1183,
		},
		SewingFactors: map[string]float64{
			"U3": 0.1593, "U4": 0.1593, "U5": 0.1593,
			"O1": 0.7847, "O3": 1.489, "O5": 1.489,
			"OGK": 1.995, "LA": 2.8,
		},
		MaterialWaste: map[string]float64{
			"U3": 2, "U4": 2, "U5": 2,
			"O1": 5, "O3": 9, "O5": 13,
			"OGK": -16, "LA": 1,
		},
	}
}
