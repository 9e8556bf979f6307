package storage

import (
	"time"

	"produkcja/internal/production"
)

type Order struct {
	ID                   int64                  `json:"id"`
	BaselinkerID         *int64                 `json:"baselinker_id"`
	Source               *string                `json:"source"`
	ExpectedShipmentDate *time.Time             `json:"expected_shipment_date"`
	Fullname             *string                `json:"fullname"`
	Company              *string                `json:"company"`
	Status               production.OrderStatus `json:"status"`
}

type OrderPosition struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// PositionWithActions - позиция вместе с товаром, записями журнала и
// суммами по этапам; основной вид для экрана работника.
type PositionWithActions struct {
	OrderPosition
	Product      Product                       `json:"product"`
	Actions      []Action                      `json:"actions"`
	ActionTotals map[production.ActionType]int `json:"action_totals"`
}

type OrderWithPositions struct {
	Order
	PositionCount int                   `json:"position_count"`
	Positions     []PositionWithActions `json:"positions"`
}

type OrderFilter struct {
	Source   string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
}

type SavePosition struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type SaveOrder struct {
	ExpectedShipmentDate *time.Time     `json:"expected_shipment_date"`
	Fullname             *string        `json:"fullname"`
	Company              *string        `json:"company"`
	Positions            []SavePosition `json:"positions"`
}

type UpdateOrder struct {
	ExpectedShipmentDate *time.Time `json:"expected_shipment_date"`
	Fullname             *string    `json:"fullname"`
	Company              *string    `json:"company"`
}
