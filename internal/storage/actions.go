package storage

import (
	"time"

	"produkcja/internal/production"
)

// Action - одна запись журнала: этап, количество и снимок стоимости,
// посчитанный в момент записи. Timestamp неизменяем.
type Action struct {
	ID         int64                 `json:"id"`
	PositionID int64                 `json:"order_position_id"`
	Type       production.ActionType `json:"action_type"`
	Quantity   int                   `json:"quantity"`
	Cost       float64               `json:"cost"`
	ActorID    int64                 `json:"actor_id"`
	ActorName  string                `json:"actor_name"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CreateAction - параметры вставки; стоимость уже посчитана сервисом.
type CreateAction struct {
	PositionID int64
	Type       production.ActionType
	Quantity   int
	Cost       float64
	ActorID    int64
}

// ActionHistoryItem - строка экрана истории с контекстом заказа и товара.
type ActionHistoryItem struct {
	Action
	OrderID    int64  `json:"order_id"`
	ProductSKU string `json:"product_sku"`
}

type ActionFilter struct {
	WorkerID   int64
	ActionType string
	DateFrom   *time.Time
	DateTo     *time.Time
}
