package storage

import "time"

// SyncState - курсор синхронизации с Baselinker: unix-метка последнего
// обработанного заказа и id дополнительного поля с датой отгрузки.
type SyncState struct {
	LastSyncTimestamp   int64      `json:"last_sync_timestamp"`
	ShipmentDateFieldID *int64     `json:"shipment_date_field_id"`
	UpdatedAt           *time.Time `json:"updated_at"`
}

// SyncedOrder - заказ в том виде, в каком его отдаёт внешний API,
// уже приведённый к нашим полям.
type SyncedOrder struct {
	BaselinkerID         int64
	Source               *string
	Fullname             *string
	Company              *string
	ExpectedShipmentDate *time.Time
	Positions            []SyncedPosition
}

type SyncedPosition struct {
	SKU      string
	Quantity int
}

type SyncResult struct {
	OrdersSynced    int `json:"orders_synced"`
	ProductsCreated int `json:"products_created"`
}
