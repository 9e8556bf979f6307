package storage

// WorkerActionStat - суммы по работнику и этапу.
type WorkerActionStat struct {
	WorkerID      int64  `json:"worker_id"`
	WorkerName    string `json:"worker_name"`
	ActionType    string `json:"action_type"`
	TotalQuantity int    `json:"total_quantity"`
	ActionCount   int    `json:"action_count"`
}

type WorkerSummary struct {
	WorkerID      int64  `json:"worker_id"`
	WorkerName    string `json:"worker_name"`
	TotalQuantity int    `json:"total_quantity"`
	ActionCount   int    `json:"action_count"`
}

// DailyProduction - итог дня с разбивкой по этапам.
type DailyProduction struct {
	Date          string `json:"date"`
	TotalQuantity int    `json:"total_quantity"`
	Cutting       int    `json:"cutting"`
	Sewing        int    `json:"sewing"`
	Ironing       int    `json:"ironing"`
	Packing       int    `json:"packing"`
}

type ActionBreakdown struct {
	ActionType    string `json:"action_type"`
	TotalQuantity int    `json:"total_quantity"`
	ActionCount   int    `json:"action_count"`
}

// OrderProgress - сколько требуется и сколько сделано по каждому этапу заказа.
type OrderProgress struct {
	OrderID       int64          `json:"order_id"`
	TotalRequired int            `json:"total_required"`
	DoneByType    map[string]int `json:"done_by_type"`
}
