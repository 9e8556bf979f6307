package production

// ActionEntry - минимальный срез записи журнала, нужный агрегатору.
type ActionEntry struct {
	Type     ActionType
	Quantity int
}

// PositionState - позиция заказа вместе с её записями журнала.
type PositionState struct {
	Required int
	Actions  []ActionEntry
}

// ActionTotals суммирует количество по каждому этапу. В ответе всегда
// присутствуют все четыре этапа, даже если записей по ним нет.
func ActionTotals(actions []ActionEntry) map[ActionType]int {
	totals := make(map[ActionType]int, len(ActionTypes))
	for _, t := range ActionTypes {
		totals[t] = 0
	}
	for _, a := range actions {
		totals[a.Type] += a.Quantity
	}
	return totals
}

// Remaining - сколько ещё можно записать по этапу, не нарушив инвариант.
func Remaining(p PositionState, t ActionType) int {
	return p.Required - ActionTotals(p.Actions)[t]
}

// IsPositionComplete - истина, когда каждый из четырёх этапов закрыт ровно
// на требуемое количество.
func IsPositionComplete(p PositionState) bool {
	totals := ActionTotals(p.Actions)
	for _, t := range ActionTypes {
		if totals[t] != p.Required {
			return false
		}
	}
	return true
}

// DeriveOrderStatus выводит статус заказа из журнала.
// Правила:
//   - cancelled необратим: никакие записи его не меняют;
//   - все позиции закрыты -> done;
//   - есть хотя бы одна запись, но заказ не закрыт -> in_progress
//     (в том числе возврат из done после правки или удаления записи);
//   - иначе статус не трогаем (свежий fetched остаётся fetched).
func DeriveOrderStatus(current OrderStatus, positions []PositionState) OrderStatus {
	if current == StatusCancelled {
		return StatusCancelled
	}

	if len(positions) > 0 && allComplete(positions) {
		return StatusDone
	}

	if anyAction(positions) {
		return StatusInProgress
	}

	return current
}

func allComplete(positions []PositionState) bool {
	for _, p := range positions {
		if !IsPositionComplete(p) {
			return false
		}
	}
	return true
}

func anyAction(positions []PositionState) bool {
	for _, p := range positions {
		if len(p.Actions) > 0 {
			return true
		}
	}
	return false
}

// CostEntry - запись журнала со снимком стоимости для сводок.
type CostEntry struct {
	Type      ActionType
	ActorID   int64
	ActorName string
	Quantity  int
	Cost      float64
}

// CostSummary - свёртка стоимости по этапам и по работникам.
// Считается только по сохранённым снимкам: формула нигде не пересчитывается,
// чтобы сводка всегда совпадала со стоимостью отдельных записей.
type CostSummary struct {
	TotalCost    float64            `json:"total_cost"`
	ByActionType map[string]float64 `json:"by_action_type"`
	ByWorker     map[string]float64 `json:"by_worker"`
}

func SummarizeCosts(entries []CostEntry) CostSummary {
	s := CostSummary{
		ByActionType: map[string]float64{},
		ByWorker:     map[string]float64{},
	}
	for _, e := range entries {
		s.TotalCost += e.Cost
		s.ByActionType[string(e.Type)] += e.Cost
		s.ByWorker[e.ActorName] += e.Cost
	}

	s.TotalCost = round2(s.TotalCost)
	for k, v := range s.ByActionType {
		s.ByActionType[k] = round2(v)
	}
	for k, v := range s.ByWorker {
		s.ByWorker[k] = round2(v)
	}
	return s
}
