package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionTotals_AllTypesAlwaysPresent(t *testing.T) {
	totals := ActionTotals(nil)

	assert.Len(t, totals, 4)
	for _, at := range ActionTypes {
		assert.Zero(t, totals[at])
	}
}

func TestActionTotals_SumsPerType(t *testing.T) {
	totals := ActionTotals([]ActionEntry{
		{Type: ActionCutting, Quantity: 3},
		{Type: ActionCutting, Quantity: 2},
		{Type: ActionSewing, Quantity: 4},
	})

	assert.Equal(t, 5, totals[ActionCutting])
	assert.Equal(t, 4, totals[ActionSewing])
	assert.Equal(t, 0, totals[ActionIroning])
}

func TestRemaining(t *testing.T) {
	p := PositionState{
		Required: 10,
		Actions: []ActionEntry{
			{Type: ActionCutting, Quantity: 7},
		},
	}

	assert.Equal(t, 3, Remaining(p, ActionCutting))
	assert.Equal(t, 10, Remaining(p, ActionPacking))
}

func TestIsPositionComplete(t *testing.T) {
	complete := PositionState{Required: 2, Actions: []ActionEntry{
		{Type: ActionCutting, Quantity: 2},
		{Type: ActionSewing, Quantity: 2},
		{Type: ActionIroning, Quantity: 2},
		{Type: ActionPacking, Quantity: 2},
	}}
	assert.True(t, IsPositionComplete(complete))

	// Без глажки позиция не закрыта, даже если остальные этапы готовы.
	partial := PositionState{Required: 2, Actions: []ActionEntry{
		{Type: ActionCutting, Quantity: 2},
		{Type: ActionSewing, Quantity: 2},
		{Type: ActionPacking, Quantity: 2},
	}}
	assert.False(t, IsPositionComplete(partial))
}

func TestDeriveOrderStatus(t *testing.T) {
	done := PositionState{Required: 1, Actions: []ActionEntry{
		{Type: ActionCutting, Quantity: 1},
		{Type: ActionSewing, Quantity: 1},
		{Type: ActionIroning, Quantity: 1},
		{Type: ActionPacking, Quantity: 1},
	}}
	started := PositionState{Required: 1, Actions: []ActionEntry{
		{Type: ActionCutting, Quantity: 1},
	}}
	empty := PositionState{Required: 1}

	tests := []struct {
		name      string
		current   OrderStatus
		positions []PositionState
		want      OrderStatus
	}{
		{"отменённый заказ не оживает", StatusCancelled, []PositionState{done}, StatusCancelled},
		{"все позиции закрыты", StatusInProgress, []PositionState{done, done}, StatusDone},
		{"первая запись переводит в работу", StatusFetched, []PositionState{started, empty}, StatusInProgress},
		{"удаление записи возвращает из done", StatusDone, []PositionState{started}, StatusInProgress},
		{"без записей статус не трогаем", StatusFetched, []PositionState{empty}, StatusFetched},
		{"заказ без позиций не бывает done", StatusInProgress, nil, StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.current, tt.positions))
		})
	}
}

func TestSummarizeCosts(t *testing.T) {
	entries := []CostEntry{
		{Type: ActionCutting, ActorID: 1, ActorName: "Anna Nowak", Quantity: 3, Cost: 24.3},
		{Type: ActionSewing, ActorID: 1, ActorName: "Anna Nowak", Quantity: 1, Cost: 12.51},
		{Type: ActionCutting, ActorID: 2, ActorName: "Jan Kowalski", Quantity: 2, Cost: 16.2},
	}

	s := SummarizeCosts(entries)

	assert.InDelta(t, 53.01, s.TotalCost, 1e-9)
	assert.InDelta(t, 40.5, s.ByActionType["cutting"], 1e-9)
	assert.InDelta(t, 12.51, s.ByActionType["sewing"], 1e-9)
	assert.InDelta(t, 36.81, s.ByWorker["Anna Nowak"], 1e-9)
	assert.InDelta(t, 16.2, s.ByWorker["Jan Kowalski"], 1e-9)
}

func TestSummarizeCosts_Empty(t *testing.T) {
	s := SummarizeCosts(nil)

	assert.Zero(t, s.TotalCost)
	assert.NotNil(t, s.ByActionType)
	assert.NotNil(t, s.ByWorker)
}
