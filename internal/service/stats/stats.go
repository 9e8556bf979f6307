// Package stats - читающая сторона: сводки для экранов статистики.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type StatsStorage interface {
	GetWorkerActionStats(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerActionStat, error)
	GetWorkerSummary(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerSummary, error)
	GetDailyTotals(ctx context.Context, filter storage.ActionFilter) (map[string]int, error)
	GetDailyBreakdown(ctx context.Context, filter storage.ActionFilter) (map[string]map[string]int, error)
	GetActionBreakdown(ctx context.Context, filter storage.ActionFilter) ([]storage.ActionBreakdown, error)
	GetOrderProgress(ctx context.Context, orderID int64) ([]storage.OrderProgress, error)
	GetCostEntries(ctx context.Context, filter storage.ActionFilter) ([]production.CostEntry, error)
}

type StatsService struct {
	storage StatsStorage
}

func NewStatsService(storage StatsStorage) *StatsService {
	return &StatsService{storage: storage}
}

func (s *StatsService) WorkerActionStats(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerActionStat, error) {
	return s.storage.GetWorkerActionStats(ctx, filter)
}

func (s *StatsService) WorkerSummary(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerSummary, error) {
	return s.storage.GetWorkerSummary(ctx, filter)
}

// DailyProduction склеивает итоги дня с разбивкой по этапам.
// Оба запроса независимы, гоняем их параллельно.
func (s *StatsService) DailyProduction(ctx context.Context, filter storage.ActionFilter) ([]storage.DailyProduction, error) {
	var (
		totals    map[string]int
		breakdown map[string]map[string]int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.storage.GetDailyTotals(gCtx, filter)
		if err != nil {
			return fmt.Errorf("totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		breakdown, err = s.storage.GetDailyBreakdown(gCtx, filter)
		if err != nil {
			return fmt.Errorf("breakdown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(breakdown))
	for date := range breakdown {
		dates = append(dates, date)
	}
	// новые дни первыми
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	result := make([]storage.DailyProduction, 0, len(dates))
	for _, date := range dates {
		byType := breakdown[date]
		result = append(result, storage.DailyProduction{
			Date:          date,
			TotalQuantity: totals[date],
			Cutting:       byType[string(production.ActionCutting)],
			Sewing:        byType[string(production.ActionSewing)],
			Ironing:       byType[string(production.ActionIroning)],
			Packing:       byType[string(production.ActionPacking)],
		})
	}
	return result, nil
}

func (s *StatsService) ActionBreakdown(ctx context.Context, filter storage.ActionFilter) ([]storage.ActionBreakdown, error) {
	return s.storage.GetActionBreakdown(ctx, filter)
}

func (s *StatsService) OrderProgress(ctx context.Context, orderID int64) ([]storage.OrderProgress, error) {
	return s.storage.GetOrderProgress(ctx, orderID)
}

// CostSummary - свёртка сохранённых снимков стоимости. Формула здесь не
// пересчитывается: сводка обязана сходиться со стоимостью отдельных записей.
func (s *StatsService) CostSummary(ctx context.Context, filter storage.ActionFilter) (production.CostSummary, error) {
	entries, err := s.storage.GetCostEntries(ctx, filter)
	if err != nil {
		return production.CostSummary{}, err
	}
	return production.SummarizeCosts(entries), nil
}

// CostsByWorker - детальная разбивка по работникам, самые дорогие первыми.
func (s *StatsService) CostsByWorker(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerCostDetail, error) {
	entries, err := s.storage.GetCostEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	byWorker := make(map[int64]*storage.WorkerCostDetail)
	var order []int64
	for _, e := range entries {
		detail, ok := byWorker[e.ActorID]
		if !ok {
			detail = &storage.WorkerCostDetail{
				WorkerID:             e.ActorID,
				WorkerName:           e.ActorName,
				ByActionType:         map[string]float64{},
				QuantityByActionType: map[string]int{},
			}
			byWorker[e.ActorID] = detail
			order = append(order, e.ActorID)
		}
		detail.TotalCost += e.Cost
		detail.ByActionType[string(e.Type)] += e.Cost
		detail.QuantityByActionType[string(e.Type)] += e.Quantity
	}

	result := make([]storage.WorkerCostDetail, 0, len(order))
	for _, id := range order {
		d := byWorker[id]
		d.TotalCost = round2(d.TotalCost)
		for k, v := range d.ByActionType {
			d.ByActionType[k] = round2(v)
		}
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalCost > result[j].TotalCost
	})
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
