package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type CostsGetter interface {
	GetCostConfig(ctx context.Context) (*storage.CostConfigRow, error)
}

type CostsAggregator interface {
	CostSummary(ctx context.Context, filter storage.ActionFilter) (production.CostSummary, error)
	CostsByWorker(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerCostDetail, error)
}

func Config(log *slog.Logger, costs CostsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.costs.Config"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		cfg, err := costs.GetCostConfig(ctx)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, cfg)
	}
}

// Summary - сумма снимков стоимости за период, по этапам и по работникам.
func Summary(log *slog.Logger, stats CostsAggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.costs.Summary"

		filter, err := parseFilter(r)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		summary, err := stats.CostSummary(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, summary)
	}
}

func ByWorker(log *slog.Logger, stats CostsAggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.costs.ByWorker"

		filter, err := parseFilter(r)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		details, err := stats.CostsByWorker(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, details)
	}
}

func parseFilter(r *http.Request) (storage.ActionFilter, error) {
	var filter storage.ActionFilter

	filter.ActionType = r.URL.Query().Get("action_type")
	if v := r.URL.Query().Get("worker_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errInvalid("worker_id")
		}
		filter.WorkerID = id
	}
	if v := r.URL.Query().Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalid("date_from")
		}
		filter.DateFrom = &t
	}
	if v := r.URL.Query().Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalid("date_to")
		}
		t = t.Add(24*time.Hour - time.Second)
		filter.DateTo = &t
	}
	return filter, nil
}

type errInvalid string

func (e errInvalid) Error() string { return "invalid " + string(e) }
