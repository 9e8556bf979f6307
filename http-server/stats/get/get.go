package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/storage"
)

type StatsProvider interface {
	WorkerActionStats(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerActionStat, error)
	WorkerSummary(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerSummary, error)
	DailyProduction(ctx context.Context, filter storage.ActionFilter) ([]storage.DailyProduction, error)
	ActionBreakdown(ctx context.Context, filter storage.ActionFilter) ([]storage.ActionBreakdown, error)
	OrderProgress(ctx context.Context, orderID int64) ([]storage.OrderProgress, error)
}

func WorkerStats(log *slog.Logger, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stats.WorkerStats"

		filter, err := parseFilter(r)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		list, err := stats.WorkerActionStats(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func WorkerSummary(log *slog.Logger, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stats.WorkerSummary"

		filter, err := parseFilter(r)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		list, err := stats.WorkerSummary(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

// Daily - выпуск по дням с разбивкой по этапам, новые дни первыми.
func Daily(log *slog.Logger, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stats.Daily"

		filter, err := parseFilter(r)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		list, err := stats.DailyProduction(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func Breakdown(log *slog.Logger, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stats.Breakdown"

		filter, err := parseFilter(r)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		list, err := stats.ActionBreakdown(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

// Progress - сколько осталось по каждому заказу; order_id=0 значит все.
func Progress(log *slog.Logger, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stats.Progress"

		var orderID int64
		if v := r.URL.Query().Get("order_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				respond.ErrStatus(w, r, http.StatusBadRequest, "invalid order_id")
				return
			}
			orderID = id
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		list, err := stats.OrderProgress(ctx, orderID)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
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
