package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"produkcja/http-server/respond"
	"produkcja/internal/middleware/auth"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type ActionsGetter interface {
	GetPositionActions(ctx context.Context, positionID int64) ([]storage.Action, error)
	GetActorActions(ctx context.Context, filter storage.ActionFilter) ([]storage.Action, error)
	GetActionHistory(ctx context.Context, filter storage.ActionFilter) ([]storage.ActionHistoryItem, error)
}

func PositionActions(log *slog.Logger, actions ActionsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.actions.PositionActions"

		positionID, err := strconv.ParseInt(chi.URLParam(r, "positionID"), 10, 64)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := actions.GetPositionActions(ctx, positionID)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

// MyActions - записи текущего пользователя, по умолчанию за сегодня.
func MyActions(log *slog.Logger, actions ActionsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.actions.MyActions"

		actor := auth.FromContext(r.Context())

		filter, err := parseFilter(r)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}
		filter.WorkerID = actor.ID
		if filter.DateFrom == nil && filter.DateTo == nil {
			today := time.Now().Truncate(24 * time.Hour)
			filter.DateFrom = &today
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := actions.GetActorActions(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

// History - журнал по всем работникам с фильтрами, для администратора.
func History(log *slog.Logger, actions ActionsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.actions.History"

		filter, err := parseFilter(r)
		if err != nil {
			respond.ErrStatus(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if v := r.URL.Query().Get("worker_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				respond.ErrStatus(w, r, http.StatusBadRequest, "invalid worker_id")
				return
			}
			filter.WorkerID = id
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		list, err := actions.GetActionHistory(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}

// ActionTypes - справочник этапов для выпадающих списков фронтенда.
func ActionTypes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, production.ActionTypes)
	}
}

func parseFilter(r *http.Request) (storage.ActionFilter, error) {
	var filter storage.ActionFilter

	filter.ActionType = r.URL.Query().Get("action_type")
	if v := r.URL.Query().Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalidDate
		}
		filter.DateFrom = &t
	}
	if v := r.URL.Query().Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalidDate
		}
		// Верхняя граница включает весь день.
		t = t.Add(24*time.Hour - time.Second)
		filter.DateTo = &t
	}
	return filter, nil
}

var errInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")
