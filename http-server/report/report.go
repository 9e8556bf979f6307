// Package report - выгрузка отчёта по работникам в xlsx.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"produkcja/http-server/respond"
	"produkcja/internal/storage"
)

type ExcelGenerator interface {
	WorkerCostReport(ctx context.Context, filter storage.ActionFilter) ([]byte, error)
}

// WorkerCosts отдаёт xlsx за период, по умолчанию с начала месяца.
func WorkerCosts(log *slog.Logger, gen ExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.WorkerCosts"

		now := time.Now()
		startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		filter := storage.ActionFilter{
			DateFrom: &startOfMonth,
		}
		if v := r.URL.Query().Get("date_from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				respond.ErrStatus(w, r, http.StatusBadRequest, "invalid date_from")
				return
			}
			filter.DateFrom = &t
		}
		if v := r.URL.Query().Get("date_to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				respond.ErrStatus(w, r, http.StatusBadRequest, "invalid date_to")
				return
			}
			t = t.Add(24*time.Hour - time.Second)
			filter.DateTo = &t
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		excelBytes, err := gen.WorkerCostReport(ctx, filter)
		if err != nil {
			respond.Err(log, w, r, op, err)
			return
		}

		fileName := fmt.Sprintf("koszty_pracownikow_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
