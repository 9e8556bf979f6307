// Package report - выгрузка сводки по работникам в Excel.
package report

import (
	"context"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type ReportStorage interface {
	GetCostEntries(ctx context.Context, filter storage.ActionFilter) ([]production.CostEntry, error)
}

type ReportService struct {
	storage ReportStorage
}

func NewReportService(storage ReportStorage) *ReportService {
	return &ReportService{storage: storage}
}

// WorkerCostReport собирает xlsx: строка на работника, по каждому этапу
// количество и снимок стоимости, в конце итоговая сумма.
func (r *ReportService) WorkerCostReport(ctx context.Context, filter storage.ActionFilter) ([]byte, error) {
	const op = "report.WorkerCostReport"

	entries, err := r.storage.GetCostEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	type workerRow struct {
		name     string
		quantity map[production.ActionType]int
		cost     map[production.ActionType]float64
		total    float64
	}

	rows := make(map[int64]*workerRow)
	var order []int64
	for _, e := range entries {
		row, ok := rows[e.ActorID]
		if !ok {
			row = &workerRow{
				name:     e.ActorName,
				quantity: map[production.ActionType]int{},
				cost:     map[production.ActionType]float64{},
			}
			rows[e.ActorID] = row
			order = append(order, e.ActorID)
		}
		row.quantity[e.Type] += e.Quantity
		row.cost[e.Type] += e.Cost
		row.total += e.Cost
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Koszty pracowników"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	headers := []string{"Pracownik"}
	for _, t := range production.ActionTypes {
		headers = append(headers, string(t)+" szt.", string(t)+" zł")
	}
	headers = append(headers, "Razem zł")

	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	for rowIdx, workerID := range order {
		row := rows[workerID]
		rowNum := rowIdx + 2

		f.SetCellValue(sheet, cellName(1, rowNum), row.name)
		col := 2
		for _, t := range production.ActionTypes {
			f.SetCellValue(sheet, cellName(col, rowNum), row.quantity[t])
			f.SetCellValue(sheet, cellName(col+1, rowNum), round2(row.cost[t]))
			col += 2
		}
		f.SetCellValue(sheet, cellName(col, rowNum), round2(row.total))
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", cellColumn(len(headers)), 13)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func cellColumn(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
