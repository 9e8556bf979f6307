package mysql

import (
	"context"
	"fmt"

	"produkcja/internal/production"
	"produkcja/internal/storage"
)

func (s *Storage) GetWorkerActionStats(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerActionStat, error) {
	const op = "storage.mysql.GetWorkerActionStats"

	clause, args := actionFilterSQL(filter)
	rows, err := s.db.QueryContext(ctx, `
        SELECT a.actor_id, CONCAT(u.first_name, ' ', u.last_name), a.action_type,
               SUM(a.quantity), COUNT(a.id)
        FROM order_position_actions a
        JOIN users u ON u.id = a.actor_id
        WHERE 1=1`+clause+`
        GROUP BY a.actor_id, u.first_name, u.last_name, a.action_type`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var stats []storage.WorkerActionStat
	for rows.Next() {
		var st storage.WorkerActionStat
		if err := rows.Scan(&st.WorkerID, &st.WorkerName, &st.ActionType, &st.TotalQuantity, &st.ActionCount); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *Storage) GetWorkerSummary(ctx context.Context, filter storage.ActionFilter) ([]storage.WorkerSummary, error) {
	const op = "storage.mysql.GetWorkerSummary"

	clause, args := actionFilterSQL(filter)
	rows, err := s.db.QueryContext(ctx, `
        SELECT a.actor_id, CONCAT(u.first_name, ' ', u.last_name),
               SUM(a.quantity), COUNT(a.id)
        FROM order_position_actions a
        JOIN users u ON u.id = a.actor_id
        WHERE 1=1`+clause+`
        GROUP BY a.actor_id, u.first_name, u.last_name
        ORDER BY SUM(a.quantity) DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var summaries []storage.WorkerSummary
	for rows.Next() {
		var sm storage.WorkerSummary
		if err := rows.Scan(&sm.WorkerID, &sm.WorkerName, &sm.TotalQuantity, &sm.ActionCount); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

// GetDailyTotals - суммарное количество по дням, новые дни первыми.
func (s *Storage) GetDailyTotals(ctx context.Context, filter storage.ActionFilter) (map[string]int, error) {
	const op = "storage.mysql.GetDailyTotals"

	clause, args := actionFilterSQL(filter)
	rows, err := s.db.QueryContext(ctx, `
        SELECT DATE(a.timestamp), SUM(a.quantity)
        FROM order_position_actions a
        WHERE 1=1`+clause+`
        GROUP BY DATE(a.timestamp)`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var (
			date  string
			total int
		)
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		totals[date] = total
	}
	return totals, rows.Err()
}

// GetDailyBreakdown - количество по дням и этапам.
func (s *Storage) GetDailyBreakdown(ctx context.Context, filter storage.ActionFilter) (map[string]map[string]int, error) {
	const op = "storage.mysql.GetDailyBreakdown"

	clause, args := actionFilterSQL(filter)
	rows, err := s.db.QueryContext(ctx, `
        SELECT DATE(a.timestamp), a.action_type, SUM(a.quantity)
        FROM order_position_actions a
        WHERE 1=1`+clause+`
        GROUP BY DATE(a.timestamp), a.action_type`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	byDate := make(map[string]map[string]int)
	for rows.Next() {
		var (
			date       string
			actionType string
			total      int
		)
		if err := rows.Scan(&date, &actionType, &total); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		if byDate[date] == nil {
			byDate[date] = make(map[string]int)
		}
		byDate[date][actionType] = total
	}
	return byDate, rows.Err()
}

func (s *Storage) GetActionBreakdown(ctx context.Context, filter storage.ActionFilter) ([]storage.ActionBreakdown, error) {
	const op = "storage.mysql.GetActionBreakdown"

	clause, args := actionFilterSQL(filter)
	rows, err := s.db.QueryContext(ctx, `
        SELECT a.action_type, SUM(a.quantity), COUNT(a.id)
        FROM order_position_actions a
        WHERE 1=1`+clause+`
        GROUP BY a.action_type`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var breakdown []storage.ActionBreakdown
	for rows.Next() {
		var b storage.ActionBreakdown
		if err := rows.Scan(&b.ActionType, &b.TotalQuantity, &b.ActionCount); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		breakdown = append(breakdown, b)
	}
	return breakdown, rows.Err()
}

// GetOrderProgress - требуемое и сделанное по этапам для заказов.
// orderID = 0 означает все заказы.
func (s *Storage) GetOrderProgress(ctx context.Context, orderID int64) ([]storage.OrderProgress, error) {
	const op = "storage.mysql.GetOrderProgress"

	requiredQuery := `SELECT order_id, SUM(quantity) FROM order_positions`
	doneQuery := `
        SELECT p.order_id, a.action_type, SUM(a.quantity)
        FROM order_positions p
        JOIN order_position_actions a ON a.order_position_id = p.id`
	var args, doneArgs []any
	if orderID != 0 {
		requiredQuery += ` WHERE order_id = ?`
		doneQuery += ` WHERE p.order_id = ?`
		args = append(args, orderID)
		doneArgs = append(doneArgs, orderID)
	}
	requiredQuery += ` GROUP BY order_id`
	doneQuery += ` GROUP BY p.order_id, a.action_type`

	rows, err := s.db.QueryContext(ctx, requiredQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var progress []storage.OrderProgress
	index := make(map[int64]int)
	for rows.Next() {
		var p storage.OrderProgress
		if err := rows.Scan(&p.OrderID, &p.TotalRequired); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		p.DoneByType = make(map[string]int, len(production.ActionTypes))
		for _, t := range production.ActionTypes {
			p.DoneByType[string(t)] = 0
		}
		index[p.OrderID] = len(progress)
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doneRows, err := s.db.QueryContext(ctx, doneQuery, doneArgs...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer doneRows.Close()

	for doneRows.Next() {
		var (
			oid        int64
			actionType string
			total      int
		)
		if err := doneRows.Scan(&oid, &actionType, &total); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		if i, ok := index[oid]; ok {
			progress[i].DoneByType[actionType] = total
		}
	}
	return progress, doneRows.Err()
}

// GetCostEntries - снимки стоимости для сводок. Пересчёта формулы здесь нет.
func (s *Storage) GetCostEntries(ctx context.Context, filter storage.ActionFilter) ([]production.CostEntry, error) {
	const op = "storage.mysql.GetCostEntries"

	clause, args := actionFilterSQL(filter)
	rows, err := s.db.QueryContext(ctx, `
        SELECT a.action_type, a.actor_id, CONCAT(u.first_name, ' ', u.last_name), a.quantity, a.cost
        FROM order_position_actions a
        JOIN users u ON u.id = a.actor_id
        WHERE 1=1`+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []production.CostEntry
	for rows.Next() {
		var e production.CostEntry
		if err := rows.Scan(&e.Type, &e.ActorID, &e.ActorName, &e.Quantity, &e.Cost); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
