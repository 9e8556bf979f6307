package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"produkcja/internal/apperr"
	"produkcja/internal/storage"
)

// CreateAction вставляет запись журнала под блокировкой строки позиции.
// Инвариант "не больше требуемого" проверяется в той же транзакции, что и
// вставка: конкурирующие записи по одной позиции сериализуются на FOR UPDATE.
func (s *Storage) CreateAction(ctx context.Context, req storage.CreateAction) (*storage.Action, error) {
	const op = "storage.mysql.CreateAction"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var (
		orderID  int64
		required int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT order_id, quantity FROM order_positions WHERE id = ? FOR UPDATE`,
		req.PositionID).Scan(&orderID, &required)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var currentTotal int
	err = tx.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(quantity), 0) FROM order_position_actions
        WHERE order_position_id = ? AND action_type = ?`,
		req.PositionID, req.Type).Scan(&currentTotal)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if currentTotal+req.Quantity > required {
		return nil, &apperr.CapacityError{Remaining: required - currentTotal}
	}

	res, err := tx.ExecContext(ctx, `
        INSERT INTO order_position_actions (order_position_id, action_type, quantity, cost, actor_id, timestamp)
        VALUES (?, ?, ?, ?, ?, NOW())`,
		req.PositionID, req.Type, req.Quantity, req.Cost, req.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка вставки записи журнала: %w", op, err)
	}
	actionID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.recomputeOrderStatusTx(ctx, tx, orderID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return s.GetAction(ctx, actionID)
}

const selectAction = `
    SELECT a.id, a.order_position_id, a.action_type, a.quantity, a.cost, a.actor_id,
           CONCAT(u.first_name, ' ', u.last_name), a.timestamp
    FROM order_position_actions a
    JOIN users u ON u.id = a.actor_id`

func scanAction(row interface{ Scan(...any) error }) (*storage.Action, error) {
	var a storage.Action
	err := row.Scan(&a.ID, &a.PositionID, &a.Type, &a.Quantity, &a.Cost, &a.ActorID, &a.ActorName, &a.Timestamp)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Storage) GetAction(ctx context.Context, id int64) (*storage.Action, error) {
	const op = "storage.mysql.GetAction"

	a, err := scanAction(s.db.QueryRowContext(ctx, selectAction+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// UpdateActionQuantity меняет количество записи. Проверка инварианта считает
// сумму без самой записи, то есть старое количество сперва "снимается".
// Timestamp не меняется, снимок стоимости сервис пересчитывает заранее.
func (s *Storage) UpdateActionQuantity(ctx context.Context, actionID int64, quantity int, cost float64) (*storage.Action, error) {
	const op = "storage.mysql.UpdateActionQuantity"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var (
		positionID int64
		actionType string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT order_position_id, action_type FROM order_position_actions WHERE id = ?`,
		actionID).Scan(&positionID, &actionType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		orderID  int64
		required int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT order_id, quantity FROM order_positions WHERE id = ? FOR UPDATE`,
		positionID).Scan(&orderID, &required)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var otherTotal int
	err = tx.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(quantity), 0) FROM order_position_actions
        WHERE order_position_id = ? AND action_type = ? AND id <> ?`,
		positionID, actionType, actionID).Scan(&otherTotal)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if otherTotal+quantity > required {
		return nil, &apperr.CapacityError{Remaining: required - otherTotal}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE order_position_actions SET quantity = ?, cost = ? WHERE id = ?`,
		quantity, cost, actionID); err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления записи id=%d: %w", op, actionID, err)
	}

	if err := s.recomputeOrderStatusTx(ctx, tx, orderID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return s.GetAction(ctx, actionID)
}

func (s *Storage) DeleteAction(ctx context.Context, actionID int64) error {
	const op = "storage.mysql.DeleteAction"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var positionID int64
	err = tx.QueryRowContext(ctx,
		`SELECT order_position_id FROM order_position_actions WHERE id = ?`, actionID).Scan(&positionID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var orderID int64
	err = tx.QueryRowContext(ctx,
		`SELECT order_id FROM order_positions WHERE id = ? FOR UPDATE`, positionID).Scan(&orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_position_actions WHERE id = ?`, actionID); err != nil {
		return fmt.Errorf("%s: ошибка удаления записи id=%d: %w", op, actionID, err)
	}

	// удаление может вернуть заказ из done
	if err := s.recomputeOrderStatusTx(ctx, tx, orderID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}
	return nil
}

// GetPositionActions - записи позиции, новые сверху.
func (s *Storage) GetPositionActions(ctx context.Context, positionID int64) ([]storage.Action, error) {
	const op = "storage.mysql.GetPositionActions"

	rows, err := s.db.QueryContext(ctx,
		selectAction+` WHERE a.order_position_id = ? ORDER BY a.timestamp DESC, a.id DESC`, positionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var actions []storage.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		actions = append(actions, *a)
	}
	return actions, rows.Err()
}

func actionFilterSQL(filter storage.ActionFilter) (string, []any) {
	clause := ""
	var args []any
	if filter.WorkerID != 0 {
		clause += ` AND a.actor_id = ?`
		args = append(args, filter.WorkerID)
	}
	if filter.ActionType != "" {
		clause += ` AND a.action_type = ?`
		args = append(args, filter.ActionType)
	}
	if filter.DateFrom != nil {
		clause += ` AND DATE(a.timestamp) >= ?`
		args = append(args, filter.DateFrom.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		clause += ` AND DATE(a.timestamp) <= ?`
		args = append(args, filter.DateTo.Format("2006-01-02"))
	}
	return clause, args
}

func (s *Storage) GetActorActions(ctx context.Context, filter storage.ActionFilter) ([]storage.Action, error) {
	const op = "storage.mysql.GetActorActions"

	clause, args := actionFilterSQL(filter)
	rows, err := s.db.QueryContext(ctx,
		selectAction+` WHERE 1=1`+clause+` ORDER BY a.timestamp DESC, a.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var actions []storage.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		actions = append(actions, *a)
	}
	return actions, rows.Err()
}

// GetActionHistory - экран истории с заказом и артикулом, максимум 500 строк.
func (s *Storage) GetActionHistory(ctx context.Context, filter storage.ActionFilter) ([]storage.ActionHistoryItem, error) {
	const op = "storage.mysql.GetActionHistory"

	clause, args := actionFilterSQL(filter)
	rows, err := s.db.QueryContext(ctx, `
        SELECT a.id, a.order_position_id, a.action_type, a.quantity, a.cost, a.actor_id,
               CONCAT(u.first_name, ' ', u.last_name), a.timestamp,
               p.order_id, pr.sku
        FROM order_position_actions a
        JOIN users u ON u.id = a.actor_id
        JOIN order_positions p ON p.id = a.order_position_id
        JOIN products pr ON pr.id = p.product_id
        WHERE 1=1`+clause+`
        ORDER BY a.timestamp DESC, a.id DESC
        LIMIT 500`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []storage.ActionHistoryItem
	for rows.Next() {
		var it storage.ActionHistoryItem
		err := rows.Scan(&it.ID, &it.PositionID, &it.Type, &it.Quantity, &it.Cost, &it.ActorID,
			&it.ActorName, &it.Timestamp, &it.OrderID, &it.ProductSKU)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
