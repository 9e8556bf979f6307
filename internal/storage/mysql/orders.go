package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"produkcja/internal/apperr"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

// querier - общий срез db/tx, чтобы выборки работали и внутри транзакций.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectOrder = `SELECT id, baselinker_id, source, expected_shipment_date, fullname, company, status FROM orders`

func scanOrder(row interface{ Scan(...any) error }) (*storage.Order, error) {
	var o storage.Order
	err := row.Scan(&o.ID, &o.BaselinkerID, &o.Source, &o.ExpectedShipmentDate, &o.Fullname, &o.Company, &o.Status)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Storage) GetOrders(ctx context.Context, filter storage.OrderFilter) ([]*storage.OrderWithPositions, error) {
	const op = "storage.mysql.GetOrders"

	query := selectOrder + ` WHERE 1=1`
	var args []any

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		query += ` AND expected_shipment_date >= ?`
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != nil {
		query += ` AND expected_shipment_date <= ?`
		args = append(args, filter.DateTo)
	}
	if filter.Search != "" {
		query += ` AND (fullname LIKE ? OR company LIKE ?)`
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}

	// заказы с ближайшей отгрузкой первыми
	query += ` ORDER BY COALESCE(expected_shipment_date, '9999-12-31') ASC, id DESC`

	return s.queryOrdersWithPositions(ctx, op, query, args...)
}

// GetOrdersForWorker - экран работника: все заказы в работе плюс готовые
// с датой отгрузки за последнюю неделю.
func (s *Storage) GetOrdersForWorker(ctx context.Context) ([]*storage.OrderWithPositions, error) {
	const op = "storage.mysql.GetOrdersForWorker"

	weekAgo := time.Now().AddDate(0, 0, -7)
	query := selectOrder + ` WHERE status = ? OR (status = ? AND expected_shipment_date >= ?)
        ORDER BY COALESCE(expected_shipment_date, '9999-12-31') ASC, id DESC`

	return s.queryOrdersWithPositions(ctx, op, query,
		production.StatusInProgress, production.StatusDone, weekAgo)
}

func (s *Storage) queryOrdersWithPositions(ctx context.Context, op, query string, args ...any) ([]*storage.OrderWithPositions, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения заказов: %w", op, err)
	}
	defer rows.Close()

	var orders []*storage.OrderWithPositions
	var ids []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		orders = append(orders, &storage.OrderWithPositions{Order: *o})
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	byOrder, err := s.loadPositions(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, o := range orders {
		o.Positions = byOrder[o.ID]
		o.PositionCount = len(o.Positions)
	}
	return orders, nil
}

// loadPositions собирает позиции с товарами и записями журнала для набора заказов.
func (s *Storage) loadPositions(ctx context.Context, q querier, orderIDs []int64) (map[int64][]storage.PositionWithActions, error) {
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, `
        SELECT p.id, p.order_id, p.product_id, p.quantity,
               pr.id, pr.sku, pr.fabric, pr.pattern, pr.shape, pr.width, pr.height, pr.diameter, pr.edge_type
        FROM order_positions p
        JOIN products pr ON pr.id = p.product_id
        WHERE p.order_id IN (`+placeholders(len(orderIDs))+`)
        ORDER BY p.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[int64][]storage.PositionWithActions)
	byPosition := make(map[int64]*storage.PositionWithActions)
	var positionIDs []int64
	var keys []struct {
		orderID int64
		idx     int
	}
	for rows.Next() {
		var pos storage.PositionWithActions
		var pr storage.Product
		err := rows.Scan(&pos.ID, &pos.OrderID, &pos.ProductID, &pos.Quantity,
			&pr.ID, &pr.SKU, &pr.Fabric, &pr.Pattern, &pr.Shape, &pr.Width, &pr.Height, &pr.Diameter, &pr.EdgeType)
		if err != nil {
			return nil, fmt.Errorf("positions scan: %w", err)
		}
		pos.Product = pr
		byOrder[pos.OrderID] = append(byOrder[pos.OrderID], pos)
		keys = append(keys, struct {
			orderID int64
			idx     int
		}{pos.OrderID, len(byOrder[pos.OrderID]) - 1})
		positionIDs = append(positionIDs, pos.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, k := range keys {
		p := &byOrder[k.orderID][k.idx]
		byPosition[p.ID] = p
	}

	if len(positionIDs) > 0 {
		actions, err := s.loadActions(ctx, q, positionIDs)
		if err != nil {
			return nil, err
		}
		for pid, acts := range actions {
			if p, ok := byPosition[pid]; ok {
				p.Actions = acts
			}
		}
	}

	// суммы по этапам считаем одним способом во всём приложении
	for _, positions := range byOrder {
		for i := range positions {
			positions[i].ActionTotals = production.ActionTotals(actionEntries(positions[i].Actions))
		}
	}

	return byOrder, nil
}

func (s *Storage) loadActions(ctx context.Context, q querier, positionIDs []int64) (map[int64][]storage.Action, error) {
	args := make([]any, len(positionIDs))
	for i, id := range positionIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, `
        SELECT a.id, a.order_position_id, a.action_type, a.quantity, a.cost, a.actor_id,
               CONCAT(u.first_name, ' ', u.last_name), a.timestamp
        FROM order_position_actions a
        JOIN users u ON u.id = a.actor_id
        WHERE a.order_position_id IN (`+placeholders(len(positionIDs))+`)
        ORDER BY a.timestamp, a.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("actions: %w", err)
	}
	defer rows.Close()

	byPosition := make(map[int64][]storage.Action)
	for rows.Next() {
		var a storage.Action
		err := rows.Scan(&a.ID, &a.PositionID, &a.Type, &a.Quantity, &a.Cost, &a.ActorID, &a.ActorName, &a.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("actions scan: %w", err)
		}
		byPosition[a.PositionID] = append(byPosition[a.PositionID], a)
	}
	return byPosition, rows.Err()
}

func actionEntries(actions []storage.Action) []production.ActionEntry {
	entries := make([]production.ActionEntry, 0, len(actions))
	for _, a := range actions {
		entries = append(entries, production.ActionEntry{Type: a.Type, Quantity: a.Quantity})
	}
	return entries
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*storage.OrderWithPositions, error) {
	const op = "storage.mysql.GetOrder"

	o, err := scanOrder(s.db.QueryRowContext(ctx, selectOrder+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byOrder, err := s.loadPositions(ctx, s.db, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage.OrderWithPositions{
		Order:         *o,
		Positions:     byOrder[id],
		PositionCount: len(byOrder[id]),
	}, nil
}

func (s *Storage) SaveOrder(ctx context.Context, req storage.SaveOrder) (int64, error) {
	const op = "storage.mysql.SaveOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO orders (expected_shipment_date, fullname, company, status)
        VALUES (?, ?, ?, ?)`,
		req.ExpectedShipmentDate, req.Fullname, req.Company, production.StatusFetched)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка вставки заказа: %w", op, err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, pos := range req.Positions {
		var exists int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE id = ?`, pos.ProductID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if exists == 0 {
			return 0, apperr.Validation("product %d not found", pos.ProductID)
		}
		if pos.Quantity <= 0 {
			return 0, apperr.Validation("position quantity must be positive")
		}
		_, err := tx.ExecContext(ctx, `
            INSERT INTO order_positions (order_id, product_id, quantity) VALUES (?, ?, ?)`,
			orderID, pos.ProductID, pos.Quantity)
		if err != nil {
			return 0, fmt.Errorf("%s: ошибка вставки позиции product_id=%d: %w", op, pos.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}
	return orderID, nil
}

func (s *Storage) UpdateOrder(ctx context.Context, id int64, req storage.UpdateOrder) error {
	const op = "storage.mysql.UpdateOrder"

	if _, err := s.GetOrder(ctx, id); err != nil {
		return err
	}

	if req.ExpectedShipmentDate != nil {
		if _, err := s.db.ExecContext(ctx, `UPDATE orders SET expected_shipment_date = ? WHERE id = ?`, req.ExpectedShipmentDate, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if req.Fullname != nil {
		if _, err := s.db.ExecContext(ctx, `UPDATE orders SET fullname = ? WHERE id = ?`, *req.Fullname, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if req.Company != nil {
		if _, err := s.db.ExecContext(ctx, `UPDATE orders SET company = ? WHERE id = ?`, *req.Company, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (s *Storage) UpdateOrderStatus(ctx context.Context, id int64, status production.OrderStatus) error {
	const op = "storage.mysql.UpdateOrderStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления статуса заказа id=%d: %w", op, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		if _, err := s.GetOrder(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) BulkUpdateOrderStatus(ctx context.Context, ids []int64, status production.OrderStatus) (int, error) {
	const op = "storage.mysql.BulkUpdateOrderStatus"

	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, status)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id IN (`+placeholders(len(ids))+`) AND status <> ?`,
		append(args, status)...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

func (s *Storage) UpdateShipmentDate(ctx context.Context, id int64, date *time.Time) error {
	const op = "storage.mysql.UpdateShipmentDate"

	if _, err := s.GetOrder(ctx, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE orders SET expected_shipment_date = ? WHERE id = ?`, date, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) DeleteOrder(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	// журнал и позиции удаляются вместе с заказом
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM order_position_actions
        WHERE order_position_id IN (SELECT id FROM order_positions WHERE order_id = ?)`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_positions WHERE order_id = ?`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления заказа id=%d: %w", op, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}
	return nil
}

func (s *Storage) SavePosition(ctx context.Context, orderID int64, req storage.SavePosition) (*storage.PositionWithActions, error) {
	const op = "storage.mysql.SavePosition"

	if req.Quantity <= 0 {
		return nil, apperr.Validation("position quantity must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := scanOrder(tx.QueryRowContext(ctx, selectOrder+` WHERE id = ?`, orderID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var productExists int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE id = ?`, req.ProductID).Scan(&productExists); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if productExists == 0 {
		return nil, apperr.Validation("product not found")
	}

	var duplicate int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_positions WHERE order_id = ? AND product_id = ?`,
		orderID, req.ProductID).Scan(&duplicate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if duplicate > 0 {
		return nil, apperr.Validation("position for this product already exists in order")
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO order_positions (order_id, product_id, quantity) VALUES (?, ?, ?)`,
		orderID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка вставки позиции: %w", op, err)
	}
	positionID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// новая незакрытая позиция может вернуть заказ из done
	if err := s.recomputeOrderStatusTx(ctx, tx, orderID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return s.GetPositionWithActions(ctx, positionID)
}

// UpdatePositionQuantity меняет требуемое количество. Старые записи журнала
// не трогаем, даже если новое количество меньше уже записанного: инвариант
// проверяется заново только на будущих записях.
func (s *Storage) UpdatePositionQuantity(ctx context.Context, positionID int64, quantity int) (*storage.PositionWithActions, error) {
	const op = "storage.mysql.UpdatePositionQuantity"

	if quantity <= 0 {
		return nil, apperr.Validation("position quantity must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var orderID int64
	err = tx.QueryRowContext(ctx, `SELECT order_id FROM order_positions WHERE id = ? FOR UPDATE`, positionID).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE order_positions SET quantity = ? WHERE id = ?`, quantity, positionID); err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления позиции id=%d: %w", op, positionID, err)
	}

	if err := s.recomputeOrderStatusTx(ctx, tx, orderID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return s.GetPositionWithActions(ctx, positionID)
}

func (s *Storage) DeletePosition(ctx context.Context, positionID int64) error {
	const op = "storage.mysql.DeletePosition"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var orderID int64
	err = tx.QueryRowContext(ctx, `SELECT order_id FROM order_positions WHERE id = ? FOR UPDATE`, positionID).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_position_actions WHERE order_position_id = ?`, positionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_positions WHERE id = ?`, positionID); err != nil {
		return fmt.Errorf("%s: ошибка удаления позиции id=%d: %w", op, positionID, err)
	}

	if err := s.recomputeOrderStatusTx(ctx, tx, orderID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}
	return nil
}

func (s *Storage) GetPositionsWithActions(ctx context.Context, orderID int64) ([]storage.PositionWithActions, error) {
	const op = "storage.mysql.GetPositionsWithActions"

	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}

	byOrder, err := s.loadPositions(ctx, s.db, []int64{orderID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return byOrder[orderID], nil
}

func (s *Storage) GetPositionWithActions(ctx context.Context, positionID int64) (*storage.PositionWithActions, error) {
	const op = "storage.mysql.GetPositionWithActions"

	var orderID int64
	err := s.db.QueryRowContext(ctx, `SELECT order_id FROM order_positions WHERE id = ?`, positionID).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byOrder, err := s.loadPositions(ctx, s.db, []int64{orderID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range byOrder[orderID] {
		if byOrder[orderID][i].ID == positionID {
			return &byOrder[orderID][i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
}

// recomputeOrderStatusTx перечитывает журнал заказа внутри транзакции и
// выводит новый статус агрегатором. Единственное место, где статус меняется
// автоматически.
func (s *Storage) recomputeOrderStatusTx(ctx context.Context, tx *sql.Tx, orderID int64) error {
	var current production.OrderStatus
	if err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, orderID).Scan(&current); err != nil {
		return fmt.Errorf("order status: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
        SELECT p.id, p.quantity, a.action_type, a.quantity
        FROM order_positions p
        LEFT JOIN order_position_actions a ON a.order_position_id = p.id
        WHERE p.order_id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("order positions: %w", err)
	}
	defer rows.Close()

	states := make(map[int64]*production.PositionState)
	var order []int64
	for rows.Next() {
		var (
			positionID int64
			required   int
			actionType sql.NullString
			quantity   sql.NullInt64
		)
		if err := rows.Scan(&positionID, &required, &actionType, &quantity); err != nil {
			return fmt.Errorf("order positions scan: %w", err)
		}
		state, ok := states[positionID]
		if !ok {
			state = &production.PositionState{Required: required}
			states[positionID] = state
			order = append(order, positionID)
		}
		if actionType.Valid {
			state.Actions = append(state.Actions, production.ActionEntry{
				Type:     production.ActionType(actionType.String),
				Quantity: int(quantity.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	positions := make([]production.PositionState, 0, len(order))
	for _, id := range order {
		positions = append(positions, *states[id])
	}

	derived := production.DeriveOrderStatus(current, positions)
	if derived == current {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, derived, orderID); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
