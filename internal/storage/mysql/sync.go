package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"produkcja/internal/production"
	"produkcja/internal/storage"
)

// GetSyncState возвращает курсор синхронизации, создавая его при первом
// запуске с меткой "вчера", чтобы не выкачивать всю историю заказов.
func (s *Storage) GetSyncState(ctx context.Context) (*storage.SyncState, error) {
	const op = "storage.mysql.GetSyncState"

	var state storage.SyncState
	err := s.db.QueryRowContext(ctx,
		`SELECT last_sync_timestamp, shipment_date_field_id, updated_at FROM sync_state LIMIT 1`).
		Scan(&state.LastSyncTimestamp, &state.ShipmentDateFieldID, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		initial := time.Now().AddDate(0, 0, -1).Unix()
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO sync_state (last_sync_timestamp, updated_at) VALUES (?, NOW())`, initial); err != nil {
			return nil, fmt.Errorf("%s: init: %w", op, err)
		}
		return &storage.SyncState{LastSyncTimestamp: initial}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &state, nil
}

func (s *Storage) SetShipmentDateFieldID(ctx context.Context, fieldID int64) error {
	const op = "storage.mysql.SetShipmentDateFieldID"

	if _, err := s.db.ExecContext(ctx,
		`UPDATE sync_state SET shipment_date_field_id = ?, updated_at = NOW()`, fieldID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AdvanceWatermark двигает курсор только вперёд.
func (s *Storage) AdvanceWatermark(ctx context.Context, timestamp int64) error {
	const op = "storage.mysql.AdvanceWatermark"

	if _, err := s.db.ExecContext(ctx,
		`UPDATE sync_state SET last_sync_timestamp = ?, updated_at = NOW() WHERE last_sync_timestamp < ?`,
		timestamp, timestamp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpsertSyncedOrder применяет один заказ из внешнего API: заказ по
// baselinker_id, товары по sku, позиции по (order, product). Всё в одной
// транзакции. Журнал записей здесь не трогается никогда.
func (s *Storage) UpsertSyncedOrder(ctx context.Context, so storage.SyncedOrder, products map[string]storage.SaveProduct) (orderCreated bool, productsCreated int, err error) {
	const op = "storage.mysql.UpsertSyncedOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var orderID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE baselinker_id = ?`, so.BaselinkerID).Scan(&orderID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `
            INSERT INTO orders (baselinker_id, source, expected_shipment_date, fullname, company, status)
            VALUES (?, ?, ?, ?, ?, ?)`,
			so.BaselinkerID, so.Source, so.ExpectedShipmentDate, so.Fullname, so.Company, production.StatusFetched)
		if err != nil {
			return false, 0, fmt.Errorf("%s: ошибка вставки заказа baselinker_id=%d: %w", op, so.BaselinkerID, err)
		}
		orderID, err = res.LastInsertId()
		if err != nil {
			return false, 0, fmt.Errorf("%s: %w", op, err)
		}
		orderCreated = true
	case err != nil:
		return false, 0, fmt.Errorf("%s: %w", op, err)
	default:
		_, err = tx.ExecContext(ctx, `
            UPDATE orders SET source = ?, expected_shipment_date = ?, fullname = ?, company = ?
            WHERE id = ?`,
			so.Source, so.ExpectedShipmentDate, so.Fullname, so.Company, orderID)
		if err != nil {
			return false, 0, fmt.Errorf("%s: ошибка обновления заказа id=%d: %w", op, orderID, err)
		}
	}

	for _, pos := range so.Positions {
		parsed, ok := products[pos.SKU]
		if !ok {
			continue
		}

		var productID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE sku = ?`, pos.SKU).Scan(&productID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx, `
                INSERT INTO products (sku, fabric, pattern, shape, width, height, diameter, edge_type)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				parsed.SKU, parsed.Fabric, parsed.Pattern, parsed.Shape,
				parsed.Width, parsed.Height, parsed.Diameter, parsed.EdgeType)
			if err != nil {
				return false, 0, fmt.Errorf("%s: ошибка вставки товара sku=%s: %w", op, pos.SKU, err)
			}
			productID, err = res.LastInsertId()
			if err != nil {
				return false, 0, fmt.Errorf("%s: %w", op, err)
			}
			productsCreated++
		case err != nil:
			return false, 0, fmt.Errorf("%s: %w", op, err)
		default:
			_, err = tx.ExecContext(ctx, `
                UPDATE products SET fabric = ?, pattern = ?, shape = ?, width = ?, height = ?, diameter = ?, edge_type = ?
                WHERE id = ?`,
				parsed.Fabric, parsed.Pattern, parsed.Shape,
				parsed.Width, parsed.Height, parsed.Diameter, parsed.EdgeType, productID)
			if err != nil {
				return false, 0, fmt.Errorf("%s: ошибка обновления товара sku=%s: %w", op, pos.SKU, err)
			}
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO order_positions (order_id, product_id, quantity)
            VALUES (?, ?, ?)
            ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)`,
			orderID, productID, pos.Quantity)
		if err != nil {
			return false, 0, fmt.Errorf("%s: ошибка вставки позиции order_id=%d product_id=%d: %w", op, orderID, productID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}
	return orderCreated, productsCreated, nil
}
