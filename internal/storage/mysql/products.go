package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"produkcja/internal/apperr"
	"produkcja/internal/storage"
)

const selectProduct = `SELECT id, sku, fabric, pattern, shape, width, height, diameter, edge_type FROM products`

func scanProduct(row interface{ Scan(...any) error }) (*storage.Product, error) {
	var p storage.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Fabric, &p.Pattern, &p.Shape, &p.Width, &p.Height, &p.Diameter, &p.EdgeType)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetProducts(ctx context.Context, filter storage.ProductFilter) ([]*storage.Product, error) {
	const op = "storage.mysql.GetProducts"

	query := selectProduct + ` WHERE 1=1`
	var args []any

	if filter.Fabric != "" {
		query += ` AND fabric = ?`
		args = append(args, filter.Fabric)
	}
	if filter.Pattern != "" {
		query += ` AND pattern = ?`
		args = append(args, filter.Pattern)
	}
	if filter.Shape != "" {
		query += ` AND shape = ?`
		args = append(args, filter.Shape)
	}
	if filter.Search != "" {
		query += ` AND (sku LIKE ? OR fabric LIKE ? OR pattern LIKE ?)`
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	query += ` ORDER BY sku`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения товаров: %w", op, err)
	}
	defer rows.Close()

	var products []*storage.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Storage) GetProduct(ctx context.Context, id int64) (*storage.Product, error) {
	const op = "storage.mysql.GetProduct"

	p, err := scanProduct(s.db.QueryRowContext(ctx, selectProduct+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Storage) GetProductBySKU(ctx context.Context, sku string) (*storage.Product, error) {
	const op = "storage.mysql.GetProductBySKU"

	p, err := scanProduct(s.db.QueryRowContext(ctx, selectProduct+` WHERE sku = ?`, sku))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Storage) distinctColumn(ctx context.Context, column string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT %s FROM products WHERE %s <> '' ORDER BY %s`, column, column, column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *Storage) GetFabrics(ctx context.Context) ([]string, error) {
	const op = "storage.mysql.GetFabrics"
	values, err := s.distinctColumn(ctx, "fabric")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return values, nil
}

func (s *Storage) GetPatterns(ctx context.Context) ([]string, error) {
	const op = "storage.mysql.GetPatterns"
	values, err := s.distinctColumn(ctx, "pattern")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return values, nil
}

func (s *Storage) SaveProduct(ctx context.Context, req storage.SaveProduct) (*storage.Product, error) {
	const op = "storage.mysql.SaveProduct"

	var exists int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE sku = ?`, req.SKU).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists > 0 {
		return nil, apperr.Validation("product with this SKU already exists")
	}

	res, err := s.db.ExecContext(ctx, `
        INSERT INTO products (sku, fabric, pattern, shape, width, height, diameter, edge_type)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.SKU, req.Fabric, req.Pattern, req.Shape, req.Width, req.Height, req.Diameter, req.EdgeType)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка вставки товара sku=%s: %w", op, req.SKU, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetProduct(ctx, id)
}

func (s *Storage) UpdateProduct(ctx context.Context, id int64, req storage.SaveProduct) (*storage.Product, error) {
	const op = "storage.mysql.UpdateProduct"

	if req.SKU != "" {
		var taken int64
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM products WHERE sku = ? AND id <> ?`, req.SKU, id).Scan(&taken); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if taken > 0 {
			return nil, apperr.Validation("product with this SKU already exists")
		}
	}

	res, err := s.db.ExecContext(ctx, `
        UPDATE products
        SET sku = ?, fabric = ?, pattern = ?, shape = ?, width = ?, height = ?, diameter = ?, edge_type = ?
        WHERE id = ?`,
		req.SKU, req.Fabric, req.Pattern, req.Shape, req.Width, req.Height, req.Diameter, req.EdgeType, id)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления товара id=%d: %w", op, id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		// строка могла совпасть полностью, проверяем существование отдельно
		if _, err := s.GetProduct(ctx, id); err != nil {
			return nil, err
		}
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct отклоняет удаление товара, на который ссылаются позиции заказов.
func (s *Storage) DeleteProduct(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteProduct"

	var refs int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_positions WHERE product_id = ?`, id).Scan(&refs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if refs > 0 {
		return apperr.Validation("cannot delete product - it is used in %d order position(s)", refs)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}
