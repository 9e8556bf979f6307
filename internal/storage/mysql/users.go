package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"produkcja/internal/apperr"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

func scanUser(row interface{ Scan(...any) error }) (*storage.User, error) {
	var (
		u       storage.User
		allowed []byte
	)
	if err := row.Scan(&u.ID, &u.Code, &u.FirstName, &u.LastName, &u.Role, &allowed); err != nil {
		return nil, err
	}

	// allowed_action_types хранится JSON-массивом строк
	var types []string
	if len(allowed) > 0 {
		if err := json.Unmarshal(allowed, &types); err != nil {
			return nil, fmt.Errorf("decode allowed_action_types: %w", err)
		}
	}
	for _, t := range types {
		at, err := production.ParseActionType(t)
		if err != nil {
			continue
		}
		u.AllowedActionTypes = append(u.AllowedActionTypes, at)
	}

	return &u, nil
}

const selectUser = `SELECT id, code, first_name, last_name, role, allowed_action_types FROM users`

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*storage.User, error) {
	const op = "storage.mysql.GetUserByID"

	u, err := scanUser(s.db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByCode - вход по коду. Коды нормализуются к нижнему регистру
// и при сохранении, и при поиске.
func (s *Storage) GetUserByCode(ctx context.Context, code string) (*storage.User, error) {
	const op = "storage.mysql.GetUserByCode"

	u, err := scanUser(s.db.QueryRowContext(ctx, selectUser+` WHERE code = ?`, strings.ToLower(code)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *Storage) listUsers(ctx context.Context, query string, args ...any) ([]*storage.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*storage.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Storage) GetAllUsers(ctx context.Context) ([]*storage.User, error) {
	const op = "storage.mysql.GetAllUsers"

	users, err := s.listUsers(ctx, selectUser+` ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *Storage) GetAllWorkers(ctx context.Context) ([]*storage.User, error) {
	const op = "storage.mysql.GetAllWorkers"

	users, err := s.listUsers(ctx, selectUser+` WHERE role = ? ORDER BY last_name, first_name`, storage.RoleWorker)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *Storage) SaveWorker(ctx context.Context, req storage.CreateWorker) (*storage.User, error) {
	const op = "storage.mysql.SaveWorker"

	code := strings.ToLower(req.Code)

	var exists int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE code = ?`, code).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists > 0 {
		return nil, apperr.Validation("kod użytkownika już istnieje")
	}

	allowed, err := json.Marshal(req.AllowedActionTypes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, `
        INSERT INTO users (code, first_name, last_name, role, allowed_action_types)
        VALUES (?, ?, ?, ?, ?)`,
		code, req.FirstName, req.LastName, storage.RoleWorker, allowed)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка вставки работника: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetUserByID(ctx, id)
}

func (s *Storage) UpdateWorker(ctx context.Context, workerID int64, req storage.UpdateWorker) (*storage.User, error) {
	const op = "storage.mysql.UpdateWorker"

	worker, err := s.GetUserByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if worker.Role != storage.RoleWorker {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}

	if req.Code != nil {
		code := strings.ToLower(*req.Code)
		var taken int64
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE code = ? AND id <> ?`, code, workerID).Scan(&taken)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if taken > 0 {
			return nil, apperr.Validation("kod użytkownika już istnieje")
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET code = ? WHERE id = ?`, code, workerID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if req.FirstName != nil {
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET first_name = ? WHERE id = ?`, *req.FirstName, workerID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if req.LastName != nil {
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET last_name = ? WHERE id = ?`, *req.LastName, workerID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if req.AllowedActionTypes != nil {
		allowed, err := json.Marshal(*req.AllowedActionTypes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET allowed_action_types = ? WHERE id = ?`, allowed, workerID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s.GetUserByID(ctx, workerID)
}

// DeleteWorker отклоняет удаление, если за работником числятся записи журнала.
func (s *Storage) DeleteWorker(ctx context.Context, workerID int64) error {
	const op = "storage.mysql.DeleteWorker"

	var actions int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_position_actions WHERE actor_id = ?`, workerID).Scan(&actions)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if actions > 0 {
		return apperr.Validation("nie można usunąć pracownika z istniejącymi akcjami produkcji")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ? AND role = ?`, workerID, storage.RoleWorker)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления работника id=%d: %w", op, workerID, err)
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
