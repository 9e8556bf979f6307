package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"produkcja/internal/apperr"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestCreateAction_Success(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	// Строка позиции блокируется до проверки суммы.
	mock.ExpectQuery(`SELECT order_id, quantity FROM order_positions WHERE id = \? FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "quantity"}).AddRow(5, 20))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM order_position_actions`).
		WithArgs(int64(10), production.ActionCutting).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(17))
	mock.ExpectExec(`INSERT INTO order_position_actions`).
		WithArgs(int64(10), production.ActionCutting, 3, 24.3, int64(7)).
		WillReturnResult(sqlmock.NewResult(100, 1))

	// Пересчёт статуса в той же транзакции.
	mock.ExpectQuery(`SELECT status FROM orders WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("in_progress"))
	mock.ExpectQuery(`SELECT p.id, p.quantity, a.action_type, a.quantity`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "action_type", "quantity"}).
			AddRow(10, 20, "cutting", 20))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT a.id, a.order_position_id`).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_position_id", "action_type", "quantity", "cost", "actor_id", "name", "timestamp"}).
			AddRow(100, 10, "cutting", 3, 24.3, 7, "Anna Nowak", time.Now()))

	action, err := s.CreateAction(context.Background(), storage.CreateAction{
		PositionID: 10,
		Type:       production.ActionCutting,
		Quantity:   3,
		Cost:       24.3,
		ActorID:    7,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(100), action.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAction_ExceedsRequired(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT order_id, quantity FROM order_positions WHERE id = \? FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "quantity"}).AddRow(5, 20))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM order_position_actions`).
		WithArgs(int64(10), production.ActionCutting).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(17))
	mock.ExpectRollback()

	// 17 + 5 > 20: вставки нет, в ошибке остаток 3.
	_, err := s.CreateAction(context.Background(), storage.CreateAction{
		PositionID: 10,
		Type:       production.ActionCutting,
		Quantity:   5,
		Cost:       40.5,
		ActorID:    7,
	})

	var capErr *apperr.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 3, capErr.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAction_PositionNotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT order_id, quantity FROM order_positions WHERE id = \? FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "quantity"}))
	mock.ExpectRollback()

	_, err := s.CreateAction(context.Background(), storage.CreateAction{
		PositionID: 404,
		Type:       production.ActionCutting,
		Quantity:   1,
	})

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateActionQuantity_ExcludesOwnRowFromSum(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT order_position_id, action_type FROM order_position_actions WHERE id = \?`).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"order_position_id", "action_type"}).AddRow(10, "cutting"))
	mock.ExpectQuery(`SELECT order_id, quantity FROM order_positions WHERE id = \? FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "quantity"}).AddRow(5, 20))
	// Сумма считается без правимой записи: 12 + 8 <= 20 проходит,
	// хотя вместе со старым количеством записи лимит был бы превышен.
	mock.ExpectQuery(`AND id <> \?`).
		WithArgs(int64(10), "cutting", int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(12))
	mock.ExpectExec(`UPDATE order_position_actions SET quantity = \?, cost = \? WHERE id = \?`).
		WithArgs(8, 64.8, int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT status FROM orders WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("in_progress"))
	mock.ExpectQuery(`SELECT p.id, p.quantity, a.action_type, a.quantity`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "action_type", "quantity"}).
			AddRow(10, 20, "cutting", 20))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT a.id, a.order_position_id`).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_position_id", "action_type", "quantity", "cost", "actor_id", "name", "timestamp"}).
			AddRow(100, 10, "cutting", 8, 64.8, 7, "Anna Nowak", time.Now()))

	action, err := s.UpdateActionQuantity(context.Background(), 100, 8, 64.8)

	require.NoError(t, err)
	assert.Equal(t, 8, action.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAction_RecomputesStatus(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT order_position_id FROM order_position_actions WHERE id = \?`).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"order_position_id"}).AddRow(10))
	mock.ExpectQuery(`SELECT order_id FROM order_positions WHERE id = \? FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(5))
	mock.ExpectExec(`DELETE FROM order_position_actions WHERE id = \?`).
		WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// После удаления заказ возвращается из done в in_progress.
	mock.ExpectQuery(`SELECT status FROM orders WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("done"))
	mock.ExpectQuery(`SELECT p.id, p.quantity, a.action_type, a.quantity`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "action_type", "quantity"}).
			AddRow(10, 20, "cutting", 17))
	mock.ExpectExec(`UPDATE orders SET status = \? WHERE id = \?`).
		WithArgs(production.StatusInProgress, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.DeleteAction(context.Background(), 100)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
