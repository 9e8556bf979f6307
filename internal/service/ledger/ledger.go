// Package ledger - журнал производственных действий. Здесь живут проверки
// ввода и прав, снимок стоимости и вызов транзакционной записи; сам инвариант
// "не больше требуемого" атомарно проверяет хранилище под блокировкой позиции.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"produkcja/internal/apperr"
	"produkcja/internal/production"
	"produkcja/internal/storage"
)

type LedgerStorage interface {
	GetPositionWithActions(ctx context.Context, positionID int64) (*storage.PositionWithActions, error)
	GetOrder(ctx context.Context, orderID int64) (*storage.OrderWithPositions, error)
	GetCostConfig(ctx context.Context) (*storage.CostConfigRow, error)
	GetAction(ctx context.Context, actionID int64) (*storage.Action, error)
	CreateAction(ctx context.Context, req storage.CreateAction) (*storage.Action, error)
	UpdateActionQuantity(ctx context.Context, actionID int64, quantity int, cost float64) (*storage.Action, error)
	DeleteAction(ctx context.Context, actionID int64) error
}

type LedgerService struct {
	storage LedgerStorage
	log     *slog.Logger
}

func NewLedgerService(storage LedgerStorage, log *slog.Logger) *LedgerService {
	return &LedgerService{storage: storage, log: log}
}

// RecordAction записывает действие работника против позиции заказа.
// Порядок проверок: ввод, право на этап, статус заказа, затем атомарная
// вставка с проверкой инварианта в хранилище.
func (s *LedgerService) RecordAction(ctx context.Context, positionID int64, actionType production.ActionType, quantity int, actor *storage.User) (*storage.Action, error) {
	const op = "service.ledger.RecordAction"

	if quantity <= 0 {
		return nil, apperr.Validation("ilość musi być większa od 0")
	}
	if !actor.CanPerform(actionType) {
		return nil, apperr.Permission("nie masz uprawnień do akcji '%s'", actionType)
	}

	var (
		position *storage.PositionWithActions
		cfg      *storage.CostConfigRow
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		position, err = s.storage.GetPositionWithActions(gCtx, positionID)
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cfg, err = s.storage.GetCostConfig(gCtx)
		if err != nil {
			return fmt.Errorf("cost config: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order, err := s.storage.GetOrder(ctx, position.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == production.StatusFetched && !actor.IsAdmin() {
		return nil, apperr.Validation("zamówienie nie zostało jeszcze rozpoczęte")
	}

	cost := s.actionCost(position.Product, actionType, quantity, cfg)

	action, err := s.storage.CreateAction(ctx, storage.CreateAction{
		PositionID: positionID,
		Type:       actionType,
		Quantity:   quantity,
		Cost:       cost,
		ActorID:    actor.ID,
	})
	if err != nil {
		return nil, err
	}
	return action, nil
}

// UpdateAction меняет количество записи. Работник правит только свои записи,
// администратор - любые. Стоимость пересчитывается по текущей конфигурации.
func (s *LedgerService) UpdateAction(ctx context.Context, actionID int64, quantity int, actor *storage.User) (*storage.Action, error) {
	const op = "service.ledger.UpdateAction"

	if quantity <= 0 {
		return nil, apperr.Validation("ilość musi być większa od 0")
	}

	action, err := s.storage.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && action.ActorID != actor.ID {
		return nil, apperr.Permission("możesz edytować tylko swoje akcje")
	}

	position, err := s.storage.GetPositionWithActions(ctx, action.PositionID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.storage.GetCostConfig(ctx)
	if err != nil {
		return nil, err
	}

	cost := s.actionCost(position.Product, action.Type, quantity, cfg)

	return s.storage.UpdateActionQuantity(ctx, actionID, quantity, cost)
}

// DeleteAction удаляет запись с тем же правилом авторизации, что и правка.
func (s *LedgerService) DeleteAction(ctx context.Context, actionID int64, actor *storage.User) error {
	const op = "service.ledger.DeleteAction"

	action, err := s.storage.GetAction(ctx, actionID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && action.ActorID != actor.ID {
		return apperr.Permission("możesz usunąć tylko swoje wpisy")
	}

	return s.storage.DeleteAction(ctx, actionID)
}

// actionCost - единственное место, где сервис вызывает формулу стоимости.
// Отсутствующие коэффициенты не ошибка, но оператору об этом пишем.
func (s *LedgerService) actionCost(product storage.Product, actionType production.ActionType, quantity int, cfg *storage.CostConfigRow) float64 {
	p := product.Production()
	if missing := production.MissingFactors(p, cfg.CostConfig); len(missing) > 0 {
		s.log.Warn("отсутствуют коэффициенты стоимости, вклад принят нулевым",
			slog.String("sku", product.SKU),
			slog.Any("missing", missing),
		)
	}
	return production.ActionCost(p, actionType, quantity, cfg.CostConfig)
}
