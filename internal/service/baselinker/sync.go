package baselinker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"produkcja/internal/storage"
)

// API - методы connector.php, нужные синхронизации.
type API interface {
	GetOrders(ctx context.Context, dateFrom int64) ([]APIOrder, error)
	GetOrderExtraFields(ctx context.Context) ([]ExtraField, error)
	GetOrderTransactionData(ctx context.Context, orderID int64) (*time.Time, error)
	GetOrderSources(ctx context.Context) (map[int64]string, error)
}

type SyncStorage interface {
	GetSyncState(ctx context.Context) (*storage.SyncState, error)
	SetShipmentDateFieldID(ctx context.Context, fieldID int64) error
	AdvanceWatermark(ctx context.Context, timestamp int64) error
	UpsertSyncedOrder(ctx context.Context, so storage.SyncedOrder, products map[string]storage.SaveProduct) (bool, int, error)
}

type SyncService struct {
	api     API
	storage SyncStorage
	log     *slog.Logger
}

func NewSyncService(api API, storage SyncStorage, log *slog.Logger) *SyncService {
	return &SyncService{api: api, storage: storage, log: log}
}

// Sync выкачивает новые заказы начиная с курсора и складывает их в базу.
// Курсор двигается только вперёд, журнал действий синхронизация не трогает.
func (s *SyncService) Sync(ctx context.Context) (storage.SyncResult, error) {
	const op = "baselinker.SyncService.Sync"

	var result storage.SyncResult

	if s.api == nil {
		s.log.Warn("токен Baselinker не настроен, синхронизация пропущена")
		return result, nil
	}

	state, err := s.storage.GetSyncState(ctx)
	if err != nil {
		return result, fmt.Errorf("%s: %w", op, err)
	}

	if state.ShipmentDateFieldID == nil {
		if fieldID := s.findShipmentDateFieldID(ctx); fieldID != 0 {
			if err := s.storage.SetShipmentDateFieldID(ctx, fieldID); err != nil {
				return result, fmt.Errorf("%s: %w", op, err)
			}
			s.log.Info("найдено поле даты отгрузки", slog.Int64("field_id", fieldID))
		}
	}

	sources, err := s.api.GetOrderSources(ctx)
	if err != nil {
		s.log.Warn("не удалось получить источники заказов", slog.String("error", err.Error()))
		sources = map[int64]string{}
	}

	orders, err := s.api.GetOrders(ctx, state.LastSyncTimestamp)
	if err != nil {
		return result, fmt.Errorf("%s: %w", op, err)
	}

	maxTimestamp := state.LastSyncTimestamp

	for _, o := range orders {
		if o.DateAdd > maxTimestamp {
			maxTimestamp = o.DateAdd
		}

		created, productsCreated, err := s.storage.UpsertSyncedOrder(ctx, s.buildOrder(ctx, o, sources), s.buildProducts(o))
		if err != nil {
			return result, fmt.Errorf("%s: заказ %d: %w", op, o.OrderID, err)
		}
		if created {
			result.OrdersSynced++
		}
		result.ProductsCreated += productsCreated
	}

	if maxTimestamp > state.LastSyncTimestamp {
		if err := s.storage.AdvanceWatermark(ctx, maxTimestamp); err != nil {
			return result, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.log.Info("синхронизация завершена",
		slog.Int("orders_synced", result.OrdersSynced),
		slog.Int("products_created", result.ProductsCreated),
	)
	return result, nil
}

func (s *SyncService) buildOrder(ctx context.Context, o APIOrder, sources map[int64]string) storage.SyncedOrder {
	so := storage.SyncedOrder{BaselinkerID: o.OrderID}

	source := o.OrderSource
	if name, ok := sources[o.OrderSourceID]; ok {
		source = name
	}
	if source != "" {
		so.Source = &source
	}
	if o.InvoiceFullname != "" {
		fullname := o.InvoiceFullname
		so.Fullname = &fullname
	}
	if o.InvoiceCompany != "" {
		company := o.InvoiceCompany
		so.Company = &company
	}

	shipDate, err := s.api.GetOrderTransactionData(ctx, o.OrderID)
	if err != nil {
		s.log.Warn("не удалось получить дату отгрузки",
			slog.Int64("baselinker_id", o.OrderID),
			slog.String("error", err.Error()),
		)
	} else {
		so.ExpectedShipmentDate = shipDate
	}

	// Одинаковые SKU внутри заказа складываются в одну позицию.
	quantities := map[string]int{}
	var order []string
	for _, p := range o.Products {
		if p.SKU == "" {
			continue
		}
		if _, ok := quantities[p.SKU]; !ok {
			order = append(order, p.SKU)
		}
		quantities[p.SKU] += p.Quantity
	}
	for _, sku := range order {
		so.Positions = append(so.Positions, storage.SyncedPosition{SKU: sku, Quantity: quantities[sku]})
	}

	return so
}

func (s *SyncService) buildProducts(o APIOrder) map[string]storage.SaveProduct {
	products := make(map[string]storage.SaveProduct)
	for _, p := range o.Products {
		if p.SKU == "" {
			continue
		}
		if _, ok := products[p.SKU]; !ok {
			products[p.SKU] = ParseSKU(p.SKU)
		}
	}
	return products
}

// findShipmentDateFieldID ищет среди дополнительных полей заказа поле
// вида *_data_wysylki_od.
func (s *SyncService) findShipmentDateFieldID(ctx context.Context) int64 {
	fields, err := s.api.GetOrderExtraFields(ctx)
	if err != nil {
		s.log.Warn("не удалось получить дополнительные поля заказа", slog.String("error", err.Error()))
		return 0
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f.Name), "data_wysylki") {
			return f.ExtraFieldID
		}
	}
	return 0
}
