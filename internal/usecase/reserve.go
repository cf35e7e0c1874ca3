package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
	"github.com/ecomsys/inventory-service/internal/domain/repository"
	"github.com/ecomsys/inventory-service/internal/domain/service"
	"github.com/ecomsys/inventory-service/internal/domain/valueobject"
	"github.com/ecomsys/inventory-service/pkg/logger"
	"github.com/ecomsys/inventory-service/pkg/utils"
)

// BatchOutcome reports the aggregate result of a best-effort batch
// operation (release/deduct): items that committed and items that did not.
type BatchOutcome struct {
	Succeeded []string
	Failed    []string
}

// ReserveUsecase implements the reserve side of the reservation core
// (spec.md §4.4.1): one per-SKU lock, one atomic counter update, one event.
type ReserveUsecase struct {
	repo    repository.InventoryRepository
	ledger  repository.ReservationLedgerRepository
	lock    service.LockService
	events  service.EventPublisherService
	log     logger.Logger
	errBldr *utils.ErrorBuilder
	lockTTL time.Duration
}

func NewReserveUsecase(
	repo repository.InventoryRepository,
	ledger repository.ReservationLedgerRepository,
	lock service.LockService,
	events service.EventPublisherService,
	log logger.Logger,
) *ReserveUsecase {
	return &ReserveUsecase{
		repo:    repo,
		ledger:  ledger,
		lock:    lock,
		events:  events,
		log:     log,
		errBldr: utils.NewErrorBuilder("ReserveUsecase"),
		lockTTL: valueobject.DefaultLockTTLMillis * time.Millisecond,
	}
}

// Reserve claims qty units of sku for orderId. It returns
// entity.ErrLockBusy, entity.ErrInventoryNotFound or entity.ErrInsufficientStock
// on the documented failure modes; no event is emitted on failure.
func (u *ReserveUsecase) Reserve(ctx context.Context, orderID, sku string, qty int) error {
	if orderID == "" || sku == "" || qty <= 0 {
		return u.errBldr.Err(entity.ErrValidation)
	}

	key := valueobject.LockKeyForSKU(sku)
	token, err := u.lock.Acquire(ctx, key, u.lockTTL)
	if err != nil {
		return u.errBldr.Err(fmt.Errorf("%w: %v", entity.ErrLockBusy, err))
	}
	defer func() {
		if relErr := u.lock.Release(context.WithoutCancel(ctx), key, token); relErr != nil {
			u.log.Warn("failed to release lock", "sku", sku, "error", relErr)
		}
	}()

	applied, err := u.repo.Reserve(ctx, sku, qty)
	if err != nil {
		return u.errBldr.Err(err)
	}
	if !applied {
		return u.errBldr.Err(entity.ErrInsufficientStock)
	}

	item, err := u.repo.FindBySKU(ctx, sku)
	if err != nil {
		return u.errBldr.Err(err)
	}

	if err := u.ledger.Record(ctx, &entity.ReservationLedgerEntry{
		OrderID:  orderID,
		SKU:      sku,
		Quantity: qty,
	}); err != nil {
		u.log.Error("failed to record reservation ledger entry", "orderId", orderID, "sku", sku, "error", err)
	}

	if err := u.repo.RecordTransaction(ctx, &entity.StockTransaction{
		SKU:         sku,
		Type:        valueobject.StockTypeReserved.String(),
		Quantity:    qty,
		OrderID:     orderID,
		OccurredAt:  time.Now(),
		ReferenceID: refPtr(uuid.New().String()),
	}); err != nil {
		u.log.Error("failed to record stock transaction", "sku", sku, "error", err)
	}

	if err := u.events.PublishReserved(ctx, service.ReservedEvent{
		OrderID:        orderID,
		SKU:            sku,
		Quantity:       qty,
		ReservedStock:  item.Reserved,
		AvailableStock: item.Available(),
		Timestamp:      time.Now(),
	}); err != nil {
		u.log.Error("failed to publish inventory.reserved", "orderId", orderID, "sku", sku, "error", err)
	}

	return nil
}

// ReserveBatch reserves every item in order, acquiring all per-SKU locks
// up front (per spec.md §4.4.1's preamble). On the first store-level
// failure it compensates by releasing everything already reserved, in
// reverse order, and emits inventory.reservation_rolled_back for each.
func (u *ReserveUsecase) ReserveBatch(ctx context.Context, orderID string, items []service.OrderItem) error {
	if orderID == "" || len(items) == 0 {
		return u.errBldr.Err(entity.ErrValidation)
	}

	tokens := make(map[string]string, len(items))
	keys := make([]string, 0, len(items))
	for _, it := range items {
		key := valueobject.LockKeyForSKU(it.SKU)
		token, err := u.lock.Acquire(ctx, key, u.lockTTL)
		if err != nil {
			for _, k := range keys {
				if relErr := u.lock.Release(context.WithoutCancel(ctx), k, tokens[k]); relErr != nil {
					u.log.Warn("failed to release lock during preamble abort", "key", k, "error", relErr)
				}
			}
			return u.errBldr.Err(fmt.Errorf("%w: sku %s", entity.ErrLockBusy, it.SKU))
		}
		tokens[key] = token
		keys = append(keys, key)
	}
	defer func() {
		for _, k := range keys {
			if relErr := u.lock.Release(context.WithoutCancel(ctx), k, tokens[k]); relErr != nil {
				u.log.Warn("failed to release lock", "key", k, "error", relErr)
			}
		}
	}()

	reserved := make([]service.OrderItem, 0, len(items))
	var failErr error
	for _, it := range items {
		applied, err := u.repo.Reserve(ctx, it.SKU, it.Quantity)
		if err != nil {
			failErr = u.errBldr.Err(err)
			break
		}
		if !applied {
			failErr = u.errBldr.Err(entity.ErrInsufficientStock)
			break
		}

		item, err := u.repo.FindBySKU(ctx, it.SKU)
		if err != nil {
			u.log.Error("failed to re-read item after reserve", "sku", it.SKU, "error", err)
		}

		if err := u.ledger.Record(ctx, &entity.ReservationLedgerEntry{
			OrderID:  orderID,
			SKU:      it.SKU,
			Quantity: it.Quantity,
		}); err != nil {
			u.log.Error("failed to record reservation ledger entry", "orderId", orderID, "sku", it.SKU, "error", err)
		}

		if err := u.repo.RecordTransaction(ctx, &entity.StockTransaction{
			SKU:         it.SKU,
			Type:        valueobject.StockTypeReserved.String(),
			Quantity:    it.Quantity,
			OrderID:     orderID,
			OccurredAt:  time.Now(),
			ReferenceID: refPtr(uuid.New().String()),
		}); err != nil {
			u.log.Error("failed to record stock transaction", "sku", it.SKU, "error", err)
		}

		if item != nil {
			if err := u.events.PublishReserved(ctx, service.ReservedEvent{
				OrderID:        orderID,
				SKU:            it.SKU,
				Quantity:       it.Quantity,
				ReservedStock:  item.Reserved,
				AvailableStock: item.Available(),
				Timestamp:      time.Now(),
			}); err != nil {
				u.log.Error("failed to publish inventory.reserved", "orderId", orderID, "sku", it.SKU, "error", err)
			}
		}

		reserved = append(reserved, it)
	}

	if failErr == nil {
		return nil
	}

	for i := len(reserved) - 1; i >= 0; i-- {
		it := reserved[i]
		if _, err := u.repo.Release(ctx, it.SKU, it.Quantity); err != nil {
			u.log.Error("compensation release failed", "orderId", orderID, "sku", it.SKU, "error", err)
			continue
		}
		if err := u.ledger.Consume(ctx, orderID, it.SKU); err != nil {
			u.log.Error("failed to consume ledger entry during compensation", "orderId", orderID, "sku", it.SKU, "error", err)
		}
		if err := u.repo.RecordTransaction(ctx, &entity.StockTransaction{
			SKU:         it.SKU,
			Type:        valueobject.StockTypeReleased.String(),
			Quantity:    it.Quantity,
			OrderID:     orderID,
			OccurredAt:  time.Now(),
			ReferenceID: refPtr(uuid.New().String()),
		}); err != nil {
			u.log.Error("failed to record stock transaction during compensation", "sku", it.SKU, "error", err)
		}
		if err := u.events.PublishReservationRolledBack(ctx, service.ReservationRolledBackEvent{
			OrderID:   orderID,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			Timestamp: time.Now(),
		}); err != nil {
			u.log.Error("failed to publish inventory.reservation_rolled_back", "orderId", orderID, "sku", it.SKU, "error", err)
		}
	}

	return failErr
}

func refPtr(s string) *string { return &s }
