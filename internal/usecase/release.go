package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
	"github.com/ecomsys/inventory-service/internal/domain/repository"
	"github.com/ecomsys/inventory-service/internal/domain/service"
	"github.com/ecomsys/inventory-service/internal/domain/valueobject"
	"github.com/ecomsys/inventory-service/pkg/logger"
	"github.com/ecomsys/inventory-service/pkg/utils"
)

// ReleaseUsecase implements the release side of the reservation core
// (spec.md §4.4.2).
type ReleaseUsecase struct {
	repo    repository.InventoryRepository
	ledger  repository.ReservationLedgerRepository
	lock    service.LockService
	events  service.EventPublisherService
	log     logger.Logger
	errBldr *utils.ErrorBuilder
	lockTTL time.Duration
}

func NewReleaseUsecase(
	repo repository.InventoryRepository,
	ledger repository.ReservationLedgerRepository,
	lock service.LockService,
	events service.EventPublisherService,
	log logger.Logger,
) *ReleaseUsecase {
	return &ReleaseUsecase{
		repo:    repo,
		ledger:  ledger,
		lock:    lock,
		events:  events,
		log:     log,
		errBldr: utils.NewErrorBuilder("ReleaseUsecase"),
		lockTTL: valueobject.DefaultLockTTLMillis * time.Millisecond,
	}
}

// Release relinquishes qty reserved units of sku for orderId. A release
// that would drive reserved below zero fails with ErrInsufficientReserved
// and emits no event.
func (u *ReleaseUsecase) Release(ctx context.Context, orderID, sku string, qty int, reason string) error {
	if orderID == "" || sku == "" || qty <= 0 {
		return u.errBldr.Err(entity.ErrValidation)
	}

	key := valueobject.LockKeyForSKU(sku)
	token, err := u.lock.Acquire(ctx, key, u.lockTTL)
	if err != nil {
		return u.errBldr.Err(entity.ErrLockBusy)
	}
	defer func() {
		if relErr := u.lock.Release(context.WithoutCancel(ctx), key, token); relErr != nil {
			u.log.Warn("failed to release lock", "sku", sku, "error", relErr)
		}
	}()

	applied, err := u.repo.Release(ctx, sku, qty)
	if err != nil {
		return u.errBldr.Err(err)
	}
	if !applied {
		return u.errBldr.Err(entity.ErrInsufficientReserved)
	}

	item, err := u.repo.FindBySKU(ctx, sku)
	if err != nil {
		return u.errBldr.Err(err)
	}

	if err := u.ledger.Consume(ctx, orderID, sku); err != nil {
		u.log.Error("failed to consume reservation ledger entry", "orderId", orderID, "sku", sku, "error", err)
	}

	if err := u.repo.RecordTransaction(ctx, &entity.StockTransaction{
		SKU:         sku,
		Type:        valueobject.StockTypeReleased.String(),
		Quantity:    qty,
		OrderID:     orderID,
		OccurredAt:  time.Now(),
		ReferenceID: refPtr(uuid.New().String()),
	}); err != nil {
		u.log.Error("failed to record stock transaction", "sku", sku, "error", err)
	}

	if err := u.events.PublishReleased(ctx, service.ReleasedEvent{
		OrderID:        orderID,
		SKU:            sku,
		Quantity:       qty,
		ReservedStock:  item.Reserved,
		AvailableStock: item.Available(),
		Reason:         reason,
		Timestamp:      time.Now(),
	}); err != nil {
		u.log.Error("failed to publish inventory.released", "orderId", orderID, "sku", sku, "error", err)
	}

	return nil
}

// ReleaseBatch is best-effort: a failure on one item does not halt the
// rest. It returns the set of SKUs that failed to release.
func (u *ReleaseUsecase) ReleaseBatch(ctx context.Context, orderID string, items []service.OrderItem, reason string) BatchOutcome {
	outcome := BatchOutcome{}
	for _, it := range items {
		if err := u.Release(ctx, orderID, it.SKU, it.Quantity, reason); err != nil {
			u.log.Warn("release failed in batch", "orderId", orderID, "sku", it.SKU, "error", err)
			outcome.Failed = append(outcome.Failed, it.SKU)
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, it.SKU)
	}
	return outcome
}

// ReleaseBatchFromLedger releases every item recorded in the reservation
// ledger for orderId, for order events (e.g. order.cancelled) that arrive
// without an items list (spec.md §9, option (b)).
func (u *ReleaseUsecase) ReleaseBatchFromLedger(ctx context.Context, orderID, reason string) (BatchOutcome, error) {
	entries, err := u.ledger.FindByOrderID(ctx, orderID)
	if err != nil {
		return BatchOutcome{}, u.errBldr.Err(err)
	}
	items := make([]service.OrderItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, service.OrderItem{SKU: e.SKU, Quantity: e.Quantity})
	}
	return u.ReleaseBatch(ctx, orderID, items, reason), nil
}
