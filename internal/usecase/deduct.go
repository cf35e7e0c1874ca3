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

const lowStockThreshold = 10

// DeductUsecase implements the deduct side of the reservation core
// (spec.md §4.4.3): stock and reserved both fall, sold rises.
type DeductUsecase struct {
	repo    repository.InventoryRepository
	ledger  repository.ReservationLedgerRepository
	lock    service.LockService
	events  service.EventPublisherService
	log     logger.Logger
	errBldr *utils.ErrorBuilder
	lockTTL time.Duration
}

func NewDeductUsecase(
	repo repository.InventoryRepository,
	ledger repository.ReservationLedgerRepository,
	lock service.LockService,
	events service.EventPublisherService,
	log logger.Logger,
) *DeductUsecase {
	return &DeductUsecase{
		repo:    repo,
		ledger:  ledger,
		lock:    lock,
		events:  events,
		log:     log,
		errBldr: utils.NewErrorBuilder("DeductUsecase"),
		lockTTL: valueobject.DefaultLockTTLMillis * time.Millisecond,
	}
}

// Deduct commits qty units of sku as sold for orderId. Both stock >= qty
// and reserved >= qty must hold at commit.
func (u *DeductUsecase) Deduct(ctx context.Context, orderID, sku string, qty int) error {
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

	applied, err := u.repo.Deduct(ctx, sku, qty)
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
		Type:        valueobject.StockTypeDeducted.String(),
		Quantity:    qty,
		OrderID:     orderID,
		OccurredAt:  time.Now(),
		ReferenceID: refPtr(uuid.New().String()),
	}); err != nil {
		u.log.Error("failed to record stock transaction", "sku", sku, "error", err)
	}

	available := item.Available()

	if err := u.events.PublishDeducted(ctx, service.DeductedEvent{
		OrderID:        orderID,
		SKU:            sku,
		Quantity:       qty,
		RemainingStock: item.Stock,
		ReservedStock:  item.Reserved,
		TotalSold:      item.Sold,
		AvailableStock: available,
		Timestamp:      time.Now(),
	}); err != nil {
		u.log.Error("failed to publish inventory.deducted", "orderId", orderID, "sku", sku, "error", err)
	}

	switch {
	case available == 0:
		if err := u.events.PublishOutOfStock(ctx, service.OutOfStockEvent{
			SKU:       sku,
			Reserved:  item.Reserved,
			TotalSold: item.Sold,
			Timestamp: time.Now(),
		}); err != nil {
			u.log.Error("failed to publish inventory.out_of_stock", "sku", sku, "error", err)
		}
	case available >= 1 && available <= lowStockThreshold:
		if err := u.events.PublishLowStock(ctx, service.LowStockEvent{
			SKU:            sku,
			Stock:          item.Stock,
			Reserved:       item.Reserved,
			AvailableStock: available,
			Threshold:      lowStockThreshold,
			Timestamp:      time.Now(),
		}); err != nil {
			u.log.Error("failed to publish inventory.low_stock", "sku", sku, "error", err)
		}
	}

	return nil
}

// DeductWithRetry re-invokes Deduct up to N times with exponential backoff,
// for callers requiring higher assurance (e.g. delivery confirmation).
func (u *DeductUsecase) DeductWithRetry(ctx context.Context, orderID, sku string, qty int, opts ...RetryOption) error {
	return Retry(ctx, func(ctx context.Context) error {
		return u.Deduct(ctx, orderID, sku, qty)
	}, opts...)
}

// DeductBatch is best-effort, like ReleaseBatch. On partial failure it
// publishes inventory.partial_deduction reconciling what did and did not
// commit.
func (u *DeductUsecase) DeductBatch(ctx context.Context, orderID string, items []service.OrderItem) BatchOutcome {
	outcome := BatchOutcome{}
	for _, it := range items {
		if err := u.Deduct(ctx, orderID, it.SKU, it.Quantity); err != nil {
			u.log.Warn("deduct failed in batch", "orderId", orderID, "sku", it.SKU, "error", err)
			outcome.Failed = append(outcome.Failed, it.SKU)
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, it.SKU)
	}

	if len(outcome.Failed) > 0 {
		if err := u.events.PublishPartialDeduction(ctx, service.PartialDeductionEvent{
			OrderID:       orderID,
			DeductedItems: outcome.Succeeded,
			FailedItems:   outcome.Failed,
			Timestamp:     time.Now(),
		}); err != nil {
			u.log.Error("failed to publish inventory.partial_deduction", "orderId", orderID, "error", err)
		}
	}

	return outcome
}

// DeductBatchFromLedger mirrors ReleaseBatchFromLedger for delivered
// orders whose event omitted line items.
func (u *DeductUsecase) DeductBatchFromLedger(ctx context.Context, orderID string) (BatchOutcome, error) {
	entries, err := u.ledger.FindByOrderID(ctx, orderID)
	if err != nil {
		return BatchOutcome{}, u.errBldr.Err(err)
	}
	items := make([]service.OrderItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, service.OrderItem{SKU: e.SKU, Quantity: e.Quantity})
	}
	return u.DeductBatch(ctx, orderID, items), nil
}
