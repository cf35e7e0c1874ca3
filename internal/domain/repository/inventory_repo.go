package repository

import (
	"context"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
)

// InventoryRepository mediates all persisted state for the reservation core.
// Every mutating method is an atomic conditional update: it applies only if
// the named predicate still holds at write time, and reports whether it did
// by returning applied rather than relying on the caller to re-check under a
// separate read.
type InventoryRepository interface {
	FindBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
	List(ctx context.Context, filter entity.InventoryFilter, offset, limit int) ([]*entity.InventoryItem, int64, error)
	Create(ctx context.Context, item *entity.InventoryItem) error

	// Reserve applies stock.reserved += qty WHERE stock - reserved >= qty.
	// applied=false with a nil error means the predicate failed for
	// insufficient stock; entity.ErrInventoryNotFound means the SKU does
	// not exist at all.
	Reserve(ctx context.Context, sku string, qty int) (applied bool, err error)

	// Release applies reserved -= qty WHERE reserved >= qty.
	Release(ctx context.Context, sku string, qty int) (applied bool, err error)

	// Deduct applies stock -= qty, reserved -= qty, sold += qty
	// WHERE stock >= qty AND reserved >= qty.
	Deduct(ctx context.Context, sku string, qty int) (applied bool, err error)

	// UpdateFields applies a partial update to Stock and/or Location, driven
	// by inbound product.updated events. A Stock mutation is only applied
	// WHERE the new value would not drop below Reserved; a caller that
	// needs unconditional stock correction must first Release to bring
	// Reserved down.
	UpdateFields(ctx context.Context, sku string, newStock *int, newLocation *string) (applied bool, err error)

	RecordTransaction(ctx context.Context, tx *entity.StockTransaction) error
	ListTransactions(ctx context.Context, sku string, offset, limit int) ([]*entity.StockTransaction, int64, error)

	// LowStock returns items whose Available() is at or below threshold.
	LowStock(ctx context.Context, threshold, offset, limit int) ([]*entity.InventoryItem, int64, error)
}

// ReservationLedgerRepository persists the per-(order,sku) reservation
// record used to recover reserved quantities for order events that arrive
// without line items (spec.md §9, option (b)).
type ReservationLedgerRepository interface {
	Record(ctx context.Context, entry *entity.ReservationLedgerEntry) error
	FindByOrderID(ctx context.Context, orderID string) ([]*entity.ReservationLedgerEntry, error)
	Consume(ctx context.Context, orderID, sku string) error
}

// DedupRepository guards order event handlers against at-least-once
// redelivery. MarkProcessed is atomic: it reports applied=false with a nil
// error when the (orderID, kind) pair was already recorded.
type DedupRepository interface {
	MarkProcessed(ctx context.Context, orderID, kind string) (applied bool, err error)
}
