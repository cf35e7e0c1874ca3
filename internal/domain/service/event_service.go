package service

import (
	"context"
	"time"
)

// Event names carried in the outbound "event" discriminator field, per
// spec.md §4.4/§6.
const (
	EventReserved               = "inventory.reserved"
	EventReleased               = "inventory.released"
	EventDeducted               = "inventory.deducted"
	EventLowStock               = "inventory.low_stock"
	EventOutOfStock             = "inventory.out_of_stock"
	EventReservationRolledBack  = "inventory.reservation_rolled_back"
	EventPartialDeduction       = "inventory.partial_deduction"
	EventUpdated                = "inventory.updated"
)

// ReservedEvent is emitted once per successful single-item reservation.
type ReservedEvent struct {
	OrderID        string
	SKU            string
	Quantity       int
	ReservedStock  int
	AvailableStock int
	Timestamp      time.Time
}

// ReleasedEvent is emitted once per successful single-item release.
type ReleasedEvent struct {
	OrderID        string
	SKU            string
	Quantity       int
	ReservedStock  int
	AvailableStock int
	Reason         string
	Timestamp      time.Time
}

// DeductedEvent is emitted once per successful single-item deduction.
type DeductedEvent struct {
	OrderID        string
	SKU            string
	Quantity       int
	RemainingStock int
	ReservedStock  int
	TotalSold      int
	AvailableStock int
	Timestamp      time.Time
}

// LowStockEvent fires when a deduction leaves availableStock in [1, threshold].
type LowStockEvent struct {
	SKU            string
	Stock          int
	Reserved       int
	AvailableStock int
	Threshold      int
	Timestamp      time.Time
}

// OutOfStockEvent fires when a deduction leaves availableStock at zero.
type OutOfStockEvent struct {
	SKU       string
	Reserved  int
	TotalSold int
	Timestamp time.Time
}

// ReservationRolledBackEvent is the compensating record for a SKU released
// during batch-reserve saga compensation. It is not a retraction of the
// inventory.reserved event already published for that SKU.
type ReservationRolledBackEvent struct {
	OrderID   string
	SKU       string
	Quantity  int
	Timestamp time.Time
}

// PartialDeductionEvent reconciles a best-effort deductBatch that left some
// SKUs un-deducted.
type PartialDeductionEvent struct {
	OrderID        string
	DeductedItems  []string
	FailedItems    []string
	Timestamp      time.Time
}

// UpdatedEvent reports a successful non-atomic stock/location patch applied
// from a product.updated event.
type UpdatedEvent struct {
	SKU       string
	Stock     int
	Location  *string
	Timestamp time.Time
}

// EventPublisherService appends inventory-domain events to the outbound bus.
// Implementations enforce the 256 KiB serialised-payload size cap named in
// spec.md §4.4; oversize payloads are rejected at the call site.
type EventPublisherService interface {
	PublishReserved(ctx context.Context, ev ReservedEvent) error
	PublishReleased(ctx context.Context, ev ReleasedEvent) error
	PublishDeducted(ctx context.Context, ev DeductedEvent) error
	PublishLowStock(ctx context.Context, ev LowStockEvent) error
	PublishOutOfStock(ctx context.Context, ev OutOfStockEvent) error
	PublishReservationRolledBack(ctx context.Context, ev ReservationRolledBackEvent) error
	PublishPartialDeduction(ctx context.Context, ev PartialDeductionEvent) error
	PublishUpdated(ctx context.Context, ev UpdatedEvent) error
	Close() error
}

// OrderItem is one line item of an inbound order lifecycle event.
type OrderItem struct {
	SKU      string
	Quantity int
}

// OrderEvent is the common inbound shape of an order.* message, per
// spec.md §6. Items is empty when the source event omitted them (legal for
// order.cancelled, degrading the handler to the reservation-ledger path).
type OrderEvent struct {
	OrderID string
	Kind    string
	Status  string
	BuyerID string
	Items   []OrderItem
}

// CatalogEvent is the common inbound shape of a product.* message.
type CatalogEvent struct {
	Kind         string
	SKU          string
	InitialStock *int
	Stock        *int
	Location     *string
}

// EventConsumer subscribes to the order and catalog topic families and
// dispatches decoded payloads to a handler, following the teacher's
// one-reader-per-topic convention generalized to six order-lifecycle topics
// sharing a single consumer group (spec.md §4.5).
type EventConsumer interface {
	Start(ctx context.Context) error
	Close() error
}

// LockService provides a distributed mutual-exclusion primitive scoped to a
// single SKU, per spec.md §4.3.
type LockService interface {
	// Acquire is non-blocking: it either takes the lock at once, returning
	// an opaque owner token that must be presented to Release, or fails
	// with entity.ErrLockBusy if the key is already held. ttl bounds how
	// long the lock may be held before it is considered abandoned.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, err error)

	// Release relinquishes the lock iff token still matches the current
	// holder; it is a no-op, not an error, if the lock already expired or
	// was reassigned.
	Release(ctx context.Context, key, token string) error
}
