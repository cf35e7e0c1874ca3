package entity

import "time"

// InventoryItem holds the three counters mediating a SKU's reservation
// lifecycle: Stock (on-hand units, including reserved ones), Reserved
// (units claimed by open orders, a subset of Stock) and Sold (cumulative
// delivered units). Available is derived as Stock-Reserved, never stored.
type InventoryItem struct {
	ID        uint
	SKU       string
	Stock     int
	Reserved  int
	Sold      int
	Location  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available returns the quantity a new order may still claim.
func (i *InventoryItem) Available() int {
	return i.Stock - i.Reserved
}

// ReservationLedgerEntry is the persisted record of a single successful
// reserve call, keyed by (OrderID, SKU). It exists so release/deduct can
// recover the reserved quantity for an order even when the triggering
// order event omits line items (see DESIGN.md, option (b) of §9).
type ReservationLedgerEntry struct {
	ID        uint
	OrderID   string
	SKU       string
	Quantity  int
	CreatedAt time.Time
}

// StockTransaction is an immutable audit record of a committed counter
// mutation, written alongside every reserve/release/deduct.
type StockTransaction struct {
	ID          uint
	SKU         string
	Type        string
	Quantity    int
	OrderID     string
	OccurredAt  time.Time
	ReferenceID *string
}

// ProcessedOrderEvent is the deduplication record for at-least-once order
// event delivery, keyed by (OrderID, Kind).
type ProcessedOrderEvent struct {
	OrderID     string
	Kind        string
	ProcessedAt time.Time
}

// InventoryFilter narrows a List query; zero-value fields are unconstrained.
type InventoryFilter struct {
	SKU      string
	Location string
}
