package model

import (
	"time"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
)

// InventoryItem is the GORM model for a SKU's counter row.
type InventoryItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SKU       string `gorm:"uniqueIndex;not null"`
	Stock     int    `gorm:"not null"`
	Reserved  int    `gorm:"not null"`
	Sold      int    `gorm:"not null"`
	Location  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (InventoryItem) TableName() string { return "inventory_items" }

func (m *InventoryItem) ToEntity() *entity.InventoryItem {
	return &entity.InventoryItem{
		ID:        m.ID,
		SKU:       m.SKU,
		Stock:     m.Stock,
		Reserved:  m.Reserved,
		Sold:      m.Sold,
		Location:  m.Location,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func NewInventoryItemModel(item *entity.InventoryItem) *InventoryItem {
	return &InventoryItem{
		ID:       item.ID,
		SKU:      item.SKU,
		Stock:    item.Stock,
		Reserved: item.Reserved,
		Sold:     item.Sold,
		Location: item.Location,
	}
}

// ReservationLedgerEntry is the GORM model backing the option (b) fallback
// described in spec.md §9: one row per successful reserve, consumed on
// release/deduct of the same (orderId, sku) pair.
type ReservationLedgerEntry struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"index:idx_order_sku,priority:1;not null"`
	SKU       string `gorm:"index:idx_order_sku,priority:2;not null"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
}

func (ReservationLedgerEntry) TableName() string { return "reservation_ledger_entries" }

func (m *ReservationLedgerEntry) ToEntity() *entity.ReservationLedgerEntry {
	return &entity.ReservationLedgerEntry{
		ID:        m.ID,
		OrderID:   m.OrderID,
		SKU:       m.SKU,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
	}
}

func NewReservationLedgerEntryModel(entry *entity.ReservationLedgerEntry) *ReservationLedgerEntry {
	return &ReservationLedgerEntry{
		OrderID:  entry.OrderID,
		SKU:      entry.SKU,
		Quantity: entry.Quantity,
	}
}

// StockTransaction is the GORM model for the immutable audit trail.
type StockTransaction struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	SKU         string `gorm:"index;not null"`
	Type        string `gorm:"not null"`
	Quantity    int    `gorm:"not null"`
	OrderID     string `gorm:"index"`
	OccurredAt  time.Time `gorm:"not null;index"`
	ReferenceID *string
}

func (StockTransaction) TableName() string { return "stock_transactions" }

func (m *StockTransaction) ToEntity() *entity.StockTransaction {
	return &entity.StockTransaction{
		ID:          m.ID,
		SKU:         m.SKU,
		Type:        m.Type,
		Quantity:    m.Quantity,
		OrderID:     m.OrderID,
		OccurredAt:  m.OccurredAt,
		ReferenceID: m.ReferenceID,
	}
}

func NewStockTransactionModel(tx *entity.StockTransaction) *StockTransaction {
	return &StockTransaction{
		SKU:         tx.SKU,
		Type:        tx.Type,
		Quantity:    tx.Quantity,
		OrderID:     tx.OrderID,
		OccurredAt:  tx.OccurredAt,
		ReferenceID: tx.ReferenceID,
	}
}

// ProcessedOrderEvent is the GORM model for the order-event deduplication
// record, keyed by (order_id, kind); inserts use ON CONFLICT DO NOTHING so
// the check-and-set is atomic (spec.md §4.5).
type ProcessedOrderEvent struct {
	OrderID     string `gorm:"primaryKey"`
	Kind        string `gorm:"primaryKey"`
	ProcessedAt time.Time
}

func (ProcessedOrderEvent) TableName() string { return "processed_order_events" }
