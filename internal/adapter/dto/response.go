package dto

import (
	"time"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
)

// InventoryItemResponse is the wire shape of a single inventory row.
type InventoryItemResponse struct {
	SKU       string    `json:"sku"`
	Stock     int       `json:"stock"`
	Reserved  int       `json:"reserved"`
	Sold      int       `json:"sold"`
	Available int       `json:"available"`
	Location  *string   `json:"location,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewInventoryItemResponse(item *entity.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		SKU:       item.SKU,
		Stock:     item.Stock,
		Reserved:  item.Reserved,
		Sold:      item.Sold,
		Available: item.Available(),
		Location:  item.Location,
		UpdatedAt: item.UpdatedAt,
	}
}

// InventoryItemsWithTotal is the paginated list envelope for GET /inventory.
type InventoryItemsWithTotal struct {
	Items []InventoryItemResponse `json:"items"`
	Total int64                   `json:"total"`
}

func NewInventoryItemsWithTotal(items []*entity.InventoryItem, total int64) InventoryItemsWithTotal {
	out := make([]InventoryItemResponse, len(items))
	for i, item := range items {
		out[i] = NewInventoryItemResponse(item)
	}
	return InventoryItemsWithTotal{Items: out, Total: total}
}

// BatchInventoryResponse is the wire shape of GET /inventory/batch: unknown
// SKUs are present with all counters zero rather than omitted.
type BatchInventoryResponse struct {
	Items map[string]InventoryItemResponse `json:"items"`
}

func NewBatchInventoryResponse(items map[string]*entity.InventoryItem) BatchInventoryResponse {
	out := make(map[string]InventoryItemResponse, len(items))
	for sku, item := range items {
		out[sku] = NewInventoryItemResponse(item)
	}
	return BatchInventoryResponse{Items: out}
}

// StockTransactionResponse is the wire shape of one audit record.
type StockTransactionResponse struct {
	SKU         string    `json:"sku"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	OrderID     string    `json:"orderId,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
	ReferenceID *string   `json:"referenceId,omitempty"`
}

type StockTransactionsWithTotal struct {
	Transactions []StockTransactionResponse `json:"transactions"`
	Total        int64                      `json:"total"`
}

func NewStockTransactionsWithTotal(txs []*entity.StockTransaction, total int64) StockTransactionsWithTotal {
	out := make([]StockTransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = StockTransactionResponse{
			SKU:         tx.SKU,
			Type:        tx.Type,
			Quantity:    tx.Quantity,
			OrderID:     tx.OrderID,
			OccurredAt:  tx.OccurredAt,
			ReferenceID: tx.ReferenceID,
		}
	}
	return StockTransactionsWithTotal{Transactions: out, Total: total}
}
