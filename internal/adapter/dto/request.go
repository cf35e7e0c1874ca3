package dto

import (
	"github.com/ecomsys/inventory-service/internal/domain/entity"
)

// CreateInventoryItemRequest is the request body for POST /inventory.
type CreateInventoryItemRequest struct {
	SKU      string  `json:"sku" validate:"required"`
	Stock    int     `json:"stock" validate:"min=0"`
	Location *string `json:"location"`
}

func (d *CreateInventoryItemRequest) ToEntity() entity.InventoryItem {
	return entity.InventoryItem{
		SKU:      d.SKU,
		Stock:    d.Stock,
		Location: d.Location,
	}
}

// ListInventoryRequest is the query parameters for GET /inventory.
type ListInventoryRequest struct {
	SKU      string `query:"sku"`
	Location string `query:"location"`
	Page     int    `query:"page" validate:"min=1"`
	PageSize int    `query:"pageSize" validate:"min=1"`
}

// PaginationRequest is the query parameters shared by the history and
// low-stock list endpoints.
type PaginationRequest struct {
	Page     int `query:"page" validate:"min=1"`
	PageSize int `query:"pageSize" validate:"min=1"`
}
