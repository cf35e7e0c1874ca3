package usecase

import (
	"context"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
	"github.com/ecomsys/inventory-service/internal/domain/repository"
	"github.com/ecomsys/inventory-service/pkg/utils"
)

// AdminUsecase serves the administrative HTTP surface of spec.md §4.7: item
// creation and the read-mostly single/batch/list/low-stock/history queries.
type AdminUsecase struct {
	repo    repository.InventoryRepository
	errBldr *utils.ErrorBuilder
}

func NewAdminUsecase(repo repository.InventoryRepository) *AdminUsecase {
	return &AdminUsecase{
		repo:    repo,
		errBldr: utils.NewErrorBuilder("AdminUsecase"),
	}
}

func (u *AdminUsecase) CreateItem(ctx context.Context, item *entity.InventoryItem) error {
	if item.SKU == "" {
		return u.errBldr.Err(entity.ErrValidation)
	}
	if err := u.repo.Create(ctx, item); err != nil {
		return u.errBldr.Err(err)
	}
	return nil
}

func (u *AdminUsecase) GetItem(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	item, err := u.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, u.errBldr.Err(err)
	}
	return item, nil
}

// GetItemsBySKUs returns one entry per requested SKU; unknown SKUs are
// returned with all counters zero rather than omitted, per spec.md §4.7,
// so clients can distinguish "present with zero" from "absent" by
// separately checking the catalog.
func (u *AdminUsecase) GetItemsBySKUs(ctx context.Context, skus []string) map[string]*entity.InventoryItem {
	result := make(map[string]*entity.InventoryItem, len(skus))
	for _, sku := range skus {
		item, err := u.repo.FindBySKU(ctx, sku)
		if err != nil {
			result[sku] = &entity.InventoryItem{SKU: sku}
			continue
		}
		result[sku] = item
	}
	return result
}

func (u *AdminUsecase) ListItems(ctx context.Context, filter entity.InventoryFilter, page, pageSize int) ([]*entity.InventoryItem, int64, error) {
	offset := (page - 1) * pageSize
	items, total, err := u.repo.List(ctx, filter, offset, pageSize)
	if err != nil {
		return nil, 0, u.errBldr.Err(err)
	}
	return items, total, nil
}

func (u *AdminUsecase) ListTransactions(ctx context.Context, sku string, page, pageSize int) ([]*entity.StockTransaction, int64, error) {
	offset := (page - 1) * pageSize
	txs, total, err := u.repo.ListTransactions(ctx, sku, offset, pageSize)
	if err != nil {
		return nil, 0, u.errBldr.Err(err)
	}
	return txs, total, nil
}

func (u *AdminUsecase) ListLowStock(ctx context.Context, page, pageSize int) ([]*entity.InventoryItem, int64, error) {
	offset := (page - 1) * pageSize
	items, total, err := u.repo.LowStock(ctx, lowStockThreshold, offset, pageSize)
	if err != nil {
		return nil, 0, u.errBldr.Err(err)
	}
	return items, total, nil
}
