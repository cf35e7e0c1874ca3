package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ecomsys/inventory-service/internal/adapter/repository/gorm/model"
	"github.com/ecomsys/inventory-service/internal/domain/entity"
)

// GormInventoryRepository implements repository.InventoryRepository with a
// single `UPDATE ... WHERE` statement per mutation, relying on InnoDB
// row-level locking to make each statement atomic with respect to
// concurrent writers on the same row (spec.md §4.1).
type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) FindBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrInventoryNotFound
		}
		return nil, err
	}
	return item.ToEntity(), nil
}

func (r *GormInventoryRepository) List(ctx context.Context, filter entity.InventoryFilter, offset, limit int) ([]*entity.InventoryItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryItem{})
	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.InventoryItem
	if err := q.Order("sku ASC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entity.InventoryItem, len(rows))
	for i := range rows {
		items[i] = rows[i].ToEntity()
	}
	return items, total, nil
}

func (r *GormInventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	existing := model.InventoryItem{}
	err := r.db.WithContext(ctx).Where("sku = ?", item.SKU).First(&existing).Error
	if err == nil {
		return entity.ErrSKUAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	m := model.NewInventoryItemModel(item)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*item = *m.ToEntity()
	return nil
}

// Reserve applies reserved += qty WHERE stock - reserved >= qty.
func (r *GormInventoryRepository) Reserve(ctx context.Context, sku string, qty int) (bool, error) {
	if _, err := r.FindBySKU(ctx, sku); err != nil {
		return false, err
	}

	tx := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("sku = ? AND stock - reserved >= ?", sku, qty).
		Update("reserved", gorm.Expr("reserved + ?", qty))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Release applies reserved -= qty WHERE reserved >= qty.
func (r *GormInventoryRepository) Release(ctx context.Context, sku string, qty int) (bool, error) {
	if _, err := r.FindBySKU(ctx, sku); err != nil {
		return false, err
	}

	tx := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("sku = ? AND reserved >= ?", sku, qty).
		Update("reserved", gorm.Expr("reserved - ?", qty))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Deduct applies stock -= qty, reserved -= qty, sold += qty
// WHERE stock >= qty AND reserved >= qty.
func (r *GormInventoryRepository) Deduct(ctx context.Context, sku string, qty int) (bool, error) {
	if _, err := r.FindBySKU(ctx, sku); err != nil {
		return false, err
	}

	tx := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("sku = ? AND stock >= ? AND reserved >= ?", sku, qty, qty).
		Updates(map[string]interface{}{
			"stock":    gorm.Expr("stock - ?", qty),
			"reserved": gorm.Expr("reserved - ?", qty),
			"sold":     gorm.Expr("sold + ?", qty),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// UpdateFields applies a non-atomic partial patch driven by product.updated
// events. A stock mutation is rejected (applied=false, no error) if it
// would drop the new value below the current reserved quantity.
func (r *GormInventoryRepository) UpdateFields(ctx context.Context, sku string, newStock *int, newLocation *string) (bool, error) {
	fields := map[string]interface{}{}
	where := "sku = ?"
	args := []interface{}{sku}

	if newStock != nil {
		fields["stock"] = *newStock
		where += " AND reserved <= ?"
		args = append(args, *newStock)
	}
	if newLocation != nil {
		fields["location"] = *newLocation
	}
	if len(fields) == 0 {
		return false, nil
	}

	if _, err := r.FindBySKU(ctx, sku); err != nil {
		return false, err
	}

	tx := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where(where, args...).
		Updates(fields)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *GormInventoryRepository) RecordTransaction(ctx context.Context, t *entity.StockTransaction) error {
	return r.db.WithContext(ctx).Create(model.NewStockTransactionModel(t)).Error
}

func (r *GormInventoryRepository) ListTransactions(ctx context.Context, sku string, offset, limit int) ([]*entity.StockTransaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).Where("sku = ?", sku).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.StockTransaction
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).
		Order("occurred_at DESC").Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]*entity.StockTransaction, len(rows))
	for i := range rows {
		txs[i] = rows[i].ToEntity()
	}
	return txs, total, nil
}

func (r *GormInventoryRepository) LowStock(ctx context.Context, threshold, offset, limit int) ([]*entity.InventoryItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("stock - reserved <= ?", threshold)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.InventoryItem
	if err := q.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entity.InventoryItem, len(rows))
	for i := range rows {
		items[i] = rows[i].ToEntity()
	}
	return items, total, nil
}
