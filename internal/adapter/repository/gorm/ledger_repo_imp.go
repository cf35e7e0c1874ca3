package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ecomsys/inventory-service/internal/adapter/repository/gorm/model"
	"github.com/ecomsys/inventory-service/internal/domain/entity"
)

// GormReservationLedgerRepository persists one row per successful reserve,
// consumed on release/deduct, per spec.md §9's option (b).
type GormReservationLedgerRepository struct {
	db *gorm.DB
}

func NewGormReservationLedgerRepository(db *gorm.DB) *GormReservationLedgerRepository {
	return &GormReservationLedgerRepository{db: db}
}

func (r *GormReservationLedgerRepository) Record(ctx context.Context, entry *entity.ReservationLedgerEntry) error {
	return r.db.WithContext(ctx).Create(model.NewReservationLedgerEntryModel(entry)).Error
}

func (r *GormReservationLedgerRepository) FindByOrderID(ctx context.Context, orderID string) ([]*entity.ReservationLedgerEntry, error) {
	var rows []model.ReservationLedgerEntry
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]*entity.ReservationLedgerEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToEntity()
	}
	return entries, nil
}

func (r *GormReservationLedgerRepository) Consume(ctx context.Context, orderID, sku string) error {
	return r.db.WithContext(ctx).
		Where("order_id = ? AND sku = ?", orderID, sku).
		Delete(&model.ReservationLedgerEntry{}).Error
}
