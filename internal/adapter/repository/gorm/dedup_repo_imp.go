package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecomsys/inventory-service/internal/adapter/repository/gorm/model"
)

// GormDedupRepository guards order event handling against at-least-once
// redelivery with an INSERT ... ON CONFLICT DO NOTHING, so the
// check-and-set is itself atomic (spec.md §4.5).
type GormDedupRepository struct {
	db *gorm.DB
}

func NewGormDedupRepository(db *gorm.DB) *GormDedupRepository {
	return &GormDedupRepository{db: db}
}

func (r *GormDedupRepository) MarkProcessed(ctx context.Context, orderID, kind string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ProcessedOrderEvent{
			OrderID:     orderID,
			Kind:        kind,
			ProcessedAt: time.Now(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
