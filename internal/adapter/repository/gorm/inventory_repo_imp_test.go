package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	repository "github.com/ecomsys/inventory-service/internal/adapter/repository/gorm"
	"github.com/ecomsys/inventory-service/internal/adapter/repository/gorm/model"
	"github.com/ecomsys/inventory-service/internal/domain/entity"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.InventoryItem{},
		&model.ReservationLedgerEntry{},
		&model.StockTransaction{},
		&model.ProcessedOrderEvent{},
	))
	return db
}

func seedItem(t *testing.T, db *gorm.DB, sku string, stock, reserved, sold int) {
	t.Helper()
	require.NoError(t, db.Create(&model.InventoryItem{SKU: sku, Stock: stock, Reserved: reserved, Sold: sold}).Error)
}

// B1: reserve of exactly the available quantity succeeds; one more fails.
func TestGormInventoryRepository_ReserveBoundary(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "A", 100, 0, 0)
	ctx := context.Background()

	applied, err := repo.Reserve(ctx, "A", 100)
	require.NoError(t, err)
	assert.True(t, applied)

	item, err := repo.FindBySKU(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 0, item.Available())

	applied, err = repo.Reserve(ctx, "A", 1)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestGormInventoryRepository_ReserveNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)

	_, err := repo.Reserve(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, entity.ErrInventoryNotFound)
}

// A deduct of the full reserved quantity (stock 12, reserved 10, q 10)
// succeeds and leaves available at its previous value (2, unchanged).
func TestGormInventoryRepository_DeductLeavesAvailableUnchanged(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "E", 12, 10, 0)
	ctx := context.Background()

	applied, err := repo.Deduct(ctx, "E", 10)
	require.NoError(t, err)
	require.True(t, applied)

	item, err := repo.FindBySKU(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Stock)
	assert.Equal(t, 0, item.Reserved)
	assert.Equal(t, 10, item.Sold)
	assert.Equal(t, 2, item.Available())
}

func TestGormInventoryRepository_DeductFailsWhenReservedInsufficient(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "H", 10, 2, 0)
	ctx := context.Background()

	applied, err := repo.Deduct(ctx, "H", 5)
	require.NoError(t, err)
	assert.False(t, applied)

	item, err := repo.FindBySKU(ctx, "H")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Stock)
	assert.Equal(t, 2, item.Reserved)
}

func TestGormInventoryRepository_ReleaseFailsBelowZero(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "C", 10, 4, 0)
	ctx := context.Background()

	applied, err := repo.Release(ctx, "C", 5)
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.Release(ctx, "C", 4)
	require.NoError(t, err)
	assert.True(t, applied)
}

// Create rejects a duplicate sku (spec.md §4.1 DuplicateSku).
func TestGormInventoryRepository_CreateRejectsDuplicateSku(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.InventoryItem{SKU: "DUP", Stock: 1}))
	err := repo.Create(ctx, &entity.InventoryItem{SKU: "DUP", Stock: 2})
	assert.ErrorIs(t, err, entity.ErrSKUAlreadyExists)
}

// The open-question fix (§9): a product.updated stock patch that would
// drop below the current reserved quantity is rejected at the store
// level, not merely logged after the fact.
func TestGormInventoryRepository_UpdateFieldsRejectsStockBelowReserved(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "K", 20, 15, 0)
	ctx := context.Background()

	newStock := 10
	applied, err := repo.UpdateFields(ctx, "K", &newStock, nil)
	require.NoError(t, err)
	assert.False(t, applied)

	item, err := repo.FindBySKU(ctx, "K")
	require.NoError(t, err)
	assert.Equal(t, 20, item.Stock)
}

func TestGormInventoryRepository_UpdateFieldsAppliesValidPatch(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "L", 20, 5, 0)
	ctx := context.Background()

	newStock := 30
	applied, err := repo.UpdateFields(ctx, "L", &newStock, nil)
	require.NoError(t, err)
	assert.True(t, applied)

	item, err := repo.FindBySKU(ctx, "L")
	require.NoError(t, err)
	assert.Equal(t, 30, item.Stock)
}

// R1: Reserve(q) followed by Release(q) returns the row to its pre-state.
func TestGormInventoryRepository_ReserveThenReleaseRoundTrips(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "M", 50, 0, 0)
	ctx := context.Background()

	applied, err := repo.Reserve(ctx, "M", 7)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = repo.Release(ctx, "M", 7)
	require.NoError(t, err)
	require.True(t, applied)

	item, err := repo.FindBySKU(ctx, "M")
	require.NoError(t, err)
	assert.Equal(t, 50, item.Stock)
	assert.Equal(t, 0, item.Reserved)
}

// R2: Reserve(q) then Deduct(q) leaves reserved unchanged at zero, stock
// reduced by q, sold increased by q.
func TestGormInventoryRepository_ReserveThenDeduct(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "N", 50, 0, 0)
	ctx := context.Background()

	_, err := repo.Reserve(ctx, "N", 7)
	require.NoError(t, err)
	applied, err := repo.Deduct(ctx, "N", 7)
	require.NoError(t, err)
	require.True(t, applied)

	item, err := repo.FindBySKU(ctx, "N")
	require.NoError(t, err)
	assert.Equal(t, 43, item.Stock)
	assert.Equal(t, 0, item.Reserved)
	assert.Equal(t, 7, item.Sold)
}

func TestGormInventoryRepository_LowStock(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGormInventoryRepository(db)
	seedItem(t, db, "LOW", 5, 0, 0)
	seedItem(t, db, "PLENTY", 500, 0, 0)
	ctx := context.Background()

	items, total, err := repo.LowStock(ctx, 10, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "LOW", items[0].SKU)
}
