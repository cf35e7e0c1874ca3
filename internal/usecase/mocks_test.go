package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
	"github.com/ecomsys/inventory-service/internal/domain/service"
	"github.com/ecomsys/inventory-service/pkg/logger"
)

// mockInventoryRepo implements repository.InventoryRepository for the
// use-case test suite, following the pack's testify mock.Mock convention.
type mockInventoryRepo struct {
	mock.Mock
}

func (m *mockInventoryRepo) FindBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.InventoryItem), args.Error(1)
}

func (m *mockInventoryRepo) List(ctx context.Context, filter entity.InventoryFilter, offset, limit int) ([]*entity.InventoryItem, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entity.InventoryItem), args.Get(1).(int64), args.Error(2)
}

func (m *mockInventoryRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockInventoryRepo) Reserve(ctx context.Context, sku string, qty int) (bool, error) {
	args := m.Called(ctx, sku, qty)
	return args.Bool(0), args.Error(1)
}

func (m *mockInventoryRepo) Release(ctx context.Context, sku string, qty int) (bool, error) {
	args := m.Called(ctx, sku, qty)
	return args.Bool(0), args.Error(1)
}

func (m *mockInventoryRepo) Deduct(ctx context.Context, sku string, qty int) (bool, error) {
	args := m.Called(ctx, sku, qty)
	return args.Bool(0), args.Error(1)
}

func (m *mockInventoryRepo) UpdateFields(ctx context.Context, sku string, newStock *int, newLocation *string) (bool, error) {
	args := m.Called(ctx, sku, newStock, newLocation)
	return args.Bool(0), args.Error(1)
}

func (m *mockInventoryRepo) RecordTransaction(ctx context.Context, tx *entity.StockTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockInventoryRepo) ListTransactions(ctx context.Context, sku string, offset, limit int) ([]*entity.StockTransaction, int64, error) {
	args := m.Called(ctx, sku, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entity.StockTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *mockInventoryRepo) LowStock(ctx context.Context, threshold, offset, limit int) ([]*entity.InventoryItem, int64, error) {
	args := m.Called(ctx, threshold, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entity.InventoryItem), args.Get(1).(int64), args.Error(2)
}

// mockLedgerRepo implements repository.ReservationLedgerRepository.
type mockLedgerRepo struct {
	mock.Mock
}

func (m *mockLedgerRepo) Record(ctx context.Context, entry *entity.ReservationLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockLedgerRepo) FindByOrderID(ctx context.Context, orderID string) ([]*entity.ReservationLedgerEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ReservationLedgerEntry), args.Error(1)
}

func (m *mockLedgerRepo) Consume(ctx context.Context, orderID, sku string) error {
	args := m.Called(ctx, orderID, sku)
	return args.Error(0)
}

// mockDedupRepo implements repository.DedupRepository.
type mockDedupRepo struct {
	mock.Mock
}

func (m *mockDedupRepo) MarkProcessed(ctx context.Context, orderID, kind string) (bool, error) {
	args := m.Called(ctx, orderID, kind)
	return args.Bool(0), args.Error(1)
}

// mockLockService implements service.LockService. By default each test
// arranges Acquire/Release expectations explicitly; newPermissiveLock
// pre-wires an always-succeeds double for tests not exercising lock
// contention.
type mockLockService struct {
	mock.Mock
}

func (m *mockLockService) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockLockService) Release(ctx context.Context, key, token string) error {
	args := m.Called(ctx, key, token)
	return args.Error(0)
}

func newPermissiveLock() *mockLockService {
	l := &mockLockService{}
	l.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return("token", nil)
	l.On("Release", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return l
}

// mockEventPublisher implements service.EventPublisherService, recording
// every call so tests can assert on emission order and payload shape
// without round-tripping through Kafka.
type mockEventPublisher struct {
	mock.Mock
	mu       chan struct{}
	reserved []service.ReservedEvent
	released []service.ReleasedEvent
	deducted []service.DeductedEvent
	lowStock []service.LowStockEvent
	outOfStock []service.OutOfStockEvent
	rolledBack []service.ReservationRolledBackEvent
	partial  []service.PartialDeductionEvent
	updated  []service.UpdatedEvent
}

func newMockEventPublisher() *mockEventPublisher {
	return &mockEventPublisher{mu: make(chan struct{}, 1)}
}

func (m *mockEventPublisher) lock()   { m.mu <- struct{}{} }
func (m *mockEventPublisher) unlock() { <-m.mu }

func (m *mockEventPublisher) PublishReserved(ctx context.Context, ev service.ReservedEvent) error {
	m.lock()
	defer m.unlock()
	m.reserved = append(m.reserved, ev)
	return nil
}

func (m *mockEventPublisher) PublishReleased(ctx context.Context, ev service.ReleasedEvent) error {
	m.lock()
	defer m.unlock()
	m.released = append(m.released, ev)
	return nil
}

func (m *mockEventPublisher) PublishDeducted(ctx context.Context, ev service.DeductedEvent) error {
	m.lock()
	defer m.unlock()
	m.deducted = append(m.deducted, ev)
	return nil
}

func (m *mockEventPublisher) PublishLowStock(ctx context.Context, ev service.LowStockEvent) error {
	m.lock()
	defer m.unlock()
	m.lowStock = append(m.lowStock, ev)
	return nil
}

func (m *mockEventPublisher) PublishOutOfStock(ctx context.Context, ev service.OutOfStockEvent) error {
	m.lock()
	defer m.unlock()
	m.outOfStock = append(m.outOfStock, ev)
	return nil
}

func (m *mockEventPublisher) PublishReservationRolledBack(ctx context.Context, ev service.ReservationRolledBackEvent) error {
	m.lock()
	defer m.unlock()
	m.rolledBack = append(m.rolledBack, ev)
	return nil
}

func (m *mockEventPublisher) PublishPartialDeduction(ctx context.Context, ev service.PartialDeductionEvent) error {
	m.lock()
	defer m.unlock()
	m.partial = append(m.partial, ev)
	return nil
}

func (m *mockEventPublisher) PublishUpdated(ctx context.Context, ev service.UpdatedEvent) error {
	m.lock()
	defer m.unlock()
	m.updated = append(m.updated, ev)
	return nil
}

func (m *mockEventPublisher) Close() error { return nil }

// noopLogger discards everything; the use-case tests assert on return
// values and published events, not on log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{})        {}
func (noopLogger) Info(string, ...interface{})         {}
func (noopLogger) Warn(string, ...interface{})         {}
func (noopLogger) Error(string, ...interface{})        {}
func (noopLogger) Fatal(string, ...interface{})        {}
func (l noopLogger) With(...interface{}) logger.Logger { return l }
func (l noopLogger) WithCorrelationID(string) logger.Logger {
	return l
}
