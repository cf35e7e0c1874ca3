package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
	"github.com/ecomsys/inventory-service/internal/domain/service"
	"github.com/ecomsys/inventory-service/internal/usecase"
)

func newHandlerFixture(t *testing.T) (*usecase.OrderEventHandler, *mockDedupRepo, *mockInventoryRepo, *mockLedgerRepo, *mockEventPublisher) {
	t.Helper()
	repo := &mockInventoryRepo{}
	ledger := &mockLedgerRepo{}
	lock := newPermissiveLock()
	events := newMockEventPublisher()
	dedup := &mockDedupRepo{}

	reserve := usecase.NewReserveUsecase(repo, ledger, lock, events, noopLogger{})
	release := usecase.NewReleaseUsecase(repo, ledger, lock, events, noopLogger{})
	deduct := usecase.NewDeductUsecase(repo, ledger, lock, events, noopLogger{})

	h := usecase.NewOrderEventHandler(dedup, reserve, release, deduct, noopLogger{})
	return h, dedup, repo, ledger, events
}

// order.created dispatches to reserveBatch.
func TestOrderEventHandler_CreatedReservesBatch(t *testing.T) {
	h, dedup, repo, ledger, events := newHandlerFixture(t)

	dedup.On("MarkProcessed", mock.Anything, "O1", "order.created").Return(true, nil)
	repo.On("Reserve", mock.Anything, "F", 1).Return(true, nil)
	repo.On("FindBySKU", mock.Anything, "F").Return(&entity.InventoryItem{SKU: "F", Stock: 5, Reserved: 1}, nil)
	ledger.On("Record", mock.Anything, mock.Anything).Return(nil)
	repo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)

	err := h.Handle(context.Background(), service.OrderEvent{
		OrderID: "O1",
		Kind:    "order.created",
		Items:   []service.OrderItem{{SKU: "F", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Len(t, events.reserved, 1)
}

// S6: duplicate delivery of the same (orderId, kind) is dropped after the
// first application; exactly one inventory.reserved is ever emitted.
func TestOrderEventHandler_DuplicateEventIsDropped(t *testing.T) {
	h, dedup, repo, _, events := newHandlerFixture(t)

	dedup.On("MarkProcessed", mock.Anything, "O1", "order.created").Return(false, nil)

	err := h.Handle(context.Background(), service.OrderEvent{
		OrderID: "O1",
		Kind:    "order.created",
		Items:   []service.OrderItem{{SKU: "F", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Empty(t, events.reserved)
	repo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
}

// order.cancelled dispatches to releaseBatch when items are present.
func TestOrderEventHandler_CancelledReleasesBatch(t *testing.T) {
	h, dedup, repo, ledger, events := newHandlerFixture(t)

	dedup.On("MarkProcessed", mock.Anything, "O1", "order.cancelled").Return(true, nil)
	repo.On("Release", mock.Anything, "F", 1).Return(true, nil)
	repo.On("FindBySKU", mock.Anything, "F").Return(&entity.InventoryItem{SKU: "F", Stock: 5, Reserved: 0}, nil)
	ledger.On("Consume", mock.Anything, "O1", "F").Return(nil)
	repo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)

	err := h.Handle(context.Background(), service.OrderEvent{
		OrderID: "O1",
		Kind:    "order.cancelled",
		Items:   []service.OrderItem{{SKU: "F", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Len(t, events.released, 1)
	assert.Equal(t, "order_cancelled", events.released[0].Reason)
}

// order.cancelled without items falls back to the reservation ledger
// (spec.md §9 option b) instead of being a hard failure.
func TestOrderEventHandler_CancelledWithoutItemsFallsBackToLedger(t *testing.T) {
	h, dedup, repo, ledger, events := newHandlerFixture(t)

	dedup.On("MarkProcessed", mock.Anything, "O2", "order.cancelled").Return(true, nil)
	ledger.On("FindByOrderID", mock.Anything, "O2").Return([]*entity.ReservationLedgerEntry{
		{OrderID: "O2", SKU: "F", Quantity: 2},
	}, nil)
	repo.On("Release", mock.Anything, "F", 2).Return(true, nil)
	repo.On("FindBySKU", mock.Anything, "F").Return(&entity.InventoryItem{SKU: "F", Stock: 5, Reserved: 0}, nil)
	ledger.On("Consume", mock.Anything, "O2", "F").Return(nil)
	repo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)

	err := h.Handle(context.Background(), service.OrderEvent{
		OrderID: "O2",
		Kind:    "order.cancelled",
	})

	require.NoError(t, err)
	assert.Len(t, events.released, 1)
}

// order.delivered dispatches to deductBatch.
func TestOrderEventHandler_DeliveredDeductsBatch(t *testing.T) {
	h, dedup, repo, ledger, events := newHandlerFixture(t)

	dedup.On("MarkProcessed", mock.Anything, "O3", "order.delivered").Return(true, nil)
	repo.On("Deduct", mock.Anything, "F", 1).Return(true, nil)
	repo.On("FindBySKU", mock.Anything, "F").Return(&entity.InventoryItem{SKU: "F", Stock: 4, Reserved: 0, Sold: 1}, nil)
	ledger.On("Consume", mock.Anything, "O3", "F").Return(nil)
	repo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)

	err := h.Handle(context.Background(), service.OrderEvent{
		OrderID: "O3",
		Kind:    "order.delivered",
		Items:   []service.OrderItem{{SKU: "F", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Len(t, events.deducted, 1)
}

// order.shipped and order.paid are documented no-ops: the reservation
// is left untouched and no dedup record is consumed.
func TestOrderEventHandler_ShippedAndPaidAreNoops(t *testing.T) {
	h, dedup, repo, _, events := newHandlerFixture(t)

	for _, kind := range []string{"order.shipped", "order.paid"} {
		err := h.Handle(context.Background(), service.OrderEvent{OrderID: "O4", Kind: kind})
		require.NoError(t, err)
	}

	dedup.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, events.reserved)
}

// order.updated is interpreted via its status field.
func TestOrderEventHandler_UpdatedDispatchesByStatus(t *testing.T) {
	h, dedup, repo, ledger, events := newHandlerFixture(t)

	dedup.On("MarkProcessed", mock.Anything, "O5", "order.updated:delivered").Return(true, nil)
	repo.On("Deduct", mock.Anything, "F", 1).Return(true, nil)
	repo.On("FindBySKU", mock.Anything, "F").Return(&entity.InventoryItem{SKU: "F", Stock: 4, Reserved: 0, Sold: 1}, nil)
	ledger.On("Consume", mock.Anything, "O5", "F").Return(nil)
	repo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)

	err := h.Handle(context.Background(), service.OrderEvent{
		OrderID: "O5",
		Kind:    "order.updated",
		Status:  "delivered",
		Items:   []service.OrderItem{{SKU: "F", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Len(t, events.deducted, 1)
}

func TestOrderEventHandler_UpdatedOtherStatusIsNoop(t *testing.T) {
	h, dedup, repo, _, _ := newHandlerFixture(t)

	err := h.Handle(context.Background(), service.OrderEvent{
		OrderID: "O6",
		Kind:    "order.updated",
		Status:  "payment_pending",
	})

	require.NoError(t, err)
	dedup.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything, mock.Anything)
}

// Malformed events (empty orderId, unrecognized kind) are logged and
// dropped, never returned as errors to the consumer loop.
func TestOrderEventHandler_MalformedEventsAreDroppedNotErrored(t *testing.T) {
	h, dedup, _, _, _ := newHandlerFixture(t)

	err := h.Handle(context.Background(), service.OrderEvent{OrderID: "", Kind: "order.created"})
	require.NoError(t, err)

	err = h.Handle(context.Background(), service.OrderEvent{OrderID: "O7", Kind: "order.teleported"})
	require.NoError(t, err)

	dedup.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

// order.created with no items cannot be reserved and is dropped.
func TestOrderEventHandler_CreatedWithoutItemsIsDropped(t *testing.T) {
	h, dedup, repo, _, _ := newHandlerFixture(t)

	dedup.On("MarkProcessed", mock.Anything, "O8", "order.created").Return(true, nil)

	err := h.Handle(context.Background(), service.OrderEvent{OrderID: "O8", Kind: "order.created"})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
}
