package usecase

import (
	"context"

	"github.com/ecomsys/inventory-service/internal/domain/repository"
	"github.com/ecomsys/inventory-service/internal/domain/service"
	"github.com/ecomsys/inventory-service/internal/domain/valueobject"
	"github.com/ecomsys/inventory-service/pkg/logger"
	"github.com/ecomsys/inventory-service/pkg/utils"
)

// OrderEventHandler dispatches decoded order.* messages to the Reserve,
// Release and Deduct use-cases per the mapping in spec.md §4.5. It owns
// the deduplication check: each (orderId, kind) pair is applied at most
// once regardless of redelivery.
type OrderEventHandler struct {
	dedup   repository.DedupRepository
	reserve *ReserveUsecase
	release *ReleaseUsecase
	deduct  *DeductUsecase
	log     logger.Logger
	errBldr *utils.ErrorBuilder
}

func NewOrderEventHandler(
	dedup repository.DedupRepository,
	reserve *ReserveUsecase,
	release *ReleaseUsecase,
	deduct *DeductUsecase,
	log logger.Logger,
) *OrderEventHandler {
	return &OrderEventHandler{
		dedup:   dedup,
		reserve: reserve,
		release: release,
		deduct:  deduct,
		log:     log,
		errBldr: utils.NewErrorBuilder("OrderEventHandler"),
	}
}

// Handle classifies ev.Kind (defaulting to ev.Status for order.updated
// messages) and invokes the matching use-case. Malformed events and
// order.created events without items are logged and dropped, not returned
// as errors, since the caller acknowledges the message either way.
// Cancelled and delivered events without items fall back to the
// reservation ledger for the order.
func (h *OrderEventHandler) Handle(ctx context.Context, ev service.OrderEvent) error {
	if ev.OrderID == "" {
		h.log.Warn("dropping order event with empty orderId")
		return nil
	}

	action, dedupKind := h.classify(ev)
	if action == actionNoop {
		return nil
	}

	applied, err := h.dedup.MarkProcessed(ctx, ev.OrderID, dedupKind)
	if err != nil {
		return h.errBldr.Err(err)
	}
	if !applied {
		h.log.Debug("dropping duplicate order event", "orderId", ev.OrderID, "kind", dedupKind)
		return nil
	}

	switch action {
	case actionReserve:
		if len(ev.Items) == 0 {
			h.log.Warn("dropping order.created with no items", "orderId", ev.OrderID)
			return nil
		}
		return h.reserve.ReserveBatch(ctx, ev.OrderID, ev.Items)

	case actionRelease:
		if len(ev.Items) > 0 {
			h.release.ReleaseBatch(ctx, ev.OrderID, ev.Items, "order_cancelled")
			return nil
		}
		h.log.Warn("order.cancelled without items, falling back to reservation ledger", "orderId", ev.OrderID)
		if _, err := h.release.ReleaseBatchFromLedger(ctx, ev.OrderID, "order_cancelled"); err != nil {
			h.log.Error("ledger-backed release failed", "orderId", ev.OrderID, "error", err)
		}
		return nil

	case actionDeduct:
		if len(ev.Items) > 0 {
			h.deduct.DeductBatch(ctx, ev.OrderID, ev.Items)
			return nil
		}
		if _, err := h.deduct.DeductBatchFromLedger(ctx, ev.OrderID); err != nil {
			h.log.Error("ledger-backed deduct failed", "orderId", ev.OrderID, "error", err)
		}
		return nil
	}

	return nil
}

type orderAction int

const (
	actionNoop orderAction = iota
	actionReserve
	actionRelease
	actionDeduct
)

func (h *OrderEventHandler) classify(ev service.OrderEvent) (orderAction, string) {
	kind, err := valueobject.ParseOrderEventKind(ev.Kind)
	if err != nil {
		h.log.Warn("dropping order event with unrecognized kind", "kind", ev.Kind)
		return actionNoop, ""
	}

	switch kind {
	case valueobject.OrderCreated:
		return actionReserve, kind.String()
	case valueobject.OrderCancelled:
		return actionRelease, kind.String()
	case valueobject.OrderDelivered:
		return actionDeduct, kind.String()
	case valueobject.OrderShipped, valueobject.OrderPaid:
		return actionNoop, ""
	case valueobject.OrderUpdated:
		switch ev.Status {
		case "delivered":
			return actionDeduct, kind.String() + ":delivered"
		case "cancelled":
			return actionRelease, kind.String() + ":cancelled"
		default:
			return actionNoop, ""
		}
	default:
		return actionNoop, ""
	}
}

