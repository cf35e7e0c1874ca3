package usecase

import (
	"context"
	"time"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
	"github.com/ecomsys/inventory-service/internal/domain/repository"
	"github.com/ecomsys/inventory-service/internal/domain/service"
	"github.com/ecomsys/inventory-service/pkg/logger"
	"github.com/ecomsys/inventory-service/pkg/utils"
)

// CatalogEventHandler applies product.created/product.updated messages to
// the inventory store, per spec.md §6. product.updated goes through the
// non-atomic UpdateFields path, guarded by the store-level predicate that a
// stock patch must not drop below the current reserved quantity.
type CatalogEventHandler struct {
	repo    repository.InventoryRepository
	events  service.EventPublisherService
	log     logger.Logger
	errBldr *utils.ErrorBuilder
}

func NewCatalogEventHandler(
	repo repository.InventoryRepository,
	events service.EventPublisherService,
	log logger.Logger,
) *CatalogEventHandler {
	return &CatalogEventHandler{
		repo:    repo,
		events:  events,
		log:     log,
		errBldr: utils.NewErrorBuilder("CatalogEventHandler"),
	}
}

func (h *CatalogEventHandler) Handle(ctx context.Context, ev service.CatalogEvent) error {
	if ev.SKU == "" {
		h.log.Warn("dropping catalog event with empty sku")
		return nil
	}

	switch ev.Kind {
	case "product.created":
		stock := utils.ValueOr(ev.InitialStock)
		item := &entity.InventoryItem{
			SKU:      ev.SKU,
			Stock:    stock,
			Reserved: 0,
			Location: ev.Location,
		}
		if err := h.repo.Create(ctx, item); err != nil {
			return h.errBldr.Err(err)
		}
		return nil

	case "product.updated":
		if ev.Stock == nil && ev.Location == nil {
			h.log.Warn("dropping product.updated with no patchable fields", "sku", ev.SKU)
			return nil
		}
		applied, err := h.repo.UpdateFields(ctx, ev.SKU, ev.Stock, ev.Location)
		if err != nil {
			return h.errBldr.Err(err)
		}
		if !applied {
			h.log.Warn("product.updated rejected, would drop stock below reserved", "sku", ev.SKU)
			return nil
		}
		item, err := h.repo.FindBySKU(ctx, ev.SKU)
		if err != nil {
			return h.errBldr.Err(err)
		}
		if err := h.events.PublishUpdated(ctx, service.UpdatedEvent{
			SKU:       ev.SKU,
			Stock:     item.Stock,
			Location:  item.Location,
			Timestamp: time.Now(),
		}); err != nil {
			h.log.Error("failed to publish inventory.updated", "sku", ev.SKU, "error", err)
		}
		return nil

	default:
		h.log.Warn("dropping unrecognized catalog event kind", "kind", ev.Kind)
		return nil
	}
}
