package httpctl

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ecomsys/inventory-service/internal/adapter/dto"
	"github.com/ecomsys/inventory-service/internal/domain/entity"
	"github.com/ecomsys/inventory-service/internal/usecase"
	"github.com/ecomsys/inventory-service/pkg/logger"
)

// InventoryHandler serves the administrative HTTP surface of spec.md §4.7.
type InventoryHandler struct {
	admin     *usecase.AdminUsecase
	logger    logger.Logger
	validator *validator.Validate
}

func NewInventoryHandler(admin *usecase.AdminUsecase, log logger.Logger) *InventoryHandler {
	return &InventoryHandler{admin: admin, logger: log, validator: validator.New()}
}

func (h *InventoryHandler) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	api := r.Group("/inventory")

	api.Post("/", authMiddleware, h.CreateItem)
	api.Get("/batch", h.GetBatch)
	api.Get("/low-stock", h.ListLowStock)
	api.Get("/:sku/transactions", h.ListTransactions)
	api.Get("/:sku", h.GetItem)
	api.Get("/", h.ListItems)
}

func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var req dto.CreateInventoryItemRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("failed to parse create item request", "error", err)
		return HandleError(c, ErrBadRequest)
	}
	if err := h.validator.Struct(&req); err != nil {
		h.logger.Error("create item request failed validation", "error", err)
		return HandleError(c, ErrBadRequest)
	}

	item := req.ToEntity()
	if err := h.admin.CreateItem(c.Context(), &item); err != nil {
		h.logger.Error("failed to create inventory item", "sku", req.SKU, "error", err)
		return HandleError(c, err)
	}

	return SuccessResp(c, fiber.StatusCreated, "inventory item created", dto.NewInventoryItemResponse(&item))
}

func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	sku := c.Params("sku")
	if sku == "" {
		return HandleError(c, ErrBadRequest)
	}

	item, err := h.admin.GetItem(c.Context(), sku)
	if err != nil {
		h.logger.Error("failed to get inventory item", "sku", sku, "error", err)
		return HandleError(c, err)
	}

	return SuccessResp(c, fiber.StatusOK, "inventory item retrieved", dto.NewInventoryItemResponse(item))
}

func (h *InventoryHandler) GetBatch(c *fiber.Ctx) error {
	raw := c.Query("skus")
	if raw == "" {
		return HandleError(c, ErrBadRequest)
	}
	skus := strings.Split(raw, ",")
	for i := range skus {
		skus[i] = strings.TrimSpace(skus[i])
	}

	items := h.admin.GetItemsBySKUs(c.Context(), skus)
	return SuccessResp(c, fiber.StatusOK, "inventory items retrieved", dto.NewBatchInventoryResponse(items))
}

func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	page, pageSize := parsePagination(c)
	filter := entity.InventoryFilter{
		SKU:      c.Query("sku"),
		Location: c.Query("location"),
	}

	items, total, err := h.admin.ListItems(c.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list inventory items", "error", err)
		return HandleError(c, err)
	}

	return SuccessResp(c, fiber.StatusOK, "inventory items listed", dto.NewInventoryItemsWithTotal(items, total))
}

func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	sku := c.Params("sku")
	if sku == "" {
		return HandleError(c, ErrBadRequest)
	}
	page, pageSize := parsePagination(c)

	txs, total, err := h.admin.ListTransactions(c.Context(), sku, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list stock transactions", "sku", sku, "error", err)
		return HandleError(c, err)
	}

	return SuccessResp(c, fiber.StatusOK, "stock transactions listed", dto.NewStockTransactionsWithTotal(txs, total))
}

func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	page, pageSize := parsePagination(c)

	items, total, err := h.admin.ListLowStock(c.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list low stock items", "error", err)
		return HandleError(c, err)
	}

	return SuccessResp(c, fiber.StatusOK, "low stock items listed", dto.NewInventoryItemsWithTotal(items, total))
}

func parsePagination(c *fiber.Ctx) (page, pageSize int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.Query("pageSize", "20"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}
