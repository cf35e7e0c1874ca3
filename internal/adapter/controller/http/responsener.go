package httpctl

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ecomsys/inventory-service/internal/domain/entity"
)

var ErrBadRequest = errors.New("bad request")

type successResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func SuccessResp(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(successResponse{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// HandleError builds an appropriate Fiber error response based on the
// domain error, following the teacher's errors.Is classification switch.
func HandleError(c *fiber.Ctx, err error) error {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, entity.ErrValidation):
		statusCode = http.StatusBadRequest
		message = "bad request"
	case errors.Is(err, entity.ErrInventoryNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		message = "inventory item not found"
	case errors.Is(err, entity.ErrSKUAlreadyExists):
		statusCode = http.StatusConflict
		message = "sku already exists"
	case errors.Is(err, entity.ErrInsufficientStock), errors.Is(err, entity.ErrInsufficientReserved):
		statusCode = http.StatusBadRequest
		message = "insufficient stock"
	case errors.Is(err, entity.ErrLockBusy):
		statusCode = http.StatusConflict
		message = "inventory item is locked, retry shortly"
	default:
		statusCode = http.StatusInternalServerError
		message = "something went wrong"
	}

	return c.Status(statusCode).JSON(ErrorResponse{
		Status:  statusCode,
		Message: message,
	})
}
