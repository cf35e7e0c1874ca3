// internal/domain/entity/errors.go
package entity

import "errors"

// Sentinel errors for the inventory reservation core. Use-cases wrap these
// with utils.ErrorBuilder; adapters classify with errors.Is against this set.
var (
	ErrInventoryNotFound    = errors.New("inventory item not found")
	ErrSKUAlreadyExists     = errors.New("sku already exists")
	ErrInsufficientStock    = errors.New("insufficient available stock")
	ErrInsufficientReserved = errors.New("insufficient reserved stock")
	ErrStockBelowReserved   = errors.New("stock update would drop below reserved quantity")
	ErrValidation           = errors.New("invalid request")
	ErrLockBusy             = errors.New("could not acquire inventory lock")
	ErrDuplicateEvent       = errors.New("order event already applied")
	ErrStoreUnavailable     = errors.New("inventory store unavailable")
	ErrBusUnavailable       = errors.New("event bus unavailable")
	ErrReservationNotFound  = errors.New("reservation ledger entry not found")
	ErrMalformedEvent       = errors.New("malformed order event")
	ErrPayloadTooLarge      = errors.New("event payload exceeds size cap")
)
