package valueobject

import (
	"errors"
	"strings"
)

// OrderEventKind classifies the lifecycle transition carried by an order
// topic message, per the event-to-action mapping in spec.md §4.5.
type OrderEventKind string

const (
	OrderCreated   OrderEventKind = "order.created"
	OrderUpdated   OrderEventKind = "order.updated"
	OrderCancelled OrderEventKind = "order.cancelled"
	OrderDelivered OrderEventKind = "order.delivered"
	OrderShipped   OrderEventKind = "order.shipped"
	OrderPaid      OrderEventKind = "order.paid"
)

func (k OrderEventKind) String() string {
	return string(k)
}

func (k OrderEventKind) IsValid() bool {
	switch k {
	case OrderCreated, OrderUpdated, OrderCancelled, OrderDelivered, OrderShipped, OrderPaid:
		return true
	default:
		return false
	}
}

func ParseOrderEventKind(kind string) (OrderEventKind, error) {
	k := OrderEventKind(strings.ToLower(strings.TrimSpace(kind)))
	if !k.IsValid() {
		return "", errors.New("invalid order event kind")
	}
	return k, nil
}
