package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ecomsys/inventory-service/internal/domain/service"
)

// maxPayloadBytes is the size cap named in spec.md §4.4/§4.6; oversize
// payloads are rejected at the call site and must not reach the bus.
const maxPayloadBytes = 256 * 1024

// Config holds the broker and topic names used by the publisher and
// consumer adapters.
type Config struct {
	Brokers          []string
	InventoryTopic   string
	OrderCreatedTopic   string
	OrderUpdatedTopic   string
	OrderCancelledTopic string
	OrderDeliveredTopic string
	OrderShippedTopic   string
	OrderPaidTopic      string
	CatalogTopic        string
	ConsumerGroupID     string
}

// Publisher implements service.EventPublisherService with one kafka.Writer
// for the inventory topic, following the teacher's one-writer-per-topic
// convention.
type Publisher struct {
	writer *kafkago.Writer
}

func NewPublisher(cfg Config) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.InventoryTopic,
			Balancer:     &kafkago.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Publisher) publish(ctx context.Context, key, eventName string, body map[string]any) error {
	body["event"] = eventName
	body["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventName, err)
	}
	if len(payload) > maxPayloadBytes {
		return fmt.Errorf("%s payload of %d bytes exceeds %d byte cap", eventName, len(payload), maxPayloadBytes)
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	})
}

func (p *Publisher) PublishReserved(ctx context.Context, ev service.ReservedEvent) error {
	return p.publish(ctx, ev.SKU, service.EventReserved, map[string]any{
		"orderId":        ev.OrderID,
		"sku":            ev.SKU,
		"quantity":       ev.Quantity,
		"reservedStock":  ev.ReservedStock,
		"availableStock": ev.AvailableStock,
	})
}

func (p *Publisher) PublishReleased(ctx context.Context, ev service.ReleasedEvent) error {
	return p.publish(ctx, ev.SKU, service.EventReleased, map[string]any{
		"orderId":        ev.OrderID,
		"sku":            ev.SKU,
		"quantity":       ev.Quantity,
		"reservedStock":  ev.ReservedStock,
		"availableStock": ev.AvailableStock,
		"reason":         ev.Reason,
	})
}

func (p *Publisher) PublishDeducted(ctx context.Context, ev service.DeductedEvent) error {
	return p.publish(ctx, ev.SKU, service.EventDeducted, map[string]any{
		"orderId":        ev.OrderID,
		"sku":            ev.SKU,
		"quantity":       ev.Quantity,
		"remainingStock": ev.RemainingStock,
		"reservedStock":  ev.ReservedStock,
		"totalSold":      ev.TotalSold,
		"availableStock": ev.AvailableStock,
	})
}

func (p *Publisher) PublishLowStock(ctx context.Context, ev service.LowStockEvent) error {
	return p.publish(ctx, ev.SKU, service.EventLowStock, map[string]any{
		"sku":            ev.SKU,
		"stock":          ev.Stock,
		"reserved":       ev.Reserved,
		"availableStock": ev.AvailableStock,
		"threshold":      ev.Threshold,
	})
}

func (p *Publisher) PublishOutOfStock(ctx context.Context, ev service.OutOfStockEvent) error {
	return p.publish(ctx, ev.SKU, service.EventOutOfStock, map[string]any{
		"sku":       ev.SKU,
		"reserved":  ev.Reserved,
		"totalSold": ev.TotalSold,
	})
}

func (p *Publisher) PublishReservationRolledBack(ctx context.Context, ev service.ReservationRolledBackEvent) error {
	return p.publish(ctx, ev.SKU, service.EventReservationRolledBack, map[string]any{
		"orderId":  ev.OrderID,
		"sku":      ev.SKU,
		"quantity": ev.Quantity,
	})
}

func (p *Publisher) PublishPartialDeduction(ctx context.Context, ev service.PartialDeductionEvent) error {
	return p.publish(ctx, ev.OrderID, service.EventPartialDeduction, map[string]any{
		"orderId":        ev.OrderID,
		"deductedItems":  ev.DeductedItems,
		"failedItems":    ev.FailedItems,
	})
}

func (p *Publisher) PublishUpdated(ctx context.Context, ev service.UpdatedEvent) error {
	return p.publish(ctx, ev.SKU, service.EventUpdated, map[string]any{
		"sku":      ev.SKU,
		"stock":    ev.Stock,
		"location": ev.Location,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
