package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ecomsys/inventory-service/internal/domain/service"
	"github.com/ecomsys/inventory-service/internal/domain/valueobject"
	"github.com/ecomsys/inventory-service/pkg/logger"
)

// OrderHandler is the subset of usecase.OrderEventHandler the consumer
// depends on.
type OrderHandler interface {
	Handle(ctx context.Context, ev service.OrderEvent) error
}

// CatalogHandler is the subset of usecase.CatalogEventHandler the consumer
// depends on.
type CatalogHandler interface {
	Handle(ctx context.Context, ev service.CatalogEvent) error
}

// wireOrderEvent is the common inbound shape of an order.* message, per
// spec.md §6: {orderId|_id, status, buyerId, items:[{sku,quantity,...}]}.
type wireOrderEvent struct {
	OrderID string `json:"orderId"`
	ID      string `json:"_id"`
	Status  string `json:"status"`
	BuyerID string `json:"buyerId"`
	Items   []struct {
		SKU      string `json:"sku"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

// wireCatalogEvent is the common inbound shape of a product.* message.
type wireCatalogEvent struct {
	Event        string `json:"event"`
	SKU          string `json:"sku"`
	InitialStock *int   `json:"initialStock"`
	Stock        *int   `json:"stock"`
	Location     *string `json:"location"`
}

// topicReader pairs one kafka.Reader with the order-lifecycle kind it
// carries, following the teacher's one-reader-per-topic convention
// generalized to the six subscribed topics of spec.md §4.5, all sharing a
// single consumer group so partition assignment is coordinated.
type topicReader struct {
	reader *kafkago.Reader
	kind   valueobject.OrderEventKind
}

// Consumer subscribes to the six order lifecycle topics and the product
// catalog topic, decoding each message and handing it to a handler.
type Consumer struct {
	orderReaders   []topicReader
	catalogReader  *kafkago.Reader
	orderHandler   OrderHandler
	catalogHandler CatalogHandler
	log            logger.Logger
	lastCommitNano int64
}

// LastCommitTime reports the time of the most recent successful offset
// commit across all subscribed topics, used by the health check to detect a
// consumer goroutine that stopped making progress. Safe for concurrent use.
func (c *Consumer) LastCommitTime() time.Time {
	nano := atomic.LoadInt64(&c.lastCommitNano)
	if nano == 0 {
		return time.Time{}
	}
	return time.Unix(0, nano)
}

func NewConsumer(cfg Config, orderHandler OrderHandler, catalogHandler CatalogHandler, log logger.Logger) *Consumer {
	topics := []struct {
		name string
		kind valueobject.OrderEventKind
	}{
		{cfg.OrderCreatedTopic, valueobject.OrderCreated},
		{cfg.OrderUpdatedTopic, valueobject.OrderUpdated},
		{cfg.OrderCancelledTopic, valueobject.OrderCancelled},
		{cfg.OrderDeliveredTopic, valueobject.OrderDelivered},
		{cfg.OrderShippedTopic, valueobject.OrderShipped},
		{cfg.OrderPaidTopic, valueobject.OrderPaid},
	}

	readers := make([]topicReader, 0, len(topics))
	for _, t := range topics {
		readers = append(readers, topicReader{
			kind: t.kind,
			reader: kafkago.NewReader(kafkago.ReaderConfig{
				Brokers: cfg.Brokers,
				Topic:   t.name,
				GroupID: cfg.ConsumerGroupID,
			}),
		})
	}

	catalogReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.CatalogTopic,
		GroupID: cfg.ConsumerGroupID,
	})

	return &Consumer{
		orderReaders:   readers,
		catalogReader:  catalogReader,
		orderHandler:   orderHandler,
		catalogHandler: catalogHandler,
		log:            log,
	}
}

// Start launches one goroutine per topic. Each loop fetches a message,
// invokes the handler, and commits the offset only after the handler
// returns, per spec.md §4.5's offset-commit requirement: a crash between
// processing and commit replays the message, neutralised by the handler's
// own deduplication record.
func (c *Consumer) Start(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, tr := range c.orderReaders {
		wg.Add(1)
		go func(tr topicReader) {
			defer wg.Done()
			c.consumeOrderTopic(ctx, tr)
		}(tr)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.consumeCatalogTopic(ctx)
	}()

	wg.Wait()
	return nil
}

func (c *Consumer) consumeOrderTopic(ctx context.Context, tr topicReader) {
	for {
		msg, err := tr.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("fetch order message failed", "topic", tr.reader.Config().Topic, "error", err)
			continue
		}

		var w wireOrderEvent
		if err := json.Unmarshal(msg.Value, &w); err != nil {
			c.log.Warn("dropping malformed order event", "topic", tr.reader.Config().Topic, "error", err)
			c.commit(ctx, tr.reader, msg)
			continue
		}

		orderID := w.OrderID
		if orderID == "" {
			orderID = w.ID
		}
		items := make([]service.OrderItem, 0, len(w.Items))
		for _, it := range w.Items {
			items = append(items, service.OrderItem{SKU: it.SKU, Quantity: it.Quantity})
		}

		ev := service.OrderEvent{
			OrderID: orderID,
			Kind:    tr.kind.String(),
			Status:  w.Status,
			BuyerID: w.BuyerID,
			Items:   items,
		}

		if err := c.orderHandler.Handle(ctx, ev); err != nil {
			c.log.Error("order event handler failed", "topic", tr.reader.Config().Topic, "orderId", orderID, "error", err)
		}

		c.commit(ctx, tr.reader, msg)
	}
}

func (c *Consumer) consumeCatalogTopic(ctx context.Context) {
	for {
		msg, err := c.catalogReader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("fetch catalog message failed", "error", err)
			continue
		}

		var w wireCatalogEvent
		if err := json.Unmarshal(msg.Value, &w); err != nil {
			c.log.Warn("dropping malformed catalog event", "error", err)
			c.commit(ctx, c.catalogReader, msg)
			continue
		}

		ev := service.CatalogEvent{
			Kind:         w.Event,
			SKU:          w.SKU,
			InitialStock: w.InitialStock,
			Stock:        w.Stock,
			Location:     w.Location,
		}

		if err := c.catalogHandler.Handle(ctx, ev); err != nil {
			c.log.Error("catalog event handler failed", "sku", w.SKU, "error", err)
		}

		c.commit(ctx, c.catalogReader, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, reader *kafkago.Reader, msg kafkago.Message) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		c.log.Error("commit offset failed", "topic", reader.Config().Topic, "error", err)
		return
	}
	atomic.StoreInt64(&c.lastCommitNano, time.Now().UnixNano())
}

func (c *Consumer) Close() error {
	for _, tr := range c.orderReaders {
		if err := tr.reader.Close(); err != nil {
			return fmt.Errorf("close order reader: %w", err)
		}
	}
	return c.catalogReader.Close()
}
