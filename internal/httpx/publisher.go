package httpx

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/pickleparadise/pickle-store/internal/events"
	kafkax "github.com/pickleparadise/pickle-store/internal/kafka"
)

// EventPublisher fans handler-side events out to their per-topic
// producers. A nil publisher disables publishing (tests).
type EventPublisher struct {
	OrderCreated   *kafkax.Producer
	OrderCancelled *kafkax.Producer
	StatusChanged  *kafkax.Producer
	StockDebited   *kafkax.Producer
	Service        string
}

func (p *EventPublisher) publish(prod *kafkax.Producer, eventType, orderID, traceID string, payload any) {
	if p == nil || prod == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	prod.Publish(events.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (p *EventPublisher) PublishOrderCreated(orderID, traceID string, payload events.OrderCreatedPayload) {
	if p == nil {
		return
	}
	p.publish(p.OrderCreated, events.EventOrderCreated, orderID, traceID, payload)
}

func (p *EventPublisher) PublishStockDebited(orderID, traceID string, payload events.StockDebitedPayload) {
	if p == nil {
		return
	}
	p.publish(p.StockDebited, events.EventStockDebited, orderID, traceID, payload)
}

func (p *EventPublisher) PublishOrderCancelled(orderID, traceID string, payload events.OrderCancelledPayload) {
	if p == nil {
		return
	}
	p.publish(p.OrderCancelled, events.EventOrderCancelled, orderID, traceID, payload)
}

func (p *EventPublisher) PublishStatusChanged(orderID, traceID string, payload events.OrderStatusChangedPayload) {
	if p == nil {
		return
	}
	p.publish(p.StatusChanged, events.EventOrderStatusChanged, orderID, traceID, payload)
}
