package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderCancelled     = "OrderCancelled"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventStockDebited       = "StockDebited"
)

// Envelope wraps every published event with routing and tracing metadata;
// the payload stays raw until a consumer knows the event type.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemLine struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID     string     `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	UserID      string     `json:"user_id"`
	Items       []ItemLine `json:"items"`
	Total       string     `json:"total"`
}

type DebitLine struct {
	InventoryItemID string `json:"inventory_item_id"`
	VariantID       string `json:"variant_id"`
	Quantity        int    `json:"quantity"`
	Remaining       int    `json:"remaining"`
	Threshold       int    `json:"threshold"`
}

type ShortageLine struct {
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
	Requested int    `json:"requested"`
	Fulfilled int    `json:"fulfilled"`
	Remainder int    `json:"remainder"`
}

type StockDebitedPayload struct {
	OrderID   string         `json:"order_id"`
	Debits    []DebitLine    `json:"debits"`
	Shortages []ShortageLine `json:"shortages,omitempty"`
}

type CreditLine struct {
	InventoryItemID string `json:"inventory_item_id"`
	Quantity        int    `json:"quantity"`
}

type OrderCancelledPayload struct {
	OrderID string       `json:"order_id"`
	Credits []CreditLine `json:"credits"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
