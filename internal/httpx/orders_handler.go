package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/pickleparadise/pickle-store/internal/app"
	"github.com/pickleparadise/pickle-store/internal/domain"
	"github.com/pickleparadise/pickle-store/internal/events"
	"github.com/pickleparadise/pickle-store/internal/redisx"
)

// OrderAPI is the slice of the order service the handler needs.
type OrderAPI interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (app.CreateOrderResult, error)
	CancelOrder(ctx context.Context, p domain.Principal, orderID string) (app.CancelOrderResult, error)
	UpdateStatus(ctx context.Context, p domain.Principal, orderID, status string) (domain.Order, error)
	GetOrder(ctx context.Context, p domain.Principal, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context, p domain.Principal) ([]domain.Order, error)
}

type OrdersHandler struct {
	Svc    OrderAPI
	Events *EventPublisher
	Redis  *redis.Client
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(WithPrincipal)
		r.Post("/orders", h.create)
		r.Get("/orders", h.list)
		r.Get("/orders/{id}", h.get)
		r.Post("/orders/{id}/cancel", h.cancel)
		r.Post("/orders/{id}/status", h.updateStatus)
	})
}

type orderItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	ShippingAddress string             `json:"shipping_address"`
	BillingAddress  string             `json:"billing_address"`
	PhoneNumber     string             `json:"phone_number"`
	Email           string             `json:"email"`
	ShippingCost    decimal.Decimal    `json:"shipping_cost"`
	Notes           string             `json:"notes"`
}

type orderItemResponse struct {
	ID        string          `json:"id"`
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          string              `json:"user_id"`
	Status          string              `json:"status"`
	ShippingAddress string              `json:"shipping_address"`
	BillingAddress  string              `json:"billing_address"`
	PhoneNumber     string              `json:"phone_number"`
	Email           string              `json:"email"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	Tax             decimal.Decimal     `json:"tax"`
	Total           decimal.Decimal     `json:"total"`
	Notes           string              `json:"notes,omitempty"`
	Items           []orderItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PhoneNumber:     o.PhoneNumber,
		Email:           o.Email,
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		Tax:             o.Tax,
		Total:           o.Total,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:        it.ID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		})
	}
	return resp
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	if req.ShippingAddress == "" || req.BillingAddress == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shipping_address and billing_address are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p := principalFrom(r)

	// Fast-path idempotency: a replayed Idempotency-Key returns the order
	// already created for it.
	idemKey := ""
	if k := r.Header.Get("Idempotency-Key"); k != "" && h.Redis != nil {
		idemKey = fmt.Sprintf(redisx.KeyIdemOrderCreate, k)
		if orderID, err := h.Redis.Get(ctx, idemKey).Result(); err == nil && orderID != "" {
			order, err := h.Svc.GetOrder(ctx, p, orderID)
			if err == nil {
				writeJSON(w, http.StatusOK, toOrderResponse(order))
				return
			}
		}
	}

	items := make([]app.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, app.OrderItemInput{VariantID: it.VariantID, Quantity: it.Quantity})
	}

	res, err := h.Svc.CreateOrder(ctx, app.CreateOrderInput{
		Principal:       p,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PhoneNumber:     req.PhoneNumber,
		Email:           req.Email,
		ShippingCost:    req.ShippingCost,
		Notes:           req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	order := res.Order

	if h.Redis != nil {
		if idemKey != "" {
			_ = h.Redis.Set(ctx, idemKey, order.ID, redisx.TTLIdempotency).Err()
		}
		h.cacheStatus(ctx, order.ID, order.Status)
	}

	trace := r.Header.Get("X-Request-Id")
	h.Events.PublishOrderCreated(order.ID, trace, orderCreatedPayload(order))
	h.Events.PublishStockDebited(order.ID, trace, stockDebitedPayload(order.ID, res))

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Svc.GetOrder(ctx, principalFrom(r), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.Svc.ListOrders(ctx, principalFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.CancelOrder(ctx, principalFrom(r), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.Redis != nil {
		h.cacheStatus(ctx, orderID, res.Order.Status)
	}

	credits := make([]events.CreditLine, 0, len(res.Credits))
	for _, c := range res.Credits {
		credits = append(credits, events.CreditLine{InventoryItemID: c.InventoryItemID, Quantity: c.Quantity})
	}
	h.Events.PublishOrderCancelled(orderID, r.Header.Get("X-Request-Id"),
		events.OrderCancelledPayload{OrderID: orderID, Credits: credits})

	writeJSON(w, http.StatusOK, toOrderResponse(res.Order))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Svc.UpdateStatus(ctx, principalFrom(r), orderID, req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.Redis != nil {
		h.cacheStatus(ctx, orderID, order.Status)
	}
	h.Events.PublishStatusChanged(orderID, r.Header.Get("X-Request-Id"),
		events.OrderStatusChangedPayload{OrderID: orderID, Status: string(order.Status)})

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, status domain.OrderStatus) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, status), redisx.TTLStatusCache).Err()
}

func orderCreatedPayload(o domain.Order) events.OrderCreatedPayload {
	items := make([]events.ItemLine, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.ItemLine{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			Price:     it.Price.String(),
		})
	}
	return events.OrderCreatedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Items:       items,
		Total:       o.Total.String(),
	}
}

func stockDebitedPayload(orderID string, res app.CreateOrderResult) events.StockDebitedPayload {
	p := events.StockDebitedPayload{OrderID: orderID}
	for _, d := range res.Debits {
		p.Debits = append(p.Debits, events.DebitLine{
			InventoryItemID: d.InventoryItemID,
			VariantID:       d.VariantID,
			Quantity:        d.Quantity,
			Remaining:       d.Remaining,
			Threshold:       d.Threshold,
		})
	}
	for _, s := range res.Shortages {
		p.Shortages = append(p.Shortages, events.ShortageLine{
			VariantID: s.VariantID,
			SKU:       s.SKU,
			Requested: s.Requested,
			Fulfilled: s.Fulfilled,
			Remainder: s.Remainder,
		})
	}
	return p
}
