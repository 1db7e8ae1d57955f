package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pickleparadise/pickle-store/internal/app"
	"github.com/pickleparadise/pickle-store/internal/domain"
	"github.com/pickleparadise/pickle-store/internal/events"
)

type PaymentAPI interface {
	CreateIntent(ctx context.Context, p domain.Principal, orderID string) (string, error)
	Confirm(ctx context.Context, p domain.Principal, in app.ConfirmPaymentInput) (domain.Payment, error)
}

type PaymentsHandler struct {
	Svc    PaymentAPI
	Events *EventPublisher
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(WithPrincipal)
		r.Post("/payments/intent", h.createIntent)
		r.Post("/payments/confirm", h.confirm)
	})
}

type createIntentRequest struct {
	OrderID string `json:"order_id"`
}

func (h *PaymentsHandler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_id is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	secret, err := h.Svc.CreateIntent(ctx, principalFrom(r), req.OrderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"client_secret": secret})
}

type confirmPaymentRequest struct {
	OrderID         string `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentMethod   string `json:"payment_method"`
}

type paymentResponse struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
}

func (h *PaymentsHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.OrderID == "" || req.PaymentIntentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_id and payment_intent_id are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	payment, err := h.Svc.Confirm(ctx, principalFrom(r), app.ConfirmPaymentInput{
		OrderID:         req.OrderID,
		PaymentIntentID: req.PaymentIntentID,
		Method:          domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// a confirmed payment moves the order to PROCESSING
	h.Events.PublishStatusChanged(payment.OrderID, r.Header.Get("X-Request-Id"),
		events.OrderStatusChangedPayload{OrderID: payment.OrderID, Status: string(domain.OrderProcessing)})

	writeJSON(w, http.StatusOK, paymentResponse{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		Method:        string(payment.Method),
		TransactionID: payment.TransactionID,
		Status:        string(payment.Status),
	})
}
