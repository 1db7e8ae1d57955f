package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pickleparadise/pickle-store/internal/clock"
	"github.com/pickleparadise/pickle-store/internal/domain"
)

type PaymentRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	CreatePayment(ctx context.Context, pay domain.Payment) error
}

// PaymentService simulates the processor integration: intents are issued
// locally and confirmation is taken at face value (no gateway round-trip).
type PaymentService struct {
	repo  PaymentRepository
	clock clock.Clock
}

func NewPaymentService(repo PaymentRepository, clk clock.Clock) *PaymentService {
	return &PaymentService{repo: repo, clock: clk}
}

// CreateIntent returns a client secret for the order after an ownership
// check. The amount is the order total, not client input.
func (s *PaymentService) CreateIntent(ctx context.Context, p domain.Principal, orderID string) (string, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !p.CanAccessOrder(order) {
		return "", domain.ErrPermissionDenied
	}
	return fmt.Sprintf("pi_%s_secret", uuid.NewString()), nil
}

type ConfirmPaymentInput struct {
	OrderID         string
	PaymentIntentID string
	Method          domain.PaymentMethod
}

// Confirm records a completed payment for the order total and moves the
// order to PROCESSING.
func (s *PaymentService) Confirm(ctx context.Context, p domain.Principal, in ConfirmPaymentInput) (domain.Payment, error) {
	if !in.Method.Valid() {
		return domain.Payment{}, fmt.Errorf("%w: %q", domain.ErrInvalidPayMethod, in.Method)
	}

	now := s.clock.Now()
	var payment domain.Payment

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, in.OrderID)
		if err != nil {
			return err
		}
		if !p.CanAccessOrder(order) {
			return domain.ErrPermissionDenied
		}

		payment = domain.Payment{
			ID:            uuid.NewString(),
			OrderID:       order.ID,
			Amount:        order.Total,
			Method:        in.Method,
			TransactionID: in.PaymentIntentID,
			Status:        domain.PaymentCompleted,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.CreatePayment(txCtx, payment); err != nil {
			return err
		}
		return s.repo.UpdateOrderStatus(txCtx, order.ID, domain.OrderProcessing)
	})
	if err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}
