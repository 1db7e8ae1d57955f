package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pickleparadise/pickle-store/internal/clock"
	"github.com/pickleparadise/pickle-store/internal/domain"
)

type OrderRepository interface {
	AllocationStore

	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetVariants(ctx context.Context, ids []string) (map[string]domain.ProductVariant, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	UpdateOrderNotes(ctx context.Context, id, notes string) error
}

type OrderService struct {
	repo    OrderRepository
	clock   clock.Clock
	taxRate decimal.Decimal
}

func NewOrderService(repo OrderRepository, clk clock.Clock, taxRate decimal.Decimal) *OrderService {
	return &OrderService{repo: repo, clock: clk, taxRate: taxRate}
}

type OrderItemInput struct {
	VariantID string
	Quantity  int
}

type CreateOrderInput struct {
	Principal       domain.Principal
	Items           []OrderItemInput
	ShippingAddress string
	BillingAddress  string
	PhoneNumber     string
	Email           string
	ShippingCost    decimal.Decimal
	Notes           string
}

// Shortage records an under-fulfilled line item: checkout is never blocked
// on stockout, the shortfall is surfaced in the order notes instead.
type Shortage struct {
	VariantID string
	SKU       string
	Requested int
	Fulfilled int
	Remainder int
}

type CreateOrderResult struct {
	Order     domain.Order
	Debits    []StockDebit
	Shortages []Shortage
}

// CreateOrder creates the order and its items atomically, then allocates
// stock for every line inside the same transaction.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	if len(in.Items) == 0 {
		return CreateOrderResult{}, domain.ErrNoItems
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return CreateOrderResult{}, domain.ErrInvalidQuantity
		}
	}

	now := s.clock.Now()
	var result CreateOrderResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ids := make([]string, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.VariantID)
		}
		variants, err := s.repo.GetVariants(txCtx, ids)
		if err != nil {
			return err
		}

		orderID := uuid.NewString()
		items := make([]domain.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			v, ok := variants[it.VariantID]
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrVariantNotFound, it.VariantID)
			}
			items = append(items, domain.OrderItem{
				ID:        uuid.NewString(),
				OrderID:   orderID,
				VariantID: v.ID,
				Quantity:  it.Quantity,
				Price:     v.Price, // copied at purchase time
			})
		}

		totals := domain.CalculateTotals(items, in.ShippingCost, s.taxRate)
		order := domain.Order{
			ID:              orderID,
			UserID:          in.Principal.UserID,
			OrderNumber:     domain.NewOrderNumber(),
			Status:          domain.OrderPending,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  in.BillingAddress,
			PhoneNumber:     in.PhoneNumber,
			Email:           in.Email,
			Subtotal:        totals.Subtotal,
			ShippingCost:    totals.Shipping,
			Tax:             totals.Tax,
			Total:           totals.Total,
			Notes:           in.Notes,
			Items:           items,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}

		var warnings []string
		for _, item := range items {
			res, err := allocate(txCtx, s.repo, now, item.ID, item.VariantID, item.Quantity)
			if err != nil {
				return err
			}
			result.Debits = append(result.Debits, res.Debits...)
			if res.Remainder > 0 {
				sku := variants[item.VariantID].SKU
				result.Shortages = append(result.Shortages, Shortage{
					VariantID: item.VariantID,
					SKU:       sku,
					Requested: item.Quantity,
					Fulfilled: res.Fulfilled,
					Remainder: res.Remainder,
				})
				warnings = append(warnings, fmt.Sprintf(
					"WARNING: insufficient stock for %s, %d unit(s) unfulfilled", sku, res.Remainder))
			}
		}

		if len(warnings) > 0 {
			notes := strings.TrimSpace(order.Notes + "\n" + strings.Join(warnings, "\n"))
			if err := s.repo.UpdateOrderNotes(txCtx, orderID, notes); err != nil {
				return err
			}
			order.Notes = notes
		}

		result.Order = order
		return nil
	})
	if err != nil {
		return CreateOrderResult{}, err
	}
	return result, nil
}

// CancelCredit is one inventory credit applied while reversing an order.
type CancelCredit struct {
	InventoryItemID string
	Quantity        int
}

type CancelOrderResult struct {
	Order   domain.Order
	Credits []CancelCredit
}

// CancelOrder transitions a pending or processing order to CANCELLED and
// credits back the exact inventory rows the allocator debited. Released
// ledger entries are skipped, so reversal is idempotent.
func (s *OrderService) CancelOrder(ctx context.Context, p domain.Principal, orderID string) (CancelOrderResult, error) {
	var result CancelOrderResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if !p.CanAccessOrder(order) {
			return domain.ErrPermissionDenied
		}
		if !order.Status.Cancellable() {
			return domain.ErrOrderNotCancellable
		}

		if err := s.repo.UpdateOrderStatus(txCtx, orderID, domain.OrderCancelled); err != nil {
			return err
		}

		allocs, err := s.repo.DebitedAllocations(txCtx, orderID)
		if err != nil {
			return err
		}
		for _, a := range allocs {
			if err := s.repo.AdjustInventoryQuantity(txCtx, a.InventoryItemID, a.Quantity); err != nil {
				return err
			}
			result.Credits = append(result.Credits, CancelCredit{
				InventoryItemID: a.InventoryItemID,
				Quantity:        a.Quantity,
			})
		}
		if err := s.repo.ReleaseAllocations(txCtx, orderID); err != nil {
			return err
		}

		order.Status = domain.OrderCancelled
		result.Order = order
		return nil
	})
	if err != nil {
		return CancelOrderResult{}, err
	}
	return result, nil
}

// UpdateStatus validates the target against the fixed enumeration and
// persists it. Beyond the cancel guard there is deliberately no transition
// graph: staff can move an order to any valid status.
func (s *OrderService) UpdateStatus(ctx context.Context, p domain.Principal, orderID, status string) (domain.Order, error) {
	if !p.IsStaff() {
		return domain.Order{}, domain.ErrPermissionDenied
	}
	st := domain.OrderStatus(status)
	if !st.Valid() {
		return domain.Order{}, domain.InvalidStatus(status)
	}

	var order domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateOrderStatus(txCtx, orderID, st); err != nil {
			return err
		}
		order.Status = st
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, p domain.Principal, orderID string) (domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !p.CanAccessOrder(order) {
		return domain.Order{}, domain.ErrPermissionDenied
	}
	return order, nil
}

// ListOrders returns every order for staff, and only the caller's own
// orders otherwise.
func (s *OrderService) ListOrders(ctx context.Context, p domain.Principal) ([]domain.Order, error) {
	if p.IsStaff() {
		return s.repo.ListOrders(ctx, "")
	}
	return s.repo.ListOrders(ctx, p.UserID)
}
