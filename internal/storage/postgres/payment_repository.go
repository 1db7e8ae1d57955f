package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pickleparadise/pickle-store/internal/domain"
)

// PaymentRepository reuses the order queries for fetch/status and adds the
// payments table itself.
type PaymentRepository struct {
	pool   *pgxpool.Pool
	orders *OrderRepository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool, orders: NewOrderRepository(pool)}
}

func (r *PaymentRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PaymentRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return r.orders.GetOrder(ctx, id)
}

func (r *PaymentRepository) GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return r.orders.GetOrderForUpdate(ctx, id)
}

func (r *PaymentRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return r.orders.UpdateOrderStatus(ctx, id, status)
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, p domain.Payment) error {
	const stmt = `
INSERT INTO payments (id, order_id, amount, payment_method, transaction_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := exec(ctx, r.pool, stmt,
		p.ID, p.OrderID, p.Amount, p.Method, p.TransactionID, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}
