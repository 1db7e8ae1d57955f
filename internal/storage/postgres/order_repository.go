package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pickleparadise/pickle-store/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) GetVariants(ctx context.Context, ids []string) (map[string]domain.ProductVariant, error) {
	const q = `SELECT id, product_id, size, price, sku FROM product_variants WHERE id = ANY($1)`

	rows, err := query(ctx, r.pool, q, ids)
	if err != nil {
		return nil, fmt.Errorf("get variants: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.ProductVariant, len(ids))
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Price, &v.SKU); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("get variants: %w", err)
	}
	return out, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const orderStmt = `
INSERT INTO orders (id, user_id, order_number, status, shipping_address, billing_address,
                    phone_number, email, subtotal, shipping_cost, tax, total, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := exec(ctx, r.pool, orderStmt,
		order.ID, order.UserID, order.OrderNumber, order.Status,
		order.ShippingAddress, order.BillingAddress, order.PhoneNumber, order.Email,
		order.Subtotal, order.ShippingCost, order.Tax, order.Total,
		order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	const itemStmt = `
INSERT INTO order_items (id, order_id, variant_id, quantity, price)
VALUES ($1, $2, $3, $4, $5)`

	for _, it := range order.Items {
		if _, err := exec(ctx, r.pool, itemStmt, it.ID, it.OrderID, it.VariantID, it.Quantity, it.Price); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

const orderColumns = `id, user_id, order_number, status, shipping_address, billing_address,
phone_number, email, subtotal, shipping_cost, tax, total, COALESCE(notes, ''), created_at, updated_at`

func (r *OrderRepository) scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status,
		&o.ShippingAddress, &o.BillingAddress, &o.PhoneNumber, &o.Email,
		&o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const q = `SELECT id, order_id, variant_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := query(ctx, r.pool, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.VariantID, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := r.scanOrder(queryRow(ctx, r.pool, q, id))
	if err != nil {
		return domain.Order{}, err
	}
	order.Items, err = r.loadItems(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	order, err := r.scanOrder(queryRow(ctx, r.pool, q, id))
	if err != nil {
		return domain.Order{}, err
	}
	order.Items, err = r.loadItems(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// ListOrders returns orders newest-first; an empty userID means all orders.
func (r *OrderRepository) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if userID != "" {
		q += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := query(ctx, r.pool, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status,
			&o.ShippingAddress, &o.BillingAddress, &o.PhoneNumber, &o.Email,
			&o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total,
			&o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	ct, err := exec(ctx, r.pool, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) UpdateOrderNotes(ctx context.Context, id, notes string) error {
	ct, err := exec(ctx, r.pool, `UPDATE orders SET notes = $2, updated_at = NOW() WHERE id = $1`, id, notes)
	if err != nil {
		return fmt.Errorf("update order notes: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ListInventoryForUpdate locks the variant's stocked rows in allocation
// order: earliest batch expiry first.
func (r *OrderRepository) ListInventoryForUpdate(ctx context.Context, variantID string) ([]domain.InventoryItem, error) {
	const q = `
SELECT ii.id, ii.variant_id, ii.batch_id, ii.quantity, ii.low_stock_threshold, ii.created_at, ii.updated_at
FROM inventory_items ii
JOIN batches b ON b.id = ii.batch_id
WHERE ii.variant_id = $1 AND ii.quantity > 0
ORDER BY b.expiry_date ASC, ii.id
FOR UPDATE OF ii`

	rows, err := query(ctx, r.pool, q, variantID)
	if err != nil {
		return nil, fmt.Errorf("list inventory for update: %w", err)
	}
	defer rows.Close()

	var out []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.VariantID, &it.BatchID, &it.Quantity,
			&it.LowStockThreshold, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, err
	}
	return out, nil
}

func (r *OrderRepository) AdjustInventoryQuantity(ctx context.Context, id string, delta int) error {
	ct, err := exec(ctx, r.pool,
		`UPDATE inventory_items SET quantity = quantity + $2, updated_at = NOW() WHERE id = $1`, id, delta)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidQuantity
		}
		return fmt.Errorf("adjust inventory quantity: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

func (r *OrderRepository) RecordAllocation(ctx context.Context, a domain.Allocation) error {
	const stmt = `
INSERT INTO order_allocations (id, order_item_id, inventory_item_id, quantity, state, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := exec(ctx, r.pool, stmt,
		a.ID, a.OrderItemID, a.InventoryItemID, a.Quantity, a.State, a.CreatedAt); err != nil {
		return fmt.Errorf("record allocation: %w", err)
	}
	return nil
}

func (r *OrderRepository) DebitedAllocations(ctx context.Context, orderID string) ([]domain.Allocation, error) {
	const q = `
SELECT oa.id, oa.order_item_id, oa.inventory_item_id, oa.quantity, oa.state, oa.created_at
FROM order_allocations oa
JOIN order_items oi ON oi.id = oa.order_item_id
WHERE oi.order_id = $1 AND oa.state = 'DEBITED'
ORDER BY oa.created_at, oa.id
FOR UPDATE OF oa`

	rows, err := query(ctx, r.pool, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("debited allocations: %w", err)
	}
	defer rows.Close()

	var out []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		if err := rows.Scan(&a.ID, &a.OrderItemID, &a.InventoryItemID, &a.Quantity, &a.State, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *OrderRepository) ReleaseAllocations(ctx context.Context, orderID string) error {
	const stmt = `
UPDATE order_allocations SET state = 'RELEASED'
WHERE state = 'DEBITED'
  AND order_item_id IN (SELECT id FROM order_items WHERE order_id = $1)`

	if _, err := exec(ctx, r.pool, stmt, orderID); err != nil {
		return fmt.Errorf("release allocations: %w", err)
	}
	return nil
}
