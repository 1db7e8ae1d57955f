package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pickleparadise/pickle-store/internal/domain"
)

type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) CreateBatch(ctx context.Context, b domain.Batch) error {
	const stmt = `
INSERT INTO batches (id, batch_number, production_date, expiry_date, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := exec(ctx, r.pool, stmt, b.ID, b.BatchNumber, b.ProductionDate, b.ExpiryDate, b.Notes, b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("batch number %s: %w", b.BatchNumber, domain.ErrInventoryConflict)
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

func (r *InventoryRepository) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	const q = `SELECT id, batch_number, production_date, expiry_date, COALESCE(notes, ''), created_at
FROM batches WHERE id = $1`

	var b domain.Batch
	err := queryRow(ctx, r.pool, q, id).
		Scan(&b.ID, &b.BatchNumber, &b.ProductionDate, &b.ExpiryDate, &b.Notes, &b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Batch{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Batch{}, domain.ErrBatchNotFound
		}
		return domain.Batch{}, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

func (r *InventoryRepository) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	const stmt = `
INSERT INTO inventory_items (id, variant_id, batch_id, quantity, low_stock_threshold, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := exec(ctx, r.pool, stmt,
		item.ID, item.VariantID, item.BatchID, item.Quantity, item.LowStockThreshold,
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInventoryConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrVariantNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create inventory item: %w", err)
	}
	return nil
}

func (r *InventoryRepository) GetInventoryItem(ctx context.Context, id string) (domain.InventoryItem, error) {
	const q = `SELECT id, variant_id, batch_id, quantity, low_stock_threshold, created_at, updated_at
FROM inventory_items WHERE id = $1`

	var it domain.InventoryItem
	err := queryRow(ctx, r.pool, q, id).
		Scan(&it.ID, &it.VariantID, &it.BatchID, &it.Quantity, &it.LowStockThreshold, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.InventoryItem{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.InventoryItem{}, domain.ErrInventoryNotFound
		}
		return domain.InventoryItem{}, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

func (r *InventoryRepository) AdjustInventoryQuantity(ctx context.Context, id string, delta int) error {
	ct, err := exec(ctx, r.pool,
		`UPDATE inventory_items SET quantity = quantity + $2, updated_at = NOW() WHERE id = $1`, id, delta)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidQuantity
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("adjust inventory quantity: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

// LowStock returns rows at or below their own threshold, lowest stock first.
func (r *InventoryRepository) LowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	const q = `SELECT id, variant_id, batch_id, quantity, low_stock_threshold, created_at, updated_at
FROM inventory_items
WHERE quantity <= low_stock_threshold
ORDER BY quantity ASC, id`

	rows, err := query(ctx, r.pool, q)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
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
	return out, rows.Err()
}
