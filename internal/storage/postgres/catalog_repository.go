package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pickleparadise/pickle-store/internal/domain"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c domain.Category) error {
	const stmt = `
INSERT INTO categories (id, name, slug, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := exec(ctx, r.pool, stmt, c.ID, c.Name, c.Slug, c.Description, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := queryRow(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category slug exists: %w", err)
	}
	return exists, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p domain.Product) error {
	const stmt = `
INSERT INTO products (id, name, slug, category_id, description, ingredients, nutritional_info,
                      price, available, featured, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := exec(ctx, r.pool, stmt,
		p.ID, p.Name, p.Slug, p.CategoryID, p.Description, p.Ingredients, p.NutritionalInfo,
		p.Price, p.Available, p.Featured, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ProductSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := queryRow(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("product slug exists: %w", err)
	}
	return exists, nil
}

const productColumns = `id, name, slug, category_id, description, ingredients,
COALESCE(nutritional_info, ''), price, available, featured, created_at, updated_at`

func (r *CatalogRepository) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	var p domain.Product
	err := queryRow(ctx, r.pool, q, slug).Scan(
		&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.Description, &p.Ingredients,
		&p.NutritionalInfo, &p.Price, &p.Available, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	if availableOnly {
		q += ` WHERE available`
	}
	q += ` ORDER BY name`

	rows, err := query(ctx, r.pool, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.Description, &p.Ingredients,
			&p.NutritionalInfo, &p.Price, &p.Available, &p.Featured, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) CreateVariant(ctx context.Context, v domain.ProductVariant) error {
	const stmt = `
INSERT INTO product_variants (id, product_id, size, price, sku)
VALUES ($1, $2, $3, $4, $5)`

	_, err := exec(ctx, r.pool, stmt, v.ID, v.ProductID, v.Size, v.Price, v.SKU)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSKUConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create variant: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListVariants(ctx context.Context, productID string) ([]domain.ProductVariant, error) {
	const q = `SELECT id, product_id, size, price, sku FROM product_variants WHERE product_id = $1 ORDER BY size`

	rows, err := query(ctx, r.pool, q, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductVariant
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Price, &v.SKU); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
