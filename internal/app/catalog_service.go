package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pickleparadise/pickle-store/internal/clock"
	"github.com/pickleparadise/pickle-store/internal/domain"
)

type CatalogRepository interface {
	CreateCategory(ctx context.Context, c domain.Category) error
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
	CreateProduct(ctx context.Context, p domain.Product) error
	ProductSlugExists(ctx context.Context, slug string) (bool, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error)
	CreateVariant(ctx context.Context, v domain.ProductVariant) error
	ListVariants(ctx context.Context, productID string) ([]domain.ProductVariant, error)
}

type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{repo: repo, clock: clk}
}

// maxSlugAttempts bounds slug disambiguation so collisions cannot loop
// forever.
const maxSlugAttempts = 5

// uniqueSlug slugifies name and, on collision, appends random suffixes up
// to maxSlugAttempts before giving up.
func uniqueSlug(ctx context.Context, name string, exists func(ctx context.Context, slug string) (bool, error)) (string, error) {
	base := domain.Slugify(name)
	if base == "" {
		base = domain.SlugSuffix()
	}

	candidate := base
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%s", base, domain.SlugSuffix())
	}
	return "", domain.ErrSlugExhausted
}

type CreateCategoryInput struct {
	Name        string
	Description string
}

func (s *CatalogService) CreateCategory(ctx context.Context, p domain.Principal, in CreateCategoryInput) (domain.Category, error) {
	if !p.IsStaff() {
		return domain.Category{}, domain.ErrPermissionDenied
	}
	slug, err := uniqueSlug(ctx, in.Name, s.repo.CategorySlugExists)
	if err != nil {
		return domain.Category{}, err
	}

	now := s.clock.Now()
	c := domain.Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

type CreateProductInput struct {
	Name            string
	CategoryID      string
	Description     string
	Ingredients     string
	NutritionalInfo string
	Price           decimal.Decimal
	Available       bool
	Featured        bool
}

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Principal, in CreateProductInput) (domain.Product, error) {
	if !p.IsStaff() {
		return domain.Product{}, domain.ErrPermissionDenied
	}
	slug, err := uniqueSlug(ctx, in.Name, s.repo.ProductSlugExists)
	if err != nil {
		return domain.Product{}, err
	}

	now := s.clock.Now()
	prod := domain.Product{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Slug:            slug,
		CategoryID:      in.CategoryID,
		Description:     in.Description,
		Ingredients:     in.Ingredients,
		NutritionalInfo: in.NutritionalInfo,
		Price:           in.Price,
		Available:       in.Available,
		Featured:        in.Featured,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateProduct(ctx, prod); err != nil {
		return domain.Product{}, err
	}
	return prod, nil
}

type CreateVariantInput struct {
	ProductID string
	Size      string
	Price     decimal.Decimal
	SKU       string
}

func (s *CatalogService) AddVariant(ctx context.Context, p domain.Principal, in CreateVariantInput) (domain.ProductVariant, error) {
	if !p.IsStaff() {
		return domain.ProductVariant{}, domain.ErrPermissionDenied
	}
	v := domain.ProductVariant{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		Size:      in.Size,
		Price:     in.Price,
		SKU:       in.SKU,
	}
	if err := s.repo.CreateVariant(ctx, v); err != nil {
		return domain.ProductVariant{}, err
	}
	return v, nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (domain.Product, []domain.ProductVariant, error) {
	prod, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return domain.Product{}, nil, err
	}
	variants, err := s.repo.ListVariants(ctx, prod.ID)
	if err != nil {
		return domain.Product{}, nil, err
	}
	return prod, variants, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, availableOnly)
}
