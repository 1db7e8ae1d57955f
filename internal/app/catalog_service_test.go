package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pickleparadise/pickle-store/internal/clock"
	"github.com/pickleparadise/pickle-store/internal/domain"
)

func newCatalogService(f *fakeCatalogRepo) *CatalogService {
	return NewCatalogService(f, clock.NewFixed(testNow))
}

func TestCreateCategorySlug(t *testing.T) {
	f := newFakeCatalogRepo()
	svc := newCatalogService(f)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, testCustomer, CreateCategoryInput{Name: "Dill"}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("customer err = %v, want ErrPermissionDenied", err)
	}

	c, err := svc.CreateCategory(ctx, testStaff, CreateCategoryInput{Name: "Spicy & Sour!"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if c.Slug != "spicy-sour" {
		t.Errorf("slug = %q, want spicy-sour", c.Slug)
	}

	// same name again: base slug is taken, a suffixed one is chosen
	c2, err := svc.CreateCategory(ctx, testStaff, CreateCategoryInput{Name: "Spicy & Sour!"})
	if err != nil {
		t.Fatalf("CreateCategory collision: %v", err)
	}
	if !strings.HasPrefix(c2.Slug, "spicy-sour-") || c2.Slug == c.Slug {
		t.Errorf("collision slug = %q, want suffixed variant", c2.Slug)
	}
}

func TestUniqueSlugGivesUp(t *testing.T) {
	always := func(context.Context, string) (bool, error) { return true, nil }
	if _, err := uniqueSlug(context.Background(), "Dill", always); !errors.Is(err, domain.ErrSlugExhausted) {
		t.Errorf("err = %v, want ErrSlugExhausted", err)
	}
}

func TestCreateProductAndVariants(t *testing.T) {
	f := newFakeCatalogRepo()
	svc := newCatalogService(f)
	ctx := context.Background()

	prod, err := svc.CreateProduct(ctx, testStaff, CreateProductInput{
		Name:       "Garlic Dill Spears",
		CategoryID: "cat-1",
		Price:      mustDecimal("12.50"),
		Available:  true,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if prod.Slug != "garlic-dill-spears" {
		t.Errorf("slug = %q", prod.Slug)
	}

	v, err := svc.AddVariant(ctx, testStaff, CreateVariantInput{
		ProductID: prod.ID, Size: "16oz", Price: mustDecimal("12.50"), SKU: "PKL-GD-16",
	})
	if err != nil {
		t.Fatalf("AddVariant: %v", err)
	}
	if _, err := svc.AddVariant(ctx, testStaff, CreateVariantInput{
		ProductID: prod.ID, Size: "32oz", Price: mustDecimal("19.00"), SKU: "PKL-GD-16",
	}); !errors.Is(err, domain.ErrSKUConflict) {
		t.Errorf("duplicate sku err = %v, want ErrSKUConflict", err)
	}

	got, variants, err := svc.GetProductBySlug(ctx, prod.Slug)
	if err != nil {
		t.Fatalf("GetProductBySlug: %v", err)
	}
	if got.ID != prod.ID {
		t.Errorf("product id = %q, want %q", got.ID, prod.ID)
	}
	if len(variants) != 1 || variants[0].ID != v.ID {
		t.Errorf("variants = %+v, want the one created", variants)
	}

	if _, _, err := svc.GetProductBySlug(ctx, "no-such-slug"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("missing slug err = %v, want ErrProductNotFound", err)
	}
}

func TestListProductsAvailableOnly(t *testing.T) {
	f := newFakeCatalogRepo()
	svc := newCatalogService(f)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, testStaff, CreateProductInput{Name: "Live", Price: mustDecimal("9.00"), Available: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateProduct(ctx, testStaff, CreateProductInput{Name: "Retired", Price: mustDecimal("9.00"), Available: false}); err != nil {
		t.Fatal(err)
	}

	available, err := svc.ListProducts(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 1 || available[0].Name != "Live" {
		t.Errorf("available = %+v, want Live only", available)
	}

	all, err := svc.ListProducts(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d products, want 2", len(all))
	}
}
