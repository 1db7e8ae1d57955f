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
)

type CatalogAPI interface {
	CreateCategory(ctx context.Context, p domain.Principal, in app.CreateCategoryInput) (domain.Category, error)
	CreateProduct(ctx context.Context, p domain.Principal, in app.CreateProductInput) (domain.Product, error)
	AddVariant(ctx context.Context, p domain.Principal, in app.CreateVariantInput) (domain.ProductVariant, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, []domain.ProductVariant, error)
	ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error)
}

type CatalogHandler struct {
	Svc CatalogAPI
}

func (h *CatalogHandler) Register(r chi.Router) {
	// reads are public, writes need a principal
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)
	r.Group(func(r chi.Router) {
		r.Use(WithPrincipal)
		r.Post("/products", h.createProduct)
		r.Post("/products/categories", h.createCategory)
		r.Post("/products/{slug}/variants", h.addVariant)
	})
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Svc.CreateCategory(ctx, principalFrom(r), app.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id": c.ID, "name": c.Name, "slug": c.Slug,
	})
}

type createProductRequest struct {
	Name            string          `json:"name"`
	CategoryID      string          `json:"category_id"`
	Description     string          `json:"description"`
	Ingredients     string          `json:"ingredients"`
	NutritionalInfo string          `json:"nutritional_info"`
	Price           decimal.Decimal `json:"price"`
	Available       bool            `json:"available"`
	Featured        bool            `json:"featured"`
}

type variantResponse struct {
	ID    string          `json:"id"`
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
	SKU   string          `json:"sku"`
}

type productResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	CategoryID      string            `json:"category_id"`
	Description     string            `json:"description"`
	Ingredients     string            `json:"ingredients"`
	NutritionalInfo string            `json:"nutritional_info,omitempty"`
	Price           decimal.Decimal   `json:"price"`
	Available       bool              `json:"available"`
	Featured        bool              `json:"featured"`
	Variants        []variantResponse `json:"variants,omitempty"`
}

func toProductResponse(p domain.Product, variants []domain.ProductVariant) productResponse {
	resp := productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		CategoryID:      p.CategoryID,
		Description:     p.Description,
		Ingredients:     p.Ingredients,
		NutritionalInfo: p.NutritionalInfo,
		Price:           p.Price,
		Available:       p.Available,
		Featured:        p.Featured,
	}
	for _, v := range variants {
		resp.Variants = append(resp.Variants, variantResponse{ID: v.ID, Size: v.Size, Price: v.Price, SKU: v.SKU})
	}
	return resp
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Name == "" || req.CategoryID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and category_id are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Svc.CreateProduct(ctx, principalFrom(r), app.CreateProductInput{
		Name:            req.Name,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Ingredients:     req.Ingredients,
		NutritionalInfo: req.NutritionalInfo,
		Price:           req.Price,
		Available:       req.Available,
		Featured:        req.Featured,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p, nil))
}

type addVariantRequest struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
	SKU   string          `json:"sku"`
}

func (h *CatalogHandler) addVariant(w http.ResponseWriter, r *http.Request) {
	var req addVariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Size == "" || req.SKU == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "size and sku are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	prod, _, err := h.Svc.GetProductBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	v, err := h.Svc.AddVariant(ctx, principalFrom(r), app.CreateVariantInput{
		ProductID: prod.ID,
		Size:      req.Size,
		Price:     req.Price,
		SKU:       req.SKU,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, variantResponse{ID: v.ID, Size: v.Size, Price: v.Price, SKU: v.SKU})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, variants, err := h.Svc.GetProductBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p, variants))
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	availableOnly := r.URL.Query().Get("available") == "true"
	products, err := h.Svc.ListProducts(ctx, availableOnly)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, nil))
	}
	writeJSON(w, http.StatusOK, out)
}
