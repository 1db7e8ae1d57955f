package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pickleparadise/pickle-store/internal/app"
	"github.com/pickleparadise/pickle-store/internal/domain"
)

type InventoryAPI interface {
	CreateBatch(ctx context.Context, p domain.Principal, in app.CreateBatchInput) (domain.Batch, error)
	CreateItem(ctx context.Context, p domain.Principal, in app.CreateInventoryItemInput) (domain.InventoryItem, error)
	AdjustQuantity(ctx context.Context, p domain.Principal, itemID string, delta int) (domain.InventoryItem, error)
	LowStock(ctx context.Context, p domain.Principal) ([]domain.InventoryItem, error)
}

type InventoryHandler struct {
	Svc InventoryAPI
}

func (h *InventoryHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(WithPrincipal)
		r.Post("/inventory/batches", h.createBatch)
		r.Post("/inventory", h.createItem)
		r.Post("/inventory/{id}/adjust", h.adjust)
		r.Get("/inventory/low-stock", h.lowStock)
	})
}

type createBatchRequest struct {
	BatchNumber    string `json:"batch_number"`
	ProductionDate string `json:"production_date"` // YYYY-MM-DD
	ExpiryDate     string `json:"expiry_date"`
	Notes          string `json:"notes"`
}

type batchResponse struct {
	ID             string `json:"id"`
	BatchNumber    string `json:"batch_number"`
	ProductionDate string `json:"production_date"`
	ExpiryDate     string `json:"expiry_date"`
	Notes          string `json:"notes,omitempty"`
}

func (h *InventoryHandler) createBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	prod, err := time.Parse(time.DateOnly, req.ProductionDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid production_date"})
		return
	}
	exp, err := time.Parse(time.DateOnly, req.ExpiryDate)
	if err != nil || !exp.After(prod) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expiry_date must follow production_date"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	b, err := h.Svc.CreateBatch(ctx, principalFrom(r), app.CreateBatchInput{
		BatchNumber:    req.BatchNumber,
		ProductionDate: prod,
		ExpiryDate:     exp,
		Notes:          req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{
		ID:             b.ID,
		BatchNumber:    b.BatchNumber,
		ProductionDate: b.ProductionDate.Format(time.DateOnly),
		ExpiryDate:     b.ExpiryDate.Format(time.DateOnly),
		Notes:          b.Notes,
	})
}

type createItemRequest struct {
	VariantID         string `json:"variant_id"`
	BatchID           string `json:"batch_id"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

type inventoryItemResponse struct {
	ID                string `json:"id"`
	VariantID         string `json:"variant_id"`
	BatchID           string `json:"batch_id"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	IsLowStock        bool   `json:"is_low_stock"`
}

func toInventoryItemResponse(it domain.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:                it.ID,
		VariantID:         it.VariantID,
		BatchID:           it.BatchID,
		Quantity:          it.Quantity,
		LowStockThreshold: it.LowStockThreshold,
		IsLowStock:        it.IsLowStock(),
	}
}

func (h *InventoryHandler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.VariantID == "" || req.BatchID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "variant_id and batch_id are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	item, err := h.Svc.CreateItem(ctx, principalFrom(r), app.CreateInventoryItemInput{
		VariantID:         req.VariantID,
		BatchID:           req.BatchID,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInventoryItemResponse(item))
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	item, err := h.Svc.AdjustQuantity(ctx, principalFrom(r), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryItemResponse(item))
}

func (h *InventoryHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Svc.LowStock(ctx, principalFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]inventoryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toInventoryItemResponse(it))
	}
	writeJSON(w, http.StatusOK, out)
}
