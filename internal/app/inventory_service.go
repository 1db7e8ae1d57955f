package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pickleparadise/pickle-store/internal/clock"
	"github.com/pickleparadise/pickle-store/internal/domain"
)

type InventoryRepository interface {
	CreateBatch(ctx context.Context, b domain.Batch) error
	GetBatch(ctx context.Context, id string) (domain.Batch, error)
	CreateInventoryItem(ctx context.Context, item domain.InventoryItem) error
	GetInventoryItem(ctx context.Context, id string) (domain.InventoryItem, error)
	AdjustInventoryQuantity(ctx context.Context, id string, delta int) error
	LowStock(ctx context.Context) ([]domain.InventoryItem, error)
}

// InventoryService covers the staff-facing inventory administration:
// batches, stock rows and the low-stock report. Order-driven stock
// movement lives with the allocator.
type InventoryService struct {
	repo             InventoryRepository
	clock            clock.Clock
	defaultThreshold int
}

func NewInventoryService(repo InventoryRepository, clk clock.Clock, defaultThreshold int) *InventoryService {
	return &InventoryService{repo: repo, clock: clk, defaultThreshold: defaultThreshold}
}

type CreateBatchInput struct {
	BatchNumber    string
	ProductionDate time.Time
	ExpiryDate     time.Time
	Notes          string
}

func (s *InventoryService) CreateBatch(ctx context.Context, p domain.Principal, in CreateBatchInput) (domain.Batch, error) {
	if !p.IsStaff() {
		return domain.Batch{}, domain.ErrPermissionDenied
	}
	number := in.BatchNumber
	if number == "" {
		number = domain.NewBatchNumber()
	}
	b := domain.Batch{
		ID:             uuid.NewString(),
		BatchNumber:    number,
		ProductionDate: in.ProductionDate,
		ExpiryDate:     in.ExpiryDate,
		Notes:          in.Notes,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.repo.CreateBatch(ctx, b); err != nil {
		return domain.Batch{}, err
	}
	return b, nil
}

type CreateInventoryItemInput struct {
	VariantID         string
	BatchID           string
	Quantity          int
	LowStockThreshold int
}

func (s *InventoryService) CreateItem(ctx context.Context, p domain.Principal, in CreateInventoryItemInput) (domain.InventoryItem, error) {
	if !p.IsStaff() {
		return domain.InventoryItem{}, domain.ErrPermissionDenied
	}
	if in.Quantity < 0 {
		return domain.InventoryItem{}, domain.ErrInvalidQuantity
	}
	threshold := in.LowStockThreshold
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}

	now := s.clock.Now()
	item := domain.InventoryItem{
		ID:                uuid.NewString(),
		VariantID:         in.VariantID,
		BatchID:           in.BatchID,
		Quantity:          in.Quantity,
		LowStockThreshold: threshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreateInventoryItem(ctx, item); err != nil {
		return domain.InventoryItem{}, err
	}
	return item, nil
}

// AdjustQuantity applies a manual stock correction. The storage layer
// rejects adjustments that would drive the quantity negative.
func (s *InventoryService) AdjustQuantity(ctx context.Context, p domain.Principal, itemID string, delta int) (domain.InventoryItem, error) {
	if !p.IsStaff() {
		return domain.InventoryItem{}, domain.ErrPermissionDenied
	}
	if delta == 0 {
		return domain.InventoryItem{}, domain.ErrInvalidQuantity
	}
	if err := s.repo.AdjustInventoryQuantity(ctx, itemID, delta); err != nil {
		return domain.InventoryItem{}, err
	}
	return s.repo.GetInventoryItem(ctx, itemID)
}

// LowStock lists inventory rows at or below their threshold.
func (s *InventoryService) LowStock(ctx context.Context, p domain.Principal) ([]domain.InventoryItem, error) {
	if !p.IsStaff() {
		return nil, domain.ErrPermissionDenied
	}
	return s.repo.LowStock(ctx)
}
