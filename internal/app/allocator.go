package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pickleparadise/pickle-store/internal/domain"
)

// AllocationStore is the slice of persistence the allocator needs. All
// methods are expected to run inside the transaction carried on ctx, with
// ListInventoryForUpdate locking the returned rows.
type AllocationStore interface {
	// ListInventoryForUpdate returns the variant's stocked inventory rows
	// ordered by batch expiry ascending, locked for update.
	ListInventoryForUpdate(ctx context.Context, variantID string) ([]domain.InventoryItem, error)
	AdjustInventoryQuantity(ctx context.Context, inventoryItemID string, delta int) error
	RecordAllocation(ctx context.Context, a domain.Allocation) error
	DebitedAllocations(ctx context.Context, orderID string) ([]domain.Allocation, error)
	ReleaseAllocations(ctx context.Context, orderID string) error
}

// StockDebit is one row-level debit performed during allocation, with the
// quantity remaining on the row afterwards.
type StockDebit struct {
	InventoryItemID string
	VariantID       string
	Quantity        int
	Remaining       int
	Threshold       int
}

// AllocationResult reports how much of a requested quantity was satisfied.
type AllocationResult struct {
	Fulfilled int
	Remainder int
	Debits    []StockDebit
}

// allocate walks the variant's inventory soonest-expiry-first, debiting each
// row by min(row quantity, still needed) and ledgering every debit against
// the order item. Rows are already exhausted-filtered and locked by the
// store, so concurrent orders for the same variant serialize here.
func allocate(ctx context.Context, store AllocationStore, now time.Time, orderItemID, variantID string, quantity int) (AllocationResult, error) {
	if quantity <= 0 {
		return AllocationResult{}, domain.ErrInvalidQuantity
	}

	rows, err := store.ListInventoryForUpdate(ctx, variantID)
	if err != nil {
		return AllocationResult{}, err
	}

	res := AllocationResult{Remainder: quantity}
	for _, row := range rows {
		if res.Remainder == 0 {
			break
		}
		take := row.Quantity
		if take > res.Remainder {
			take = res.Remainder
		}
		if take == 0 {
			continue
		}

		if err := store.AdjustInventoryQuantity(ctx, row.ID, -take); err != nil {
			return AllocationResult{}, err
		}
		if err := store.RecordAllocation(ctx, domain.Allocation{
			ID:              uuid.NewString(),
			OrderItemID:     orderItemID,
			InventoryItemID: row.ID,
			Quantity:        take,
			State:           domain.AllocationDebited,
			CreatedAt:       now,
		}); err != nil {
			return AllocationResult{}, err
		}

		res.Fulfilled += take
		res.Remainder -= take
		res.Debits = append(res.Debits, StockDebit{
			InventoryItemID: row.ID,
			VariantID:       variantID,
			Quantity:        take,
			Remaining:       row.Quantity - take,
			Threshold:       row.LowStockThreshold,
		})
	}
	return res, nil
}
