package domain

import "time"

// Batch is a dated production lot. Its expiry date orders allocation:
// soonest-to-expire stock is consumed first.
type Batch struct {
	ID             string
	BatchNumber    string
	ProductionDate time.Time
	ExpiryDate     time.Time
	Notes          string
	CreatedAt      time.Time
}

// InventoryItem is the on-hand quantity of one variant within one batch,
// unique per (variant, batch). Quantity never goes below zero.
type InventoryItem struct {
	ID                string
	VariantID         string
	BatchID           string
	Quantity          int
	LowStockThreshold int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (i InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

type AllocationState string

const (
	AllocationDebited  AllocationState = "DEBITED"
	AllocationReleased AllocationState = "RELEASED"
)

// Allocation is one ledger entry: a quantity debited from one inventory
// item for one order item. Cancellation credits these exact rows back,
// flipping the state to RELEASED so a credit can never be applied twice.
type Allocation struct {
	ID              string
	OrderItemID     string
	InventoryItemID string
	Quantity        int
	State           AllocationState
	CreatedAt       time.Time
}
