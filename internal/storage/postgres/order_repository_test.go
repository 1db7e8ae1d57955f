package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pickleparadise/pickle-store/internal/domain"
	"github.com/pickleparadise/pickle-store/internal/testutil"
)

func seededOrder(variantID string, qty int) domain.Order {
	orderID := uuid.NewString()
	now := time.Now().UTC()
	price := decimal.RequireFromString("12.50")
	return domain.Order{
		ID:              orderID,
		UserID:          "user-1",
		OrderNumber:     domain.NewOrderNumber(),
		Status:          domain.OrderPending,
		ShippingAddress: "1 Brine St",
		BillingAddress:  "1 Brine St",
		Subtotal:        price.Mul(decimal.NewFromInt(int64(qty))),
		ShippingCost:    decimal.RequireFromString("5.00"),
		Tax:             decimal.Zero,
		Total:           price.Mul(decimal.NewFromInt(int64(qty))).Add(decimal.RequireFromString("5.00")),
		Items: []domain.OrderItem{{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			VariantID: variantID,
			Quantity:  qty,
			Price:     price,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepositoryRoundTrip(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	variantID := testutil.SeedVariant(t, pool, "PKL-RT-16", decimal.RequireFromString("12.50"))
	order := seededOrder(variantID, 2)

	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		return repo.CreateOrder(txCtx, order)
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	got, err := repo.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.OrderNumber != order.OrderNumber || got.Status != domain.OrderPending {
		t.Errorf("got %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", got.Items)
	}
	if !got.Total.Equal(order.Total) {
		t.Errorf("total = %s, want %s", got.Total, order.Total)
	}

	if err := repo.UpdateOrderStatus(ctx, order.ID, domain.OrderShipped); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	got, err = repo.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.OrderShipped {
		t.Errorf("status = %s, want SHIPPED", got.Status)
	}

	if err := repo.UpdateOrderStatus(ctx, uuid.NewString(), domain.OrderShipped); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("missing order err = %v, want ErrOrderNotFound", err)
	}
	if _, err := repo.GetOrder(ctx, uuid.NewString()); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("missing order err = %v, want ErrOrderNotFound", err)
	}
}

func TestListInventoryForUpdateOrdering(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	variantID := testutil.SeedVariant(t, pool, "PKL-ORD-16", decimal.RequireFromString("12.50"))
	late := testutil.SeedStock(t, pool, variantID, "B-LATE0001", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 10)
	soon := testutil.SeedStock(t, pool, variantID, "B-SOON0001", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 5)
	empty := testutil.SeedStock(t, pool, variantID, "B-EMPTY001", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), 0)

	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		rows, err := repo.ListInventoryForUpdate(txCtx, variantID)
		if err != nil {
			return err
		}
		if len(rows) != 2 {
			t.Fatalf("rows = %d, want 2 (zero-quantity row excluded)", len(rows))
		}
		if rows[0].ID != soon || rows[1].ID != late {
			t.Errorf("order = [%s %s], want soonest expiry first", rows[0].ID, rows[1].ID)
		}
		for _, r := range rows {
			if r.ID == empty {
				t.Error("exhausted row should be excluded")
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAdjustInventoryQuantityFloor(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	variantID := testutil.SeedVariant(t, pool, "PKL-ADJ-16", decimal.RequireFromString("12.50"))
	invID := testutil.SeedStock(t, pool, variantID, "B-ADJ00001", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 5)

	if err := repo.AdjustInventoryQuantity(ctx, invID, -3); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := repo.AdjustInventoryQuantity(ctx, invID, -3); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Errorf("underflow err = %v, want ErrInvalidQuantity", err)
	}
}

func TestAllocationLedger(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	variantID := testutil.SeedVariant(t, pool, "PKL-LED-16", decimal.RequireFromString("12.50"))
	invID := testutil.SeedStock(t, pool, variantID, "B-LED00001", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 5)

	order := seededOrder(variantID, 2)
	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		return repo.RecordAllocation(txCtx, domain.Allocation{
			ID:              uuid.NewString(),
			OrderItemID:     order.Items[0].ID,
			InventoryItemID: invID,
			Quantity:        2,
			State:           domain.AllocationDebited,
			CreatedAt:       time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	err = repo.WithTx(ctx, func(txCtx context.Context) error {
		allocs, err := repo.DebitedAllocations(txCtx, order.ID)
		if err != nil {
			return err
		}
		if len(allocs) != 1 || allocs[0].Quantity != 2 || allocs[0].InventoryItemID != invID {
			t.Fatalf("allocs = %+v", allocs)
		}
		return repo.ReleaseAllocations(txCtx, order.ID)
	})
	if err != nil {
		t.Fatal(err)
	}

	// released entries no longer show up
	allocs, err := repo.DebitedAllocations(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(allocs) != 0 {
		t.Errorf("allocs after release = %+v, want none", allocs)
	}
}

func TestListOrdersFilter(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	variantID := testutil.SeedVariant(t, pool, "PKL-LST-16", decimal.RequireFromString("12.50"))

	mine := seededOrder(variantID, 1)
	theirs := seededOrder(variantID, 1)
	theirs.UserID = "user-2"

	for _, o := range []domain.Order{mine, theirs} {
		if err := repo.WithTx(ctx, func(txCtx context.Context) error {
			return repo.CreateOrder(txCtx, o)
		}); err != nil {
			t.Fatal(err)
		}
	}

	own, err := repo.ListOrders(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 || own[0].ID != mine.ID {
		t.Errorf("own = %d orders", len(own))
	}

	all, err := repo.ListOrders(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d orders, want 2", len(all))
	}
}
