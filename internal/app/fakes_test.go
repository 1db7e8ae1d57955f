package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pickleparadise/pickle-store/internal/domain"
)

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fakeStore is an in-memory OrderRepository/PaymentRepository. Inventory
// rows keep their batch expiry so ListInventoryForUpdate can order them
// the way the SQL does.
type fakeStore struct {
	variants map[string]domain.ProductVariant
	rows     []*fakeInvRow
	orders   map[string]*domain.Order
	orderSeq []string
	allocs   []*domain.Allocation
	payments []domain.Payment
}

type fakeInvRow struct {
	item   domain.InventoryItem
	expiry time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		variants: map[string]domain.ProductVariant{},
		orders:   map[string]*domain.Order{},
	}
}

func (f *fakeStore) addVariant(sku string, price string) domain.ProductVariant {
	v := domain.ProductVariant{
		ID:        uuid.NewString(),
		ProductID: uuid.NewString(),
		Size:      "16oz",
		Price:     mustDecimal(price),
		SKU:       sku,
	}
	f.variants[v.ID] = v
	return v
}

func (f *fakeStore) addStock(variantID string, expiry time.Time, qty, threshold int) string {
	row := &fakeInvRow{
		item: domain.InventoryItem{
			ID:                uuid.NewString(),
			VariantID:         variantID,
			BatchID:           uuid.NewString(),
			Quantity:          qty,
			LowStockThreshold: threshold,
		},
		expiry: expiry,
	}
	f.rows = append(f.rows, row)
	return row.item.ID
}

func (f *fakeStore) quantity(inventoryItemID string) int {
	for _, r := range f.rows {
		if r.item.ID == inventoryItemID {
			return r.item.Quantity
		}
	}
	return -1
}

func (f *fakeStore) totalStock(variantID string) int {
	total := 0
	for _, r := range f.rows {
		if r.item.VariantID == variantID {
			total += r.item.Quantity
		}
	}
	return total
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) GetVariants(_ context.Context, ids []string) (map[string]domain.ProductVariant, error) {
	out := make(map[string]domain.ProductVariant, len(ids))
	for _, id := range ids {
		if v, ok := f.variants[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order domain.Order) error {
	cp := order
	f.orders[order.ID] = &cp
	f.orderSeq = append(f.orderSeq, order.ID)
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id string) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *o, nil
}

func (f *fakeStore) GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return f.GetOrder(ctx, id)
}

func (f *fakeStore) ListOrders(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for i := len(f.orderSeq) - 1; i >= 0; i-- {
		o := f.orders[f.orderSeq[i]]
		if userID == "" || o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	o, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeStore) UpdateOrderNotes(_ context.Context, id, notes string) error {
	o, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Notes = notes
	return nil
}

func (f *fakeStore) ListInventoryForUpdate(_ context.Context, variantID string) ([]domain.InventoryItem, error) {
	var rows []*fakeInvRow
	for _, r := range f.rows {
		if r.item.VariantID == variantID && r.item.Quantity > 0 {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].expiry.Before(rows[j].expiry) })

	out := make([]domain.InventoryItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.item)
	}
	return out, nil
}

func (f *fakeStore) AdjustInventoryQuantity(_ context.Context, inventoryItemID string, delta int) error {
	for _, r := range f.rows {
		if r.item.ID == inventoryItemID {
			if r.item.Quantity+delta < 0 {
				return domain.ErrInvalidQuantity
			}
			r.item.Quantity += delta
			return nil
		}
	}
	return domain.ErrInventoryNotFound
}

func (f *fakeStore) RecordAllocation(_ context.Context, a domain.Allocation) error {
	cp := a
	f.allocs = append(f.allocs, &cp)
	return nil
}

func (f *fakeStore) DebitedAllocations(_ context.Context, orderID string) ([]domain.Allocation, error) {
	items := f.orderItemIDs(orderID)
	var out []domain.Allocation
	for _, a := range f.allocs {
		if a.State == domain.AllocationDebited && items[a.OrderItemID] {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ReleaseAllocations(_ context.Context, orderID string) error {
	items := f.orderItemIDs(orderID)
	for _, a := range f.allocs {
		if a.State == domain.AllocationDebited && items[a.OrderItemID] {
			a.State = domain.AllocationReleased
		}
	}
	return nil
}

func (f *fakeStore) orderItemIDs(orderID string) map[string]bool {
	out := map[string]bool{}
	if o, ok := f.orders[orderID]; ok {
		for _, it := range o.Items {
			out[it.ID] = true
		}
	}
	return out
}

func (f *fakeStore) CreatePayment(_ context.Context, pay domain.Payment) error {
	f.payments = append(f.payments, pay)
	return nil
}

// fakeInventoryRepo backs InventoryService tests.
type fakeInventoryRepo struct {
	batches map[string]domain.Batch
	items   map[string]*domain.InventoryItem
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{
		batches: map[string]domain.Batch{},
		items:   map[string]*domain.InventoryItem{},
	}
}

func (f *fakeInventoryRepo) CreateBatch(_ context.Context, b domain.Batch) error {
	for _, existing := range f.batches {
		if existing.BatchNumber == b.BatchNumber {
			return domain.ErrInventoryConflict
		}
	}
	f.batches[b.ID] = b
	return nil
}

func (f *fakeInventoryRepo) GetBatch(_ context.Context, id string) (domain.Batch, error) {
	b, ok := f.batches[id]
	if !ok {
		return domain.Batch{}, domain.ErrBatchNotFound
	}
	return b, nil
}

func (f *fakeInventoryRepo) CreateInventoryItem(_ context.Context, item domain.InventoryItem) error {
	for _, existing := range f.items {
		if existing.VariantID == item.VariantID && existing.BatchID == item.BatchID {
			return domain.ErrInventoryConflict
		}
	}
	cp := item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeInventoryRepo) GetInventoryItem(_ context.Context, id string) (domain.InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return domain.InventoryItem{}, domain.ErrInventoryNotFound
	}
	return *item, nil
}

func (f *fakeInventoryRepo) AdjustInventoryQuantity(_ context.Context, id string, delta int) error {
	item, ok := f.items[id]
	if !ok {
		return domain.ErrInventoryNotFound
	}
	if item.Quantity+delta < 0 {
		return domain.ErrInvalidQuantity
	}
	item.Quantity += delta
	return nil
}

func (f *fakeInventoryRepo) LowStock(_ context.Context) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	for _, item := range f.items {
		if item.IsLowStock() {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

// fakeCatalogRepo backs CatalogService tests. Seeding taken lets slug
// collision paths be exercised directly.
type fakeCatalogRepo struct {
	taken      map[string]bool
	categories []domain.Category
	products   map[string]domain.Product
	variants   map[string][]domain.ProductVariant
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		taken:    map[string]bool{},
		products: map[string]domain.Product{},
		variants: map[string][]domain.ProductVariant{},
	}
}

func (f *fakeCatalogRepo) CreateCategory(_ context.Context, c domain.Category) error {
	f.taken[c.Slug] = true
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeCatalogRepo) CategorySlugExists(_ context.Context, slug string) (bool, error) {
	return f.taken[slug], nil
}

func (f *fakeCatalogRepo) CreateProduct(_ context.Context, p domain.Product) error {
	f.taken[p.Slug] = true
	f.products[p.Slug] = p
	return nil
}

func (f *fakeCatalogRepo) ProductSlugExists(_ context.Context, slug string) (bool, error) {
	return f.taken[slug], nil
}

func (f *fakeCatalogRepo) GetProductBySlug(_ context.Context, slug string) (domain.Product, error) {
	p, ok := f.products[slug]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalogRepo) ListProducts(_ context.Context, availableOnly bool) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		if availableOnly && !p.Available {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateVariant(_ context.Context, v domain.ProductVariant) error {
	for _, vs := range f.variants {
		for _, existing := range vs {
			if existing.SKU == v.SKU {
				return domain.ErrSKUConflict
			}
		}
	}
	f.variants[v.ProductID] = append(f.variants[v.ProductID], v)
	return nil
}

func (f *fakeCatalogRepo) ListVariants(_ context.Context, productID string) ([]domain.ProductVariant, error) {
	return f.variants[productID], nil
}
