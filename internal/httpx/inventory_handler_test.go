package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pickleparadise/pickle-store/internal/app"
	"github.com/pickleparadise/pickle-store/internal/domain"
)

type stubInventoryAPI struct {
	createBatchFn func(ctx context.Context, p domain.Principal, in app.CreateBatchInput) (domain.Batch, error)
	createItemFn  func(ctx context.Context, p domain.Principal, in app.CreateInventoryItemInput) (domain.InventoryItem, error)
	adjustFn      func(ctx context.Context, p domain.Principal, itemID string, delta int) (domain.InventoryItem, error)
	lowStockFn    func(ctx context.Context, p domain.Principal) ([]domain.InventoryItem, error)
}

func (s *stubInventoryAPI) CreateBatch(ctx context.Context, p domain.Principal, in app.CreateBatchInput) (domain.Batch, error) {
	return s.createBatchFn(ctx, p, in)
}

func (s *stubInventoryAPI) CreateItem(ctx context.Context, p domain.Principal, in app.CreateInventoryItemInput) (domain.InventoryItem, error) {
	return s.createItemFn(ctx, p, in)
}

func (s *stubInventoryAPI) AdjustQuantity(ctx context.Context, p domain.Principal, itemID string, delta int) (domain.InventoryItem, error) {
	return s.adjustFn(ctx, p, itemID, delta)
}

func (s *stubInventoryAPI) LowStock(ctx context.Context, p domain.Principal) ([]domain.InventoryItem, error) {
	return s.lowStockFn(ctx, p)
}

func inventoryServer(api InventoryAPI) *httptest.Server {
	r := NewRouter()
	h := &InventoryHandler{Svc: api}
	h.Register(r)
	return httptest.NewServer(r)
}

func asStaff(req *http.Request) {
	req.Header.Set("X-User-Id", "staff-1")
	req.Header.Set("X-User-Role", "STAFF")
}

func TestCreateBatchEndpoint(t *testing.T) {
	api := &stubInventoryAPI{
		createBatchFn: func(_ context.Context, _ domain.Principal, in app.CreateBatchInput) (domain.Batch, error) {
			return domain.Batch{
				ID:             "b-1",
				BatchNumber:    "B-ABCD1234",
				ProductionDate: in.ProductionDate,
				ExpiryDate:     in.ExpiryDate,
			}, nil
		},
	}
	srv := inventoryServer(api)
	defer srv.Close()

	body := `{"production_date": "2024-10-01", "expiry_date": "2025-04-01"}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/inventory/batches", strings.NewReader(body))
	asStaff(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var got batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ExpiryDate != "2025-04-01" {
		t.Errorf("expiry_date = %q", got.ExpiryDate)
	}
}

func TestCreateBatchEndpointRejectsBadDates(t *testing.T) {
	srv := inventoryServer(&stubInventoryAPI{})
	defer srv.Close()

	cases := []string{
		`{"production_date": "10/01/2024", "expiry_date": "2025-04-01"}`,
		`{"production_date": "2024-10-01", "expiry_date": "nope"}`,
		`{"production_date": "2025-04-01", "expiry_date": "2024-10-01"}`,
	}
	for _, body := range cases {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/inventory/batches", strings.NewReader(body))
		asStaff(req)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestLowStockEndpoint(t *testing.T) {
	api := &stubInventoryAPI{
		lowStockFn: func(_ context.Context, p domain.Principal) ([]domain.InventoryItem, error) {
			if !p.IsStaff() {
				return nil, domain.ErrPermissionDenied
			}
			return []domain.InventoryItem{
				{ID: "i-1", VariantID: "v-1", BatchID: "b-1", Quantity: 3, LowStockThreshold: 10, CreatedAt: time.Now()},
			}, nil
		},
	}
	srv := inventoryServer(api)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/inventory/low-stock", nil)
	asStaff(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got []inventoryItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].IsLowStock {
		t.Errorf("response = %+v", got)
	}

	cust, _ := http.NewRequest(http.MethodGet, srv.URL+"/inventory/low-stock", nil)
	asCustomer(cust)
	resp2, err := http.DefaultClient.Do(cust)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusForbidden {
		t.Errorf("customer status = %d, want 403", resp2.StatusCode)
	}
}

func TestAdjustEndpoint(t *testing.T) {
	api := &stubInventoryAPI{
		adjustFn: func(_ context.Context, _ domain.Principal, itemID string, delta int) (domain.InventoryItem, error) {
			if delta == 0 {
				return domain.InventoryItem{}, domain.ErrInvalidQuantity
			}
			return domain.InventoryItem{ID: itemID, Quantity: 5 + delta, LowStockThreshold: 10}, nil
		},
	}
	srv := inventoryServer(api)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/inventory/i-1/adjust", strings.NewReader(`{"delta": -2}`))
	asStaff(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got inventoryItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", got.Quantity)
	}
}
