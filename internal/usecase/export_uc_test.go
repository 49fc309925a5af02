package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/domeo/doors/internal/domain"
)

type fakeQuoteRepo struct {
	quotes map[uuid.UUID]*domain.Quote
}

func newFakeQuoteRepo(quotes ...*domain.Quote) *fakeQuoteRepo {
	r := &fakeQuoteRepo{quotes: map[uuid.UUID]*domain.Quote{}}
	for _, q := range quotes {
		r.quotes[q.ID] = q
	}
	return r
}

func (r *fakeQuoteRepo) Save(_ context.Context, q *domain.Quote) error {
	r.quotes[q.ID] = q
	return nil
}

func (r *fakeQuoteRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

func (r *fakeQuoteRepo) List(_ context.Context, status domain.QuoteStatus, _, _ int) ([]domain.Quote, int64, error) {
	var out []domain.Quote
	for _, q := range r.quotes {
		if status == "" || q.Status == status {
			out = append(out, *q)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeQuoteRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	q, ok := r.quotes[id]
	if !ok {
		return domain.ErrNotFound
	}
	q.Status = status
	return nil
}

type fakeCatalogRepo struct {
	doors []domain.DoorProduct
}

func (r *fakeCatalogRepo) DistinctValues(_ context.Context, _ string, _ domain.OptionsFilter) ([]string, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) FindDoor(_ context.Context, f domain.OptionsFilter) (*domain.DoorProduct, error) {
	for _, d := range r.doors {
		if f.Model != "" && d.Model != f.Model {
			continue
		}
		return &d, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCatalogRepo) UpsertDoor(_ context.Context, p *domain.DoorProduct) (bool, error) {
	for i, d := range r.doors {
		if d.Model == p.Model && d.Finish == p.Finish && d.Color == p.Color &&
			d.Type == p.Type && d.WidthMM == p.WidthMM && d.HeightMM == p.HeightMM {
			r.doors[i] = *p
			return false, nil
		}
	}
	r.doors = append(r.doors, *p)
	return true, nil
}

func (r *fakeCatalogRepo) ListDoors(_ context.Context, _, _ int) ([]domain.DoorProduct, int64, error) {
	return r.doors, int64(len(r.doors)), nil
}

func (r *fakeCatalogRepo) ListKits(_ context.Context) ([]domain.HardwareKit, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) ListHandles(_ context.Context) ([]domain.Handle, error) {
	return nil, nil
}

func acceptedQuote() *domain.Quote {
	return &domain.Quote{
		ID:       uuid.New(),
		Status:   domain.QuoteStatusAccepted,
		Currency: "RUB",
		Items: []domain.Position{
			{
				Model: "Классика", RRCPrice: 15000, Qty: 2,
				HardwareKit: &domain.PositionKit{Name: "Базовый", PriceRRC: 5000},
				Handle:      &domain.PositionHandle{Name: "Pro", PriceOpt: 900, PriceGroupMultiplier: 1.15},
			},
		},
		CreatedAt: time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseExportRequest(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]any
		wantCode string
	}{
		{"nil payload", nil, "INVALID_PAYLOAD"},
		{"missing kpId", map[string]any{"format": "xlsx"}, "MISSING_KP_ID"},
		{"kpId not a string", map[string]any{"kpId": 42, "format": "xlsx"}, "MISSING_KP_ID"},
		{"missing format", map[string]any{"kpId": "abc"}, "MISSING_FORMAT"},
		{"format not a string", map[string]any{"kpId": "abc", "format": 7}, "MISSING_FORMAT"},
		{"unsupported format", map[string]any{"kpId": "abc", "format": "csv"}, "UNSUPPORTED_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, eerr := ParseExportRequest(tt.payload)
			if req != nil {
				t.Fatalf("expected nil request, got %+v", req)
			}
			if eerr == nil || eerr.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", eerr, tt.wantCode)
			}
		})
	}

	req, eerr := ParseExportRequest(map[string]any{"kpId": "abc", "format": "xlsx"})
	if eerr != nil {
		t.Fatalf("valid payload rejected: %+v", eerr)
	}
	if req.KPID != "abc" || req.Format != "xlsx" {
		t.Errorf("req = %+v", req)
	}
}

func TestExportOrder(t *testing.T) {
	q := acceptedQuote()
	uc := NewExportUC(newFakeQuoteRepo(q), &fakeCatalogRepo{})
	uc.now = func() time.Time { return time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC) }

	file, err := uc.ExportOrder(context.Background(), ExportRequest{KPID: q.ID.String(), Format: "xlsx"})
	if err != nil {
		t.Fatalf("ExportOrder: %v", err)
	}

	wantName := "factory_order_" + q.ID.String() + "_2025-09-12.xlsx"
	if file.Filename != wantName {
		t.Errorf("Filename = %q, want %q", file.Filename, wantName)
	}
	if file.MIME != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("MIME = %q", file.MIME)
	}
	if _, err := excelize.OpenReader(bytes.NewReader(file.Data)); err != nil {
		t.Errorf("export is not a readable xlsx: %v", err)
	}
}

func TestExportOrderErrors(t *testing.T) {
	accepted := acceptedQuote()
	draft := acceptedQuote()
	draft.ID = uuid.New()
	draft.Status = domain.QuoteStatusDraft
	empty := acceptedQuote()
	empty.ID = uuid.New()
	empty.Items = nil

	uc := NewExportUC(newFakeQuoteRepo(accepted, draft, empty), &fakeCatalogRepo{})

	tests := []struct {
		name     string
		kpID     string
		wantCode string
	}{
		{"not a uuid", "nope", "INVALID_KP_ID"},
		{"unknown quote", uuid.New().String(), "KP_NOT_FOUND"},
		{"draft quote not exportable", draft.ID.String(), "KP_NOT_FOUND"},
		{"no positions", empty.ID.String(), "EMPTY_KP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.ExportOrder(context.Background(), ExportRequest{KPID: tt.kpID, Format: "xlsx"})
			var ee *ExportError
			if !errors.As(err, &ee) {
				t.Fatalf("err = %v, want *ExportError", err)
			}
			if ee.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", ee.Code, tt.wantCode)
			}
		})
	}
}

func TestExportOrderEnrichesFromCatalog(t *testing.T) {
	q := acceptedQuote()
	catalog := &fakeCatalogRepo{doors: []domain.DoorProduct{{
		Model: "Классика", SKU1C: "DM-001", Series: "Premium",
		Supplier: "Фабрика Норд", Collection: "Classic",
	}}}
	uc := NewExportUC(newFakeQuoteRepo(q), catalog)

	adapter := uc.adapters["doors"]
	data, err := adapter.GetKPData(context.Background(), q.ID.String())
	if err != nil {
		t.Fatalf("GetKPData: %v", err)
	}
	rows, err := adapter.ToExportRows(context.Background(), data)
	if err != nil {
		t.Fatalf("ToExportRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].SKU != "DM-001" {
		t.Errorf("SKU = %q, want catalog value", rows[0].SKU)
	}
	if rows[0].Series != "Premium" {
		t.Errorf("Series = %q, want catalog value", rows[0].Series)
	}
}

func TestExportFactoryFromCart(t *testing.T) {
	uc := NewExportUC(newFakeQuoteRepo(), &fakeCatalogRepo{})

	_, err := uc.ExportFactoryFromCart(context.Background(), nil)
	var ee *ExportError
	if !errors.As(err, &ee) || ee.Code != "EMPTY_CART" {
		t.Errorf("empty cart: err = %v, want EMPTY_CART", err)
	}

	file, err := uc.ExportFactoryFromCart(context.Background(), acceptedQuote().Items)
	if err != nil {
		t.Fatalf("ExportFactoryFromCart: %v", err)
	}
	if _, err := excelize.OpenReader(bytes.NewReader(file.Data)); err != nil {
		t.Errorf("export is not a readable xlsx: %v", err)
	}
}
