package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/domeo/doors/internal/domain"
	"github.com/domeo/doors/internal/export"
	"github.com/domeo/doors/internal/pricing"
)

// ExportError is the structured validation/domain error returned to the
// client instead of a generic 500.
type ExportError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   any    `json:"value,omitempty"`
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ExportRequest is the validated payload of a factory order export.
type ExportRequest struct {
	KPID   string `json:"kpId"`
	Format string `json:"format"`
}

// SupportedFormats lists the formats the serializers can produce.
var SupportedFormats = map[string]bool{export.FormatXLSX: true}

// ParseExportRequest validates the raw payload shape before any domain
// logic runs.
func ParseExportRequest(payload map[string]any) (*ExportRequest, *ExportError) {
	if payload == nil {
		return nil, &ExportError{Code: "INVALID_PAYLOAD", Message: "Тело запроса должно быть объектом"}
	}
	kpID, ok := payload["kpId"].(string)
	if !ok || kpID == "" {
		return nil, &ExportError{Code: "MISSING_KP_ID", Message: "ID КП обязателен и должен быть строкой", Field: "kpId", Value: payload["kpId"]}
	}
	format, ok := payload["format"].(string)
	if !ok || format == "" {
		return nil, &ExportError{Code: "MISSING_FORMAT", Message: "Формат экспорта обязателен", Field: "format", Value: payload["format"]}
	}
	if !SupportedFormats[format] {
		return nil, &ExportError{Code: "UNSUPPORTED_FORMAT", Message: "Формат не поддерживается, доступен только xlsx", Field: "format", Value: format}
	}
	return &ExportRequest{KPID: kpID, Format: format}, nil
}

// KPData is the proposal content an adapter hands to the export pipeline.
type KPData struct {
	ID        string
	Items     []domain.Position
	Currency  string
	CreatedAt time.Time
}

// ExportAdapter is the category-specific side of an export: it knows how
// to validate a proposal and turn it into export rows.
type ExportAdapter interface {
	ValidateKP(ctx context.Context, kpID string) *ExportError
	GetKPData(ctx context.Context, kpID string) (*KPData, error)
	ToExportRows(ctx context.Context, data *KPData) ([]export.ExportRow, error)
}

// ExportUC orchestrates export requests: payload validation, adapter
// dispatch, row building and serialization. Single attempt, terminal on
// first failure.
type ExportUC struct {
	adapters map[string]ExportAdapter
	now      func() time.Time
}

func NewExportUC(quotes domain.QuoteRepo, catalog domain.CatalogRepo) *ExportUC {
	return &ExportUC{
		adapters: map[string]ExportAdapter{
			"doors": &doorsAdapter{quotes: quotes, catalog: catalog},
		},
		now: time.Now,
	}
}

// ExportOrder builds the factory order file for an accepted proposal.
func (uc *ExportUC) ExportOrder(ctx context.Context, req ExportRequest) (*export.File, error) {
	adapter, ok := uc.adapters["doors"]
	if !ok {
		return nil, &ExportError{Code: "UNSUPPORTED_CATEGORY", Message: "Категория не поддерживает экспорт"}
	}

	if eerr := adapter.ValidateKP(ctx, req.KPID); eerr != nil {
		return nil, eerr
	}

	data, err := adapter.GetKPData(ctx, req.KPID)
	if err != nil {
		return nil, err
	}

	rows, err := adapter.ToExportRows(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &ExportError{Code: "EMPTY_KP", Message: "В КП нет позиций для экспорта", Field: "kpId", Value: req.KPID}
	}

	mime, ok := export.MIMEByFormat(req.Format)
	if !ok {
		return nil, &ExportError{Code: "UNSUPPORTED_FORMAT", Message: "Формат не поддерживается", Field: "format", Value: req.Format}
	}

	buf, err := export.OrderXLSX(rows)
	if err != nil {
		return nil, fmt.Errorf("serialize order: %w", err)
	}

	log.Info().Str("kp_id", req.KPID).Int("rows", len(rows)).Msg("factory order exported")

	return &export.File{
		Data:     buf,
		Filename: export.Filename("factory_order", req.KPID, uc.now(), req.Format),
		MIME:     mime,
	}, nil
}

// ExportFactoryFromCart builds the factory purchase order straight from
// in-session cart positions, without a stored proposal.
func (uc *ExportUC) ExportFactoryFromCart(ctx context.Context, positions []domain.Position) (*export.File, error) {
	if len(positions) == 0 {
		return nil, &ExportError{Code: "EMPTY_CART", Message: "Корзина пуста"}
	}

	priced, err := pricing.ApplyPricing(positions)
	if err != nil {
		return nil, &ExportError{Code: "INVALID_POSITION", Message: err.Error(), Field: "cart"}
	}

	rows := pricing.ToFactoryRows(priced)
	buf, err := export.FactoryXLSX(rows)
	if err != nil {
		return nil, fmt.Errorf("serialize factory order: %w", err)
	}

	return &export.File{
		Data:     buf,
		Filename: export.Filename("factory", "cart", uc.now(), export.FormatXLSX),
		MIME:     export.MIMEXLSX,
	}, nil
}

// doorsAdapter resolves door proposals against the quote store and the
// doors catalog.
type doorsAdapter struct {
	quotes  domain.QuoteRepo
	catalog domain.CatalogRepo
}

func (a *doorsAdapter) ValidateKP(ctx context.Context, kpID string) *ExportError {
	id, err := uuid.Parse(kpID)
	if err != nil {
		return &ExportError{Code: "INVALID_KP_ID", Message: "ID КП должен быть корректным UUID", Field: "kpId", Value: kpID}
	}
	q, err := a.quotes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &ExportError{Code: "KP_NOT_FOUND", Message: "КП не найден", Field: "kpId", Value: kpID}
		}
		return &ExportError{Code: "DATABASE_ERROR", Message: "Ошибка при проверке КП", Field: "kpId", Value: kpID}
	}
	if !q.Exportable() {
		return &ExportError{Code: "KP_NOT_FOUND", Message: "КП не найден или не принят", Field: "kpId", Value: kpID}
	}
	return nil
}

func (a *doorsAdapter) GetKPData(ctx context.Context, kpID string) (*KPData, error) {
	id, err := uuid.Parse(kpID)
	if err != nil {
		return nil, &ExportError{Code: "INVALID_KP_ID", Message: "ID КП должен быть корректным UUID", Field: "kpId", Value: kpID}
	}
	q, err := a.quotes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &KPData{
		ID:        q.ID.String(),
		Items:     q.Items,
		Currency:  q.Currency,
		CreatedAt: q.CreatedAt,
	}, nil
}

func (a *doorsAdapter) ToExportRows(ctx context.Context, data *KPData) ([]export.ExportRow, error) {
	items := make([]domain.Position, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, a.enrich(ctx, item))
	}

	priced, err := pricing.ApplyPricing(items)
	if err != nil {
		return nil, &ExportError{Code: "INVALID_POSITION", Message: err.Error(), Field: "items"}
	}
	return export.CustomerRows(priced, data.Currency, data.CreatedAt), nil
}

// enrich fills factory metadata from the catalog when the stored position
// lacks it. A missing catalog row is not an error: the proposal's own
// data is used as-is.
func (a *doorsAdapter) enrich(ctx context.Context, item domain.Position) domain.Position {
	f := domain.OptionsFilter{Model: item.Model, Color: item.Color, Width: item.Width, Height: item.Height}
	door, err := a.catalog.FindDoor(ctx, f)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("model", item.Model).Msg("catalog lookup failed, using KP data")
		}
		return item
	}
	if item.SKU1C == "" {
		item.SKU1C = door.SKU1C
	}
	if item.Series == "" {
		item.Series = door.Series
	}
	if item.Finish == "" {
		item.Finish = door.Finish
	}
	if item.Supplier == "" {
		item.Supplier = door.Supplier
	}
	if item.Collection == "" {
		item.Collection = door.Collection
	}
	if item.SupplierItemName == "" {
		item.SupplierItemName = door.SupplierItemName
	}
	if item.SupplierColorFinish == "" {
		item.SupplierColorFinish = door.SupplierColorFinish
	}
	if item.PriceOpt == nil {
		item.PriceOpt = door.PriceOpt
	}
	return item
}
