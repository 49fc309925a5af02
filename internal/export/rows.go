// Package export turns priced carts into downloadable spreadsheets. Two
// projections of the same priced cart exist: customer rows (one logical
// line per position, handle described inline) and factory rows (handle
// split into its own accessory line). Both derive from pricing output,
// never from each other.
package export

import (
	"time"

	"github.com/domeo/doors/internal/pricing"
)

// ExportRow is the customer/factory-order-combined projection: one row per
// cart position, accessories as descriptive strings.
type ExportRow struct {
	SKU           string   `json:"sku"`
	Series        string   `json:"series,omitempty"`
	Material      string   `json:"material,omitempty"`
	Finish        string   `json:"finish,omitempty"`
	WidthMM       *int     `json:"width_mm,omitempty"`
	HeightMM      *int     `json:"height_mm,omitempty"`
	Color         string   `json:"color,omitempty"`
	HardwareSet   string   `json:"hardware_set,omitempty"`
	Handle        string   `json:"handle,omitempty"`
	Quantity      int      `json:"quantity"`
	BasePrice     float64  `json:"base_price"`
	MarkupPrice   float64  `json:"markup_price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	VATPrice      *float64 `json:"vat_price,omitempty"`
	TotalPrice    float64  `json:"total_price"`
	Currency      string   `json:"currency"`
	CreatedAt     string   `json:"created_at"`
}

// CustomerRows projects priced positions into the one-row-per-position
// shape. The handle stays inside the position as a descriptive string; the
// factory projection (pricing.ToFactoryRows) splits it instead.
func CustomerRows(positions []pricing.PositionPriced, currency string, createdAt time.Time) []ExportRow {
	if currency == "" {
		currency = "RUB"
	}
	created := createdAt.UTC().Format(time.RFC3339)

	rows := make([]ExportRow, 0, len(positions))
	for _, p := range positions {
		row := ExportRow{
			SKU:       p.SKU1C,
			Series:    p.Series,
			Material:  p.Material,
			Finish:    p.Finish,
			WidthMM:   p.Width,
			HeightMM:  p.Height,
			Color:     p.Color,
			Quantity:  p.Qty,
			Currency:  currency,
			CreatedAt: created,
		}
		if p.HardwareKit != nil {
			row.HardwareSet = p.HardwareKit.Name
		}
		if p.Handle != nil {
			row.Handle = "Ручка: " + p.Handle.Name
		}
		if p.PriceOpt != nil {
			row.BasePrice = *p.PriceOpt
		}
		row.MarkupPrice = p.PriceRRCPlus - row.BasePrice
		row.TotalPrice = p.SumRRC
		rows = append(rows, row)
	}
	return rows
}
