package pricing

import "fmt"

// FactoryRow is one line of the factory purchase order. A position with a
// handle produces two rows (door, then handle accessory); Num is contiguous
// 1..N across the whole export regardless of how many rows each position
// contributed.
type FactoryRow struct {
	Num                 int      `json:"num"`
	Supplier            string   `json:"supplier"`
	Collection          string   `json:"collection"`
	SupplierItemName    string   `json:"supplier_item_name"`
	SupplierColorFinish string   `json:"supplier_color_finish"`
	Width               *int     `json:"width,omitempty"`
	Height              *int     `json:"height,omitempty"`
	HardwareGroup       string   `json:"hardware_group"`
	PriceOpt            *float64 `json:"price_opt,omitempty"`
	PriceRRCPlusKit     float64  `json:"price_rrc_plus_kit"`
	Qty                 int      `json:"qty"`
	SumOpt              *float64 `json:"sum_opt,omitempty"`
	SumRRC              float64  `json:"sum_rrc"`
}

// ToFactoryRows expands priced positions into flat factory order rows. A
// single counter runs over emitted rows, not input positions.
func ToFactoryRows(positions []PositionPriced) []FactoryRow {
	rows := make([]FactoryRow, 0, len(positions))
	num := 0

	for _, p := range positions {
		num++
		door := FactoryRow{
			Num:                 num,
			Supplier:            p.Supplier,
			Collection:          p.Collection,
			SupplierItemName:    p.SupplierItemName,
			SupplierColorFinish: p.SupplierColorFinish,
			Width:               p.Width,
			Height:              p.Height,
			PriceOpt:            p.PriceOpt,
			PriceRRCPlusKit:     p.PriceRRCPlusKit,
			Qty:                 p.Qty,
			SumOpt:              p.SumOptFactory,
			SumRRC:              p.SumRRCFactory,
		}
		if door.SupplierItemName == "" {
			door.SupplierItemName = p.Model
		}
		if door.SupplierColorFinish == "" {
			door.SupplierColorFinish = p.Color
		}
		if kit := p.HardwareKit; kit != nil {
			door.HardwareGroup = kit.Name
			if kit.Group != "" {
				door.HardwareGroup += fmt.Sprintf(" (гр. %s)", kit.Group)
			}
		}
		rows = append(rows, door)

		h := p.Handle
		if h == nil {
			continue
		}

		num++
		name := h.NameWeb
		if name == "" {
			name = "Ручка: " + h.Name
		}
		// Retail comes from the stored HandlePriceRRC so the accessory row
		// can never disagree with the customer sum.
		retail := 0.0
		if p.HandlePriceRRC != nil {
			retail = *p.HandlePriceRRC
		}
		optPrice := h.PriceOpt
		sumOpt := h.PriceOpt * float64(p.Qty)
		rows = append(rows, FactoryRow{
			Num:                 num,
			Supplier:            p.Supplier,
			Collection:          p.Collection,
			SupplierItemName:    name,
			SupplierColorFinish: h.SKU1C,
			HardwareGroup:       fmt.Sprintf("гр. ×%v", h.PriceGroupMultiplier),
			PriceOpt:            &optPrice,
			PriceRRCPlusKit:     retail,
			Qty:                 p.Qty,
			SumOpt:              &sumOpt,
			SumRRC:              retail * float64(p.Qty),
		})
	}

	return rows
}
