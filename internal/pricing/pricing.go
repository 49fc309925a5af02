// Package pricing computes the monetary views of a configured door cart.
// Every function is pure: same positions in, same numbers out, no shared
// state, safe to call concurrently.
package pricing

import (
	"fmt"
	"math"

	"github.com/domeo/doors/internal/domain"
)

// PositionPriced is a Position plus its derived monetary fields. It is
// created once per pricing pass and never mutated afterwards.
type PositionPriced struct {
	domain.Position

	NameKP string `json:"name_kp"`

	// HandlePriceRRC is the retail handle price, nil when no handle is
	// selected. Every place the handle's retail price appears (customer
	// sum, factory accessory row) must reuse this value.
	HandlePriceRRC *float64 `json:"handle_price_rrc,omitempty"`

	// PriceRRCPlus is the customer-facing unit price: door + kit + handle,
	// all retail. SumRRC = PriceRRCPlus × Qty.
	PriceRRCPlus float64 `json:"price_rrc_plus"`
	SumRRC       float64 `json:"sum_rrc"`

	// PriceRRCPlusKit excludes the handle: the factory order prices the
	// handle as its own accessory line, so the door row must not
	// double-count it.
	PriceRRCPlusKit float64 `json:"price_rrc_plus_kit"`
	SumRRCFactory   float64 `json:"sum_rrc_factory"`

	// SumOptFactory is nil when no wholesale unit price is known. Absent
	// and zero are different facts.
	SumOptFactory *float64 `json:"sum_opt_factory,omitempty"`
}

// RoundRUB rounds a monetary amount to the nearest whole ruble, half up.
func RoundRUB(x float64) float64 {
	return math.Floor(x + 0.5)
}

// HandleRetail returns the retail handle price, or nil when the position
// has no handle. This is the only place the opt→retail markup is applied.
func HandleRetail(p domain.Position) *float64 {
	if p.Handle == nil {
		return nil
	}
	v := RoundRUB(p.Handle.PriceOpt * p.Handle.PriceGroupMultiplier)
	return &v
}

// PriceRRCPlus is the customer-facing unit price: door RRC + kit RRC +
// retail handle price.
func PriceRRCPlus(p domain.Position) float64 {
	price := p.RRCPrice
	if p.HardwareKit != nil {
		price += p.HardwareKit.PriceRRC
	}
	if hr := HandleRetail(p); hr != nil {
		price += *hr
	}
	return price
}

// ApplyPricingRow prices a single position. Invalid positions (qty < 1,
// negative prices) are rejected here rather than silently producing
// negative or zero sums.
func ApplyPricingRow(p domain.Position) (PositionPriced, error) {
	if err := validate(p); err != nil {
		return PositionPriced{}, err
	}

	priced := PositionPriced{Position: p}
	priced.NameKP = BuildNameKP(p)
	priced.HandlePriceRRC = HandleRetail(p)

	priced.PriceRRCPlus = PriceRRCPlus(p)
	priced.SumRRC = priced.PriceRRCPlus * float64(p.Qty)

	priced.PriceRRCPlusKit = p.RRCPrice
	if p.HardwareKit != nil {
		priced.PriceRRCPlusKit += p.HardwareKit.PriceRRC
	}
	priced.SumRRCFactory = priced.PriceRRCPlusKit * float64(p.Qty)

	if p.PriceOpt != nil {
		sum := *p.PriceOpt * float64(p.Qty)
		priced.SumOptFactory = &sum
	}

	return priced, nil
}

// ApplyPricing prices the whole cart preserving input order, so the final
// document matches cart order.
func ApplyPricing(positions []domain.Position) ([]PositionPriced, error) {
	priced := make([]PositionPriced, 0, len(positions))
	for i, p := range positions {
		row, err := ApplyPricingRow(p)
		if err != nil {
			return nil, fmt.Errorf("position %d (%s): %w", i+1, p.Model, err)
		}
		priced = append(priced, row)
	}
	return priced, nil
}

func validate(p domain.Position) error {
	if p.Model == "" {
		return fmt.Errorf("model is required")
	}
	if p.Qty < 1 {
		return fmt.Errorf("qty must be at least 1, got %d", p.Qty)
	}
	if p.RRCPrice < 0 {
		return fmt.Errorf("rrc_price must be non-negative, got %v", p.RRCPrice)
	}
	if p.PriceOpt != nil && *p.PriceOpt < 0 {
		return fmt.Errorf("price_opt must be non-negative, got %v", *p.PriceOpt)
	}
	if p.Handle != nil && p.Handle.PriceGroupMultiplier <= 0 {
		return fmt.Errorf("handle price_group_multiplier must be positive, got %v", p.Handle.PriceGroupMultiplier)
	}
	if p.HardwareKit != nil && p.HardwareKit.PriceRRC < 0 {
		return fmt.Errorf("hardware_kit price_rrc must be non-negative, got %v", p.HardwareKit.PriceRRC)
	}
	return nil
}
