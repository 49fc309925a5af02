package domain

// Position is one configured door line in a cart, not yet priced. It is
// stored as JSON inside Quote.Items and travels through the pricing
// pipeline untouched.
type Position struct {
	Model  string `json:"model"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
	Color  string `json:"color,omitempty"`

	// Edge is "да", "нет" or empty. EdgeNote describes the finish when
	// Edge is "да".
	Edge     string `json:"edge,omitempty"`
	EdgeNote string `json:"edge_note,omitempty"`

	RRCPrice float64  `json:"rrc_price"`
	Qty      int      `json:"qty"`
	PriceOpt *float64 `json:"price_opt,omitempty"`

	SKU1C               string `json:"sku_1c,omitempty"`
	Series              string `json:"series,omitempty"`
	Material            string `json:"material,omitempty"`
	Finish              string `json:"finish,omitempty"`
	Supplier            string `json:"supplier,omitempty"`
	Collection          string `json:"collection,omitempty"`
	SupplierItemName    string `json:"supplier_item_name,omitempty"`
	SupplierColorFinish string `json:"supplier_color_finish,omitempty"`

	HardwareKit *PositionKit    `json:"hardware_kit,omitempty"`
	Handle      *PositionHandle `json:"handle,omitempty"`
}

// PositionKit is the hardware kit selected for a position.
type PositionKit struct {
	Name     string  `json:"name"`
	PriceRRC float64 `json:"price_rrc"`
	Group    string  `json:"group,omitempty"`
}

// PositionHandle is the handle selected for a position. The handle has no
// independent quantity: it always tracks the door quantity.
type PositionHandle struct {
	Name                 string  `json:"name"`
	NameWeb              string  `json:"name_web,omitempty"`
	SKU1C                string  `json:"sku_1c,omitempty"`
	PriceOpt             float64 `json:"price_opt"`
	PriceGroupMultiplier float64 `json:"price_group_multiplier"`
}
