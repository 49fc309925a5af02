package domain

import (
	"time"

	"github.com/google/uuid"
)

// DoorProduct is one row of the imported factory price list. The tuple
// (model, finish, color, type, width, height) identifies a configuration.
type DoorProduct struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Model               string    `gorm:"size:180;index" json:"model"`
	Style               string    `gorm:"size:100" json:"style"`
	Finish              string    `gorm:"size:100" json:"finish"`
	Color               string    `gorm:"size:60" json:"color"`
	Type                string    `gorm:"size:60" json:"type"`
	WidthMM             int       `gorm:"column:width_mm" json:"width"`
	HeightMM            int       `gorm:"column:height_mm" json:"height"`
	RRCPrice            float64   `gorm:"column:rrc_price;type:decimal(12,2)" json:"rrc_price"`
	PriceOpt            *float64  `gorm:"column:price_opt;type:decimal(12,2)" json:"price_opt,omitempty"`
	SKU1C               string    `gorm:"column:sku_1c;size:120;index" json:"sku_1c"`
	Series              string    `gorm:"size:100" json:"series"`
	Supplier            string    `gorm:"size:140" json:"supplier"`
	Collection          string    `gorm:"size:140" json:"collection"`
	SupplierItemName    string    `gorm:"size:180" json:"supplier_item_name"`
	SupplierColorFinish string    `gorm:"size:140" json:"supplier_color_finish"`
	ModelPhoto          string    `gorm:"size:255" json:"model_photo"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}

// HardwareKit is a hardware bundle (hinges, latches) sold alongside a door.
type HardwareKit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:140" json:"name"`
	Group     string    `gorm:"column:grp;size:20" json:"group,omitempty"`
	PriceRRC  float64   `gorm:"column:price_rrc;type:decimal(12,2)" json:"price_rrc"`
	CreatedAt time.Time `json:"-"`
}

// Handle carries a wholesale price plus the price-group multiplier that
// converts it to retail. The multiplier is applied in exactly one place,
// pricing.HandleRetail.
type Handle struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name                 string    `gorm:"size:140" json:"name"`
	NameWeb              string    `gorm:"size:180" json:"name_web,omitempty"`
	SKU1C                string    `gorm:"column:sku_1c;size:120" json:"sku_1c,omitempty"`
	SupplierName         string    `gorm:"size:140" json:"supplier_name"`
	SupplierSKU          string    `gorm:"size:120" json:"supplier_sku"`
	PriceOpt             float64   `gorm:"column:price_opt;type:decimal(12,2)" json:"price_opt"`
	PriceRRC             float64   `gorm:"column:price_rrc;type:decimal(12,2)" json:"price_rrc"`
	PriceGroupMultiplier float64   `gorm:"type:decimal(6,3);default:1" json:"price_group_multiplier"`
	CreatedAt            time.Time `json:"-"`
}
