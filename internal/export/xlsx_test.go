package export

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/domeo/doors/internal/domain"
	"github.com/domeo/doors/internal/pricing"
)

func intp(v int) *int { return &v }

func pricedCart(t *testing.T) []pricing.PositionPriced {
	t.Helper()
	priced, err := pricing.ApplyPricing([]domain.Position{
		{
			Model: "Классика", Width: intp(800), Height: intp(2000), Color: "Белый",
			RRCPrice: 15000, Qty: 2,
			Supplier: "Фабрика Норд", Collection: "Classic",
			HardwareKit: &domain.PositionKit{Name: "Базовый", PriceRRC: 5000},
			Handle:      &domain.PositionHandle{Name: "Pro", PriceOpt: 900, PriceGroupMultiplier: 1.15},
		},
		{
			Model: "Модерн", RRCPrice: 12000, Qty: 1,
		},
	})
	if err != nil {
		t.Fatalf("ApplyPricing: %v", err)
	}
	return priced
}

func TestFactoryXLSX(t *testing.T) {
	rows := pricing.ToFactoryRows(pricedCart(t))
	buf, err := FactoryXLSX(rows)
	if err != nil {
		t.Fatalf("FactoryXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("output is not a readable xlsx: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetName(0); got != "Заказ на фабрику" {
		t.Errorf("sheet name = %q", got)
	}

	header, err := f.GetCellValue("Заказ на фабрику", "A1")
	if err != nil || header != "№" {
		t.Errorf("A1 = %q (err %v), want №", header, err)
	}

	// 3 factory rows: door+handle, then plain door.
	for row := 2; row <= 4; row++ {
		num, _ := f.GetCellValue("Заказ на фабрику", fmt.Sprintf("A%d", row))
		if num == "" {
			t.Errorf("row %d: empty № cell", row)
		}
	}

	name, _ := f.GetCellValue("Заказ на фабрику", "D3")
	if name != "Ручка: Pro" {
		t.Errorf("D3 = %q, want handle accessory row", name)
	}

	sum, _ := f.GetCellValue("Заказ на фабрику", "M2")
	if sum != "40000" && sum != "40000.00" && sum != "40,000.00" {
		t.Errorf("M2 (door sum_rrc) = %q, want 40000", sum)
	}
}

func TestOrderXLSX(t *testing.T) {
	rows := CustomerRows(pricedCart(t), "RUB", time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC))
	buf, err := OrderXLSX(rows)
	if err != nil {
		t.Fatalf("OrderXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("output is not a readable xlsx: %v", err)
	}
	defer f.Close()

	handle, _ := f.GetCellValue("Заказ на фабрику", "I2")
	if handle != "Ручка: Pro" {
		t.Errorf("I2 = %q, want inline handle description", handle)
	}

	// One row per position: row 3 is the second position, row 4 empty.
	second, _ := f.GetCellValue("Заказ на фабрику", "J3")
	if second != "1" {
		t.Errorf("J3 (qty of second position) = %q, want 1", second)
	}
	empty, _ := f.GetCellValue("Заказ на фабрику", "A4")
	if empty != "" {
		t.Errorf("A4 = %q, want empty (no accessory split in customer projection)", empty)
	}
}

func TestCustomerRows(t *testing.T) {
	created := time.Date(2025, 9, 12, 10, 30, 0, 0, time.UTC)
	rows := CustomerRows(pricedCart(t), "", created)

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2 (one per position)", len(rows))
	}

	first := rows[0]
	if first.Handle != "Ручка: Pro" {
		t.Errorf("Handle = %q, want descriptive string", first.Handle)
	}
	if first.HardwareSet != "Базовый" {
		t.Errorf("HardwareSet = %q", first.HardwareSet)
	}
	if first.TotalPrice != 42070 {
		t.Errorf("TotalPrice = %v, want 42070", first.TotalPrice)
	}
	if first.Currency != "RUB" {
		t.Errorf("Currency = %q, want RUB default", first.Currency)
	}
	if first.CreatedAt != "2025-09-12T10:30:00Z" {
		t.Errorf("CreatedAt = %q", first.CreatedAt)
	}
	if first.DiscountPrice != nil || first.VATPrice != nil {
		t.Error("discount/vat must be absent, not zero")
	}

	second := rows[1]
	if second.Handle != "" || second.HardwareSet != "" {
		t.Error("second position has no accessories")
	}
	if second.TotalPrice != 12000 {
		t.Errorf("second TotalPrice = %v, want 12000", second.TotalPrice)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 9, 12, 23, 59, 0, 0, time.UTC)
	got := Filename("factory_order", "abc-123", at, "xlsx")
	want := "factory_order_abc-123_2025-09-12.xlsx"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestMIMEByFormat(t *testing.T) {
	if m, ok := MIMEByFormat("xlsx"); !ok || m != MIMEXLSX {
		t.Errorf("xlsx → %q, %v", m, ok)
	}
	if _, ok := MIMEByFormat("csv"); ok {
		t.Error("csv must not be a supported serializer format")
	}
}
