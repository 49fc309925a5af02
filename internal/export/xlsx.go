package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/domeo/doors/internal/pricing"
)

const sheetName = "Заказ на фабрику"

// column pairs a header label with a display width hint.
type column struct {
	header string
	width  float64
}

var factoryColumns = []column{
	{"№", 5},
	{"Поставщик", 18},
	{"Коллекция", 16},
	{"Наименование", 40},
	{"Цвет/отделка", 18},
	{"Ширина", 10},
	{"Высота", 10},
	{"Фурнитура", 22},
	{"Цена опт", 12},
	{"Цена РРЦ", 12},
	{"Кол-во", 8},
	{"Сумма опт", 14},
	{"Сумма РРЦ", 14},
}

var orderColumns = []column{
	{"Артикул", 16},
	{"Серия", 14},
	{"Материал", 14},
	{"Отделка", 14},
	{"Ширина", 10},
	{"Высота", 10},
	{"Цвет", 14},
	{"Комплект", 22},
	{"Ручка", 22},
	{"Кол-во", 8},
	{"Цена закупки", 14},
	{"Наценка", 12},
	{"Сумма", 14},
	{"Валюта", 8},
}

// sheetStyles holds the style ids shared by both serializers.
type sheetStyles struct {
	header int
	cell   int
	qty    int
	money  int
}

// FactoryXLSX renders factory order rows into an xlsx buffer. Rows are
// written in input order; values are assumed already rounded by the
// pricing layer, the number formats here are presentation only.
func FactoryXLSX(rows []pricing.FactoryRow) ([]byte, error) {
	f, styles, err := newSheet(factoryColumns)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i, r := range rows {
		rowN := i + 2
		cells := []any{
			r.Num, r.Supplier, r.Collection, r.SupplierItemName, r.SupplierColorFinish,
			intOrNil(r.Width), intOrNil(r.Height), r.HardwareGroup,
			floatOrNil(r.PriceOpt), r.PriceRRCPlusKit, r.Qty,
			floatOrNil(r.SumOpt), r.SumRRC,
		}
		if err := writeRow(f, styles, rowN, cells, map[int]int{
			0: styles.qty, 5: styles.qty, 6: styles.qty, 10: styles.qty,
			8: styles.money, 9: styles.money, 11: styles.money, 12: styles.money,
		}); err != nil {
			return nil, err
		}
	}

	return toBuffer(f)
}

// OrderXLSX renders the customer/factory-order-combined projection.
func OrderXLSX(rows []ExportRow) ([]byte, error) {
	f, styles, err := newSheet(orderColumns)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i, r := range rows {
		rowN := i + 2
		cells := []any{
			r.SKU, r.Series, r.Material, r.Finish,
			intOrNil(r.WidthMM), intOrNil(r.HeightMM), r.Color,
			r.HardwareSet, r.Handle, r.Quantity,
			r.BasePrice, r.MarkupPrice, r.TotalPrice, r.Currency,
		}
		if err := writeRow(f, styles, rowN, cells, map[int]int{
			4: styles.qty, 5: styles.qty, 9: styles.qty,
			10: styles.money, 11: styles.money, 12: styles.money,
		}); err != nil {
			return nil, err
		}
	}

	return toBuffer(f)
}

func newSheet(cols []column) (*excelize.File, sheetStyles, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, sheetStyles{}, fmt.Errorf("set sheet name: %w", err)
	}

	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, sheetStyles{}, err
		}
		if err := f.SetColWidth(sheetName, name, name, c.width); err != nil {
			f.Close()
			return nil, sheetStyles{}, fmt.Errorf("set col width %s: %w", name, err)
		}
	}

	styles, err := buildStyles(f)
	if err != nil {
		f.Close()
		return nil, sheetStyles{}, err
	}

	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, sheetStyles{}, err
		}
		f.SetCellValue(sheetName, cell, c.header)
		f.SetCellStyle(sheetName, cell, cell, styles.header)
	}

	return f, styles, nil
}

func buildStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}

	s.cell, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create cell style: %w", err)
	}

	intFmt := "0"
	s.qty, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &intFmt,
	})
	if err != nil {
		return s, fmt.Errorf("create qty style: %w", err)
	}

	moneyFmt := "#,##0.00"
	s.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}

	return s, nil
}

// writeRow writes one data row, applying the default cell style and the
// per-column overrides (quantity and money formats).
func writeRow(f *excelize.File, styles sheetStyles, rowN int, cells []any, overrides map[int]int) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, rowN)
		if err != nil {
			return err
		}
		if v != nil {
			f.SetCellValue(sheetName, cell, v)
		}
		style := styles.cell
		if s, ok := overrides[i]; ok {
			style = s
		}
		f.SetCellStyle(sheetName, cell, cell, style)
	}
	return nil
}

func toBuffer(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
