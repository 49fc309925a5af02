package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildPriceList(t *testing.T, header []string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

var priceListHeader = []string{"model", "finish", "color", "type", "width", "height", "rrc_price", "price_opt", "supplier"}

func TestImportDoors(t *testing.T) {
	data := buildPriceList(t, priceListHeader, [][]any{
		{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000, 15000, 9500, "Фабрика Норд"},
		{"Модерн", "Эмаль", "Серый", "Распашная", 700, 2100, 12000, "", "Фабрика Норд"},
	})

	repo := &fakeCatalogRepo{}
	uc := &ImportUC{Catalog: repo}

	report, err := uc.ImportDoors(context.Background(), data)
	if err != nil {
		t.Fatalf("ImportDoors: %v", err)
	}
	if report.Rows != 2 || report.Imported != 2 || report.Created != 2 || report.Skipped != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(repo.doors) != 2 {
		t.Fatalf("stored %d doors, want 2", len(repo.doors))
	}

	first := repo.doors[0]
	if first.Model != "Классика" || first.WidthMM != 800 || first.RRCPrice != 15000 {
		t.Errorf("first door = %+v", first)
	}
	if first.PriceOpt == nil || *first.PriceOpt != 9500 {
		t.Errorf("first door PriceOpt = %v, want 9500", first.PriceOpt)
	}
	if second := repo.doors[1]; second.PriceOpt != nil {
		t.Errorf("second door PriceOpt = %v, want nil when cell is empty", *second.PriceOpt)
	}
}

func TestImportDoorsUpdatesExisting(t *testing.T) {
	repo := &fakeCatalogRepo{}
	uc := &ImportUC{Catalog: repo}

	data := buildPriceList(t, priceListHeader, [][]any{
		{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000, 15000, "", ""},
	})
	if _, err := uc.ImportDoors(context.Background(), data); err != nil {
		t.Fatalf("first import: %v", err)
	}

	data = buildPriceList(t, priceListHeader, [][]any{
		{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000, 14500, "", ""},
	})
	report, err := uc.ImportDoors(context.Background(), data)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if report.Created != 0 || report.Updated != 1 {
		t.Errorf("report = %+v, want pure update", report)
	}
	if len(repo.doors) != 1 || repo.doors[0].RRCPrice != 14500 {
		t.Errorf("doors = %+v, want single row with new price", repo.doors)
	}
}

func TestImportDoorsDuplicateSamePrice(t *testing.T) {
	// Same configuration twice with an identical RRC is not a conflict,
	// it collapses to one canonical row.
	data := buildPriceList(t, priceListHeader, [][]any{
		{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000, 15000, "", ""},
		{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000, 15000, "", ""},
	})

	repo := &fakeCatalogRepo{}
	uc := &ImportUC{Catalog: repo}

	report, err := uc.ImportDoors(context.Background(), data)
	if err != nil {
		t.Fatalf("ImportDoors: %v", err)
	}
	if report.Imported != 1 || len(repo.doors) != 1 {
		t.Errorf("report = %+v, doors = %d; want one canonical row", report, len(repo.doors))
	}
}

func TestImportDoorsConflict(t *testing.T) {
	data := buildPriceList(t, priceListHeader, [][]any{
		{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000, 15000, "", ""},
		{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000, 15500, "", ""},
		{"Модерн", "Эмаль", "Серый", "Распашная", 700, 2100, 12000, "", ""},
	})

	repo := &fakeCatalogRepo{}
	uc := &ImportUC{Catalog: repo}

	_, err := uc.ImportDoors(context.Background(), data)
	var conflicts *ErrImportConflicts
	if !errors.As(err, &conflicts) {
		t.Fatalf("err = %v, want *ErrImportConflicts", err)
	}
	if len(conflicts.Rows) != 2 {
		t.Fatalf("conflict rows = %d, want 2 (only the conflicting key)", len(conflicts.Rows))
	}
	for _, c := range conflicts.Rows {
		if c.Model != "Классика" || c.ConflictGroup != 1 {
			t.Errorf("conflict row = %+v", c)
		}
	}
	if len(repo.doors) != 0 {
		t.Errorf("stored %d doors, want 0 (conflicts abort the whole import)", len(repo.doors))
	}

	csv := string(conflicts.CSV())
	if !strings.HasPrefix(csv, "model,finish,color,type,width,height,rrc_price_source,rrc_price,conflict_group,action\n") {
		t.Errorf("csv header wrong:\n%s", csv)
	}
	if !strings.Contains(csv, "Классика,ПВХ,Белый,Распашная,800,2000,file,15500,1,review") {
		t.Errorf("csv missing conflict row:\n%s", csv)
	}
}

func TestImportDoorsSkipsIncompleteRows(t *testing.T) {
	data := buildPriceList(t, priceListHeader, [][]any{
		{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000, 15000, "", ""},
		{"", "ПВХ", "Белый", "Распашная", 800, 2000, 15000, "", ""},
		{"Модерн", "Эмаль", "Серый", "Распашная", "широкая", 2100, 12000, "", ""},
	})

	repo := &fakeCatalogRepo{}
	uc := &ImportUC{Catalog: repo}

	report, err := uc.ImportDoors(context.Background(), data)
	if err != nil {
		t.Fatalf("ImportDoors: %v", err)
	}
	if report.Rows != 3 || report.Imported != 1 || report.Skipped != 2 {
		t.Errorf("report = %+v, want 1 imported and 2 skipped", report)
	}
}

func TestImportDoorsMissingColumn(t *testing.T) {
	data := buildPriceList(t,
		[]string{"model", "finish", "color", "type", "width", "height"},
		[][]any{{"Классика", "ПВХ", "Белый", "Распашная", 800, 2000}},
	)

	uc := &ImportUC{Catalog: &fakeCatalogRepo{}}
	_, err := uc.ImportDoors(context.Background(), data)
	if err == nil || !strings.Contains(err.Error(), "rrc_price") {
		t.Errorf("err = %v, want missing column rrc_price", err)
	}
}

func TestImportDoorsRejectsGarbage(t *testing.T) {
	uc := &ImportUC{Catalog: &fakeCatalogRepo{}}
	if _, err := uc.ImportDoors(context.Background(), []byte("not an xlsx")); err == nil {
		t.Error("expected error for non-xlsx payload")
	}
}
