package usecase

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/domeo/doors/internal/domain"
)

// ImportUC loads factory price lists into the doors catalog. Column names
// are matched exactly (case-insensitive); fuzzy header mapping is the
// admin UI's problem, not ours.
type ImportUC struct {
	Catalog domain.CatalogRepo
}

// ImportReport summarizes one import run.
type ImportReport struct {
	Rows     int `json:"rows"`
	Imported int `json:"imported"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// ConflictRow is one price-list line whose configuration key carries more
// than one distinct RRC price within the file.
type ConflictRow struct {
	Model         string
	Finish        string
	Color         string
	Type          string
	Width         int
	Height        int
	RRCPrice      float64
	ConflictGroup int
}

// ErrImportConflicts aborts an import: the operator must resolve the
// conflicting retail prices before anything is written.
type ErrImportConflicts struct {
	Rows []ConflictRow
}

func (e *ErrImportConflicts) Error() string {
	return fmt.Sprintf("price list has %d conflicting rows", len(e.Rows))
}

// CSV renders the conflict report the admin downloads alongside the 409.
func (e *ErrImportConflicts) CSV() []byte {
	var b bytes.Buffer
	b.WriteString("model,finish,color,type,width,height,rrc_price_source,rrc_price,conflict_group,action\n")
	for _, c := range e.Rows {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%d,%d,file,%v,%d,review\n",
			c.Model, c.Finish, c.Color, c.Type, c.Width, c.Height, c.RRCPrice, c.ConflictGroup)
	}
	return b.Bytes()
}

type importedRow struct {
	domain.DoorProduct
	key string
}

// ImportDoors parses an xlsx price list, rejects it wholesale when any
// configuration key has conflicting RRC prices, and otherwise upserts the
// cheapest row per key.
func (uc *ImportUC) ImportDoors(ctx context.Context, data []byte) (*ImportReport, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rawRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rawRows) < 2 {
		return nil, fmt.Errorf("price list is empty")
	}

	colIdx := map[string]int{}
	for i, h := range rawRows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"model", "finish", "color", "type", "width", "height", "rrc_price"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("price list is missing column %q", required)
		}
	}

	report := &ImportReport{}
	var norm []importedRow
	for _, raw := range rawRows[1:] {
		report.Rows++
		row, ok := parsePriceRow(raw, colIdx)
		if !ok {
			report.Skipped++
			continue
		}
		norm = append(norm, row)
	}

	groups := map[string][]importedRow{}
	var order []string
	for _, r := range norm {
		if _, seen := groups[r.key]; !seen {
			order = append(order, r.key)
		}
		groups[r.key] = append(groups[r.key], r)
	}

	conflicts := collectConflicts(groups, order)
	if len(conflicts) > 0 {
		return nil, &ErrImportConflicts{Rows: conflicts}
	}

	for _, key := range order {
		arr := groups[key]
		canon := arr[0]
		for _, r := range arr[1:] {
			if r.RRCPrice < canon.RRCPrice {
				canon = r
			}
		}
		created, err := uc.Catalog.UpsertDoor(ctx, &canon.DoorProduct)
		if err != nil {
			return nil, fmt.Errorf("upsert %s: %w", key, err)
		}
		report.Imported++
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	log.Info().Int("rows", report.Rows).Int("imported", report.Imported).
		Int("skipped", report.Skipped).Msg("doors price list imported")
	return report, nil
}

func collectConflicts(groups map[string][]importedRow, order []string) []ConflictRow {
	var conflicts []ConflictRow
	group := 0
	for _, key := range order {
		arr := groups[key]
		prices := map[float64]bool{}
		for _, r := range arr {
			prices[r.RRCPrice] = true
		}
		if len(prices) < 2 {
			continue
		}
		group++
		for _, r := range arr {
			conflicts = append(conflicts, ConflictRow{
				Model: r.Model, Finish: r.Finish, Color: r.Color, Type: r.Type,
				Width: r.WidthMM, Height: r.HeightMM,
				RRCPrice: r.RRCPrice, ConflictGroup: group,
			})
		}
	}
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].ConflictGroup < conflicts[j].ConflictGroup
	})
	return conflicts
}

func parsePriceRow(raw []string, colIdx map[string]int) (importedRow, bool) {
	cell := func(name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(raw) {
			return ""
		}
		return strings.TrimSpace(raw[i])
	}

	width, errW := strconv.Atoi(cell("width"))
	height, errH := strconv.Atoi(cell("height"))
	rrc, errP := strconv.ParseFloat(strings.ReplaceAll(cell("rrc_price"), ",", "."), 64)

	p := domain.DoorProduct{
		ID:                  uuid.New(),
		Model:               cell("model"),
		Style:               cell("style"),
		Finish:              cell("finish"),
		Color:               cell("color"),
		Type:                cell("type"),
		WidthMM:             width,
		HeightMM:            height,
		RRCPrice:            rrc,
		SKU1C:               cell("sku_1c"),
		Series:              cell("series"),
		Supplier:            cell("supplier"),
		Collection:          cell("collection"),
		SupplierItemName:    cell("supplier_item_name"),
		SupplierColorFinish: cell("supplier_color_finish"),
		ModelPhoto:          cell("model_photo"),
	}
	if opt := cell("price_opt"); opt != "" {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(opt, ",", "."), 64); err == nil {
			p.PriceOpt = &v
		}
	}

	if p.Model == "" || p.Finish == "" || p.Color == "" || p.Type == "" ||
		errW != nil || errH != nil || errP != nil {
		return importedRow{}, false
	}

	key := strings.Join([]string{
		p.Model, p.Finish, p.Color, p.Type,
		strconv.Itoa(p.WidthMM), strconv.Itoa(p.HeightMM),
	}, "|")
	return importedRow{DoorProduct: p, key: key}, true
}
