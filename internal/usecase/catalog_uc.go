package usecase

import (
	"context"

	"github.com/domeo/doors/internal/domain"
)

type CatalogUC struct {
	Catalog domain.CatalogRepo
}

// OptionsDomain is the set of selectable values per configurator field,
// plus the kit and handle catalogs.
type OptionsDomain struct {
	Style   []string             `json:"style"`
	Model   []string             `json:"model"`
	Finish  []string             `json:"finish"`
	Color   []string             `json:"color"`
	Type    []string             `json:"type"`
	Width   []string             `json:"width"`
	Height  []string             `json:"height"`
	Kits    []domain.HardwareKit `json:"kits"`
	Handles []domain.Handle      `json:"handles"`
}

// Options builds the dependsOn domains: each field's values are scoped by
// the selections made for the fields before it in the chain.
func (uc *CatalogUC) Options(ctx context.Context, f domain.OptionsFilter) (*OptionsDomain, error) {
	d := &OptionsDomain{}
	targets := map[string]*[]string{
		"style": &d.Style, "model": &d.Model, "finish": &d.Finish,
		"color": &d.Color, "type": &d.Type, "width": &d.Width, "height": &d.Height,
	}

	for i, field := range domain.OptionsChain {
		scoped := truncateFilter(f, i)
		values, err := uc.Catalog.DistinctValues(ctx, field, scoped)
		if err != nil {
			return nil, err
		}
		*targets[field] = values
	}

	kits, err := uc.Catalog.ListKits(ctx)
	if err != nil {
		return nil, err
	}
	handles, err := uc.Catalog.ListHandles(ctx)
	if err != nil {
		return nil, err
	}
	d.Kits = kits
	d.Handles = handles
	return d, nil
}

// truncateFilter keeps only the chain fields strictly before position idx.
func truncateFilter(f domain.OptionsFilter, idx int) domain.OptionsFilter {
	var out domain.OptionsFilter
	for i, field := range domain.OptionsChain {
		if i >= idx {
			break
		}
		switch field {
		case "style":
			out.Style = f.Style
		case "model":
			out.Model = f.Model
		case "finish":
			out.Finish = f.Finish
		case "color":
			out.Color = f.Color
		case "type":
			out.Type = f.Type
		case "width":
			out.Width = f.Width
		case "height":
			out.Height = f.Height
		}
	}
	return out
}

func (uc *CatalogUC) ListDoors(ctx context.Context, page, pageSize int) ([]domain.DoorProduct, int64, error) {
	if pageSize <= 0 {
		pageSize = 200
	}
	return uc.Catalog.ListDoors(ctx, page, pageSize)
}
