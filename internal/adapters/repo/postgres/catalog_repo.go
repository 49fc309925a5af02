package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domeo/doors/internal/domain"
)

type CatalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) *CatalogRepo { return &CatalogRepo{db: db} }

var chainColumns = map[string]string{
	"style":  "style",
	"model":  "model",
	"finish": "finish",
	"color":  "color",
	"type":   "type",
	"width":  "width_mm",
	"height": "height_mm",
}

func (r *CatalogRepo) DistinctValues(ctx context.Context, field string, f domain.OptionsFilter) ([]string, error) {
	col, ok := chainColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown option field %q", field)
	}

	q := r.scoped(ctx, f).Model(&domain.DoorProduct{}).
		Distinct(col).
		Where(col + " IS NOT NULL AND " + col + "::text <> ''").
		Order(col + " asc")

	if col == "width_mm" || col == "height_mm" {
		var nums []int
		if err := q.Pluck(col, &nums).Error; err != nil {
			return nil, err
		}
		values := make([]string, 0, len(nums))
		for _, n := range nums {
			if n != 0 {
				values = append(values, strconv.Itoa(n))
			}
		}
		return values, nil
	}

	var values []string
	if err := q.Pluck(col, &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

func (r *CatalogRepo) FindDoor(ctx context.Context, f domain.OptionsFilter) (*domain.DoorProduct, error) {
	var p domain.DoorProduct
	if err := r.scoped(ctx, f).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpsertDoor writes one price-list row keyed by the configuration tuple
// (model, finish, color, type, width, height).
func (r *CatalogRepo) UpsertDoor(ctx context.Context, p *domain.DoorProduct) (bool, error) {
	var existing domain.DoorProduct
	err := r.db.WithContext(ctx).
		Where("model = ? AND finish = ? AND color = ? AND type = ? AND width_mm = ? AND height_mm = ?",
			p.Model, p.Finish, p.Color, p.Type, p.WidthMM, p.HeightMM).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		return true, r.db.WithContext(ctx).Create(p).Error
	}
	if err != nil {
		return false, err
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	return false, r.db.WithContext(ctx).Save(p).Error
}

func (r *CatalogRepo) ListDoors(ctx context.Context, page, pageSize int) ([]domain.DoorProduct, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.DoorProduct{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	var list []domain.DoorProduct
	err := r.db.WithContext(ctx).
		Order("model asc, width_mm asc, height_mm asc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&list).Error
	return list, total, err
}

func (r *CatalogRepo) ListKits(ctx context.Context) ([]domain.HardwareKit, error) {
	var kits []domain.HardwareKit
	err := r.db.WithContext(ctx).Order("name asc").Find(&kits).Error
	return kits, err
}

func (r *CatalogRepo) ListHandles(ctx context.Context) ([]domain.Handle, error) {
	var handles []domain.Handle
	err := r.db.WithContext(ctx).Order("name asc").Find(&handles).Error
	return handles, err
}

func (r *CatalogRepo) scoped(ctx context.Context, f domain.OptionsFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.DoorProduct{})
	if f.Style != "" {
		q = q.Where("style = ?", f.Style)
	}
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if f.Finish != "" {
		q = q.Where("finish = ?", f.Finish)
	}
	if f.Color != "" {
		q = q.Where("color = ?", f.Color)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Width != nil {
		q = q.Where("width_mm = ?", *f.Width)
	}
	if f.Height != nil {
		q = q.Where("height_mm = ?", *f.Height)
	}
	return q
}
