package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domeo/doors/internal/domain"
)

type QuoteRepo struct{ db *gorm.DB }

func NewQuoteRepo(db *gorm.DB) *QuoteRepo { return &QuoteRepo{db: db} }

func (r *QuoteRepo) Save(ctx context.Context, q *domain.Quote) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *QuoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var q domain.Quote
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *QuoteRepo) List(ctx context.Context, status domain.QuoteStatus, page, pageSize int) ([]domain.Quote, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Quote{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	var list []domain.Quote
	err := q.Order("created_at desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error
	return list, total, err
}

func (r *QuoteRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Quote{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
