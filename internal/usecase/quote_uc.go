package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/domeo/doors/internal/domain"
	"github.com/domeo/doors/internal/pricing"
)

type QuoteUC struct {
	Quotes domain.QuoteRepo
}

var quoteTransitions = map[domain.QuoteStatus][]domain.QuoteStatus{
	domain.QuoteStatusDraft:    {domain.QuoteStatusSent, domain.QuoteStatusRejected},
	domain.QuoteStatusSent:     {domain.QuoteStatusAccepted, domain.QuoteStatusRejected},
	domain.QuoteStatusAccepted: {},
	domain.QuoteStatusRejected: {},
}

// Create prices the cart and stores the proposal. The stored total is the
// sum of customer-facing line sums; per-line derived fields are not
// persisted, they are recomputed on export.
func (uc *QuoteUC) Create(ctx context.Context, q *domain.Quote) error {
	if len(q.Items) == 0 {
		return errors.New("quote must contain at least one position")
	}

	priced, err := pricing.ApplyPricing(q.Items)
	if err != nil {
		return err
	}

	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = domain.QuoteStatusDraft
	}
	if q.Currency == "" {
		q.Currency = "RUB"
	}
	q.Total = 0
	for _, p := range priced {
		q.Total += p.SumRRC
	}

	return uc.Quotes.Save(ctx, q)
}

func (uc *QuoteUC) Get(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	return uc.Quotes.FindByID(ctx, id)
}

func (uc *QuoteUC) List(ctx context.Context, status domain.QuoteStatus, page, pageSize int) ([]domain.Quote, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return uc.Quotes.List(ctx, status, page, pageSize)
}

// ChangeStatus applies a lifecycle transition. Accepted and rejected are
// terminal.
func (uc *QuoteUC) ChangeStatus(ctx context.Context, id uuid.UUID, to domain.QuoteStatus) error {
	q, err := uc.Quotes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	for _, allowed := range quoteTransitions[q.Status] {
		if allowed == to {
			return uc.Quotes.UpdateStatus(ctx, id, to)
		}
	}
	return errors.New("invalid status transition: " + string(q.Status) + " -> " + string(to))
}
