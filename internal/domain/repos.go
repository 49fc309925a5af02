package domain

import (
	"context"

	"github.com/google/uuid"
)

// OptionsFilter narrows the catalog option domains. Fields follow the
// configurator chain: each option's domain is computed from the fields
// selected before it.
type OptionsFilter struct {
	Style  string
	Model  string
	Finish string
	Color  string
	Type   string
	Width  *int
	Height *int
}

// OptionsChain is the order in which configurator fields depend on each other.
var OptionsChain = []string{"style", "model", "finish", "color", "type", "width", "height"}

type CatalogRepo interface {
	// DistinctValues returns the sorted distinct values of one chain field,
	// scoped to the filter fields that precede it in OptionsChain.
	DistinctValues(ctx context.Context, field string, f OptionsFilter) ([]string, error)
	FindDoor(ctx context.Context, f OptionsFilter) (*DoorProduct, error)
	UpsertDoor(ctx context.Context, p *DoorProduct) (created bool, err error)
	ListDoors(ctx context.Context, page, pageSize int) ([]DoorProduct, int64, error)
	ListKits(ctx context.Context) ([]HardwareKit, error)
	ListHandles(ctx context.Context) ([]Handle, error)
}

type QuoteRepo interface {
	Save(ctx context.Context, q *Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	List(ctx context.Context, status QuoteStatus, page, pageSize int) ([]Quote, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status QuoteStatus) error
}

type CustomerRepo interface {
	Save(ctx context.Context, c *Customer) error
	FindByEmail(ctx context.Context, email string) (*Customer, error)
}
