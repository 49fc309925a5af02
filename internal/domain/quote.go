package domain

import (
	"time"

	"github.com/google/uuid"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Quote is a commercial proposal (КП). Items are the raw cart positions;
// pricing derives from them on every export, it is never stored back.
type Quote struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Status        QuoteStatus `gorm:"type:varchar(20);index" json:"status"`
	Items         []Position  `gorm:"type:jsonb;serializer:json" json:"items"`
	Currency      string      `gorm:"size:10;default:RUB" json:"currency"`
	Total         float64     `gorm:"type:decimal(12,2)" json:"total"`
	CustomerID    *uuid.UUID  `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName  string      `gorm:"size:140" json:"customer_name"`
	CustomerEmail string      `gorm:"size:140" json:"customer_email"`
	CustomerPhone string      `gorm:"size:60" json:"customer_phone"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Exportable reports whether a factory order may be produced from the quote.
func (q *Quote) Exportable() bool {
	return q.Status == QuoteStatusAccepted
}

// Customer is a CRM client. Quotes reference customers by id.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:140;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:140" json:"name"`
	Phone     string    `gorm:"size:60" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}
