package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a ledger entry. Entries created by the recurring executor
// carry the id of the recurring transaction that produced them.
type Transaction struct {
	Base
	UserID                 string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID             string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount                 decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date                   time.Time       `gorm:"type:date;not null;index" json:"date"`
	Description            string          `json:"description"`
	IsPlanned              bool            `gorm:"not null;default:false" json:"is_planned"`
	RecurringTransactionID *string         `gorm:"type:uuid;index" json:"recurring_transaction_id,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
