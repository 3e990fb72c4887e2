package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetTemplate describes a spending limit that is turned into a Budget at
// the start of every month. At most one active template may exist per
// (user, category).
type BudgetTemplate struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string          `gorm:"type:uuid;not null" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Active     bool            `gorm:"not null;index" json:"active"`
	StartMonth time.Time       `gorm:"type:date;not null" json:"start_month"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
