package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the spending limit of one category for one calendar month.
// (UserID, CategoryID, Month) is unique.
type Budget struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_month" json:"user_id"`
	CategoryID  string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_month" json:"category_id"`
	Month       time.Time       `gorm:"type:date;not null;uniqueIndex:idx_budgets_user_category_month" json:"month"`
	LimitAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"limit_amount"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
