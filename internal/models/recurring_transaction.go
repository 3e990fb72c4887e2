package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring transaction repeats. The set is closed.
type Frequency string

const (
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// Frequencies lists every supported frequency.
var Frequencies = []Frequency{FrequencyWeekly, FrequencyMonthly, FrequencyYearly}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// ParseFrequency accepts a frequency name in any letter case.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unsupported frequency %q", s)
	}
	return f, nil
}

// RecurringTransaction is a scheduled obligation that is materialized into a
// ledger Transaction every time its NextExecutionDate comes due.
type RecurringTransaction struct {
	Base
	UserID            string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID        string          `gorm:"type:uuid;not null" json:"category_id"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Frequency         Frequency       `gorm:"type:varchar(16);not null" json:"frequency"`
	NextExecutionDate time.Time       `gorm:"type:date;not null;index" json:"next_execution_date"`
	LastExecutionDate *time.Time      `gorm:"type:date" json:"last_execution_date,omitempty"`
	IsActive          bool            `gorm:"not null;index" json:"is_active"`
	Description       *string         `json:"description,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// DescriptionText returns the description or an empty string when unset.
func (r *RecurringTransaction) DescriptionText() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}
