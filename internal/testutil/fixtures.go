package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pennywise/internal/calendar"
	"pennywise/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date builds a calendar date at 00:00 UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Amount parses a decimal literal and fails the test on bad input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid amount %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email and the
// password "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a non-planned ledger transaction.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     Amount(t, amount),
		Date:       calendar.Day(date),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRecurringTransaction creates an active recurring transaction.
// Rows are written directly so that past execution dates are allowed.
func CreateTestRecurringTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, amount string, freq models.Frequency, next time.Time) *models.RecurringTransaction {
	t.Helper()

	desc := fmt.Sprintf("Recurring %d", nextID())
	rt := &models.RecurringTransaction{
		UserID:            userID,
		CategoryID:        categoryID,
		Amount:            Amount(t, amount),
		Frequency:         freq,
		NextExecutionDate: calendar.Day(next),
		IsActive:          true,
		Description:       &desc,
	}
	if err := db.Create(rt).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return rt
}

// CreateTestBudgetTemplate creates a budget template.
func CreateTestBudgetTemplate(t *testing.T, db *gorm.DB, userID, categoryID string, amount string, active bool) *models.BudgetTemplate {
	t.Helper()

	tmpl := &models.BudgetTemplate{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     Amount(t, amount),
		Active:     active,
		StartMonth: calendar.Month{Year: 2025, Month: time.January}.Start(),
	}
	if err := db.Create(tmpl).Error; err != nil {
		t.Fatalf("failed to create test budget template: %v", err)
	}
	return tmpl
}

// CreateTestBudget creates a budget for the given category and month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, month calendar.Month, limit string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  categoryID,
		Month:       month.Start(),
		LimitAmount: Amount(t, limit),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
