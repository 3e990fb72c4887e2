package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/calendar"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// recurringTransactionService manages the recurring transactions owned by users.
type recurringTransactionService struct {
	db       *gorm.DB
	clock    calendar.Clock
	location *time.Location
}

// NewRecurringTransactionService creates a new RecurringTransactionServicer.
// "Today" for the past-date rule is taken from clock in loc.
func NewRecurringTransactionService(db *gorm.DB, clock calendar.Clock, loc *time.Location) RecurringTransactionServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &recurringTransactionService{db: db, clock: clock, location: loc}
}

// CreateRecurringTransaction validates and stores a new recurring transaction.
// The first execution date may be today but never earlier.
func (s *recurringTransactionService) CreateRecurringTransaction(userID string, in RecurringTransactionInput) (*models.RecurringTransaction, error) {
	if in.CategoryID == nil || *in.CategoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}
	if in.Amount == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is required")
	}
	if in.Frequency == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "frequency is required")
	}
	if in.NextExecutionDate == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "next execution date is required")
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if _, err := findCategory(s.db, userID, *in.CategoryID); err != nil {
		return nil, err
	}

	rt := &models.RecurringTransaction{
		UserID:            userID,
		CategoryID:        *in.CategoryID,
		Amount:            models.RoundAmount(*in.Amount),
		Frequency:         *in.Frequency,
		NextExecutionDate: calendar.Day(*in.NextExecutionDate),
		IsActive:          true,
		Description:       in.Description,
	}
	if in.IsActive != nil {
		rt.IsActive = *in.IsActive
	}

	if err := s.db.Create(rt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rt, nil
}

// validate checks every field that is present in the input.
func (s *recurringTransactionService) validate(in RecurringTransactionInput) error {
	if in.Amount != nil && in.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if in.Frequency != nil && !in.Frequency.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "frequency must be WEEKLY, MONTHLY or YEARLY")
	}
	if in.NextExecutionDate != nil {
		if calendar.Day(*in.NextExecutionDate).Before(calendar.Today(s.clock, s.location)) {
			return apperrors.ErrPastExecutionDate
		}
	}
	return nil
}

// GetUserRecurringTransactions lists a user's recurring transactions by next execution date.
func (s *recurringTransactionService) GetUserRecurringTransactions(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringTransaction{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []models.RecurringTransaction
	if err := base.Preload("Category").
		Order("next_execution_date").
		Order("id").
		Scopes(pagination.Paginate(page)).
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetDueRecurringTransactions returns the user's active recurring transactions
// whose next execution date is on or before until.
func (s *recurringTransactionService) GetDueRecurringTransactions(userID string, until time.Time) ([]models.RecurringTransaction, error) {
	var items []models.RecurringTransaction
	if err := s.db.
		Scopes(dueOn(calendar.Day(until))).
		Where("user_id = ?", userID).
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// dueOn selects active recurring transactions due on or before day, in id order.
func dueOn(day time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ? AND next_execution_date <= ?", true, day).Order("id")
	}
}

// GetRecurringTransactionByID returns a recurring transaction if it belongs to the user.
func (s *recurringTransactionService) GetRecurringTransactionByID(userID, recurringID string) (*models.RecurringTransaction, error) {
	var rt models.RecurringTransaction
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", recurringID, userID).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rt, nil
}

// UpdateRecurringTransaction applies a partial update. A new next execution
// date is subject to the same past-date rule as on create.
func (s *recurringTransactionService) UpdateRecurringTransaction(userID, recurringID string, in RecurringTransactionInput) (*models.RecurringTransaction, error) {
	rt, err := s.GetRecurringTransactionByID(userID, recurringID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.CategoryID != nil && *in.CategoryID != rt.CategoryID {
		if _, err := findCategory(s.db, userID, *in.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *in.CategoryID
	}
	if in.Amount != nil {
		updates["amount"] = models.RoundAmount(*in.Amount)
	}
	if in.Frequency != nil {
		updates["frequency"] = *in.Frequency
	}
	if in.NextExecutionDate != nil {
		updates["next_execution_date"] = calendar.Day(*in.NextExecutionDate)
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(rt).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetRecurringTransactionByID(userID, recurringID)
}

// DeleteRecurringTransaction soft-deletes a recurring transaction.
// Ledger entries it already produced are kept.
func (s *recurringTransactionService) DeleteRecurringTransaction(userID, recurringID string) error {
	rt, err := s.GetRecurringTransactionByID(userID, recurringID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(rt).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
