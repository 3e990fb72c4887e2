package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/calendar"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// budgetTemplateService manages the templates the monthly materializer reads.
type budgetTemplateService struct {
	db *gorm.DB
}

// NewBudgetTemplateService creates a new BudgetTemplateServicer.
func NewBudgetTemplateService(db *gorm.DB) BudgetTemplateServicer {
	return &budgetTemplateService{db: db}
}

// CreateBudgetTemplate stores a new template. A second active template for the
// same category is rejected with ErrDuplicateBudgetTemplate.
func (s *budgetTemplateService) CreateBudgetTemplate(
	userID, categoryID string,
	amount decimal.Decimal,
	active bool,
	startMonth calendar.Month,
) (*models.BudgetTemplate, error) {
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if startMonth.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start month is required")
	}

	var tmpl *models.BudgetTemplate
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findCategory(tx, userID, categoryID); err != nil {
			return err
		}
		if active {
			if err := ensureNoActiveTemplate(tx, userID, categoryID, ""); err != nil {
				return err
			}
		}

		tmpl = &models.BudgetTemplate{
			UserID:     userID,
			CategoryID: categoryID,
			Amount:     models.RoundAmount(amount),
			Active:     active,
			StartMonth: startMonth.Start(),
		}
		if err := tx.Create(tmpl).Error; err != nil {
			return templateWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

// ensureNoActiveTemplate fails when (userID, categoryID) already has an active
// template other than exceptID.
func ensureNoActiveTemplate(tx *gorm.DB, userID, categoryID, exceptID string) error {
	q := tx.Model(&models.BudgetTemplate{}).
		Where("user_id = ? AND category_id = ? AND active = ?", userID, categoryID, true)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateBudgetTemplate
	}
	return nil
}

// templateWriteError maps a violation of the one-active-template index to
// ErrDuplicateBudgetTemplate. The count in ensureNoActiveTemplate cannot see
// a concurrent insert that has not committed yet.
func templateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateBudgetTemplate
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// GetUserBudgetTemplates lists a user's templates with an optional active filter.
func (s *budgetTemplateService) GetUserBudgetTemplates(userID string, page pagination.PageRequest, active *bool) (*pagination.PageResponse[models.BudgetTemplate], error) {
	page.Defaults()

	base := s.db.Model(&models.BudgetTemplate{}).Where("user_id = ?", userID)
	if active != nil {
		base = base.Where("active = ?", *active)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var templates []models.BudgetTemplate
	if err := base.Preload("Category").Order("id").Scopes(pagination.Paginate(page)).Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(templates, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetTemplateByID returns a template if it belongs to the user.
func (s *budgetTemplateService) GetBudgetTemplateByID(userID, templateID string) (*models.BudgetTemplate, error) {
	var tmpl models.BudgetTemplate
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", templateID, userID).First(&tmpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tmpl, nil
}

// UpdateBudgetTemplate applies a partial update. Activating a template
// re-checks that no other active template exists for its category.
func (s *budgetTemplateService) UpdateBudgetTemplate(
	userID, templateID string,
	amount *decimal.Decimal,
	active *bool,
	startMonth *calendar.Month,
) (*models.BudgetTemplate, error) {
	tmpl, err := s.GetBudgetTemplateByID(userID, templateID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if amount != nil {
		if amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = models.RoundAmount(*amount)
	}
	if active != nil {
		updates["active"] = *active
	}
	if startMonth != nil && !startMonth.IsZero() {
		updates["start_month"] = startMonth.Start()
	}
	if len(updates) == 0 {
		return tmpl, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if active != nil && *active && !tmpl.Active {
			if err := ensureNoActiveTemplate(tx, userID, tmpl.CategoryID, tmpl.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.BudgetTemplate{}).Where("id = ?", tmpl.ID).Updates(updates).Error; err != nil {
			return templateWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBudgetTemplateByID(userID, templateID)
}

// DeleteBudgetTemplate soft-deletes a template. Budgets it produced are kept.
func (s *budgetTemplateService) DeleteBudgetTemplate(userID, templateID string) error {
	tmpl, err := s.GetBudgetTemplateByID(userID, templateID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(tmpl).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
