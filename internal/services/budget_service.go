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

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a budget for a category and month. Only one budget
// may exist per (user, category, month).
func (s *budgetService) CreateBudget(userID, categoryID string, month calendar.Month, limit decimal.Decimal) (*models.Budget, error) {
	if month.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month is required")
	}
	if limit.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must not be negative")
	}

	if _, err := findCategory(s.db, userID, categoryID); err != nil {
		return nil, err
	}

	exists, err := budgetExists(s.db, userID, categoryID, month)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateBudget
	}

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  categoryID,
		Month:       month.Start(),
		LimitAmount: models.RoundAmount(limit),
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// budgetExists reports whether a budget row holds the (user, category, month)
// key. Soft-deleted rows count because the unique index covers them.
func budgetExists(db *gorm.DB, userID, categoryID string, month calendar.Month) (bool, error) {
	var count int64
	if err := db.Unscoped().Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND month = ?", userID, categoryID, month.Start()).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// GetUserBudgets returns a paginated list of budgets for the user, optionally
// restricted to one month.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, month *calendar.Month) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if month != nil {
		base = base.Where("month = ?", month.Start())
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").
		Order("month DESC").
		Order("id").
		Scopes(pagination.Paginate(page)).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget changes a budget's limit.
func (s *budgetService) UpdateBudget(userID, budgetID string, limit decimal.Decimal) (*models.Budget, error) {
	if limit.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must not be negative")
	}

	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	limit = models.RoundAmount(limit)
	if err := s.db.Model(&models.Budget{}).Where("id = ?", budget.ID).Update("limit_amount", limit).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.LimitAmount = limit

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress sums the category's non-planned transactions in the
// budget's month and compares them with the limit.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	month := calendar.MonthOf(budget.Month.UTC())

	var spent decimal.Decimal
	err = s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND is_planned = ? AND date BETWEEN ? AND ?",
			userID, budget.CategoryID, false, month.Start(), month.End()).
		Row().
		Scan(&spent)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	spent = models.RoundAmount(spent)

	var percentage float64
	if budget.LimitAmount.IsPositive() {
		percentage, _ = spent.Div(budget.LimitAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	return &BudgetProgress{
		BudgetID:   budget.ID,
		Month:      month.String(),
		Budgeted:   budget.LimitAmount,
		Spent:      spent,
		Remaining:  budget.LimitAmount.Sub(spent),
		Percentage: percentage,
	}, nil
}
