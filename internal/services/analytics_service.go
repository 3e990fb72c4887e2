package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/calendar"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/recurrence"
)

const (
	// MaxTopCategories bounds the limit of GetTopCategories.
	MaxTopCategories = 50
	// MaxForecastMonths bounds the horizon of GetUpcomingRecurringPayments.
	MaxForecastMonths = 24
)

// analyticsService aggregates the ledger into spending reports.
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db}
}

// ledger selects the user's non-planned entries dated within [from, to],
// joined with their category.
func (s *analyticsService) ledger(userID string, from, to time.Time) *gorm.DB {
	return s.db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.is_planned = ?", userID, false).
		Where("transactions.date BETWEEN ? AND ?", calendar.Day(from), calendar.Day(to))
}

func (s *analyticsService) expenses(userID string, from, to time.Time) *gorm.DB {
	return s.ledger(userID, from, to).Where("categories.type = ?", models.CategoryTypeExpense)
}

// GetExpensesByCategory returns the month's spending per expense category,
// largest first.
func (s *analyticsService) GetExpensesByCategory(userID string, month calendar.Month) ([]CategoryExpense, error) {
	return s.categoryTotals(userID, month, 0)
}

// GetTopCategories returns the limit expense categories with the most
// spending in month.
func (s *analyticsService) GetTopCategories(userID string, month calendar.Month, limit int) ([]CategoryExpense, error) {
	if limit < 1 || limit > MaxTopCategories {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be between 1 and 50")
	}
	return s.categoryTotals(userID, month, limit)
}

func (s *analyticsService) categoryTotals(userID string, month calendar.Month, limit int) ([]CategoryExpense, error) {
	if month.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month is required")
	}

	q := s.expenses(userID, month.Start(), month.End()).
		Select("transactions.category_id AS category_id, categories.name AS category_name, COALESCE(SUM(transactions.amount), 0) AS total").
		Group("transactions.category_id, categories.name").
		Order("total DESC").
		Order("categories.name")
	if limit > 0 {
		q = q.Limit(limit)
	}

	rows := []CategoryExpense{}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range rows {
		rows[i].Total = models.RoundAmount(rows[i].Total)
	}
	return rows, nil
}

type dayTotal struct {
	Date  time.Time
	Total decimal.Decimal
}

func (s *analyticsService) dailyTotals(userID string, from, to time.Time) ([]dayTotal, error) {
	var rows []dayTotal
	err := s.expenses(userID, from, to).
		Select("transactions.date AS date, COALESCE(SUM(transactions.amount), 0) AS total").
		Group("transactions.date").
		Order("transactions.date").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// GetDailyExpenses returns the spending of every day in month that has any,
// in date order.
func (s *analyticsService) GetDailyExpenses(userID string, month calendar.Month) ([]DailyExpense, error) {
	if month.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month is required")
	}

	rows, err := s.dailyTotals(userID, month.Start(), month.End())
	if err != nil {
		return nil, err
	}

	out := make([]DailyExpense, 0, len(rows))
	for _, r := range rows {
		out = append(out, DailyExpense{
			Date:  calendar.FormatDate(r.Date),
			Total: models.RoundAmount(r.Total),
		})
	}
	return out, nil
}

// GetMonthlyExpenses returns the spending per month between from and to,
// both inclusive. Months without spending are omitted.
func (s *analyticsService) GetMonthlyExpenses(userID string, from, to time.Time) ([]MonthlyExpense, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not be before from")
	}

	rows, err := s.dailyTotals(userID, from, to)
	if err != nil {
		return nil, err
	}

	// Days arrive in order, so months do too.
	out := []MonthlyExpense{}
	for _, r := range rows {
		m := calendar.MonthOf(r.Date.UTC()).String()
		if n := len(out); n > 0 && out[n-1].Month == m {
			out[n-1].Total = out[n-1].Total.Add(r.Total)
			continue
		}
		out = append(out, MonthlyExpense{Month: m, Total: r.Total})
	}
	for i := range out {
		out[i].Total = models.RoundAmount(out[i].Total)
	}
	return out, nil
}

type summaryTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// GetSummary returns the month's income, expense and their difference.
func (s *analyticsService) GetSummary(userID string, month calendar.Month) (*Summary, error) {
	if month.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month is required")
	}

	var totals summaryTotals
	err := s.ledger(userID, month.Start(), month.End()).
		Select("COALESCE(SUM(CASE WHEN categories.type = ? THEN transactions.amount ELSE 0 END), 0) AS income, "+
			"COALESCE(SUM(CASE WHEN categories.type = ? THEN transactions.amount ELSE 0 END), 0) AS expense",
			models.CategoryTypeIncome, models.CategoryTypeExpense).
		Scan(&totals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income := models.RoundAmount(totals.Income)
	expense := models.RoundAmount(totals.Expense)
	return &Summary{
		Month:   month.String(),
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}, nil
}

// GetUpcomingRecurringPayments projects the user's active recurring
// transactions over the given number of months starting with the month of
// from. An item already due fires on from and continues one period after it,
// the way the recurring executor would advance it. Every month of the horizon
// is present, empty or not.
func (s *analyticsService) GetUpcomingRecurringPayments(userID string, from time.Time, months int) ([]MonthForecast, error) {
	if months < 1 || months > MaxForecastMonths {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be between 1 and 24")
	}

	from = calendar.Day(from)
	first := calendar.MonthOf(from)
	last := first
	for i := 1; i < months; i++ {
		last = last.Next()
	}
	end := last.End()

	var items []models.RecurringTransaction
	if err := s.db.Preload("Category").
		Where("user_id = ? AND is_active = ? AND next_execution_date <= ?", userID, true, end).
		Order("next_execution_date").
		Order("id").
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	forecast := make([]MonthForecast, 0, months)
	index := make(map[string]int, months)
	for m := first; !last.Before(m); m = m.Next() {
		index[m.String()] = len(forecast)
		forecast = append(forecast, MonthForecast{Month: m.String(), Payments: []UpcomingPayment{}})
	}

	for i := range items {
		rt := &items[i]
		payment := UpcomingPayment{
			RecurringTransactionID: rt.ID,
			Amount:                 rt.Amount,
			CategoryID:             rt.CategoryID,
			Description:            rt.DescriptionText(),
		}
		if rt.Category != nil {
			payment.CategoryName = rt.Category.Name
			payment.CategoryType = rt.Category.Type
		}

		date := calendar.Day(rt.NextExecutionDate)
		if date.Before(from) {
			date = from
		}
		for !date.After(end) {
			mf := &forecast[index[calendar.MonthOf(date).String()]]
			p := payment
			p.Date = calendar.FormatDate(date)
			mf.Payments = append(mf.Payments, p)
			if p.CategoryType == models.CategoryTypeIncome {
				mf.Income = mf.Income.Add(p.Amount)
			} else {
				mf.Expense = mf.Expense.Add(p.Amount)
			}
			date = recurrence.Next(date, rt.Frequency)
		}
	}

	for i := range forecast {
		sort.SliceStable(forecast[i].Payments, func(a, b int) bool {
			return forecast[i].Payments[a].Date < forecast[i].Payments[b].Date
		})
	}
	return forecast, nil
}
