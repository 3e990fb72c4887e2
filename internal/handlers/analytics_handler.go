package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pennywise/internal/calendar"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/services"
)

const (
	defaultTopCategories  = 5
	defaultForecastMonths = 3
	defaultTrendMonths    = 12
)

// AnalyticsHandler serves spending reports over the ledger.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
	clock            calendar.Clock
	location         *time.Location
}

// NewAnalyticsHandler creates a new AnalyticsHandler. clock and loc supply
// the current month when a report is requested without one.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer, clock calendar.Clock, loc *time.Location) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{analyticsService: analyticsService, clock: clock, location: loc}
}

// month reads the month query parameter, defaulting to the current month.
func (h *AnalyticsHandler) month(c *gin.Context) (calendar.Month, error) {
	m, err := parseMonthQuery(c, "month")
	if err != nil {
		return calendar.Month{}, err
	}
	if m == nil {
		return calendar.MonthOf(calendar.Today(h.clock, h.location)), nil
	}
	return *m, nil
}

// GetExpensesByCategory returns the month's spending per category.
// @Summary     Expenses by category
// @Description Spending per expense category for one month, largest first
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM, default current month)"
// @Success     200 {object} map[string]interface{} "Category totals"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics/categories [get]
func (h *AnalyticsHandler) GetExpensesByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.month(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.analyticsService.GetExpensesByCategory(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month.String(), "categories": rows})
}

// GetTopCategories returns the categories with the most spending.
// @Summary     Top expense categories
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM, default current month)"
// @Param       limit query int    false "Number of categories (default 5, max 50)"
// @Success     200 {object} map[string]interface{} "Top categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics/categories/top [get]
func (h *AnalyticsHandler) GetTopCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.month(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	limit, err := parseIntQuery(c, "limit", defaultTopCategories)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.analyticsService.GetTopCategories(userID, month, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month.String(), "categories": rows})
}

// GetDailyExpenses returns the month's spending per day.
// @Summary     Daily expenses
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM, default current month)"
// @Success     200 {object} map[string]interface{} "Daily totals"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics/daily [get]
func (h *AnalyticsHandler) GetDailyExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.month(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.analyticsService.GetDailyExpenses(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month.String(), "days": rows})
}

// GetMonthlyExpenses returns spending per month over a date range.
// Without a range it covers the last twelve months up to today.
// @Summary     Monthly expenses
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Range start (YYYY-MM-DD)"
// @Param       to_date   query string false "Range end (YYYY-MM-DD, default today)"
// @Success     200 {object} map[string]interface{} "Monthly totals"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics/monthly [get]
func (h *AnalyticsHandler) GetMonthlyExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, err := parseDateQuery(c, "from_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseDateQuery(c, "to_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if to == nil {
		today := calendar.Today(h.clock, h.location)
		to = &today
	}
	if from == nil {
		start := calendar.MonthOf(*to).Start().AddDate(0, 1-defaultTrendMonths, 0)
		from = &start
	}
	if to.Before(*from) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must not be before from_date"))
		return
	}

	rows, err := h.analyticsService.GetMonthlyExpenses(userID, *from, *to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from_date": calendar.FormatDate(*from),
		"to_date":   calendar.FormatDate(*to),
		"months":    rows,
	})
}

// GetSummary returns the month's income, expense and balance.
// @Summary     Monthly summary
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM, default current month)"
// @Success     200 {object} services.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.month(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.analyticsService.GetSummary(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetUpcomingRecurringPayments forecasts the recurring transactions that
// will fire over the next months.
// @Summary     Upcoming recurring payments
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Months to project, including the current one (default 3, max 24)"
// @Success     200 {object} map[string]interface{} "Forecast per month"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /analytics/upcoming [get]
func (h *AnalyticsHandler) GetUpcomingRecurringPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months, err := parseIntQuery(c, "months", defaultForecastMonths)
	if err != nil {
		respondWithError(c, err)
		return
	}

	today := calendar.Today(h.clock, h.location)
	forecast, err := h.analyticsService.GetUpcomingRecurringPayments(userID, today, months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"from": calendar.FormatDate(today), "months": forecast})
}
