package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pennywise/internal/calendar"
	"pennywise/internal/services"
)

// SchedulerHandler lets an external cron fire the scheduled jobs.
type SchedulerHandler struct {
	executor     services.RecurringExecutor
	materializer services.BudgetMaterializer
	clock        calendar.Clock
	location     *time.Location
}

// NewSchedulerHandler creates a new SchedulerHandler. clock and loc supply
// the default scan date and month.
func NewSchedulerHandler(
	executor services.RecurringExecutor,
	materializer services.BudgetMaterializer,
	clock calendar.Clock,
	loc *time.Location,
) *SchedulerHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulerHandler{executor: executor, materializer: materializer, clock: clock, location: loc}
}

// RunRecurringRequest optionally overrides the scan date.
type RunRecurringRequest struct {
	Date string `json:"date" binding:"omitempty,date"`
}

// RunBudgetsRequest optionally overrides the target month.
type RunBudgetsRequest struct {
	Month string `json:"month" binding:"omitempty,month"`
}

// bindOptionalJSON binds the body into obj; an empty body is allowed.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return invalidInput(err)
	}
	return nil
}

// RunRecurring executes every due recurring transaction.
// @Summary     Execute due recurring transactions
// @Description Run the recurring transaction job once. The scan date defaults to today.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header   string              true  "Pipeline API key"
// @Param       request   body     RunRecurringRequest false "Scan date override"
// @Success     200       {object} services.ExecutionReport "Execution report"
// @Failure     400       {object} ErrorResponse "Invalid input"
// @Failure     401       {object} ErrorResponse "Invalid API key"
// @Failure     503       {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/scheduler/recurring [post]
func (h *SchedulerHandler) RunRecurring(c *gin.Context) {
	var req RunRecurringRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	scanDate := calendar.Today(h.clock, h.location)
	if req.Date != "" {
		d, err := calendar.ParseDate(req.Date)
		if err != nil {
			respondWithError(c, invalidInput(err))
			return
		}
		scanDate = d
	}

	report, err := h.executor.ExecuteDueTransactions(c.Request.Context(), scanDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// RunBudgets materializes the monthly budgets of every active template.
// @Summary     Materialize monthly budgets
// @Description Run the monthly budget job once. The month defaults to the current month.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header   string            true  "Pipeline API key"
// @Param       request   body     RunBudgetsRequest false "Month override"
// @Success     200       {object} services.MaterializationReport "Materialization report"
// @Failure     400       {object} ErrorResponse "Invalid input"
// @Failure     401       {object} ErrorResponse "Invalid API key"
// @Failure     503       {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/scheduler/budgets [post]
func (h *SchedulerHandler) RunBudgets(c *gin.Context) {
	var req RunBudgetsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	month := calendar.MonthOf(h.clock.Now().In(h.location))
	if req.Month != "" {
		m, err := calendar.ParseMonth(req.Month)
		if err != nil {
			respondWithError(c, invalidInput(err))
			return
		}
		month = m
	}

	report, err := h.materializer.MaterializeMonthlyBudgets(c.Request.Context(), month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}
