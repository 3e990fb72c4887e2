package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pennywise/internal/calendar"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// RecurringTransactionHandler handles recurring transaction requests.
type RecurringTransactionHandler struct {
	recurringService services.RecurringTransactionServicer
	auditService     services.AuditServicer
	clock            calendar.Clock
	location         *time.Location
}

// NewRecurringTransactionHandler creates a new RecurringTransactionHandler.
// clock and loc define "today" for the due listing.
func NewRecurringTransactionHandler(
	recurringService services.RecurringTransactionServicer,
	auditService services.AuditServicer,
	clock calendar.Clock,
	loc *time.Location,
) *RecurringTransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RecurringTransactionHandler{
		recurringService: recurringService,
		auditService:     auditService,
		clock:            clock,
		location:         loc,
	}
}

// CreateRecurringTransactionRequest represents the payload for creating a
// recurring transaction. next_execution_date must not be in the past.
type CreateRecurringTransactionRequest struct {
	CategoryID        string           `json:"category_id" binding:"required,uuid"`
	Amount            *decimal.Decimal `json:"amount" binding:"required"`
	Frequency         string           `json:"frequency" binding:"required,frequency"`
	NextExecutionDate string           `json:"next_execution_date" binding:"required,date"`
	IsActive          *bool            `json:"is_active"`
	Description       *string          `json:"description" binding:"omitempty,max=500"`
}

// UpdateRecurringTransactionRequest is a partial update; omitted fields are unchanged.
type UpdateRecurringTransactionRequest struct {
	CategoryID        *string          `json:"category_id" binding:"omitempty,uuid"`
	Amount            *decimal.Decimal `json:"amount"`
	Frequency         *string          `json:"frequency" binding:"omitempty,frequency"`
	NextExecutionDate *string          `json:"next_execution_date" binding:"omitempty,date"`
	IsActive          *bool            `json:"is_active"`
	Description       *string          `json:"description" binding:"omitempty,max=500"`
}

func (r UpdateRecurringTransactionRequest) toInput() (services.RecurringTransactionInput, error) {
	in := services.RecurringTransactionInput{
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		IsActive:    r.IsActive,
		Description: r.Description,
	}
	if r.Frequency != nil {
		f, err := models.ParseFrequency(*r.Frequency)
		if err != nil {
			return in, invalidInput(err)
		}
		in.Frequency = &f
	}
	if r.NextExecutionDate != nil {
		d, err := calendar.ParseDate(*r.NextExecutionDate)
		if err != nil {
			return in, invalidInput(err)
		}
		in.NextExecutionDate = &d
	}
	return in, nil
}

// CreateRecurringTransaction handles the creation of a recurring transaction.
// @Summary     Create a recurring transaction
// @Description Schedule a transaction that repeats weekly, monthly or yearly
// @Tags        recurring-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringTransactionRequest true "Recurring transaction details"
// @Success     201 {object} models.RecurringTransaction "Recurring transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or next execution date in the past"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /recurring-transactions [post]
func (h *RecurringTransactionHandler) CreateRecurringTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	in, err := UpdateRecurringTransactionRequest{
		CategoryID:        &req.CategoryID,
		Amount:            req.Amount,
		Frequency:         &req.Frequency,
		NextExecutionDate: &req.NextExecutionDate,
		IsActive:          req.IsActive,
		Description:       req.Description,
	}.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	rt, err := h.recurringService.CreateRecurringTransaction(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RECURRING_TRANSACTION", "recurring_transaction", rt.ID, c.ClientIP(),
		map[string]interface{}{
			"category_id":         rt.CategoryID,
			"amount":              rt.Amount.StringFixed(models.AmountScale),
			"frequency":           rt.Frequency,
			"next_execution_date": calendar.FormatDate(rt.NextExecutionDate),
		})

	c.JSON(http.StatusCreated, gin.H{"recurring_transaction": rt})
}

// GetRecurringTransactions handles listing recurring transactions.
// @Summary     Get recurring transactions
// @Tags        recurring-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       is_active query bool false "Filter by active status"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.RecurringTransaction] "Paginated recurring transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /recurring-transactions [get]
func (h *RecurringTransactionHandler) GetRecurringTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	isActive, err := parseBoolQuery(c, "is_active")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recurringService.GetUserRecurringTransactions(userID, page, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDueRecurringTransactions lists the active recurring transactions that
// the next scheduled run would execute.
// @Summary     Get due recurring transactions
// @Tags        recurring-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       until query string false "Include items due on or before this date (YYYY-MM-DD, default today)"
// @Success     200 {object} map[string]interface{} "Due recurring transactions"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /recurring-transactions/due [get]
func (h *RecurringTransactionHandler) GetDueRecurringTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	until, err := parseDateQuery(c, "until")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if until == nil {
		today := calendar.Today(h.clock, h.location)
		until = &today
	}

	items, err := h.recurringService.GetDueRecurringTransactions(userID, *until)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"until":                  calendar.FormatDate(*until),
		"recurring_transactions": items,
	})
}

// GetRecurringTransactionByID handles the retrieval of one recurring transaction.
// @Summary     Get recurring transaction by ID
// @Tags        recurring-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring transaction ID"
// @Success     200 {object} models.RecurringTransaction "Recurring transaction"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Recurring transaction not found"
// @Router      /recurring-transactions/{id} [get]
func (h *RecurringTransactionHandler) GetRecurringTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rt, err := h.recurringService.GetRecurringTransactionByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rt})
}

// UpdateRecurringTransaction handles partial updates.
// @Summary     Update recurring transaction
// @Tags        recurring-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                            true "Recurring transaction ID"
// @Param       request body UpdateRecurringTransactionRequest true "Fields to change"
// @Success     200 {object} models.RecurringTransaction "Updated recurring transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or next execution date in the past"
// @Failure     404 {object} ErrorResponse "Recurring transaction or category not found"
// @Router      /recurring-transactions/{id} [put]
func (h *RecurringTransactionHandler) UpdateRecurringTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	rt, err := h.recurringService.UpdateRecurringTransaction(userID, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_RECURRING_TRANSACTION", "recurring_transaction", rt.ID, c.ClientIP(),
		map[string]interface{}{
			"amount":              rt.Amount.StringFixed(models.AmountScale),
			"frequency":           rt.Frequency,
			"next_execution_date": calendar.FormatDate(rt.NextExecutionDate),
			"is_active":           rt.IsActive,
		})

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rt})
}

// DeleteRecurringTransaction handles deleting a recurring transaction.
// @Summary     Delete recurring transaction
// @Description Delete a recurring transaction. Ledger entries it produced are kept.
// @Tags        recurring-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring transaction ID"
// @Success     200 {object} MessageResponse "Recurring transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Recurring transaction not found"
// @Router      /recurring-transactions/{id} [delete]
func (h *RecurringTransactionHandler) DeleteRecurringTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurringTransaction(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RECURRING_TRANSACTION", "recurring_transaction", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Recurring transaction deleted successfully"})
}
