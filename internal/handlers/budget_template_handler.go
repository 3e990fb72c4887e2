package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pennywise/internal/calendar"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// BudgetTemplateHandler handles budget template requests.
type BudgetTemplateHandler struct {
	templateService services.BudgetTemplateServicer
	auditService    services.AuditServicer
}

// NewBudgetTemplateHandler creates a new BudgetTemplateHandler.
func NewBudgetTemplateHandler(templateService services.BudgetTemplateServicer, auditService services.AuditServicer) *BudgetTemplateHandler {
	return &BudgetTemplateHandler{templateService: templateService, auditService: auditService}
}

// CreateBudgetTemplateRequest represents the payload for creating a template.
// Active defaults to true.
type CreateBudgetTemplateRequest struct {
	CategoryID string           `json:"category_id" binding:"required,uuid"`
	Amount     *decimal.Decimal `json:"amount" binding:"required"`
	Active     *bool            `json:"active"`
	StartMonth string           `json:"start_month" binding:"required,month"`
}

// UpdateBudgetTemplateRequest is a partial update; omitted fields are unchanged.
type UpdateBudgetTemplateRequest struct {
	Amount     *decimal.Decimal `json:"amount"`
	Active     *bool            `json:"active"`
	StartMonth *string          `json:"start_month" binding:"omitempty,month"`
}

// CreateBudgetTemplate handles the creation of a budget template.
// @Summary     Create a budget template
// @Description Create a template turned into a budget at the start of every month
// @Tags        budget-templates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetTemplateRequest true "Template details"
// @Success     201 {object} models.BudgetTemplate "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Active template already exists for the category"
// @Router      /budget-templates [post]
func (h *BudgetTemplateHandler) CreateBudgetTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	startMonth, err := calendar.ParseMonth(req.StartMonth)
	if err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	tmpl, err := h.templateService.CreateBudgetTemplate(userID, req.CategoryID, *req.Amount, active, startMonth)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET_TEMPLATE", "budget_template", tmpl.ID, c.ClientIP(),
		map[string]interface{}{
			"category_id": tmpl.CategoryID,
			"amount":      tmpl.Amount.StringFixed(models.AmountScale),
			"active":      tmpl.Active,
			"start_month": startMonth.String(),
		})

	c.JSON(http.StatusCreated, gin.H{"budget_template": tmpl})
}

// GetBudgetTemplates handles listing budget templates.
// @Summary     Get budget templates
// @Tags        budget-templates
// @Produce     json
// @Security    BearerAuth
// @Param       active    query bool false "Filter by active status"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BudgetTemplate] "Paginated templates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budget-templates [get]
func (h *BudgetTemplateHandler) GetBudgetTemplates(c *gin.Context) {
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

	active, err := parseBoolQuery(c, "active")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.templateService.GetUserBudgetTemplates(userID, page, active)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetTemplateByID handles the retrieval of one template.
// @Summary     Get budget template by ID
// @Tags        budget-templates
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Template ID"
// @Success     200 {object} models.BudgetTemplate "Template"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /budget-templates/{id} [get]
func (h *BudgetTemplateHandler) GetBudgetTemplateByID(c *gin.Context) {
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

	tmpl, err := h.templateService.GetBudgetTemplateByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_template": tmpl})
}

// UpdateBudgetTemplate handles partial updates of a template.
// @Summary     Update budget template
// @Tags        budget-templates
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                      true "Template ID"
// @Param       request body UpdateBudgetTemplateRequest true "Fields to change"
// @Success     200 {object} models.BudgetTemplate "Updated template"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     409 {object} ErrorResponse "Active template already exists for the category"
// @Router      /budget-templates/{id} [put]
func (h *BudgetTemplateHandler) UpdateBudgetTemplate(c *gin.Context) {
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

	var req UpdateBudgetTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	var startMonth *calendar.Month
	if req.StartMonth != nil {
		m, err := calendar.ParseMonth(*req.StartMonth)
		if err != nil {
			respondWithError(c, invalidInput(err))
			return
		}
		startMonth = &m
	}

	tmpl, err := h.templateService.UpdateBudgetTemplate(userID, id, req.Amount, req.Active, startMonth)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET_TEMPLATE", "budget_template", tmpl.ID, c.ClientIP(),
		map[string]interface{}{
			"amount": tmpl.Amount.StringFixed(models.AmountScale),
			"active": tmpl.Active,
		})

	c.JSON(http.StatusOK, gin.H{"budget_template": tmpl})
}

// DeleteBudgetTemplate handles deleting a template.
// @Summary     Delete budget template
// @Description Delete a template. Budgets it produced are kept.
// @Tags        budget-templates
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Template ID"
// @Success     200 {object} MessageResponse "Template deleted"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /budget-templates/{id} [delete]
func (h *BudgetTemplateHandler) DeleteBudgetTemplate(c *gin.Context) {
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

	if err := h.templateService.DeleteBudgetTemplate(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET_TEMPLATE", "budget_template", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget template deleted successfully"})
}
