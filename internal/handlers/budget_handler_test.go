package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pennywise/internal/calendar"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/:id", handler.GetBudgetByID)
	auth.PUT("/budgets/:id", handler.UpdateBudget)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	auth.GET("/budgets/:id/progress", handler.GetBudgetProgress)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		var gotMonth calendar.Month
		var gotLimit decimal.Decimal
		svc := &mockBudgetService{
			createFn: func(_, categoryID string, month calendar.Month, limit decimal.Decimal) (*models.Budget, error) {
				gotMonth, gotLimit = month, limit
				return &models.Budget{Base: models.Base{ID: testResourceID}, CategoryID: categoryID, Month: month.Start(), LimitAmount: limit}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(svc, audit))

		rec := doRequest(r, http.MethodPost, "/budgets",
			`{"category_id":"`+testCategoryID+`","month":"2025-02","limit_amount":"300.00"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotMonth.String() != "2025-02" {
			t.Errorf("expected month 2025-02, got %s", gotMonth)
		}
		if !gotLimit.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected limit 300, got %s", gotLimit)
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "CREATE_BUDGET" {
			t.Errorf("expected CREATE_BUDGET audit entry, got %v", actions)
		}
	})

	t.Run("returns 400 on bad month", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/budgets",
			`{"category_id":"`+testCategoryID+`","month":"02-2025","limit_amount":"300"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		svc := &mockBudgetService{
			createFn: func(string, string, calendar.Month, decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrDuplicateBudget
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/budgets",
			`{"category_id":"`+testCategoryID+`","month":"2025-02","limit_amount":"300"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_BUDGET")
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	t.Run("filters by month", func(t *testing.T) {
		var got *calendar.Month
		svc := &mockBudgetService{
			listFn: func(_ string, _ pagination.PageRequest, month *calendar.Month) (*pagination.PageResponse[models.Budget], error) {
				got = month
				resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, http.MethodGet, "/budgets?month=2025-07", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got == nil || got.String() != "2025-07" {
			t.Errorf("expected month filter 2025-07, got %v", got)
		}
	})

	t.Run("returns 400 on bad month", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodGet, "/budgets?month=july", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	t.Run("requires limit_amount", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPut, "/budgets/"+testResourceID, `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("updates and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, audit))

		rec := doRequest(r, http.MethodPut, "/budgets/"+testResourceID, `{"limit_amount":"250"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "UPDATE_BUDGET" {
			t.Errorf("expected UPDATE_BUDGET audit entry, got %v", actions)
		}
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	svc := &mockBudgetService{
		deleteFn: func(string, string) error { return apperrors.ErrBudgetNotFound },
	}
	audit := &mockAuditService{}
	r := setupBudgetRouter(NewBudgetHandler(svc, audit))

	rec := doRequest(r, http.MethodDelete, "/budgets/"+testResourceID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(audit.actions()) != 0 {
		t.Error("failed delete must not be audited")
	}
}

func TestBudgetHandler_GetBudgetProgress(t *testing.T) {
	svc := &mockBudgetService{
		progressFn: func(_, id string) (*services.BudgetProgress, error) {
			return &services.BudgetProgress{
				BudgetID:   id,
				Month:      "2025-02",
				Budgeted:   decimal.NewFromInt(300),
				Spent:      decimal.NewFromInt(75),
				Remaining:  decimal.NewFromInt(225),
				Percentage: 25,
			}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

	rec := doRequest(r, http.MethodGet, "/budgets/"+testResourceID+"/progress", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	progress := parseJSON(t, rec)["progress"].(map[string]interface{})
	if progress["percentage"] != float64(25) {
		t.Errorf("expected 25%%, got %v", progress["percentage"])
	}
	if progress["remaining"] != "225" {
		t.Errorf("expected remaining 225, got %v", progress["remaining"])
	}
}
