package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/calendar"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// --- users ---

type mockUserService struct {
	createUserFn     func(email, password, firstName, lastName string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	attemptLoginFn   func(email, password string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
}

func (m *mockUserService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) VerifyPassword(*models.User, string) bool { return true }

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- audit ---

type auditCall struct {
	UserID, Action, ResourceType, ResourceID string
}

type mockAuditService struct {
	mu    sync.Mutex
	calls []auditCall
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, _ map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, auditCall{userID, action, resourceType, resourceID})
}

func (m *mockAuditService) Record(*gorm.DB, services.AuditEntry) error { return nil }

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Action
	}
	return out
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- categories ---

type mockCategoryService struct {
	createCategoryFn          func(userID, name string, categoryType models.CategoryType, description, color string) (*models.Category, error)
	getUserCategoriesFn       func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getUserCategoriesByTypeFn func(userID string, categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn         func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn          func(userID, categoryID, name, description, color string) (*models.Category, error)
	deleteCategoryFn          func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID, name string, categoryType models.CategoryType, description, color string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name, categoryType, description, color)
	}
	return &models.Category{Base: models.Base{ID: testCategoryID}, Name: name, Type: categoryType}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetUserCategoriesByType(userID string, categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getUserCategoriesByTypeFn != nil {
		return m.getUserCategoriesByTypeFn(userID, categoryType, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{Base: models.Base{ID: categoryID}}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID, name, description, color string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name, description, color)
	}
	return &models.Category{Base: models.Base{ID: categoryID}, Name: name}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

// --- transactions ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, in services.NewTransaction) (*models.Transaction, error)
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(userID string, in services.NewTransaction) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, in)
	}
	return &models.Transaction{Base: models.Base{ID: testResourceID}, UserID: userID, CategoryID: in.CategoryID, Amount: in.Amount, Date: in.Date}, nil
}

func (m *mockTransactionService) CreateTransactionForUser(_ *gorm.DB, userID string, in services.NewTransaction) (*models.Transaction, error) {
	return m.CreateTransaction(userID, in)
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

// --- recurring transactions ---

type mockRecurringService struct {
	createFn  func(userID string, in services.RecurringTransactionInput) (*models.RecurringTransaction, error)
	listFn    func(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error)
	dueFn     func(userID string, until time.Time) ([]models.RecurringTransaction, error)
	getByIDFn func(userID, id string) (*models.RecurringTransaction, error)
	updateFn  func(userID, id string, in services.RecurringTransactionInput) (*models.RecurringTransaction, error)
	deleteFn  func(userID, id string) error
}

func (m *mockRecurringService) CreateRecurringTransaction(userID string, in services.RecurringTransactionInput) (*models.RecurringTransaction, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.RecurringTransaction{Base: models.Base{ID: testResourceID}}, nil
}

func (m *mockRecurringService) GetUserRecurringTransactions(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, isActive)
	}
	resp := pagination.NewPageResponse([]models.RecurringTransaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockRecurringService) GetDueRecurringTransactions(userID string, until time.Time) ([]models.RecurringTransaction, error) {
	if m.dueFn != nil {
		return m.dueFn(userID, until)
	}
	return []models.RecurringTransaction{}, nil
}

func (m *mockRecurringService) GetRecurringTransactionByID(userID, id string) (*models.RecurringTransaction, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(userID, id)
	}
	return &models.RecurringTransaction{Base: models.Base{ID: id}}, nil
}

func (m *mockRecurringService) UpdateRecurringTransaction(userID, id string, in services.RecurringTransactionInput) (*models.RecurringTransaction, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, id, in)
	}
	return &models.RecurringTransaction{Base: models.Base{ID: id}}, nil
}

func (m *mockRecurringService) DeleteRecurringTransaction(userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, id)
	}
	return nil
}

var _ services.RecurringTransactionServicer = (*mockRecurringService)(nil)

// --- budget templates ---

type mockBudgetTemplateService struct {
	createFn  func(userID, categoryID string, amount decimal.Decimal, active bool, startMonth calendar.Month) (*models.BudgetTemplate, error)
	listFn    func(userID string, page pagination.PageRequest, active *bool) (*pagination.PageResponse[models.BudgetTemplate], error)
	getByIDFn func(userID, id string) (*models.BudgetTemplate, error)
	updateFn  func(userID, id string, amount *decimal.Decimal, active *bool, startMonth *calendar.Month) (*models.BudgetTemplate, error)
	deleteFn  func(userID, id string) error
}

func (m *mockBudgetTemplateService) CreateBudgetTemplate(userID, categoryID string, amount decimal.Decimal, active bool, startMonth calendar.Month) (*models.BudgetTemplate, error) {
	if m.createFn != nil {
		return m.createFn(userID, categoryID, amount, active, startMonth)
	}
	return &models.BudgetTemplate{Base: models.Base{ID: testResourceID}, CategoryID: categoryID, Amount: amount, Active: active}, nil
}

func (m *mockBudgetTemplateService) GetUserBudgetTemplates(userID string, page pagination.PageRequest, active *bool) (*pagination.PageResponse[models.BudgetTemplate], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, active)
	}
	resp := pagination.NewPageResponse([]models.BudgetTemplate{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetTemplateService) GetBudgetTemplateByID(userID, id string) (*models.BudgetTemplate, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(userID, id)
	}
	return &models.BudgetTemplate{Base: models.Base{ID: id}}, nil
}

func (m *mockBudgetTemplateService) UpdateBudgetTemplate(userID, id string, amount *decimal.Decimal, active *bool, startMonth *calendar.Month) (*models.BudgetTemplate, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, id, amount, active, startMonth)
	}
	return &models.BudgetTemplate{Base: models.Base{ID: id}}, nil
}

func (m *mockBudgetTemplateService) DeleteBudgetTemplate(userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, id)
	}
	return nil
}

var _ services.BudgetTemplateServicer = (*mockBudgetTemplateService)(nil)

// --- budgets ---

type mockBudgetService struct {
	createFn   func(userID, categoryID string, month calendar.Month, limit decimal.Decimal) (*models.Budget, error)
	listFn     func(userID string, page pagination.PageRequest, month *calendar.Month) (*pagination.PageResponse[models.Budget], error)
	getByIDFn  func(userID, id string) (*models.Budget, error)
	updateFn   func(userID, id string, limit decimal.Decimal) (*models.Budget, error)
	deleteFn   func(userID, id string) error
	progressFn func(userID, id string) (*services.BudgetProgress, error)
}

func (m *mockBudgetService) CreateBudget(userID, categoryID string, month calendar.Month, limit decimal.Decimal) (*models.Budget, error) {
	if m.createFn != nil {
		return m.createFn(userID, categoryID, month, limit)
	}
	return &models.Budget{Base: models.Base{ID: testResourceID}, CategoryID: categoryID, Month: month.Start(), LimitAmount: limit}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID string, page pagination.PageRequest, month *calendar.Month) (*pagination.PageResponse[models.Budget], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, month)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, id string) (*models.Budget, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(userID, id)
	}
	return &models.Budget{Base: models.Base{ID: id}}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, id string, limit decimal.Decimal) (*models.Budget, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, id, limit)
	}
	return &models.Budget{Base: models.Base{ID: id}, LimitAmount: limit}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, id)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetProgress(userID, id string) (*services.BudgetProgress, error) {
	if m.progressFn != nil {
		return m.progressFn(userID, id)
	}
	return &services.BudgetProgress{BudgetID: id}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

// --- scheduled engines ---

type mockExecutor struct {
	scanDates []time.Time
	err       error
}

func (m *mockExecutor) ExecuteDueTransactions(_ context.Context, scanDate time.Time) (*services.ExecutionReport, error) {
	m.scanDates = append(m.scanDates, scanDate)
	if m.err != nil {
		return nil, m.err
	}
	return &services.ExecutionReport{ScanDate: scanDate, Results: []services.ExecutionResult{}}, nil
}

type mockMaterializer struct {
	months []calendar.Month
	err    error
}

func (m *mockMaterializer) MaterializeMonthlyBudgets(_ context.Context, month calendar.Month) (*services.MaterializationReport, error) {
	m.months = append(m.months, month)
	if m.err != nil {
		return nil, m.err
	}
	return &services.MaterializationReport{Month: month.String(), Results: []services.MaterializationResult{}}, nil
}

// --- analytics ---

type mockAnalyticsService struct {
	byCategoryFn func(userID string, month calendar.Month) ([]services.CategoryExpense, error)
	topFn        func(userID string, month calendar.Month, limit int) ([]services.CategoryExpense, error)
	dailyFn      func(userID string, month calendar.Month) ([]services.DailyExpense, error)
	monthlyFn    func(userID string, from, to time.Time) ([]services.MonthlyExpense, error)
	summaryFn    func(userID string, month calendar.Month) (*services.Summary, error)
	upcomingFn   func(userID string, from time.Time, months int) ([]services.MonthForecast, error)
}

func (m *mockAnalyticsService) GetExpensesByCategory(userID string, month calendar.Month) ([]services.CategoryExpense, error) {
	if m.byCategoryFn != nil {
		return m.byCategoryFn(userID, month)
	}
	return []services.CategoryExpense{}, nil
}

func (m *mockAnalyticsService) GetTopCategories(userID string, month calendar.Month, limit int) ([]services.CategoryExpense, error) {
	if m.topFn != nil {
		return m.topFn(userID, month, limit)
	}
	return []services.CategoryExpense{}, nil
}

func (m *mockAnalyticsService) GetDailyExpenses(userID string, month calendar.Month) ([]services.DailyExpense, error) {
	if m.dailyFn != nil {
		return m.dailyFn(userID, month)
	}
	return []services.DailyExpense{}, nil
}

func (m *mockAnalyticsService) GetMonthlyExpenses(userID string, from, to time.Time) ([]services.MonthlyExpense, error) {
	if m.monthlyFn != nil {
		return m.monthlyFn(userID, from, to)
	}
	return []services.MonthlyExpense{}, nil
}

func (m *mockAnalyticsService) GetSummary(userID string, month calendar.Month) (*services.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(userID, month)
	}
	return &services.Summary{Month: month.String()}, nil
}

func (m *mockAnalyticsService) GetUpcomingRecurringPayments(userID string, from time.Time, months int) ([]services.MonthForecast, error) {
	if m.upcomingFn != nil {
		return m.upcomingFn(userID, from, months)
	}
	return []services.MonthForecast{}, nil
}

var _ services.AnalyticsServicer = (*mockAnalyticsService)(nil)
