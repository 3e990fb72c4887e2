package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/calendar"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, description, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetUserCategoriesByType(userID string, categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, description, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *string
	IsPlanned  *bool
}

// NewTransaction carries the fields of a ledger entry to be created.
type NewTransaction struct {
	CategoryID             string
	Amount                 decimal.Decimal
	Date                   time.Time
	Description            string
	IsPlanned              bool
	RecurringTransactionID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in NewTransaction) (*models.Transaction, error)
	// CreateTransactionForUser inserts a ledger entry on the given handle,
	// which may be an open transaction owned by the caller. The category is
	// assumed to be already resolved under userID.
	CreateTransactionForUser(tx *gorm.DB, userID string, in NewTransaction) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// RecurringTransactionInput carries the fields of a recurring transaction on
// create. On update every nil field is left unchanged.
type RecurringTransactionInput struct {
	CategoryID        *string
	Amount            *decimal.Decimal
	Frequency         *models.Frequency
	NextExecutionDate *time.Time
	IsActive          *bool
	Description       *string
}

// RecurringTransactionServicer defines the contract for managing recurring transactions.
type RecurringTransactionServicer interface {
	CreateRecurringTransaction(userID string, in RecurringTransactionInput) (*models.RecurringTransaction, error)
	GetUserRecurringTransactions(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.RecurringTransaction], error)
	GetDueRecurringTransactions(userID string, until time.Time) ([]models.RecurringTransaction, error)
	GetRecurringTransactionByID(userID, recurringID string) (*models.RecurringTransaction, error)
	UpdateRecurringTransaction(userID, recurringID string, in RecurringTransactionInput) (*models.RecurringTransaction, error)
	DeleteRecurringTransaction(userID, recurringID string) error
}

// BudgetTemplateServicer defines the contract for managing budget templates.
type BudgetTemplateServicer interface {
	CreateBudgetTemplate(userID, categoryID string, amount decimal.Decimal, active bool, startMonth calendar.Month) (*models.BudgetTemplate, error)
	GetUserBudgetTemplates(userID string, page pagination.PageRequest, active *bool) (*pagination.PageResponse[models.BudgetTemplate], error)
	GetBudgetTemplateByID(userID, templateID string) (*models.BudgetTemplate, error)
	UpdateBudgetTemplate(userID, templateID string, amount *decimal.Decimal, active *bool, startMonth *calendar.Month) (*models.BudgetTemplate, error)
	DeleteBudgetTemplate(userID, templateID string) error
}

// BudgetProgress contains spending vs budget data for a budget's month.
type BudgetProgress struct {
	BudgetID   string          `json:"budget_id"`
	Month      string          `json:"month"`
	Budgeted   decimal.Decimal `json:"budgeted"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID string, month calendar.Month, limit decimal.Decimal) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, month *calendar.Month) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, limit decimal.Decimal) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error)
}

// CategoryExpense is the spending of one category over a period.
type CategoryExpense struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
}

// DailyExpense is the spending of one day.
type DailyExpense struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// MonthlyExpense is the spending of one month.
type MonthlyExpense struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Summary holds the income, expense and balance of one month.
type Summary struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// UpcomingPayment is one projected firing of a recurring transaction.
type UpcomingPayment struct {
	RecurringTransactionID string              `json:"recurring_transaction_id"`
	Date                   string              `json:"date"`
	Amount                 decimal.Decimal     `json:"amount"`
	CategoryID             string              `json:"category_id"`
	CategoryName           string              `json:"category_name"`
	CategoryType           models.CategoryType `json:"category_type"`
	Description            string              `json:"description"`
}

// MonthForecast groups the projected recurring payments of one month.
type MonthForecast struct {
	Month    string            `json:"month"`
	Income   decimal.Decimal   `json:"income"`
	Expense  decimal.Decimal   `json:"expense"`
	Payments []UpcomingPayment `json:"payments"`
}

// AnalyticsServicer defines the contract for spending reports. Every report
// reads non-planned ledger entries only.
type AnalyticsServicer interface {
	GetExpensesByCategory(userID string, month calendar.Month) ([]CategoryExpense, error)
	GetTopCategories(userID string, month calendar.Month, limit int) ([]CategoryExpense, error)
	GetDailyExpenses(userID string, month calendar.Month) ([]DailyExpense, error)
	GetMonthlyExpenses(userID string, from, to time.Time) ([]MonthlyExpense, error)
	GetSummary(userID string, month calendar.Month) (*Summary, error)
	GetUpcomingRecurringPayments(userID string, from time.Time, months int) ([]MonthForecast, error)
}

// AuditEntry is one audit record.
type AuditEntry struct {
	UserID       string
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	Changes      map[string]any
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
	// Record writes an entry on the given handle and returns the storage
	// error, so that callers running inside a transaction can roll back.
	Record(tx *gorm.DB, entry AuditEntry) error
}

// RecurringExecutor turns due recurring transactions into ledger entries.
type RecurringExecutor interface {
	ExecuteDueTransactions(ctx context.Context, scanDate time.Time) (*ExecutionReport, error)
}

// BudgetMaterializer creates the monthly budgets described by active templates.
type BudgetMaterializer interface {
	MaterializeMonthlyBudgets(ctx context.Context, month calendar.Month) (*MaterializationReport, error)
}
