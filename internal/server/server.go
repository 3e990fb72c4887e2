// Package server wires services and handlers into the HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"pennywise/internal/calendar"
	"pennywise/internal/handlers"
	"pennywise/internal/middleware"
	"pennywise/internal/services"

	_ "pennywise/internal/docs" // swagger docs
)

// Options configures the assembled API.
type Options struct {
	// Location decides what "today" means for scheduling rules.
	Location       *time.Location
	PipelineAPIKey string
	Swagger        bool
}

// Server holds the router and the scheduled engines it exposes, so an
// in-process scheduler can share them.
type Server struct {
	Router       *gin.Engine
	Executor     services.RecurringExecutor
	Materializer services.BudgetMaterializer
}

// New builds every service on db and registers the routes.
func New(db *gorm.DB, clock calendar.Clock, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	recurringService := services.NewRecurringTransactionService(db, clock, opts.Location)
	templateService := services.NewBudgetTemplateService(db)
	budgetService := services.NewBudgetService(db)
	analyticsService := services.NewAnalyticsService(db)
	executor := services.NewRecurringExecutionService(db, transactionService, auditService)
	materializer := services.NewBudgetMaterializer(db, auditService)

	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	recurringHandler := handlers.NewRecurringTransactionHandler(recurringService, auditService, clock, opts.Location)
	templateHandler := handlers.NewBudgetTemplateHandler(templateService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, clock, opts.Location)
	schedulerHandler := handlers.NewSchedulerHandler(executor, materializer, clock, opts.Location)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	recurring := protected.Group("/recurring-transactions")
	recurring.POST("", recurringHandler.CreateRecurringTransaction)
	recurring.GET("", recurringHandler.GetRecurringTransactions)
	recurring.GET("/due", recurringHandler.GetDueRecurringTransactions)
	recurring.GET("/:id", recurringHandler.GetRecurringTransactionByID)
	recurring.PUT("/:id", recurringHandler.UpdateRecurringTransaction)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurringTransaction)

	templates := protected.Group("/budget-templates")
	templates.POST("", templateHandler.CreateBudgetTemplate)
	templates.GET("", templateHandler.GetBudgetTemplates)
	templates.GET("/:id", templateHandler.GetBudgetTemplateByID)
	templates.PUT("/:id", templateHandler.UpdateBudgetTemplate)
	templates.DELETE("/:id", templateHandler.DeleteBudgetTemplate)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	analytics := protected.Group("/analytics")
	analytics.GET("/categories", analyticsHandler.GetExpensesByCategory)
	analytics.GET("/categories/top", analyticsHandler.GetTopCategories)
	analytics.GET("/daily", analyticsHandler.GetDailyExpenses)
	analytics.GET("/monthly", analyticsHandler.GetMonthlyExpenses)
	analytics.GET("/summary", analyticsHandler.GetSummary)
	analytics.GET("/upcoming", analyticsHandler.GetUpcomingRecurringPayments)

	// Trigger endpoints for an external cron.
	pipeline := v1.Group("/pipeline/scheduler")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/recurring", schedulerHandler.RunRecurring)
	pipeline.POST("/budgets", schedulerHandler.RunBudgets)

	return &Server{Router: router, Executor: executor, Materializer: materializer}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
