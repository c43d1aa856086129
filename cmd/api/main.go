package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/zoubayerBS/budgetbud-sub000/internal/config"
	"github.com/zoubayerBS/budgetbud-sub000/internal/database"
	"github.com/zoubayerBS/budgetbud-sub000/internal/handlers"
	"github.com/zoubayerBS/budgetbud-sub000/internal/logger"
	"github.com/zoubayerBS/budgetbud-sub000/internal/middleware"
	"github.com/zoubayerBS/budgetbud-sub000/internal/recurrence"
	"github.com/zoubayerBS/budgetbud-sub000/internal/services"
	"github.com/zoubayerBS/budgetbud-sub000/internal/validator"

	"github.com/gin-gonic/gin"
)

// @title           BudgetBud API
// @version         1.0
// @description     BudgetBud is a personal budgeting application that tracks income and expenses, materializes recurring transactions, and monitors budgets and savings goals.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	recurringService := services.NewRecurringService(db)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewSavingsGoalService(db)
	insightService := services.NewInsightService(db, nil)
	auditService := services.NewAuditService(db)

	// The materialization engine reads templates through the recurring
	// service and writes occurrences through the transaction service.
	engine := recurrence.NewEngine(recurringService, transactionService, nil)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService, engine)
	recurringHandler := handlers.NewRecurringHandler(recurringService, auditService, engine)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	insightHandler := handlers.NewInsightHandler(insightService, engine)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Recurring template routes
	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateTemplate)
	recurring.GET("", recurringHandler.GetUserTemplates)
	recurring.GET("/:id", recurringHandler.GetTemplateByID)
	recurring.DELETE("/:id", recurringHandler.DeactivateTemplate)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	// Savings goal routes
	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/contributions", goalHandler.Contribute)

	// Insight routes
	insights := protected.Group("/insights")
	insights.GET("/monthly", insightHandler.GetMonthlyInsights)

	log.Infof("Starting BudgetBud backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
