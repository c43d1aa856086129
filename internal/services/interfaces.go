package services

import (
	"time"

	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
	"github.com/zoubayerBS/budgetbud-sub000/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
	Category  *string
	Source    *models.TransactionSource
	MinAmount *int64
	MaxAmount *int64
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, txType models.TransactionType, amount int64, category, note string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// RecurringServicer defines the contract for recurring template management.
// The materialization engine itself consumes the store through the narrower
// recurrence.TemplateStore interface.
type RecurringServicer interface {
	CreateTemplate(userID uint, txType models.TransactionType, amount int64, category, note string, frequency models.Frequency, startDate time.Time) (*models.RecurringTemplate, error)
	GetUserTemplates(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTemplate], error)
	GetTemplateByID(userID, templateID uint) (*models.RecurringTemplate, error)
	DeactivateTemplate(userID, templateID uint) error
}

// BudgetProgress contains spending vs budget data for a budget's current period.
type BudgetProgress struct {
	BudgetID   uint    `json:"budget_id"`
	Budgeted   int64   `json:"budgeted"`
	Spent      int64   `json:"spent"`
	Remaining  int64   `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID uint, category, name string, amount int64, period models.BudgetPeriod, startDate time.Time, endDate *time.Time) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, name string, amount *int64, period *models.BudgetPeriod, endDate *time.Time) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	GetBudgetProgress(userID, budgetID uint) (*BudgetProgress, error)
}

// SavingsGoalServicer defines the contract for savings goal business logic.
type SavingsGoalServicer interface {
	CreateGoal(userID uint, name string, targetAmount int64, targetDate *time.Time) (*models.SavingsGoal, error)
	GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error)
	GetGoalByID(userID, goalID uint) (*models.SavingsGoal, error)
	UpdateGoal(userID, goalID uint, name string, targetAmount *int64, targetDate *time.Time) (*models.SavingsGoal, error)
	DeleteGoal(userID, goalID uint) error
	Contribute(userID, goalID uint, amount int64, date time.Time) (*models.SavingsGoal, error)
}

// MonthlyInsights aggregates a user's activity for one calendar month
// together with generated advisory messages.
type MonthlyInsights struct {
	Month            string           `json:"month"`
	Income           int64            `json:"income"`
	Expenses         int64            `json:"expenses"`
	Net              int64            `json:"net"`
	SpendByCategory  map[string]int64 `json:"spend_by_category"`
	TopCategory      string           `json:"top_category,omitempty"`
	TopCategorySpend int64            `json:"top_category_spend,omitempty"`
	Messages         []string         `json:"messages"`
}

// InsightServicer defines the contract for generating textual insights.
type InsightServicer interface {
	GetMonthlyInsights(userID uint, month time.Time) (*MonthlyInsights, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
