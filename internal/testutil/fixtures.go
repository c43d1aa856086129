package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoubayerBS/budgetbud-sub000/internal/calendar"
	"github.com/zoubayerBS/budgetbud-sub000/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction creates a manual transaction of the given type and amount (in cents).
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:   userID,
		Type:     txType,
		Amount:   amount,
		Category: fmt.Sprintf("Test Category %d", nextID()),
		Date:     time.Now(),
		Source:   models.TransactionSourceManual,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTemplate creates an active recurring expense template with the
// given frequency and start date.
func CreateTestTemplate(t *testing.T, db *gorm.DB, userID uint, frequency models.Frequency, startDate time.Time) *models.RecurringTemplate {
	t.Helper()

	template := &models.RecurringTemplate{
		UserID:    userID,
		Type:      models.TransactionTypeExpense,
		Amount:    1500, // $15.00
		Category:  "Subscriptions",
		Note:      fmt.Sprintf("Test Template %d", nextID()),
		Frequency: frequency,
		StartDate: calendar.DateOnly(startDate),
		IsActive:  true,
	}
	if err := db.Create(template).Error; err != nil {
		t.Fatalf("failed to create test template: %v", err)
	}
	return template
}

// CreateTestBudget creates a monthly budget for the given category label.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint, category string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:    userID,
		Category:  category,
		Name:      fmt.Sprintf("Test Budget %d", nextID()),
		Amount:    10000, // $100.00
		Period:    models.BudgetPeriodMonthly,
		StartDate: time.Now().Truncate(24 * time.Hour),
		IsActive:  true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates an active savings goal with the given target (in cents).
func CreateTestGoal(t *testing.T, db *gorm.DB, userID uint, targetAmount int64) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: targetAmount,
		IsActive:     true,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}
