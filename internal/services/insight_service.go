package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/zoubayerBS/budgetbud-sub000/internal/errors"
	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
)

// MessageGenerator turns a month's aggregates into advisory messages.
// Injected so the rule set can be swapped without touching the aggregation.
type MessageGenerator interface {
	Generate(insights *MonthlyInsights, budgets []models.Budget, goals []models.SavingsGoal) []string
}

// insightService aggregates a user's monthly activity and produces insights.
type insightService struct {
	db        *gorm.DB
	generator MessageGenerator
}

// NewInsightService creates a new InsightServicer. If generator is nil the
// built-in rule-based generator is used.
func NewInsightService(db *gorm.DB, generator MessageGenerator) InsightServicer {
	if generator == nil {
		generator = ruleBasedGenerator{}
	}
	return &insightService{db: db, generator: generator}
}

type categorySum struct {
	Category string
	Total    int64
}

// GetMonthlyInsights aggregates income, expenses, and per-category spending
// for the calendar month containing the given time, then runs the message
// generator over the result.
func (s *insightService) GetMonthlyInsights(userID uint, month time.Time) (*MonthlyInsights, error) {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	insights := &MonthlyInsights{
		Month:           monthStart.Format("2006-01"),
		SpendByCategory: make(map[string]int64),
	}

	base := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, monthStart, monthEnd)

	if err := base.Session(&gorm.Session{}).
		Where("type = ?", models.TransactionTypeIncome).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&insights.Income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var sums []categorySum
	if err := base.Session(&gorm.Session{}).
		Where("type = ?", models.TransactionTypeExpense).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Group("category").
		Order("total DESC").
		Scan(&sums).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, cs := range sums {
		insights.SpendByCategory[cs.Category] = cs.Total
		insights.Expenses += cs.Total
	}
	if len(sums) > 0 {
		insights.TopCategory = sums[0].Category
		insights.TopCategorySpend = sums[0].Total
	}
	insights.Net = insights.Income - insights.Expenses

	budgets, goals, err := s.loadContext(userID)
	if err != nil {
		return nil, err
	}
	insights.Messages = s.generator.Generate(insights, budgets, goals)
	return insights, nil
}

func (s *insightService) loadContext(userID uint) ([]models.Budget, []models.SavingsGoal, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&budgets).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.SavingsGoal
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&goals).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, goals, nil
}

// ruleBasedGenerator is the default MessageGenerator: a fixed set of
// threshold rules over the month's aggregates.
type ruleBasedGenerator struct{}

func (ruleBasedGenerator) Generate(insights *MonthlyInsights, budgets []models.Budget, goals []models.SavingsGoal) []string {
	var messages []string

	if insights.Net < 0 {
		messages = append(messages, fmt.Sprintf("You spent %s more than you earned this month.", formatAmount(-insights.Net)))
	} else if insights.Income > 0 {
		savedPct := float64(insights.Net) / float64(insights.Income) * 100
		if savedPct >= 20 {
			messages = append(messages, fmt.Sprintf("You kept %.0f%% of your income this month. Nice work.", savedPct))
		}
	}

	if insights.TopCategory != "" && insights.Expenses > 0 {
		share := float64(insights.TopCategorySpend) / float64(insights.Expenses) * 100
		if share >= 40 {
			messages = append(messages, fmt.Sprintf("%s made up %.0f%% of your spending this month.", insights.TopCategory, share))
		}
	}

	for _, budget := range budgets {
		if budget.Period != models.BudgetPeriodMonthly {
			continue
		}
		spent, ok := insights.SpendByCategory[budget.Category]
		if !ok {
			continue
		}
		switch {
		case spent > budget.Amount:
			messages = append(messages, fmt.Sprintf("You are %s over your %s budget.", formatAmount(spent-budget.Amount), budget.Category))
		case float64(spent) >= float64(budget.Amount)*0.9:
			messages = append(messages, fmt.Sprintf("You have used over 90%% of your %s budget.", budget.Category))
		}
	}

	for _, goal := range goals {
		if goal.TargetAmount <= 0 || goal.CurrentAmount < goal.TargetAmount {
			continue
		}
		messages = append(messages, fmt.Sprintf("You reached your %q savings goal.", goal.Name))
	}

	if messages == nil {
		messages = []string{"No notable patterns this month."}
	}
	return messages
}

// formatAmount renders minor currency units as a decimal string.
func formatAmount(minor int64) string {
	if minor < 0 {
		minor = -minor
	}
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
