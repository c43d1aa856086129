package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/zoubayerBS/budgetbud-sub000/internal/errors"
	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
	"github.com/zoubayerBS/budgetbud-sub000/internal/pagination"
)

// savingsCategory labels the expense transaction created by a goal
// contribution, so contributions show up in spending reports.
const savingsCategory = "Savings"

// savingsGoalService handles savings goal business logic.
type savingsGoalService struct {
	db *gorm.DB
}

// NewSavingsGoalService creates a new SavingsGoalServicer.
func NewSavingsGoalService(db *gorm.DB) SavingsGoalServicer {
	return &savingsGoalService{db: db}
}

// CreateGoal creates a new savings goal.
func (s *savingsGoalService) CreateGoal(userID uint, name string, targetAmount int64, targetDate *time.Time) (*models.SavingsGoal, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if targetAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}

	goal := &models.SavingsGoal{
		UserID:       userID,
		Name:         name,
		TargetAmount: targetAmount,
		TargetDate:   targetDate,
		IsActive:     true,
	}

	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// GetUserGoals returns a paginated list of the user's savings goals.
func (s *savingsGoalService) GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error) {
	page.Defaults()

	base := s.db.Model(&models.SavingsGoal{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.SavingsGoal
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGoalByID returns a savings goal by ID if it belongs to the user.
func (s *savingsGoalService) GetGoalByID(userID, goalID uint) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal updates an existing goal's fields.
func (s *savingsGoalService) UpdateGoal(userID, goalID uint, name string, targetAmount *int64, targetDate *time.Time) (*models.SavingsGoal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if targetAmount != nil {
		if *targetAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
		}
		updates["target_amount"] = *targetAmount
	}
	if targetDate != nil {
		updates["target_date"] = targetDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return goal, nil
}

// DeleteGoal soft-deletes a savings goal.
func (s *savingsGoalService) DeleteGoal(userID, goalID uint) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Contribute adds money to a goal. The goal balance and the matching
// "Savings" expense transaction are written in one database transaction so
// the two never diverge.
func (s *savingsGoalService) Contribute(userID, goalID uint, amount int64, date time.Time) (*models.SavingsGoal, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "contribution amount must be greater than zero")
	}

	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(goal).
			Update("current_amount", gorm.Expr("current_amount + ?", amount)).Error; err != nil {
			return err
		}

		contribution := &models.Transaction{
			UserID:   userID,
			Type:     models.TransactionTypeExpense,
			Amount:   amount,
			Category: savingsCategory,
			Note:     "Contribution to " + goal.Name,
			Date:     date,
			Source:   models.TransactionSourceManual,
		}
		return tx.Create(contribution).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	goal.CurrentAmount += amount
	return goal, nil
}
