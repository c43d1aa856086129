package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zoubayerBS/budgetbud-sub000/internal/calendar"
	apperrors "github.com/zoubayerBS/budgetbud-sub000/internal/errors"
	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
	"github.com/zoubayerBS/budgetbud-sub000/internal/pagination"
)

// RecurringService manages recurring templates. It implements both the
// user-facing RecurringServicer contract and recurrence.TemplateStore, the
// narrower interface the materialization engine reads and checkpoints
// through.
type RecurringService struct {
	db *gorm.DB
}

// NewRecurringService creates a new RecurringService.
func NewRecurringService(db *gorm.DB) *RecurringService {
	return &RecurringService{db: db}
}

// CreateTemplate records a new recurring template. The first occurrence
// (the start date itself) is not materialized here; the caller runs a
// materialization pass right after creation.
func (s *RecurringService) CreateTemplate(
	userID uint,
	txType models.TransactionType,
	amount int64,
	category, note string,
	frequency models.Frequency,
	startDate time.Time,
) (*models.RecurringTemplate, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	switch frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly, models.FrequencyYearly:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "frequency must be daily, weekly, monthly, or yearly")
	}
	if startDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}

	template := &models.RecurringTemplate{
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Category:  category,
		Note:      note,
		Frequency: frequency,
		StartDate: calendar.DateOnly(startDate),
		IsActive:  true,
	}

	if err := s.db.Create(template).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return template, nil
}

// GetUserTemplates returns the user's active templates, newest first.
// Deactivated templates are excluded from listings.
func (s *RecurringService) GetUserTemplates(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTemplate], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringTemplate{}).Where("user_id = ? AND is_active = ?", userID, true)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var templates []models.RecurringTemplate
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(templates, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTemplateByID returns a template by ID if it belongs to the user.
func (s *RecurringService) GetTemplateByID(userID, templateID uint) (*models.RecurringTemplate, error) {
	var template models.RecurringTemplate
	if err := s.db.Where("id = ? AND user_id = ?", templateID, userID).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &template, nil
}

// DeactivateTemplate marks a template inactive. The row is kept so that
// already-materialized transactions retain their provenance reference; the
// engine never processes inactive templates again.
func (s *RecurringService) DeactivateTemplate(userID, templateID uint) error {
	template, err := s.GetTemplateByID(userID, templateID)
	if err != nil {
		return err
	}

	if err := s.db.Model(template).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListActive returns the active recurring templates for a user.
// Part of the recurrence.TemplateStore contract.
func (s *RecurringService) ListActive(ctx context.Context, userID uint) ([]models.RecurringTemplate, error) {
	var templates []models.RecurringTemplate
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("id").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// AdvanceCursor persists the last-processed date for a template.
// Part of the recurrence.TemplateStore contract; only the engine calls this,
// and only with on-cycle occurrence dates.
func (s *RecurringService) AdvanceCursor(ctx context.Context, templateID uint, occurrence time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.RecurringTemplate{}).
		Where("id = ?", templateID).
		Update("last_processed", calendar.DateOnly(occurrence)).Error
}

// ActiveUserIDs returns the IDs of all users with at least one active
// template. Part of the recurrence.TemplateStore contract.
func (s *RecurringService) ActiveUserIDs(ctx context.Context) ([]uint, error) {
	var userIDs []uint
	if err := s.db.WithContext(ctx).
		Model(&models.RecurringTemplate{}).
		Where("is_active = ?", true).
		Distinct().
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}
