package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zoubayerBS/budgetbud-sub000/internal/calendar"
	apperrors "github.com/zoubayerBS/budgetbud-sub000/internal/errors"
	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
	"github.com/zoubayerBS/budgetbud-sub000/internal/pagination"
)

// autoNoteMarker is appended to the note of every materialized transaction.
// Provenance is carried structurally by Source/RecurringTemplateID; the
// marker is kept for display parity with manually entered notes.
const autoNoteMarker = "(Auto)"

// TransactionService handles transaction-related business logic. It also
// implements recurrence.TransactionSink, acting as the append-only sink the
// materialization engine writes occurrences into.
type TransactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db}
}

// CreateTransaction records a manually entered transaction.
func (s *TransactionService) CreateTransaction(
	userID uint,
	txType models.TransactionType,
	amount int64,
	category, note string,
	date time.Time,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:   userID,
		Type:     txType,
		Amount:   amount,
		Category: category,
		Note:     note,
		Date:     date,
		Source:   models.TransactionSourceManual,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// AppendOccurrence inserts the transaction for one occurrence of a recurring
// template. The unique index on (recurring_template_id, date) turns a racing
// double-insert into ErrOccurrenceExists, which the engine treats as benign.
func (s *TransactionService) AppendOccurrence(ctx context.Context, tmpl *models.RecurringTemplate, occurrence time.Time) error {
	templateID := tmpl.ID
	transaction := &models.Transaction{
		UserID:              tmpl.UserID,
		Type:                tmpl.Type,
		Amount:              tmpl.Amount,
		Category:            tmpl.Category,
		Note:                strings.TrimSpace(tmpl.Note + " " + autoNoteMarker),
		Date:                calendar.DateOnly(occurrence),
		Source:              models.TransactionSourceRecurring,
		RecurringTemplateID: &templateID,
	}

	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrOccurrenceExists
		}
		return err
	}
	return nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions ordered by date descending.
func (s *TransactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Source != nil {
		q = q.Where("source = ?", *f.Source)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *TransactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction soft-deletes a transaction owned by the user.
func (s *TransactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
