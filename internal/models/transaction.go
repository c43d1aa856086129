package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionSource records how a transaction came to exist. Manual
// transactions are entered by the user; recurring transactions are
// materialized from a RecurringTemplate.
type TransactionSource string

const (
	TransactionSourceManual    TransactionSource = "manual"
	TransactionSourceRecurring TransactionSource = "recurring"
)

// Transaction represents a financial transaction in the system.
// Amounts are stored in minor currency units (cents).
//
// The composite unique index on (recurring_template_id, date) guarantees at
// most one materialized transaction per template occurrence, which makes
// catch-up inserts safe to retry under concurrent requests.
type Transaction struct {
	Base
	UserID   uint              `gorm:"not null;index" json:"user_id"`
	Type     TransactionType   `gorm:"not null" json:"type"`
	Amount   int64             `gorm:"type:bigint;not null" json:"amount"`
	Category string            `gorm:"not null" json:"category"`
	Note     string            `json:"note"`
	Date     time.Time         `gorm:"not null;uniqueIndex:idx_recurring_occurrence" json:"date"`
	Source   TransactionSource `gorm:"not null;default:'manual'" json:"source"`

	// Set only for materialized transactions.
	RecurringTemplateID *uint `gorm:"uniqueIndex:idx_recurring_occurrence" json:"recurring_template_id,omitempty"`
}
