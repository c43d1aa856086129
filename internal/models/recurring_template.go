package models

import "time"

// Frequency represents how often a recurring template produces an occurrence
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// RecurringTemplate is a user-defined rule describing a repeating transaction.
//
// LastProcessed is the cursor of the materialization engine: the date of the
// most recently materialized occurrence. It is nil until the first occurrence
// has been materialized and is only ever advanced by the engine, always to a
// date reachable from StartDate by repeated frequency steps.
type RecurringTemplate struct {
	Base
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Amount        int64           `gorm:"type:bigint;not null" json:"amount"`
	Category      string          `gorm:"not null" json:"category"`
	Note          string          `json:"note"`
	Frequency     Frequency       `gorm:"not null" json:"frequency"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	LastProcessed *time.Time      `json:"last_processed,omitempty"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
}
