package models

import "time"

// SavingsGoal represents a savings target the user is working toward.
// Amounts are stored in minor currency units (cents).
type SavingsGoal struct {
	Base
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	Name          string     `gorm:"not null" json:"name"`
	TargetAmount  int64      `gorm:"type:bigint;not null" json:"target_amount"`
	CurrentAmount int64      `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
}
