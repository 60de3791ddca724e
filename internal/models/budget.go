package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Budget represents a spending plan for a category over a date window.
// EndDate is always derived from StartDate and Period, never caller-supplied.
// Consumption (spent/remaining/percentage/status) is computed on read and
// never stored.
type Budget struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string          `gorm:"type:uuid;not null;index" json:"category_id"`
	FamilyID   *string         `gorm:"type:uuid;index" json:"family_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Period     BudgetPeriod    `gorm:"not null" json:"period"`
	StartDate  time.Time       `gorm:"not null" json:"start_date"`
	EndDate    time.Time       `gorm:"not null" json:"end_date"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
	Family   *Family  `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
}
