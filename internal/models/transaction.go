package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection represents the direction of a transaction
type TransactionDirection string

const (
	TransactionDirectionIncome  TransactionDirection = "income"
	TransactionDirectionExpense TransactionDirection = "expense"
)

// Transaction represents a financial transaction in the system
type Transaction struct {
	Base
	UserID      string               `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  string               `gorm:"type:uuid;not null;index" json:"category_id"`
	FamilyID    *string              `gorm:"type:uuid;index" json:"family_id,omitempty"`
	Direction   TransactionDirection `gorm:"not null" json:"direction"`
	Amount      decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string               `gorm:"not null" json:"description"`
	Date        time.Time            `gorm:"not null;index" json:"date"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
	Family   *Family  `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
}
