package models

// CategoryDirection represents whether a category tracks income or expenses
type CategoryDirection string

const (
	CategoryDirectionIncome  CategoryDirection = "income"
	CategoryDirectionExpense CategoryDirection = "expense"
)

// Category represents a transaction category. A nil UserID marks a
// system default category that is visible to every user and owned by none.
type Category struct {
	Base
	UserID    *string           `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name      string            `gorm:"not null" json:"name"`
	Direction CategoryDirection `gorm:"not null" json:"direction"`
	Color     string            `gorm:"not null" json:"color"`
	Icon      string            `json:"icon,omitempty"`
	IsDefault bool              `gorm:"default:false" json:"is_default"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
}
