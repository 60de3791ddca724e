package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email               string     `gorm:"not null;index:idx_users_email,unique,where:deleted_at IS NULL" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	Name                string     `gorm:"not null" json:"name"`
	AvatarURL           string     `json:"avatar_url,omitempty"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	Categories    []Category     `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Transactions  []Transaction  `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Budgets       []Budget       `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
	ShoppingLists []ShoppingList `gorm:"foreignKey:UserID" json:"shopping_lists,omitempty"`
}
