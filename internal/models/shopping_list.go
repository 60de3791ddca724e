package models

import "time"

// ItemPriority represents how strongly a shopping list item is wanted
type ItemPriority string

const (
	ItemPriorityMustHave   ItemPriority = "must-have"
	ItemPriorityNiceToHave ItemPriority = "nice-to-have"
	ItemPriorityOptional   ItemPriority = "optional"
)

// ShoppingList represents a shopping list owned by a user and optionally
// shared with other users by email or attached to a family.
type ShoppingList struct {
	Base
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	FamilyID    *string    `gorm:"type:uuid;index" json:"family_id,omitempty"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	SharedWith  StringList `gorm:"type:text" json:"shared_with"`

	// Relationships
	Items  []ShoppingListItem `gorm:"foreignKey:ShoppingListID" json:"items,omitempty"`
	Family *Family            `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
}

// ShoppingListItem represents a single entry on a shopping list.
// TransactionID links an item to the expense transaction created when it
// was marked purchased; the link is one-to-one.
type ShoppingListItem struct {
	Base
	ShoppingListID string       `gorm:"type:uuid;not null;index" json:"shopping_list_id"`
	Name           string       `gorm:"not null" json:"name"`
	Quantity       string       `json:"quantity,omitempty"`
	Note           string       `json:"note,omitempty"`
	Priority       ItemPriority `gorm:"not null;default:optional" json:"priority"`
	IsPurchased    bool         `gorm:"default:false" json:"is_purchased"`
	PurchasedAt    *time.Time   `json:"purchased_at,omitempty"`
	TransactionID  *string      `gorm:"type:uuid;uniqueIndex" json:"transaction_id,omitempty"`

	// Relationships
	Transaction *Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
}
