package services

import (
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/models"
	"tally/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	UpdateProfile(userID string, name, avatarURL string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	SeedDefaults() error
	CreateCategory(userID, name string, direction models.CategoryDirection, color, icon string) (*models.Category, error)
	GetVisibleCategories(userID string, direction *models.CategoryDirection, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, color, icon string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	Direction   *models.TransactionDirection
	CategoryIDs []string
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Search      string
	FamilyID    *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, categoryID string, familyID *string, direction models.TransactionDirection, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, categoryID *string, amount *decimal.Decimal, description *string, date *time.Time) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// BudgetStatus classifies budget consumption against the fixed
// 80%/100% thresholds.
type BudgetStatus string

const (
	BudgetStatusGood    BudgetStatus = "good"
	BudgetStatusWarning BudgetStatus = "warning"
	BudgetStatusDanger  BudgetStatus = "danger"
)

// BudgetProgress contains derived consumption data for a budget's window.
type BudgetProgress struct {
	BudgetID   string          `json:"budget_id"`
	Budgeted   decimal.Decimal `json:"budgeted"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	Status     BudgetStatus    `json:"status"`
}

// BudgetSummary aggregates progress across all of a user's budgets.
type BudgetSummary struct {
	TotalBudgeted decimal.Decimal  `json:"total_budgeted"`
	TotalSpent    decimal.Decimal  `json:"total_spent"`
	Budgets       []BudgetProgress `json:"budgets"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID string, familyID *string, amount decimal.Decimal, period models.BudgetPeriod, startDate time.Time) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, period *models.BudgetPeriod, familyID *string) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, amount *decimal.Decimal) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error)
	GetBudgetSummary(userID string) (*BudgetSummary, error)
}

// FamilyServicer defines the contract for family-related business logic.
// RequirePermission is the shared authorization helper used by every
// family-scoped write across services.
type FamilyServicer interface {
	CreateFamily(userID, name, description string) (*models.Family, error)
	GetUserFamilies(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Family], error)
	GetFamilyByID(userID, familyID string) (*models.Family, error)
	UpdateFamily(userID, familyID, name, description string) (*models.Family, error)
	DeleteFamily(userID, familyID string) error
	InviteMember(familyID, actorID, email string, role models.FamilyRole, permissions []string) (*models.FamilyMember, error)
	UpdateMember(familyID, actorID, memberUserID string, role *models.FamilyRole, permissions []string) (*models.FamilyMember, error)
	RemoveMember(familyID, actorID, memberUserID string) error
	LeaveFamily(familyID, userID string) error
	RequirePermission(familyID, userID, permission string) (*models.FamilyMember, error)
	RequireAdmin(familyID, userID string) (*models.FamilyMember, error)
}

// PurchaseOptions controls transaction creation when an item is marked purchased.
type PurchaseOptions struct {
	CreateTransaction bool
	CategoryID        string
	Amount            decimal.Decimal
}

// ShoppingListServicer defines the contract for shopping-list business logic.
type ShoppingListServicer interface {
	CreateList(userID, name, description string, familyID *string, sharedWith []string) (*models.ShoppingList, error)
	GetVisibleLists(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ShoppingList], error)
	GetListByID(userID, listID string) (*models.ShoppingList, error)
	UpdateList(userID, listID, name, description string, sharedWith []string) (*models.ShoppingList, error)
	DeleteList(userID, listID string) error
	AddItem(userID, listID, name, quantity, note string, priority models.ItemPriority) (*models.ShoppingListItem, error)
	UpdateItem(userID, listID, itemID string, name, quantity, note *string, priority *models.ItemPriority) (*models.ShoppingListItem, error)
	RemoveItem(userID, listID, itemID string) error
	MarkItemPurchased(userID, listID, itemID string, opts PurchaseOptions) (*models.ShoppingListItem, error)
}

// AuditServicer defines the contract for audit log recording.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
