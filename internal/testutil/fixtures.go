package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tally/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount parses a decimal literal, failing the test on bad input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a user-owned category with the given direction.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, direction models.CategoryDirection) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:    &userID,
		Name:      fmt.Sprintf("Test Category %d", nextID()),
		Direction: direction,
		Color:     "#336699",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestDefaultCategory creates a system default category with no owner.
func CreateTestDefaultCategory(t *testing.T, db *gorm.DB, direction models.CategoryDirection) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:      fmt.Sprintf("Default Category %d", nextID()),
		Direction: direction,
		Color:     "#808080",
		IsDefault: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test default category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction dated now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, direction models.TransactionDirection, amount decimal.Decimal) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, userID, categoryID, nil, direction, amount, time.Now())
}

// CreateTestTransactionAt creates a transaction with an explicit family and date.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID, categoryID string, familyID *string, direction models.TransactionDirection, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		FamilyID:    familyID,
		Direction:   direction,
		Amount:      amount,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Date:        date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestFamily creates a family with the creator as its admin member.
func CreateTestFamily(t *testing.T, db *gorm.DB, creatorID string) *models.Family {
	t.Helper()

	family := &models.Family{
		Name:      fmt.Sprintf("Test Family %d", nextID()),
		CreatedBy: creatorID,
	}
	if err := db.Create(family).Error; err != nil {
		t.Fatalf("failed to create test family: %v", err)
	}

	member := &models.FamilyMember{
		FamilyID:    family.ID,
		UserID:      creatorID,
		Role:        models.FamilyRoleAdmin,
		Permissions: models.StringList(models.AllPermissions),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test family admin: %v", err)
	}
	return family
}

// AddTestMember adds a user to a family with the given role and permissions.
func AddTestMember(t *testing.T, db *gorm.DB, familyID, userID string, role models.FamilyRole, permissions []string) *models.FamilyMember {
	t.Helper()

	member := &models.FamilyMember{
		FamilyID:    familyID,
		UserID:      userID,
		Role:        role,
		Permissions: models.StringList(permissions),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to add test family member: %v", err)
	}
	return member
}

// CreateTestBudget creates a monthly budget covering the current month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, amount decimal.Decimal) *models.Budget {
	t.Helper()

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Period:     models.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    end,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestShoppingList creates a personal shopping list.
func CreateTestShoppingList(t *testing.T, db *gorm.DB, userID string) *models.ShoppingList {
	t.Helper()

	list := &models.ShoppingList{
		UserID: userID,
		Name:   fmt.Sprintf("Test List %d", nextID()),
	}
	if err := db.Create(list).Error; err != nil {
		t.Fatalf("failed to create test shopping list: %v", err)
	}
	return list
}

// AddTestItem adds an unpurchased item to a shopping list.
func AddTestItem(t *testing.T, db *gorm.DB, listID string) *models.ShoppingListItem {
	t.Helper()

	item := &models.ShoppingListItem{
		ShoppingListID: listID,
		Name:           fmt.Sprintf("Test Item %d", nextID()),
		Priority:       models.ItemPriorityOptional,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test shopping list item: %v", err)
	}
	return item
}
