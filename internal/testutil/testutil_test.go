package testutil_test

import (
	"testing"

	"tally/internal/errors"
	"tally/internal/models"
	"tally/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "categories", "transactions", "budgets", "families", "family_members", "shopping_lists", "shopping_list_items", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryDirectionExpense)
	if category.Direction != models.CategoryDirectionExpense {
		t.Errorf("expected expense category, got %s", category.Direction)
	}
	if category.UserID == nil || *category.UserID != user.ID {
		t.Error("category should belong to the user")
	}

	def := testutil.CreateTestDefaultCategory(t, db, models.CategoryDirectionIncome)
	if def.UserID != nil {
		t.Error("default category should have no owner")
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionDirectionExpense, testutil.Amount(t, "42.50"))
	if !tx.Amount.Equal(testutil.Amount(t, "42.50")) {
		t.Errorf("expected amount 42.50, got %s", tx.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID, testutil.Amount(t, "100.00"))
	if !budget.EndDate.After(budget.StartDate) {
		t.Error("budget end date should be after start date")
	}

	family := testutil.CreateTestFamily(t, db, user.ID)
	var member models.FamilyMember
	if err := db.Where("family_id = ? AND user_id = ?", family.ID, user.ID).First(&member).Error; err != nil {
		t.Fatalf("creator should be a member: %v", err)
	}
	if member.Role != models.FamilyRoleAdmin {
		t.Errorf("creator should be admin, got %s", member.Role)
	}

	list := testutil.CreateTestShoppingList(t, db, user.ID)
	item := testutil.AddTestItem(t, db, list.ID)
	if item.IsPurchased {
		t.Error("new item should not be purchased")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBudgetNotFound, "custom message")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
