package services

import (
	"testing"

	"tally/internal/models"
	"tally/internal/testutil"
)

func TestSeedDefaults(t *testing.T) {
	t.Run("seeds_once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		testutil.AssertNoError(t, svc.SeedDefaults())

		var first int64
		db.Model(&models.Category{}).Where("user_id IS NULL AND is_default = ?", true).Count(&first)
		if first == 0 {
			t.Fatal("expected default categories to be seeded")
		}

		// A second run must not duplicate anything.
		testutil.AssertNoError(t, svc.SeedDefaults())

		var second int64
		db.Model(&models.Category{}).Where("user_id IS NULL AND is_default = ?", true).Count(&second)
		if second != first {
			t.Errorf("expected %d defaults after reseeding, got %d", first, second)
		}
	})
}

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		category, err := svc.CreateCategory(user.ID, "Coffee", models.CategoryDirectionExpense, "#AA5500", "coffee")
		testutil.AssertNoError(t, err)

		if category.UserID == nil || *category.UserID != user.ID {
			t.Error("category should belong to the creating user")
		}
		if category.IsDefault {
			t.Error("user categories must not be marked default")
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		_, err := svc.CreateCategory(user.ID, "", models.CategoryDirectionExpense, "#AA5500", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		_, err := svc.CreateCategory(user.ID, "Travel", models.CategoryDirectionExpense, "#112233", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "TRAVEL", models.CategoryDirectionExpense, "#445566", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_different_direction_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		_, err := svc.CreateCategory(user.ID, "Freelance", models.CategoryDirectionExpense, "#112233", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Freelance", models.CategoryDirectionIncome, "#112233", "")
		testutil.AssertNoError(t, err)
	})

	t.Run("may_shadow_default_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		def := testutil.CreateTestDefaultCategory(t, db, models.CategoryDirectionExpense)
		user := testutil.CreateTestUser(t, db)
		_, err := svc.CreateCategory(user.ID, def.Name, def.Direction, "#FF0000", "")
		testutil.AssertNoError(t, err)
	})

	t.Run("different_users_may_share_names", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(alice.ID, "Pets", models.CategoryDirectionExpense, "#112233", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(bob.ID, "Pets", models.CategoryDirectionExpense, "#112233", "")
		testutil.AssertNoError(t, err)
	})
}

func TestGetVisibleCategories(t *testing.T) {
	t.Run("own_plus_defaults_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		mine := testutil.CreateTestCategory(t, db, alice.ID, models.CategoryDirectionExpense)
		def := testutil.CreateTestDefaultCategory(t, db, models.CategoryDirectionExpense)
		other := testutil.CreateTestCategory(t, db, bob.ID, models.CategoryDirectionExpense)

		result, err := svc.GetVisibleCategories(alice.ID, nil, pageRequest(1, 100))
		testutil.AssertNoError(t, err)

		ids := make(map[string]bool)
		for _, c := range result.Data {
			ids[c.ID] = true
		}
		if !ids[mine.ID] {
			t.Error("expected own category to be visible")
		}
		if !ids[def.ID] {
			t.Error("expected default category to be visible")
		}
		if ids[other.ID] {
			t.Error("another user's category must not be visible")
		}
	})

	t.Run("direction_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategory(t, db, user.ID, models.CategoryDirectionExpense)
		testutil.CreateTestCategory(t, db, user.ID, models.CategoryDirectionIncome)

		income := models.CategoryDirectionIncome
		result, err := svc.GetVisibleCategories(user.ID, &income, pageRequest(1, 100))
		testutil.AssertNoError(t, err)

		for _, c := range result.Data {
			if c.Direction != models.CategoryDirectionIncome {
				t.Errorf("expected only income categories, got %s", c.Direction)
			}
		}
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("owner_updates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryDirectionExpense)

		updated, err := svc.UpdateCategory(user.ID, category.ID, "Renamed", "#000000", "star")
		testutil.AssertNoError(t, err)
		if updated.Name != "Renamed" {
			t.Errorf("expected name Renamed, got %s", updated.Name)
		}
	})

	t.Run("default_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		def := testutil.CreateTestDefaultCategory(t, db, models.CategoryDirectionExpense)

		_, err := svc.UpdateCategory(user.ID, def.ID, "Hacked", "", "")
		testutil.AssertAppError(t, err, "DEFAULT_CATEGORY")
	})

	t.Run("rename_into_conflict", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		first, err := svc.CreateCategory(user.ID, "Books", models.CategoryDirectionExpense, "#111111", "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(user.ID, "Games", models.CategoryDirectionExpense, "#222222", "")
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateCategory(user.ID, first.ID, "games", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("not_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, alice.ID, models.CategoryDirectionExpense)

		_, err := svc.UpdateCategory(bob.ID, category.ID, "Stolen", "", "")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("unused_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryDirectionExpense)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, category.ID))

		_, err := svc.GetCategoryByID(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("in_use_by_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryDirectionExpense)
		testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionDirectionExpense, testutil.Amount(t, "10.00"))

		err := svc.DeleteCategory(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("in_use_by_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryDirectionExpense)
		testutil.CreateTestBudget(t, db, user.ID, category.ID, testutil.Amount(t, "100.00"))

		err := svc.DeleteCategory(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("default_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		def := testutil.CreateTestDefaultCategory(t, db, models.CategoryDirectionIncome)

		err := svc.DeleteCategory(user.ID, def.ID)
		testutil.AssertAppError(t, err, "DEFAULT_CATEGORY")
	})
}
