package services

import (
	"testing"

	"gorm.io/gorm"

	"tally/internal/models"
	"tally/internal/testutil"
)

func newShoppingListService(db *gorm.DB) ShoppingListServicer {
	userService := NewUserService(db)
	familyService := NewFamilyService(db, userService)
	transactionService := NewTransactionService(db, NewCategoryService(db), familyService)
	return NewShoppingListService(db, familyService, transactionService, userService)
}

func TestCreateList(t *testing.T) {
	t.Run("personal_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)

		list, err := service.CreateList(user.ID, "Groceries", "weekly run", nil, nil)
		testutil.AssertNoError(t, err)

		if list.Name != "Groceries" {
			t.Errorf("expected name Groceries, got %s", list.Name)
		}
		if list.FamilyID != nil {
			t.Error("expected personal list to have no family")
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)

		_, err := service.CreateList(user.ID, "", "", nil, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("shared_emails_normalized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)

		list, err := service.CreateList(user.ID, "Groceries", "", nil,
			[]string{" Ana@Example.com ", "ana@example.com", ""})
		testutil.AssertNoError(t, err)

		if len(list.SharedWith) != 1 {
			t.Fatalf("expected 1 shared email, got %d", len(list.SharedWith))
		}
		if list.SharedWith[0] != "ana@example.com" {
			t.Errorf("expected lowercased trimmed email, got %q", list.SharedWith[0])
		}
	})

	t.Run("family_list_requires_manage_permission", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		admin := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, admin.ID)
		testutil.AddTestMember(t, db, family.ID, member.ID, models.FamilyRoleMember,
			[]string{models.PermissionView})

		_, err := service.CreateList(member.ID, "Family Groceries", "", &family.ID, nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("family_member_with_permission", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		admin := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, admin.ID)
		testutil.AddTestMember(t, db, family.ID, member.ID, models.FamilyRoleMember,
			[]string{models.PermissionView, models.PermissionManageShoppingLists})

		list, err := service.CreateList(member.ID, "Family Groceries", "", &family.ID, nil)
		testutil.AssertNoError(t, err)

		if list.FamilyID == nil || *list.FamilyID != family.ID {
			t.Error("expected list to be attached to the family")
		}
	})
}

func TestGetVisibleLists(t *testing.T) {
	t.Run("own_lists_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		mine := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.CreateTestShoppingList(t, db, other.ID)

		result, err := service.GetVisibleLists(user.ID, pageRequest(1, 10))
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Fatalf("expected 1 visible list, got %d", len(result.Data))
		}
		if result.Data[0].ID != mine.ID {
			t.Error("expected own list to be returned")
		}
	})

	t.Run("shared_by_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		owner := testutil.CreateTestUser(t, db)
		guest := testutil.CreateTestUserWithEmail(t, db, "guest@example.com")

		shared, err := service.CreateList(owner.ID, "Party Supplies", "", nil,
			[]string{"guest@example.com"})
		testutil.AssertNoError(t, err)
		testutil.CreateTestShoppingList(t, db, owner.ID)

		result, err := service.GetVisibleLists(guest.ID, pageRequest(1, 10))
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Fatalf("expected 1 visible list, got %d", len(result.Data))
		}
		if result.Data[0].ID != shared.ID {
			t.Error("expected the shared list to be returned")
		}
	})

	t.Run("family_lists_visible_to_members", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		admin := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, admin.ID)
		testutil.AddTestMember(t, db, family.ID, member.ID, models.FamilyRoleMember,
			[]string{models.PermissionView})

		familyList, err := service.CreateList(admin.ID, "Household", "", &family.ID, nil)
		testutil.AssertNoError(t, err)

		result, err := service.GetVisibleLists(member.ID, pageRequest(1, 10))
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Fatalf("expected 1 visible list, got %d", len(result.Data))
		}
		if result.Data[0].ID != familyList.ID {
			t.Error("expected the family list to be returned")
		}
	})

	t.Run("items_preloaded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.AddTestItem(t, db, list.ID)
		testutil.AddTestItem(t, db, list.ID)

		result, err := service.GetVisibleLists(user.ID, pageRequest(1, 10))
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Fatalf("expected 1 list, got %d", len(result.Data))
		}
		if len(result.Data[0].Items) != 2 {
			t.Errorf("expected 2 items preloaded, got %d", len(result.Data[0].Items))
		}
	})
}

func TestGetListByID(t *testing.T) {
	t.Run("owner_sees_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.AddTestItem(t, db, list.ID)

		got, err := service.GetListByID(user.ID, list.ID)
		testutil.AssertNoError(t, err)

		if got.ID != list.ID {
			t.Error("expected the requested list")
		}
		if len(got.Items) != 1 {
			t.Errorf("expected 1 item, got %d", len(got.Items))
		}
	})

	t.Run("stranger_gets_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, owner.ID)

		// Inaccessible lists read as absent, never forbidden.
		_, err := service.GetListByID(stranger.ID, list.ID)
		testutil.AssertAppError(t, err, "SHOPPING_LIST_NOT_FOUND")
	})

	t.Run("shared_user_sees_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		owner := testutil.CreateTestUser(t, db)
		guest := testutil.CreateTestUserWithEmail(t, db, "shared-reader@example.com")
		list, err := service.CreateList(owner.ID, "Picnic", "", nil,
			[]string{"shared-reader@example.com"})
		testutil.AssertNoError(t, err)

		got, err := service.GetListByID(guest.ID, list.ID)
		testutil.AssertNoError(t, err)

		if got.ID != list.ID {
			t.Error("expected the shared list")
		}
	})
}

func TestUpdateList(t *testing.T) {
	t.Run("owner_updates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)

		updated, err := service.UpdateList(user.ID, list.ID, "Renamed", "new note", nil)
		testutil.AssertNoError(t, err)

		if updated.Name != "Renamed" {
			t.Errorf("expected name Renamed, got %s", updated.Name)
		}
		if updated.Description != "new note" {
			t.Errorf("expected description to change, got %q", updated.Description)
		}
	})

	t.Run("shared_user_cannot_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		owner := testutil.CreateTestUser(t, db)
		guest := testutil.CreateTestUserWithEmail(t, db, "read-only@example.com")
		list, err := service.CreateList(owner.ID, "Picnic", "", nil,
			[]string{"read-only@example.com"})
		testutil.AssertNoError(t, err)

		_, err = service.UpdateList(guest.ID, list.ID, "Hijacked", "", nil)
		testutil.AssertAppError(t, err, "SHOPPING_LIST_NOT_FOUND")
	})

	t.Run("family_member_needs_manage_permission", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		admin := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		family := testutil.CreateTestFamily(t, db, admin.ID)
		testutil.AddTestMember(t, db, family.ID, member.ID, models.FamilyRoleMember,
			[]string{models.PermissionView})

		list, err := service.CreateList(admin.ID, "Household", "", &family.ID, nil)
		testutil.AssertNoError(t, err)

		_, err = service.UpdateList(member.ID, list.ID, "Renamed", "", nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestDeleteList(t *testing.T) {
	t.Run("owner_deletes_with_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.AddTestItem(t, db, list.ID)

		err := service.DeleteList(user.ID, list.ID)
		testutil.AssertNoError(t, err)

		_, err = service.GetListByID(user.ID, list.ID)
		testutil.AssertAppError(t, err, "SHOPPING_LIST_NOT_FOUND")

		var itemCount int64
		db.Model(&models.ShoppingListItem{}).Where("shopping_list_id = ?", list.ID).Count(&itemCount)
		if itemCount != 0 {
			t.Errorf("expected items to be deleted with the list, found %d", itemCount)
		}
	})

	t.Run("stranger_cannot_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, owner.ID)

		err := service.DeleteList(stranger.ID, list.ID)
		testutil.AssertAppError(t, err, "SHOPPING_LIST_NOT_FOUND")
	})
}

func TestAddItem(t *testing.T) {
	t.Run("valid_item", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)

		item, err := service.AddItem(user.ID, list.ID, "Milk", "2L", "lactose free", models.ItemPriorityMustHave)
		testutil.AssertNoError(t, err)

		if item.Name != "Milk" {
			t.Errorf("expected name Milk, got %s", item.Name)
		}
		if item.Priority != models.ItemPriorityMustHave {
			t.Errorf("expected must-have priority, got %s", item.Priority)
		}
		if item.IsPurchased {
			t.Error("expected new item to be unpurchased")
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)

		_, err := service.AddItem(user.ID, list.ID, "", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("priority_defaults_to_optional", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)

		item, err := service.AddItem(user.ID, list.ID, "Snacks", "", "", "")
		testutil.AssertNoError(t, err)

		if item.Priority != models.ItemPriorityOptional {
			t.Errorf("expected optional priority, got %s", item.Priority)
		}
	})

	t.Run("inaccessible_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, owner.ID)

		_, err := service.AddItem(stranger.ID, list.ID, "Milk", "", "", "")
		testutil.AssertAppError(t, err, "SHOPPING_LIST_NOT_FOUND")
	})
}

func TestUpdateItem(t *testing.T) {
	t.Run("owner_updates_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		item := testutil.AddTestItem(t, db, list.ID)

		name := "Oat Milk"
		priority := models.ItemPriorityMustHave
		updated, err := service.UpdateItem(user.ID, list.ID, item.ID, &name, nil, nil, &priority)
		testutil.AssertNoError(t, err)

		if updated.Name != "Oat Milk" {
			t.Errorf("expected name Oat Milk, got %s", updated.Name)
		}
		if updated.Priority != models.ItemPriorityMustHave {
			t.Errorf("expected must-have priority, got %s", updated.Priority)
		}
	})

	t.Run("empty_name_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		item := testutil.AddTestItem(t, db, list.ID)

		empty := ""
		_, err := service.UpdateItem(user.ID, list.ID, item.ID, &empty, nil, nil, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("item_from_another_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		otherList := testutil.CreateTestShoppingList(t, db, user.ID)
		item := testutil.AddTestItem(t, db, otherList.ID)

		name := "Misfiled"
		_, err := service.UpdateItem(user.ID, list.ID, item.ID, &name, nil, nil, nil)
		testutil.AssertAppError(t, err, "ITEM_NOT_FOUND")
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("owner_removes_item", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		item := testutil.AddTestItem(t, db, list.ID)

		err := service.RemoveItem(user.ID, list.ID, item.ID)
		testutil.AssertNoError(t, err)

		got, err := service.GetListByID(user.ID, list.ID)
		testutil.AssertNoError(t, err)
		if len(got.Items) != 0 {
			t.Errorf("expected no items left, got %d", len(got.Items))
		}
	})

	t.Run("unknown_item", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)

		err := service.RemoveItem(user.ID, list.ID, "0198b3a0-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "ITEM_NOT_FOUND")
	})
}

func TestMarkItemPurchased(t *testing.T) {
	t.Run("purchase_without_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		item := testutil.AddTestItem(t, db, list.ID)

		purchased, err := service.MarkItemPurchased(user.ID, list.ID, item.ID, PurchaseOptions{})
		testutil.AssertNoError(t, err)

		if !purchased.IsPurchased {
			t.Error("expected item to be purchased")
		}
		if purchased.PurchasedAt == nil {
			t.Error("expected purchase timestamp to be set")
		}
		if purchased.TransactionID != nil {
			t.Error("expected no transaction link")
		}
	})

	t.Run("already_purchased", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		item := testutil.AddTestItem(t, db, list.ID)

		_, err := service.MarkItemPurchased(user.ID, list.ID, item.ID, PurchaseOptions{})
		testutil.AssertNoError(t, err)

		_, err = service.MarkItemPurchased(user.ID, list.ID, item.ID, PurchaseOptions{})
		testutil.AssertAppError(t, err, "ITEM_ALREADY_PURCHASED")
	})

	t.Run("purchase_creates_linked_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryDirectionExpense)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		item := testutil.AddTestItem(t, db, list.ID)

		purchased, err := service.MarkItemPurchased(user.ID, list.ID, item.ID, PurchaseOptions{
			CreateTransaction: true,
			CategoryID:        category.ID,
			Amount:            testutil.Amount(t, "12.49"),
		})
		testutil.AssertNoError(t, err)

		if purchased.TransactionID == nil {
			t.Fatal("expected a linked transaction")
		}

		var transaction models.Transaction
		err = db.Where("id = ?", *purchased.TransactionID).First(&transaction).Error
		testutil.AssertNoError(t, err)

		if transaction.Direction != models.TransactionDirectionExpense {
			t.Errorf("expected an expense, got %s", transaction.Direction)
		}
		if !transaction.Amount.Equal(testutil.Amount(t, "12.49")) {
			t.Errorf("expected amount 12.49, got %s", transaction.Amount)
		}
		if transaction.Description != item.Name {
			t.Errorf("expected description %q, got %q", item.Name, transaction.Description)
		}

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected exactly 1 transaction, got %d", count)
		}
	})

	t.Run("transaction_requires_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		user := testutil.CreateTestUser(t, db)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		item := testutil.AddTestItem(t, db, list.ID)

		_, err := service.MarkItemPurchased(user.ID, list.ID, item.ID, PurchaseOptions{
			CreateTransaction: true,
			Amount:            testutil.Amount(t, "5.00"),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		// the failed purchase must not mark the item
		got, err := service.GetListByID(user.ID, list.ID)
		testutil.AssertNoError(t, err)
		if got.Items[0].IsPurchased {
			t.Error("expected item to remain unpurchased")
		}
	})

	t.Run("family_list_transaction_scoped_to_family", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newShoppingListService(db)

		admin := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, admin.ID, models.CategoryDirectionExpense)
		family := testutil.CreateTestFamily(t, db, admin.ID)

		list, err := service.CreateList(admin.ID, "Household", "", &family.ID, nil)
		testutil.AssertNoError(t, err)
		item := testutil.AddTestItem(t, db, list.ID)

		purchased, err := service.MarkItemPurchased(admin.ID, list.ID, item.ID, PurchaseOptions{
			CreateTransaction: true,
			CategoryID:        category.ID,
			Amount:            testutil.Amount(t, "30.00"),
		})
		testutil.AssertNoError(t, err)

		var transaction models.Transaction
		err = db.Where("id = ?", *purchased.TransactionID).First(&transaction).Error
		testutil.AssertNoError(t, err)

		if transaction.FamilyID == nil || *transaction.FamilyID != family.ID {
			t.Error("expected transaction to carry the list's family")
		}
	})
}
