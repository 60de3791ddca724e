package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// shoppingListService handles shopping-list business logic.
type shoppingListService struct {
	db                 *gorm.DB
	familyService      FamilyServicer
	transactionService TransactionServicer
	userService        UserServicer
}

// NewShoppingListService creates a new ShoppingListServicer.
func NewShoppingListService(
	db *gorm.DB,
	familyService FamilyServicer,
	transactionService TransactionServicer,
	userService UserServicer,
) ShoppingListServicer {
	return &shoppingListService{
		db:                 db,
		familyService:      familyService,
		transactionService: transactionService,
		userService:        userService,
	}
}

// CreateList creates a shopping list. Attaching it to a family requires
// MANAGE_SHOPPING_LISTS in that family.
func (s *shoppingListService) CreateList(
	userID, name, description string,
	familyID *string,
	sharedWith []string,
) (*models.ShoppingList, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "list name is required")
	}
	if familyID != nil {
		if _, err := s.familyService.RequirePermission(*familyID, userID, models.PermissionManageShoppingLists); err != nil {
			return nil, err
		}
	}

	list := &models.ShoppingList{
		UserID:      userID,
		FamilyID:    familyID,
		Name:        name,
		Description: description,
		SharedWith:  normalizeEmails(sharedWith),
	}

	if err := s.db.Create(list).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return list, nil
}

func normalizeEmails(emails []string) models.StringList {
	out := make(models.StringList, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !out.Contains(e) {
			out = append(out, e)
		}
	}
	return out
}

// GetVisibleLists returns lists the user owns, lists shared with the user's
// email, and lists attached to families the user belongs to.
func (s *shoppingListService) GetVisibleLists(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ShoppingList], error) {
	page.Defaults()

	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var familyIDs []string
	if err := s.db.Model(&models.FamilyMember{}).
		Where("user_id = ?", userID).
		Pluck("family_id", &familyIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	base := s.db.Model(&models.ShoppingList{})
	// shared_with is a JSON array in a text column; substring match on the
	// quoted email is sufficient for membership
	cond := s.db.Where("user_id = ?", userID).
		Or("shared_with LIKE ?", `%"`+user.Email+`"%`)
	if len(familyIDs) > 0 {
		cond = cond.Or("family_id IN ?", familyIDs)
	}
	base = base.Where(cond)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var lists []models.ShoppingList
	if err := base.Preload("Items").Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&lists).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(lists, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetListByID returns a list with its items if the user may see it.
func (s *shoppingListService) GetListByID(userID, listID string) (*models.ShoppingList, error) {
	var list models.ShoppingList
	if err := s.db.Preload("Items").Where("id = ?", listID).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShoppingListNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.canAccessList(userID, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// canAccessList checks owner, share list, and family visibility. Failures
// report the list as absent rather than forbidden.
func (s *shoppingListService) canAccessList(userID string, list *models.ShoppingList) error {
	if list.UserID == userID {
		return nil
	}
	if user, err := s.userService.GetUserByID(userID); err == nil && list.SharedWith.Contains(user.Email) {
		return nil
	}
	if list.FamilyID != nil {
		if _, err := s.familyService.RequirePermission(*list.FamilyID, userID, models.PermissionView); err == nil {
			return nil
		}
	}
	return apperrors.ErrShoppingListNotFound
}

// canManageList checks write access: the owner, or a family member holding
// MANAGE_SHOPPING_LISTS for family lists.
func (s *shoppingListService) canManageList(userID string, list *models.ShoppingList) error {
	if list.UserID == userID {
		return nil
	}
	if list.FamilyID != nil {
		if _, err := s.familyService.RequirePermission(*list.FamilyID, userID, models.PermissionManageShoppingLists); err != nil {
			return err
		}
		return nil
	}
	return apperrors.ErrShoppingListNotFound
}

// UpdateList updates list fields.
func (s *shoppingListService) UpdateList(userID, listID, name, description string, sharedWith []string) (*models.ShoppingList, error) {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return nil, err
	}
	if err := s.canManageList(userID, list); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if sharedWith != nil {
		updates["shared_with"] = normalizeEmails(sharedWith)
	}

	if len(updates) > 0 {
		if err := s.db.Model(list).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return list, nil
}

// DeleteList soft-deletes a list and its items.
func (s *shoppingListService) DeleteList(userID, listID string) error {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return err
	}
	if err := s.canManageList(userID, list); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shopping_list_id = ?", listID).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(list).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// AddItem appends an item to the list.
func (s *shoppingListService) AddItem(
	userID, listID, name, quantity, note string,
	priority models.ItemPriority,
) (*models.ShoppingListItem, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item name is required")
	}

	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return nil, err
	}
	if err := s.canManageList(userID, list); err != nil {
		return nil, err
	}

	if priority == "" {
		priority = models.ItemPriorityOptional
	}

	item := &models.ShoppingListItem{
		ShoppingListID: list.ID,
		Name:           name,
		Quantity:       quantity,
		Note:           note,
		Priority:       priority,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// getItem returns the item if it belongs to the given list.
func (s *shoppingListService) getItem(listID, itemID string) (*models.ShoppingListItem, error) {
	var item models.ShoppingListItem
	if err := s.db.Where("id = ? AND shopping_list_id = ?", itemID, listID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// UpdateItem updates item fields.
func (s *shoppingListService) UpdateItem(
	userID, listID, itemID string,
	name, quantity, note *string,
	priority *models.ItemPriority,
) (*models.ShoppingListItem, error) {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return nil, err
	}
	if err := s.canManageList(userID, list); err != nil {
		return nil, err
	}

	item, err := s.getItem(listID, itemID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		if *name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item name must not be empty")
		}
		updates["name"] = *name
	}
	if quantity != nil {
		updates["quantity"] = *quantity
	}
	if note != nil {
		updates["note"] = *note
	}
	if priority != nil {
		updates["priority"] = *priority
	}

	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return item, nil
}

// RemoveItem deletes an item from the list.
func (s *shoppingListService) RemoveItem(userID, listID, itemID string) error {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return err
	}
	if err := s.canManageList(userID, list); err != nil {
		return err
	}

	item, err := s.getItem(listID, itemID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MarkItemPurchased flags an item as purchased. When opts.CreateTransaction
// is set, exactly one expense transaction is created and linked back to the
// item; the caller supplies the category and amount.
func (s *shoppingListService) MarkItemPurchased(
	userID, listID, itemID string,
	opts PurchaseOptions,
) (*models.ShoppingListItem, error) {
	list, err := s.GetListByID(userID, listID)
	if err != nil {
		return nil, err
	}
	if err := s.canManageList(userID, list); err != nil {
		return nil, err
	}

	item, err := s.getItem(listID, itemID)
	if err != nil {
		return nil, err
	}
	if item.IsPurchased {
		return nil, apperrors.ErrItemAlreadyPurchased
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_purchased": true,
		"purchased_at": now,
	}

	if opts.CreateTransaction {
		if opts.CategoryID == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required to create a transaction")
		}
		transaction, err := s.transactionService.CreateTransaction(
			userID, opts.CategoryID, list.FamilyID,
			models.TransactionDirectionExpense, opts.Amount,
			item.Name, now,
		)
		if err != nil {
			return nil, err
		}
		updates["transaction_id"] = transaction.ID
	}

	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.getItem(listID, itemID)
}
