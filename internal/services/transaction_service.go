package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	familyService   FamilyServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, categoryService CategoryServicer, familyService FamilyServicer) TransactionServicer {
	return &transactionService{
		db:              db,
		categoryService: categoryService,
		familyService:   familyService,
	}
}

// validateAmount rejects negative amounts and amounts with more than two
// decimal places.
func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most two decimal places")
	}
	return nil
}

// CreateTransaction creates a new transaction. Family-scoped transactions
// require the ADD_TRANSACTIONS permission.
func (s *transactionService) CreateTransaction(
	userID, categoryID string,
	familyID *string,
	direction models.TransactionDirection,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if categoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}

	// Default date to now if not provided
	if date.IsZero() {
		date = time.Now()
	}

	// Referenced category must be visible to the caller
	if _, err := s.categoryService.GetCategoryByID(userID, categoryID); err != nil {
		return nil, err
	}

	if familyID != nil {
		if _, err := s.familyService.RequirePermission(*familyID, userID, models.PermissionAddTransactions); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		FamilyID:    familyID,
		Direction:   direction,
		Amount:      amount,
		Description: description,
		Date:        date,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Preload("Category").First(transaction, "id = ?", transaction.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first. Filtering by family requires VIEW on that
// family and widens the result to all of the family's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{})
	if filter.FamilyID != nil {
		if _, err := s.familyService.RequirePermission(*filter.FamilyID, userID, models.PermissionView); err != nil {
			return nil, err
		}
		base = base.Where("family_id = ?", *filter.FamilyID)
	} else {
		base = base.Where("user_id = ?", userID)
	}
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Direction != nil {
		q = q.Where("direction = ?", *f.Direction)
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", f.CategoryIDs)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.Search != "" {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	return q
}

// GetTransactionByID retrieves a transaction owned by the user or belonging
// to a family the user may view.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if transaction.UserID != userID {
		if transaction.FamilyID == nil {
			return nil, apperrors.ErrTransactionNotFound
		}
		if _, err := s.familyService.RequirePermission(*transaction.FamilyID, userID, models.PermissionView); err != nil {
			// Visibility failures are indistinguishable from absence
			return nil, apperrors.ErrTransactionNotFound
		}
	}

	return &transaction, nil
}

// UpdateTransaction updates fields of an existing transaction. Editing a
// family transaction owned by another member requires EDIT_TRANSACTIONS.
func (s *transactionService) UpdateTransaction(
	userID, transactionID string,
	categoryID *string,
	amount *decimal.Decimal,
	description *string,
	date *time.Time,
) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.UserID != userID {
		if _, err := s.familyService.RequirePermission(*transaction.FamilyID, userID, models.PermissionEditTransactions); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if categoryID != nil {
		if _, err := s.categoryService.GetCategoryByID(transaction.UserID, *categoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *categoryID
	}
	if amount != nil {
		if err := validateAmount(*amount); err != nil {
			return nil, err
		}
		updates["amount"] = *amount
	}
	if description != nil {
		updates["description"] = *description
	}
	if date != nil {
		updates["date"] = *date
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction soft-deletes a transaction. Deleting another member's
// family transaction requires DELETE_TRANSACTIONS.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if transaction.UserID != userID {
		if _, err := s.familyService.RequirePermission(*transaction.FamilyID, userID, models.PermissionDeleteTransactions); err != nil {
			return err
		}
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
