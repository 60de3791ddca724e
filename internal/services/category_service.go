package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// defaultCategories are seeded once at startup. They have no owner and are
// visible to every user.
var defaultCategories = []models.Category{
	{Name: "Salary", Direction: models.CategoryDirectionIncome, Color: "#22C55E", Icon: "banknote"},
	{Name: "Other Income", Direction: models.CategoryDirectionIncome, Color: "#10B981", Icon: "coins"},
	{Name: "Groceries", Direction: models.CategoryDirectionExpense, Color: "#F59E0B", Icon: "shopping-cart"},
	{Name: "Rent", Direction: models.CategoryDirectionExpense, Color: "#EF4444", Icon: "home"},
	{Name: "Utilities", Direction: models.CategoryDirectionExpense, Color: "#3B82F6", Icon: "zap"},
	{Name: "Transport", Direction: models.CategoryDirectionExpense, Color: "#8B5CF6", Icon: "car"},
	{Name: "Dining Out", Direction: models.CategoryDirectionExpense, Color: "#EC4899", Icon: "utensils"},
	{Name: "Entertainment", Direction: models.CategoryDirectionExpense, Color: "#06B6D4", Icon: "film"},
	{Name: "Health", Direction: models.CategoryDirectionExpense, Color: "#14B8A6", Icon: "heart-pulse"},
	{Name: "Other", Direction: models.CategoryDirectionExpense, Color: "#6B7280", Icon: "tag"},
}

// SeedDefaults inserts the default categories once. Safe to call on every
// startup; existing defaults are left untouched.
func (s *categoryService) SeedDefaults() error {
	for _, def := range defaultCategories {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("user_id IS NULL AND LOWER(name) = LOWER(?) AND direction = ?", def.Name, def.Direction).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			continue
		}

		category := def
		category.IsDefault = true
		if err := s.db.Create(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// CreateCategory creates a new user-owned category.
func (s *categoryService) CreateCategory(
	userID, name string,
	direction models.CategoryDirection,
	color, icon string,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	// (name, owner, direction) must be unique, case-insensitively. Defaults
	// form an independent namespace, so a user may shadow a default name.
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?) AND direction = ?", userID, name, direction).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		UserID:    &userID,
		Name:      name,
		Direction: direction,
		Color:     color,
		Icon:      icon,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetVisibleCategories returns the user's own categories plus system
// defaults, optionally filtered by direction.
func (s *categoryService) GetVisibleCategories(
	userID string,
	direction *models.CategoryDirection,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ? OR user_id IS NULL", userID)
	if direction != nil {
		base = base.Where("direction = ?", *direction)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category visible to the user (owned or default).
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND (user_id = ? OR user_id IS NULL)", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates a user-owned category. Defaults are immutable.
func (s *categoryService) UpdateCategory(userID, categoryID, name, color, icon string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID == nil {
		return nil, apperrors.ErrDefaultCategory
	}

	if name != "" && !strings.EqualFold(name, category.Name) {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("user_id = ? AND LOWER(name) = LOWER(?) AND direction = ? AND id <> ?",
				userID, name, category.Direction, categoryID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateCategory
		}
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if color != "" {
		updates["color"] = color
	}
	if icon != "" {
		updates["icon"] = icon
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory soft-deletes a user-owned category. Categories still
// referenced by transactions or budgets cannot be removed.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}
	if category.UserID == nil {
		return apperrors.ErrDefaultCategory
	}

	var txCount int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&txCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var budgetCount int64
	if err := s.db.Model(&models.Budget{}).Where("category_id = ?", categoryID).Count(&budgetCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txCount > 0 || budgetCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

