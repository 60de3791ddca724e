package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
)

// Budget status thresholds, in percent. Fixed design constants.
const (
	warningThreshold = 80.0
	dangerThreshold  = 100.0
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	familyService   FamilyServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, categoryService CategoryServicer, familyService FamilyServicer) BudgetServicer {
	return &budgetService{
		db:              db,
		categoryService: categoryService,
		familyService:   familyService,
	}
}

// budgetWindow derives the budget's [start, end] window. The end is always
// computed, never caller-supplied: the last instant of the start's month
// for monthly budgets, of the start's year for yearly ones.
func budgetWindow(period models.BudgetPeriod, start time.Time) (time.Time, time.Time) {
	switch period {
	case models.BudgetPeriodYearly:
		end := time.Date(start.Year(), 12, 31, 23, 59, 59, 999999999, start.Location())
		return start, end
	default: // monthly
		firstOfNext := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()).AddDate(0, 1, 0)
		end := firstOfNext.Add(-time.Nanosecond)
		return start, end
	}
}

// CreateBudget creates a budget for a category. The overlap check and the
// insert run inside one database transaction so concurrent requests cannot
// both pass the check.
func (s *budgetService) CreateBudget(
	userID, categoryID string,
	familyID *string,
	amount decimal.Decimal,
	period models.BudgetPeriod,
	startDate time.Time,
) (*models.Budget, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most two decimal places")
	}
	if startDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}

	if _, err := s.categoryService.GetCategoryByID(userID, categoryID); err != nil {
		return nil, err
	}
	if familyID != nil {
		if _, err := s.familyService.RequirePermission(*familyID, userID, models.PermissionManageBudgets); err != nil {
			return nil, err
		}
	}

	start, end := budgetWindow(period, startDate)

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		FamilyID:   familyID,
		Amount:     amount,
		Period:     period,
		StartDate:  start,
		EndDate:    end,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, txErr := s.findOverlapping(tx, budget)
		if txErr != nil {
			return txErr
		}
		if existing != nil {
			return apperrors.WithMessage(apperrors.ErrBudgetOverlap,
				fmt.Sprintf("A budget for this category already covers %s to %s",
					existing.StartDate.Format("2006-01-02"), existing.EndDate.Format("2006-01-02")))
		}
		if txErr := tx.Create(budget).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Category").First(budget, "id = ?", budget.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// findOverlapping looks for a budget in the same (category, user, family,
// period) group whose window intersects the proposed one.
func (s *budgetService) findOverlapping(tx *gorm.DB, proposed *models.Budget) (*models.Budget, error) {
	q := tx.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND period = ?", proposed.UserID, proposed.CategoryID, proposed.Period).
		Where("start_date <= ? AND end_date >= ?", proposed.EndDate, proposed.StartDate)
	if proposed.FamilyID != nil {
		q = q.Where("family_id = ?", *proposed.FamilyID)
	} else {
		q = q.Where("family_id IS NULL")
	}
	if proposed.ID != "" {
		q = q.Where("id <> ?", proposed.ID)
	}

	var existing models.Budget
	if err := q.First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &existing, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(
	userID string,
	page pagination.PageRequest,
	period *models.BudgetPeriod,
	familyID *string,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{})
	if familyID != nil {
		if _, err := s.familyService.RequirePermission(*familyID, userID, models.PermissionView); err != nil {
			return nil, err
		}
		base = base.Where("family_id = ?", *familyID)
	} else {
		base = base.Where("user_id = ?", userID)
	}
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("start_date DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget owned by the user or belonging to a family
// the user may view.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ?", budgetID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if budget.UserID != userID {
		if budget.FamilyID == nil {
			return nil, apperrors.ErrBudgetNotFound
		}
		if _, err := s.familyService.RequirePermission(*budget.FamilyID, userID, models.PermissionView); err != nil {
			return nil, apperrors.ErrBudgetNotFound
		}
	}

	return &budget, nil
}

// UpdateBudget changes a budget's amount. Window and category are fixed at
// creation; a different window is a new budget. Updating a family budget
// owned by another member requires MANAGE_BUDGETS.
func (s *budgetService) UpdateBudget(userID, budgetID string, amount *decimal.Decimal) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if budget.UserID != userID {
		if _, err := s.familyService.RequirePermission(*budget.FamilyID, userID, models.PermissionManageBudgets); err != nil {
			return nil, err
		}
	}

	if amount != nil {
		if !amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		if !amount.Equal(amount.Round(2)) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most two decimal places")
		}
		if err := s.db.Model(budget).Update("amount", *amount).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if budget.UserID != userID {
		if _, err := s.familyService.RequirePermission(*budget.FamilyID, userID, models.PermissionManageBudgets); err != nil {
			return err
		}
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress computes consumption for the budget's window. Derived
// on every read; the matching transactions are the single source of truth.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.progressFor(budget)
}

func (s *budgetService) progressFor(budget *models.Budget) (*BudgetProgress, error) {
	q := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("category_id = ? AND direction = ? AND date BETWEEN ? AND ?",
			budget.CategoryID, models.TransactionDirectionExpense, budget.StartDate, budget.EndDate)
	if budget.FamilyID != nil {
		// Family budgets track every member's spending in the family scope
		q = q.Where("family_id = ?", *budget.FamilyID)
	} else {
		q = q.Where("user_id = ? AND family_id IS NULL", budget.UserID)
	}

	var spent decimal.Decimal
	if err := q.Scan(&spent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	remaining := budget.Amount.Sub(spent)
	var percentage float64
	if budget.Amount.IsPositive() {
		percentage, _ = spent.Div(budget.Amount).Mul(decimal.NewFromInt(100)).Float64()
	}

	status := BudgetStatusGood
	switch {
	case percentage >= dangerThreshold:
		status = BudgetStatusDanger
	case percentage >= warningThreshold:
		status = BudgetStatusWarning
	}

	return &BudgetProgress{
		BudgetID:   budget.ID,
		Budgeted:   budget.Amount,
		Spent:      spent,
		Remaining:  remaining,
		Percentage: percentage,
		Status:     status,
	}, nil
}

// GetBudgetSummary rolls up progress across all budgets owned by the user.
func (s *budgetService) GetBudgetSummary(userID string) (*BudgetSummary, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Order("start_date DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &BudgetSummary{
		TotalBudgeted: decimal.Zero,
		TotalSpent:    decimal.Zero,
		Budgets:       make([]BudgetProgress, 0, len(budgets)),
	}
	for i := range budgets {
		progress, err := s.progressFor(&budgets[i])
		if err != nil {
			return nil, err
		}
		summary.TotalBudgeted = summary.TotalBudgeted.Add(budgets[i].Amount)
		summary.TotalSpent = summary.TotalSpent.Add(progress.Spent)
		summary.Budgets = append(summary.Budgets, *progress)
	}
	return summary, nil
}
