// Package errors provides custom error types for the Tally API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name and direction already exists", StatusCode: http.StatusConflict}
	ErrDefaultCategory   = &AppError{Code: "DEFAULT_CATEGORY", Message: "Default categories cannot be modified", StatusCode: http.StatusForbidden}
	ErrCategoryInUse     = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions or budgets", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrBudgetOverlap  = &AppError{Code: "BUDGET_OVERLAP", Message: "A budget for this category already covers an overlapping period", StatusCode: http.StatusConflict}
)

// Family errors. A family lookup by a non-member reports FAMILY_NOT_FOUND
// rather than FORBIDDEN so that family existence is never leaked.
var (
	ErrFamilyNotFound  = &AppError{Code: "FAMILY_NOT_FOUND", Message: "Family not found", StatusCode: http.StatusNotFound}
	ErrMemberNotFound  = &AppError{Code: "MEMBER_NOT_FOUND", Message: "Family member not found", StatusCode: http.StatusNotFound}
	ErrDuplicateMember = &AppError{Code: "DUPLICATE_MEMBER", Message: "User is already a member of this family", StatusCode: http.StatusConflict}
	ErrLastAdmin       = &AppError{Code: "LAST_ADMIN", Message: "A family must retain at least one admin", StatusCode: http.StatusConflict}
)

// Shopping list errors.
var (
	ErrShoppingListNotFound = &AppError{Code: "SHOPPING_LIST_NOT_FOUND", Message: "Shopping list not found", StatusCode: http.StatusNotFound}
	ErrItemNotFound         = &AppError{Code: "ITEM_NOT_FOUND", Message: "Shopping list item not found", StatusCode: http.StatusNotFound}
	ErrItemAlreadyPurchased = &AppError{Code: "ITEM_ALREADY_PURCHASED", Message: "Item is already marked as purchased", StatusCode: http.StatusConflict}
)
