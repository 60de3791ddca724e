// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tally/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("category_direction", validateCategoryDirection)
		_ = v.RegisterValidation("transaction_direction", validateTransactionDirection)
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
		_ = v.RegisterValidation("item_priority", validateItemPriority)
		_ = v.RegisterValidation("family_role", validateFamilyRole)
		_ = v.RegisterValidation("family_permission", validateFamilyPermission)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateCategoryDirection(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateTransactionDirection(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "yearly":
		return true
	}
	return false
}

func validateItemPriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "must-have", "nice-to-have", "optional":
		return true
	}
	return false
}

func validateFamilyRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "member", "viewer":
		return true
	}
	return false
}

func validateFamilyPermission(fl validator.FieldLevel) bool {
	return models.IsValidPermission(fl.Field().String())
}
