// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("expense_category", validateExpenseCategory)
	}
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "food", "housing", "transport", "entertainment", "bills", "other":
		return true
	}
	return false
}
