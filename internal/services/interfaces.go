package services

import (
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password, profilePicture string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// BudgetServicer defines the contract for the budget engine: every ledger
// write goes through it so the user's budget fields stay consistent with
// the expense history.
type BudgetServicer interface {
	AddExpense(userID, title string, amount float64, category models.ExpenseCategory, date time.Time) (*models.Expense, *models.User, error)
	GetUserExpenses(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	UpdateExpense(userID, expenseID, title string, amount float64, category models.ExpenseCategory, date time.Time) (*models.Expense, *models.User, error)
	DeleteExpense(userID, expenseID string) (*models.User, error)
	AddIncome(userID, title string, amount float64, date time.Time) (*models.Income, *models.User, error)
	GetUserIncomes(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Income], error)
	AllExpenses(userID string) ([]models.Expense, error)
	AllIncomes(userID string) ([]models.Income, error)
	SetBudget(userID string, totalBudget float64) (*models.User, error)
	AddFunds(userID string, amount float64) (*models.User, error)
}
