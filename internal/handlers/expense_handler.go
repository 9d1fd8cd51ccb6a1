package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// ExpenseHandler handles expense and income ledger requests.
type ExpenseHandler struct {
	budgetService services.BudgetServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(budgetService services.BudgetServicer) *ExpenseHandler {
	return &ExpenseHandler{budgetService: budgetService}
}

// ExpenseRequest represents the payload for creating or replacing an expense.
type ExpenseRequest struct {
	Title    string                 `json:"title" binding:"required,max=200"`
	Amount   float64                `json:"amount" binding:"required,gt=0"`
	Category models.ExpenseCategory `json:"category" binding:"required,expense_category"`
	Date     time.Time              `json:"date" binding:"required"`
}

// IncomeRequest represents the payload for recording an income.
type IncomeRequest struct {
	Title  string    `json:"title" binding:"required,max=200"`
	Amount float64   `json:"amount" binding:"required,gt=0"`
	Date   time.Time `json:"date" binding:"required"`
}

// AddFundsRequest represents the payload for adding money directly to the budget.
type AddFundsRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// GetExpenses lists the authenticated user's expenses, newest first.
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetUserExpenses(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        result.Data,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_items": result.TotalItems,
		"total_pages": result.TotalPages,
	})
}

// CreateExpenses records a new expense and debits the remaining budget.
func (h *ExpenseHandler) CreateExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields are required"))
		return
	}

	expense, user, err := h.budgetService.AddExpense(userID, req.Title, req.Amount, req.Category, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"message":          "Created expense and updated remaining budget",
		"data":             expense,
		"total_budget":     user.TotalBudget,
		"remaining_budget": user.RemainingBudget,
	})
}

// UpdateExpenses replaces an expense's fields and adjusts the remaining
// budget by the amount delta.
func (h *ExpenseHandler) UpdateExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields are required"))
		return
	}

	expense, user, err := h.budgetService.UpdateExpense(userID, expenseID, req.Title, req.Amount, req.Category, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Updated expense " + expenseID,
		"data":             expense,
		"total_budget":     user.TotalBudget,
		"remaining_budget": user.RemainingBudget,
	})
}

// DeleteExpenses removes an expense and credits its amount back.
func (h *ExpenseHandler) DeleteExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.budgetService.DeleteExpense(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Deleted expense " + expenseID,
		"total_budget":     user.TotalBudget,
		"remaining_budget": user.RemainingBudget,
	})
}

// AddIncome records an income and raises both budget fields.
func (h *ExpenseHandler) AddIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be a valid number"))
		return
	}

	income, user, err := h.budgetService.AddIncome(userID, req.Title, req.Amount, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Income saved successfully",
		"data":    income,
		"user":    userProjection(user),
	})
}

// GetIncomes lists the authenticated user's incomes, newest first.
func (h *ExpenseHandler) GetIncomes(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetUserIncomes(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        result.Data,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_items": result.TotalItems,
		"total_pages": result.TotalPages,
	})
}

// AddMoreMoney adds directly to the budget without a ledger record.
func (h *ExpenseHandler) AddMoreMoney(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please provide a valid amount"))
		return
	}

	user, err := h.budgetService.AddFunds(userID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Money added successfully",
		"total_budget":     user.TotalBudget,
		"remaining_budget": user.RemainingBudget,
	})
}
