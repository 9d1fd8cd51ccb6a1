package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/aggregation"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// recentLimit is how many merged ledger entries the summary returns.
const recentLimit = 5

// DashboardHandler serves aggregated views of a user's ledger.
type DashboardHandler struct {
	budgetService services.BudgetServicer
	userService   services.UserServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(budgetService services.BudgetServicer, userService services.UserServicer) *DashboardHandler {
	return &DashboardHandler{budgetService: budgetService, userService: userService}
}

// SummaryQuery holds the window selector for the dashboard summary.
type SummaryQuery struct {
	Range string `form:"range" binding:"omitempty,oneof=week month year previous_year custom"`
	Start string `form:"start"`
	End   string `form:"end"`
}

// parseDate accepts either a date-only or an RFC 3339 value.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Summary returns the bucketed expense/income series for the selected
// window, the category breakdown, the most recent entries across both
// ledgers, and the user's budget totals.
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query SummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if query.Range == "" {
		query.Range = string(aggregation.WindowMonth)
	}

	var start, end time.Time
	window := aggregation.Window(query.Range)
	if window == aggregation.WindowCustom {
		if query.Start == "" || query.End == "" {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "custom range requires start and end dates"))
			return
		}
		if start, err = parseDate(query.Start); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid start date"))
			return
		}
		if end, err = parseDate(query.End); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid end date"))
			return
		}
	}

	period, err := window.Resolve(time.Now(), start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.budgetService.AllExpenses(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	incomes, err := h.budgetService.AllIncomes(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expensePoints := aggregation.ExpensePoints(expenses, period)
	incomePoints := aggregation.IncomePoints(incomes, period)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"range":               query.Range,
		"expense_series":      aggregation.Series(expensePoints, window, period),
		"income_series":       aggregation.Series(incomePoints, window, period),
		"category_breakdown":  aggregation.CategoryBreakdown(expenses),
		"recent_transactions": aggregation.Recent(expenses, incomes, recentLimit),
		"window_expense_sum":  aggregation.Sum(expensePoints),
		"window_income_sum":   aggregation.Sum(incomePoints),
		"total_budget":        user.TotalBudget,
		"remaining_budget":    user.RemainingBudget,
	})
}
