package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// budgetService implements the budget engine. Every debit and credit runs
// inside a database transaction, and debits use a conditional UPDATE on
// remaining_budget so two concurrent expense submissions cannot both pass
// the sufficiency check and overdraw the balance.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// validAmount reports whether v is a finite positive number.
func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// AddExpense records a new expense and debits the user's remaining budget.
// The debit and the insert commit together or not at all.
func (s *budgetService) AddExpense(userID, title string, amount float64, category models.ExpenseCategory, date time.Time) (*models.Expense, *models.User, error) {
	if title == "" || category == "" || date.IsZero() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title, amount, category and date are required")
	}
	if !validAmount(amount) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a positive number")
	}

	if _, err := s.getUser(s.db, userID); err != nil {
		return nil, nil, err
	}

	expense := &models.Expense{
		UserID:   userID,
		Title:    title,
		Amount:   amount,
		Category: category,
		Date:     date,
	}

	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.debitRemaining(tx, userID, amount); err != nil {
			return err
		}
		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var txErr error
		user, txErr = s.getUser(tx, userID)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}
	return expense, user, nil
}

// GetUserExpenses returns a paginated list of the user's expenses, newest first.
func (s *budgetService) GetUserExpenses(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateExpense replaces the fields of an existing expense owned by the user
// and adjusts the remaining budget by the difference between the old and new
// amounts. Raising the amount past the remaining budget is rejected.
func (s *budgetService) UpdateExpense(userID, expenseID, title string, amount float64, category models.ExpenseCategory, date time.Time) (*models.Expense, *models.User, error) {
	if title == "" || category == "" || date.IsZero() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title, amount, category and date are required")
	}
	if !validAmount(amount) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a positive number")
	}

	var expense models.Expense
	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrExpenseNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		delta := amount - expense.Amount
		if delta > 0 {
			if err := s.debitRemaining(tx, userID, delta); err != nil {
				return err
			}
		} else if delta < 0 {
			if err := s.creditRemaining(tx, userID, -delta); err != nil {
				return err
			}
		}

		expense.Title = title
		expense.Amount = amount
		expense.Category = category
		expense.Date = date
		if err := tx.Save(&expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var txErr error
		user, txErr = s.getUser(tx, userID)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}
	return &expense, user, nil
}

// DeleteExpense removes an expense owned by the user and credits its amount
// back to the remaining budget.
func (s *budgetService) DeleteExpense(userID, expenseID string) (*models.User, error) {
	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if err := tx.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrExpenseNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Delete(&expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.creditRemaining(tx, userID, expense.Amount); err != nil {
			return err
		}

		var txErr error
		user, txErr = s.getUser(tx, userID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AddIncome records a new income and raises both the total and the remaining
// budget by its amount, keeping the remaining budget equal to the total
// budget minus the expense history.
func (s *budgetService) AddIncome(userID, title string, amount float64, date time.Time) (*models.Income, *models.User, error) {
	if title == "" || date.IsZero() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title, amount and date are required")
	}
	if !validAmount(amount) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a positive number")
	}

	if _, err := s.getUser(s.db, userID); err != nil {
		return nil, nil, err
	}

	income := &models.Income{
		UserID: userID,
		Title:  title,
		Amount: amount,
		Date:   date,
	}

	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(income).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.creditBoth(tx, userID, amount); err != nil {
			return err
		}
		var txErr error
		user, txErr = s.getUser(tx, userID)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}
	return income, user, nil
}

// GetUserIncomes returns a paginated list of the user's incomes, newest first.
func (s *budgetService) GetUserIncomes(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Income], error) {
	page.Defaults()

	base := s.db.Model(&models.Income{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var incomes []models.Income
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(incomes, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// AllExpenses returns every expense for a user, newest first. Used by the
// dashboard aggregation, which needs the full window in memory.
func (s *budgetService) AllExpenses(userID string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// AllIncomes returns every income for a user, newest first.
func (s *budgetService) AllIncomes(userID string) ([]models.Income, error) {
	var incomes []models.Income
	if err := s.db.Where("user_id = ?", userID).Order("date DESC").Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return incomes, nil
}

// SetBudget overwrites the total budget and re-derives the remaining budget
// from the full expense history. This is the authoritative reconciliation
// point: given a fixed expense set it is idempotent.
func (s *budgetService) SetBudget(userID string, totalBudget float64) (*models.User, error) {
	if math.IsInf(totalBudget, 0) || math.IsNaN(totalBudget) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total budget must be a finite number")
	}

	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		u, err := s.getUser(tx, userID)
		if err != nil {
			return err
		}

		var spent float64
		if err := tx.Model(&models.Expense{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&spent).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		u.TotalBudget = totalBudget
		u.RemainingBudget = totalBudget - spent
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"total_budget":     u.TotalBudget,
				"remaining_budget": u.RemainingBudget,
			}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AddFunds adds directly to both budget fields without creating a ledger
// record. Simpler path than AddIncome for topping up spendable money.
func (s *budgetService) AddFunds(userID string, amount float64) (*models.User, error) {
	if !validAmount(amount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a positive number")
	}

	if _, err := s.getUser(s.db, userID); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.creditBoth(tx, userID, amount); err != nil {
			return err
		}
		var txErr error
		user, txErr = s.getUser(tx, userID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// getUser loads a user within the given database handle.
func (s *budgetService) getUser(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// debitRemaining decrements remaining_budget with a sufficiency guard in the
// WHERE clause. Zero rows affected means the balance would have gone
// negative, so the debit did not happen.
func (s *budgetService) debitRemaining(tx *gorm.DB, userID string, amount float64) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND remaining_budget >= ?", userID, amount).
		Update("remaining_budget", gorm.Expr("remaining_budget - ?", amount))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInsufficientFunds
	}
	return nil
}

// creditRemaining increments remaining_budget only.
func (s *budgetService) creditRemaining(tx *gorm.DB, userID string, amount float64) error {
	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("remaining_budget", gorm.Expr("remaining_budget + ?", amount)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// creditBoth increments total_budget and remaining_budget together.
func (s *budgetService) creditBoth(tx *gorm.DB, userID string, amount float64) error {
	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"total_budget":     gorm.Expr("total_budget + ?", amount),
			"remaining_budget": gorm.Expr("remaining_budget + ?", amount),
		}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
