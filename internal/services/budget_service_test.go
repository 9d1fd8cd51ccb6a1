package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestAddExpense(t *testing.T) {
	t.Run("debits_remaining_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		expense, updated, err := svc.AddExpense(user.ID, "Pizza", 50, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)

		if expense.ID == "" {
			t.Fatal("expected non-empty expense ID")
		}
		if expense.Title != "Pizza" || expense.Category != models.CategoryFood {
			t.Errorf("unexpected expense fields: %+v", expense)
		}
		testutil.AssertAmount(t, 450, updated.RemainingBudget)
		testutil.AssertAmount(t, 500, updated.TotalBudget)
	})

	t.Run("insufficient_funds_leaves_state_unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 100)

		_, _, err := svc.AddExpense(user.ID, "Rent", 500, models.CategoryHousing, time.Now())
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")

		var count int64
		if err := db.Model(&models.Expense{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			t.Fatalf("count expenses: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no expense records, got %d", count)
		}

		var fresh models.User
		if err := db.First(&fresh, "id = ?", user.ID).Error; err != nil {
			t.Fatalf("reload user: %v", err)
		}
		testutil.AssertAmount(t, 100, fresh.RemainingBudget)
		testutil.AssertAmount(t, 100, fresh.TotalBudget)
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 100)

		_, _, err := svc.AddExpense(user.ID, "", 10, models.CategoryFood, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, _, err = svc.AddExpense(user.ID, "Pizza", 0, models.CategoryFood, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, _, err = svc.AddExpense(user.ID, "Pizza", -10, models.CategoryFood, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, _, err = svc.AddExpense(user.ID, "Pizza", 10, "", time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, _, err = svc.AddExpense(user.ID, "Pizza", 10, models.CategoryFood, time.Time{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)

		_, _, err := svc.AddExpense("00000000-0000-0000-0000-000000000000", "Pizza", 10, models.CategoryFood, time.Now())
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("exact_balance_spend_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 50)

		_, updated, err := svc.AddExpense(user.ID, "Everything", 50, models.CategoryOther, time.Now())
		testutil.AssertNoError(t, err)
		testutil.AssertAmount(t, 0, updated.RemainingBudget)
	})
}

func TestGetUserExpenses(t *testing.T) {
	t.Run("round_trip_includes_submitted_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
		created, _, err := svc.AddExpense(user.ID, "Groceries", 72.50, models.CategoryFood, date)
		testutil.AssertNoError(t, err)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserExpenses(user.ID, page)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 expense, got %d", result.TotalItems)
		}
		got := result.Data[0]
		if got.ID != created.ID || got.Title != "Groceries" || got.Category != models.CategoryFood {
			t.Errorf("round-tripped expense does not match: %+v", got)
		}
		testutil.AssertAmount(t, 72.50, got.Amount)
		if !got.Date.Equal(date) {
			t.Errorf("expected date %v, got %v", date, got.Date)
		}
	})

	t.Run("scoped_to_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user1 := testutil.CreateTestUserWithBudget(t, db, 500)
		user2 := testutil.CreateTestUserWithBudget(t, db, 500)

		_, _, err := svc.AddExpense(user1.ID, "Mine", 10, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)
		_, _, err = svc.AddExpense(user2.ID, "Theirs", 20, models.CategoryBills, time.Now())
		testutil.AssertNoError(t, err)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserExpenses(user1.ID, page)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 expense for user1, got %d", result.TotalItems)
		}
		if result.Data[0].Title != "Mine" {
			t.Errorf("expected user1's expense, got %s", result.Data[0].Title)
		}
	})
}

func TestUpdateExpense(t *testing.T) {
	t.Run("replaces_fields_and_adjusts_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		expense, _, err := svc.AddExpense(user.ID, "Pizza", 50, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)

		newDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		updated, freshUser, err := svc.UpdateExpense(user.ID, expense.ID, "Fancy Pizza", 80, models.CategoryEntertainment, newDate)
		testutil.AssertNoError(t, err)

		if updated.Title != "Fancy Pizza" || updated.Category != models.CategoryEntertainment {
			t.Errorf("fields not replaced: %+v", updated)
		}
		testutil.AssertAmount(t, 80, updated.Amount)
		// 500 - 50 = 450 after create, then delta +30 debited
		testutil.AssertAmount(t, 420, freshUser.RemainingBudget)
	})

	t.Run("lowering_amount_credits_difference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		expense, _, err := svc.AddExpense(user.ID, "Pizza", 50, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)

		_, freshUser, err := svc.UpdateExpense(user.ID, expense.ID, "Pizza", 20, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)
		testutil.AssertAmount(t, 480, freshUser.RemainingBudget)
	})

	t.Run("raise_past_remaining_budget_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 100)

		expense, _, err := svc.AddExpense(user.ID, "Pizza", 50, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)

		_, _, err = svc.UpdateExpense(user.ID, expense.ID, "Pizza", 200, models.CategoryFood, time.Now())
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")

		// Untouched after the rejected update.
		var fresh models.Expense
		if err := db.First(&fresh, "id = ?", expense.ID).Error; err != nil {
			t.Fatalf("reload expense: %v", err)
		}
		testutil.AssertAmount(t, 50, fresh.Amount)
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 100)

		_, _, err := svc.UpdateExpense(user.ID, "00000000-0000-0000-0000-000000000000", "Pizza", 10, models.CategoryFood, time.Now())
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})

	t.Run("cannot_touch_another_users_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		owner := testutil.CreateTestUserWithBudget(t, db, 100)
		intruder := testutil.CreateTestUserWithBudget(t, db, 100)

		expense, _, err := svc.AddExpense(owner.ID, "Private", 10, models.CategoryOther, time.Now())
		testutil.AssertNoError(t, err)

		_, _, err = svc.UpdateExpense(intruder.ID, expense.ID, "Hijacked", 10, models.CategoryOther, time.Now())
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestDeleteExpense(t *testing.T) {
	t.Run("removes_record_and_credits_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		expense, _, err := svc.AddExpense(user.ID, "Pizza", 50, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)

		freshUser, err := svc.DeleteExpense(user.ID, expense.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertAmount(t, 500, freshUser.RemainingBudget)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserExpenses(user.ID, page)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 {
			t.Errorf("expected empty expense list, got %d items", result.TotalItems)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 100)

		_, err := svc.DeleteExpense(user.ID, "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})

	t.Run("cannot_delete_another_users_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		owner := testutil.CreateTestUserWithBudget(t, db, 100)
		intruder := testutil.CreateTestUserWithBudget(t, db, 100)

		expense, _, err := svc.AddExpense(owner.ID, "Private", 10, models.CategoryOther, time.Now())
		testutil.AssertNoError(t, err)

		_, err = svc.DeleteExpense(intruder.ID, expense.ID)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestAddIncome(t *testing.T) {
	t.Run("raises_both_budget_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		income, updated, err := svc.AddIncome(user.ID, "Salary", 1000, time.Now())
		testutil.AssertNoError(t, err)

		if income.ID == "" {
			t.Fatal("expected non-empty income ID")
		}
		testutil.AssertAmount(t, 1500, updated.TotalBudget)
		testutil.AssertAmount(t, 1500, updated.RemainingBudget)
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		_, _, err := svc.AddIncome(user.ID, "Salary", 0, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, _, err = svc.AddIncome(user.ID, "Salary", -100, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)

		_, _, err := svc.AddIncome("00000000-0000-0000-0000-000000000000", "Salary", 100, time.Now())
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestSetBudget(t *testing.T) {
	t.Run("recomputes_remaining_from_expense_history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		_, _, err := svc.AddExpense(user.ID, "Pizza", 50, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)
		_, _, err = svc.AddExpense(user.ID, "Bus", 30, models.CategoryTransport, time.Now())
		testutil.AssertNoError(t, err)

		updated, err := svc.SetBudget(user.ID, 1500)
		testutil.AssertNoError(t, err)
		testutil.AssertAmount(t, 1500, updated.TotalBudget)
		testutil.AssertAmount(t, 1420, updated.RemainingBudget)
	})

	t.Run("idempotent_for_fixed_expense_set", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 500)

		_, _, err := svc.AddExpense(user.ID, "Pizza", 50, models.CategoryFood, time.Now())
		testutil.AssertNoError(t, err)

		first, err := svc.SetBudget(user.ID, 1000)
		testutil.AssertNoError(t, err)
		second, err := svc.SetBudget(user.ID, 1000)
		testutil.AssertNoError(t, err)

		testutil.AssertAmount(t, first.RemainingBudget, second.RemainingBudget)
		testutil.AssertAmount(t, 950, second.RemainingBudget)
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)

		_, err := svc.SetBudget("00000000-0000-0000-0000-000000000000", 100)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestAddFunds(t *testing.T) {
	t.Run("raises_both_fields_without_ledger_record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 100)

		updated, err := svc.AddFunds(user.ID, 25)
		testutil.AssertNoError(t, err)
		testutil.AssertAmount(t, 125, updated.TotalBudget)
		testutil.AssertAmount(t, 125, updated.RemainingBudget)

		var count int64
		if err := db.Model(&models.Income{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			t.Fatalf("count incomes: %v", err)
		}
		if count != 0 {
			t.Errorf("AddFunds must not create income records, found %d", count)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUserWithBudget(t, db, 100)

		_, err := svc.AddFunds(user.ID, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.AddFunds(user.ID, -5)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

// TestBudgetLifecycle walks the full scenario: a fresh budget, a spend, a
// rejected overdraft, an income, and a reconciliation.
func TestBudgetLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUserWithBudget(t, db, 500)

	// Spend 50 on food.
	_, afterPizza, err := svc.AddExpense(user.ID, "Pizza", 50, models.CategoryFood, time.Now())
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, 450, afterPizza.RemainingBudget)

	page := pagination.PageRequest{Page: 1, PageSize: 20}
	list, err := svc.GetUserExpenses(user.ID, page)
	testutil.AssertNoError(t, err)
	if list.TotalItems != 1 {
		t.Fatalf("expected 1 expense, got %d", list.TotalItems)
	}

	// 500 rent exceeds the 450 remaining: rejected, balance untouched.
	_, _, err = svc.AddExpense(user.ID, "Rent", 500, models.CategoryHousing, time.Now())
	testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")

	var fresh models.User
	if err := db.First(&fresh, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	testutil.AssertAmount(t, 450, fresh.RemainingBudget)

	// Salary lands: both fields rise.
	_, afterSalary, err := svc.AddIncome(user.ID, "Salary", 1000, time.Now())
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, 1500, afterSalary.TotalBudget)
	testutil.AssertAmount(t, 1450, afterSalary.RemainingBudget)

	// Reconciliation confirms the same numbers from the ledger.
	reconciled, err := svc.SetBudget(user.ID, 1500)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, 1500, reconciled.TotalBudget)
	testutil.AssertAmount(t, 1450, reconciled.RemainingBudget)
}
