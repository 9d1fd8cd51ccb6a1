package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestUserWithBudget creates a user whose total and remaining budget
// both equal the given amount.
func CreateTestUserWithBudget(t *testing.T, db *gorm.DB, budget float64) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Updates(map[string]interface{}{
		"total_budget":     budget,
		"remaining_budget": budget,
	}).Error; err != nil {
		t.Fatalf("failed to set test user budget: %v", err)
	}
	user.TotalBudget = budget
	user.RemainingBudget = budget
	return user
}

// CreateTestExpense creates an expense for the user with the given amount.
// The user's remaining budget is not touched; tests exercising the budget
// engine should go through the service instead.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, amount float64, category models.ExpenseCategory) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:   userID,
		Title:    fmt.Sprintf("Test Expense %d", nextID()),
		Amount:   amount,
		Category: category,
		Date:     time.Now(),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestIncome creates an income record for the user.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID string, amount float64) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID: userID,
		Title:  fmt.Sprintf("Test Income %d", nextID()),
		Amount: amount,
		Date:   time.Now(),
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}
