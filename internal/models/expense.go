package models

import "time"

// ExpenseCategory represents the fixed set of expense labels.
type ExpenseCategory string

const (
	CategoryFood          ExpenseCategory = "food"
	CategoryHousing       ExpenseCategory = "housing"
	CategoryTransport     ExpenseCategory = "transport"
	CategoryEntertainment ExpenseCategory = "entertainment"
	CategoryBills         ExpenseCategory = "bills"
	CategoryOther         ExpenseCategory = "other"
)

// Categories lists all recognized expense categories in display order.
var Categories = []ExpenseCategory{
	CategoryFood,
	CategoryHousing,
	CategoryTransport,
	CategoryEntertainment,
	CategoryBills,
	CategoryOther,
}

// Expense represents a single spend record owned by a user.
type Expense struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Title    string          `gorm:"not null" json:"title"`
	Amount   float64         `gorm:"not null" json:"amount"`
	Category ExpenseCategory `gorm:"not null" json:"category"`
	Date     time.Time       `gorm:"not null" json:"date"`
}
