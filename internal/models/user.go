package models

// User represents a registered user and their budget fields.
//
// RemainingBudget is maintained so that it always equals
// TotalBudget minus the sum of the user's expense amounts; every
// budget mutation preserves that equality.
type User struct {
	Base
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	Name            string    `gorm:"not null" json:"name"`
	ProfilePicture  string    `gorm:"default:'default.png'" json:"profile_picture"`
	Password        string    `gorm:"not null" json:"-"`
	TotalBudget     float64   `gorm:"not null;default:0" json:"total_budget"`
	RemainingBudget float64   `gorm:"not null;default:0" json:"remaining_budget"`
	Expenses        []Expense `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
	Incomes         []Income  `gorm:"foreignKey:UserID" json:"incomes,omitempty"`
}
