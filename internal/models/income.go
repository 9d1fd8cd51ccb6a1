package models

import "time"

// Income represents money added to a user's budget. Incomes are
// immutable once recorded; there is no update or delete path.
type Income struct {
	Base
	UserID string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Title  string    `gorm:"not null" json:"title"`
	Amount float64   `gorm:"not null" json:"amount"`
	Date   time.Time `gorm:"not null" json:"date"`
}
