package models

import "time"

type Expense struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Description string    `json:"description" gorm:"not null"`
	Amount      float64   `json:"amount" gorm:"type:numeric(12,2)"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}
