package models

import "time"

const (
	NotificationInfo    = "INFO"
	NotificationWarning = "WARNING"
)

// Notification is an append-only alert record. The ledger engine creates one
// whenever a stock decrement leaves a product at or below the low-stock
// threshold; the UI only ever flips IsRead.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message" gorm:"not null"`
	Type      string    `json:"type" gorm:"type:VARCHAR(20);default:INFO"`
	IsRead    bool      `json:"isRead" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
