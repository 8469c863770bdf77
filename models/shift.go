package models

import "time"

// Shift is a cashier register session. End fields are null while the shift
// is open; closing sets them exactly once.
type Shift struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CashierID    uint       `gorm:"not null;index" json:"cashier_id"`
	Cashier      User       `gorm:"foreignKey:CashierID" json:"-"`
	StartCash    float64    `gorm:"type:decimal(10,2);not null" json:"start_cash"`
	EndCash      *float64   `gorm:"type:decimal(10,2)" json:"end_cash,omitempty"`
	ExpectedCash *float64   `gorm:"type:decimal(10,2)" json:"expected_cash,omitempty"`
	Notes        string     `gorm:"type:text" json:"notes"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	EndedAt      *time.Time `gorm:"index" json:"ended_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
