package models

import "time"

// Category groups products. Categories flagged as loyalty-eligible feed the
// points ledger trigger: every item sold from such a category earns one point.
type Category struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(100);unique" json:"name"`
	LoyaltyEligible bool      `gorm:"not null;default:false" json:"loyalty_eligible"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
