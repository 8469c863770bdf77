package models

import "time"

// LoyaltyCard is keyed by phone number, not by customer id. The points
// ledger trigger and the rule evaluator track the same person under these
// two disjoint identities; do not merge them silently.
type LoyaltyCard struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Phone       string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	HolderName  string     `gorm:"type:varchar(255)" json:"holder_name"`
	Points      int        `gorm:"not null;default:0" json:"points"`
	TotalVisits int        `gorm:"not null;default:0" json:"total_visits"`
	LastVisit   *time.Time `json:"last_visit,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
