package models

import "time"

// Rule condition types
const (
	RuleConditionTransactionAmount = "transaction_amount"
	RuleConditionMonthlySpend      = "monthly_spend"
)

// LoyaltyRule is an admin-defined promotion condition. Rules are read-only
// to the evaluator; there is no expiry on the rule itself, only the active
// flag.
type LoyaltyRule struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	Name              string  `gorm:"type:varchar(255);not null" json:"name"`
	ConditionType     string  `gorm:"type:varchar(30);not null" json:"condition_type"`
	Threshold         float64 `gorm:"type:decimal(10,2);not null" json:"threshold"`
	RewardDescription string  `gorm:"type:text;not null" json:"reward_description"`
	// No default tag: GORM would skip a zero-value field at insert, turning
	// a rule created inactive into an active one.
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
