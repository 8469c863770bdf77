package models

import "time"

// Reward statuses. The transition is monotonic: pending -> redeemed.
// Expired is defined for admin filtering but no process assigns it.
const (
	RewardStatusPending  = "pending"
	RewardStatusRedeemed = "redeemed"
	RewardStatusExpired  = "expired"
)

type CustomerReward struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"type:varchar(36);uniqueIndex;not null" json:"code"`
	CustomerID  uint         `gorm:"not null;index" json:"customer_id"`
	Customer    Customer     `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	RuleID      *uint        `gorm:"index" json:"rule_id,omitempty"`
	Rule        *LoyaltyRule `gorm:"foreignKey:RuleID" json:"rule,omitempty"`
	Status      string       `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Description string       `gorm:"type:text;not null" json:"description"`
	RedeemedAt  *time.Time   `json:"redeemed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
