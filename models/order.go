package models

import "time"

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment methods accepted at the counter
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"
)

// Order is a counter sale. It is written as pending inside the checkout
// transaction and flipped to completed as the final statement, so the
// loyalty-points trigger sees all its items. Completed orders are immutable
// except for an admin void.
type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderNumber string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_number"`
	CustomerID  *uint     `gorm:"index" json:"customer_id,omitempty"`
	Customer    *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	// CustomerPhone lets a walk-in sale earn card points without a customer
	// record: the ledger trigger falls back to it when CustomerID is null.
	CustomerPhone *string     `gorm:"type:varchar(20)" json:"customer_phone,omitempty"`
	CashierID     uint        `gorm:"not null;index" json:"cashier_id"`
	Cashier       User        `gorm:"foreignKey:CashierID" json:"-"`
	ShiftID       *uint       `gorm:"index" json:"shift_id,omitempty"`
	Status        string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount   float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	PaymentMethod string      `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	CashReceived  float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"cash_received"`
	Change        float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"change"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
