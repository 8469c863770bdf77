package models

import "time"

// PurchaseEntry records goods received from a supplier. Creating one
// increments the product stock by the received quantity.
type PurchaseEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SupplierID uint      `gorm:"not null;index" json:"supplier_id"`
	Supplier   Supplier  `gorm:"foreignKey:SupplierID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"supplier"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Product    Product   `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitCost   float64   `gorm:"type:decimal(10,2);not null" json:"unit_cost"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}
