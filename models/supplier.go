package models

import "time"

type Supplier struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	DocumentNumber *string   `gorm:"type:varchar(20)" json:"document_number,omitempty"`
	Phone          *string   `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email          *string   `gorm:"type:varchar(255)" json:"email,omitempty"`
	Address        string    `gorm:"type:text" json:"address"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
