package models

import "time"

type Customer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	DocumentNumber *string   `gorm:"type:varchar(20);index" json:"document_number,omitempty"`
	Phone          *string   `gorm:"type:varchar(20);index" json:"phone,omitempty"`
	Email          *string   `gorm:"type:varchar(255)" json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
