package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CustomerName string         `json:"customer_name" gorm:"not null;index"`
	CustomerType string         `json:"customer_type" gorm:"default:'Individual'"`
	MobileNo     string         `json:"mobile_no"`
	EmailID      string         `json:"email_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

const CustomerTypeIndividual = "Individual"
