package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Brand struct {
	Name        string    `json:"name" gorm:"primaryKey"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Device struct {
	Name       string    `json:"name" gorm:"primaryKey"`
	BrandName  string    `json:"brand" gorm:"not null;index"`
	DeviceType string    `json:"device_type" gorm:"index"` // Smartphone, Tablet, Laptop, ...
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Defect is a repairable fault of one device and the service billed for it.
// Name is "<device>-<title>".
type Defect struct {
	Name          string          `json:"name" gorm:"primaryKey"`
	DeviceName    string          `json:"device" gorm:"not null;index"`
	BrandName     string          `json:"brand" gorm:"index"`
	DefectTitle   string          `json:"defect_title" gorm:"not null"`
	Description   string          `json:"description" gorm:"type:text"`
	SellingPrice  decimal.Decimal `json:"selling_price" gorm:"type:numeric(12,2);not null"`
	EstimatedTime int             `json:"estimated_time"` // minutes
	CostAmount    decimal.Decimal `json:"cost_amount" gorm:"type:numeric(12,2)"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func DefectName(device, title string) string {
	return device + "-" + title
}

type QuickReply struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	Category  string    `json:"category"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
