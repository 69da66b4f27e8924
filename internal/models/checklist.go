package models

import "time"

// InspectionChecklistTemplate is copied onto new repair orders. It is scoped
// to one device, to a device type (DeviceName empty), or to nothing.
type InspectionChecklistTemplate struct {
	Name       string                            `json:"name" gorm:"primaryKey"`
	DeviceName *string                           `json:"device" gorm:"index"`
	DeviceType string                            `json:"device_type" gorm:"index"`
	IsDefault  bool                              `json:"is_default" gorm:"default:false"`
	IsActive   bool                              `json:"is_active"`
	Items      []InspectionChecklistTemplateItem `json:"items" gorm:"foreignKey:TemplateName;references:Name;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time                         `json:"created_at"`
	UpdatedAt  time.Time                         `json:"updated_at"`
}

type InspectionChecklistTemplateItem struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	TemplateName string `json:"template" gorm:"not null;index"`
	Idx          int    `json:"idx"`
	ItemName     string `json:"item_name" gorm:"not null"`
	Category     string `json:"category"`
	IsMandatory  bool   `json:"is_mandatory"`
}

// Inspection row results on a repair order.
const (
	InspectionNotTested = "Not Tested"
	InspectionPass      = "Pass"
	InspectionFail      = "Fail"
	InspectionNA        = "N/A"
)
