package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RepairOrder struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	TrackingID string `json:"tracking_id" gorm:"uniqueIndex;not null"`

	CustomerID    *uint  `json:"customer_id" gorm:"index"`
	CustomerName  string `json:"customer_name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`

	BrandName      string `json:"brand"`
	DeviceName     string `json:"device" gorm:"index"`
	DeviceModel    string `json:"device_model"`
	SerialNumber   string `json:"serial_number"`
	DevicePassword string `json:"device_password,omitempty"`

	Status         string          `json:"status" gorm:"index"`
	Priority       string          `json:"priority"`
	PriorityCharge decimal.Decimal `json:"priority_charge" gorm:"type:numeric(12,2)"`
	AssignedTo     *uint           `json:"assigned_to" gorm:"index"`

	BookingDate        time.Time  `json:"booking_date"`
	ExpectedCompletion *time.Time `json:"expected_completion" gorm:"index"`
	ActualCompletion   *time.Time `json:"actual_completion"`

	Defects    []RepairOrderDefect    `json:"defects" gorm:"constraint:OnDelete:CASCADE"`
	Inspection []DeviceInspectionItem `json:"device_inspection" gorm:"constraint:OnDelete:CASCADE"`

	TotalServiceAmount decimal.Decimal `json:"total_service_amount" gorm:"type:numeric(12,2)"`
	TaxRate            decimal.Decimal `json:"tax_rate" gorm:"type:numeric(6,4)"`
	TaxAmount          decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2)"`
	GrandTotal         decimal.Decimal `json:"grand_total" gorm:"type:numeric(12,2)"`
	PaidAmount         decimal.Decimal `json:"paid_amount" gorm:"type:numeric(12,2)"`
	PaymentStatus      string          `json:"payment_status"`

	TechnicianNotes string `json:"technician_notes" gorm:"type:text"`
	AdditionalNotes string `json:"additional_notes" gorm:"type:text"`

	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// DisplayName is the human facing order number used in messages.
func (o *RepairOrder) DisplayName() string {
	return fmt.Sprintf("RO-%05d", o.ID)
}

// RepairOrderDefect is one billable service line.
type RepairOrderDefect struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	RepairOrderID uint            `json:"repair_order_id" gorm:"not null;index"`
	Idx           int             `json:"idx"`
	DefectName    string          `json:"defect"`
	Description   string          `json:"description" gorm:"type:text"`
	SellingPrice  decimal.Decimal `json:"selling_price" gorm:"type:numeric(12,2)"`

	// PriceGiven is set when selling_price was present in the decoded JSON.
	PriceGiven bool `json:"-" gorm:"-"`
}

func (d *RepairOrderDefect) UnmarshalJSON(data []byte) error {
	type line RepairOrderDefect
	var aux struct {
		line
		SellingPrice *decimal.Decimal `json:"selling_price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = RepairOrderDefect(aux.line)
	if aux.SellingPrice != nil {
		d.SellingPrice = *aux.SellingPrice
		d.PriceGiven = true
	}
	return nil
}

type DeviceInspectionItem struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	RepairOrderID uint   `json:"repair_order_id" gorm:"not null;index"`
	Idx           int    `json:"idx"`
	ItemName      string `json:"item_name"`
	Category      string `json:"category"`
	IsMandatory   bool   `json:"is_mandatory"`
	Status        string `json:"status"`
	IsDefective   bool   `json:"is_defective"`
	Notes         string `json:"notes" gorm:"type:text"`
}

type PaymentStatus string

const (
	Unpaid        PaymentStatus = "Unpaid"
	PartiallyPaid PaymentStatus = "Partially Paid"
	Paid          PaymentStatus = "Paid"
)

// RepairLog is an append-only status history entry.
type RepairLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RepairOrderID  uint      `json:"repair_order_id" gorm:"not null;index"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes" gorm:"type:text"`
	NotifyCustomer bool      `json:"notify_customer"`
	UpdatedBy      string    `json:"updated_by"`
	CreatedAt      time.Time `json:"created_at"`
}
