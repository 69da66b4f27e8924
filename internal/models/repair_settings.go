package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RepairStatus struct {
	Name           string    `json:"name" gorm:"primaryKey"`
	Color          string    `json:"color"`
	Sequence       int       `json:"sequence"`
	IsDefault      bool      `json:"is_default" gorm:"default:false"`
	NotifyCustomer bool      `json:"notify_customer" gorm:"default:false"`
	IsTerminal     bool      `json:"is_terminal" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type RepairPriority struct {
	Name        string          `json:"name" gorm:"primaryKey"`
	ExtraCharge decimal.Decimal `json:"extra_charge" gorm:"type:numeric(12,2)"`
	Color       string          `json:"color"`
	IsDefault   bool            `json:"is_default" gorm:"default:false"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Status names the lifecycle rules refer to. Other statuses are plain
// catalog data.
const (
	StatusPendingReview    = "Pending Review"
	StatusInProgress       = "In Progress"
	StatusAwaitingParts    = "Awaiting Parts"
	StatusAwaitingApproval = "Awaiting Customer Approval"
	StatusTesting          = "Testing"
	StatusCompleted        = "Completed"
	StatusReadyForPickup   = "Ready for Pickup"
	StatusDelivered        = "Delivered"
	StatusCancelled        = "Cancelled"
	StatusOnHold           = "On Hold"
)

// ClosedStatuses are excluded from a technician's work queue.
var ClosedStatuses = []string{StatusDelivered, StatusCancelled}

// FinishedStatuses can no longer become overdue.
var FinishedStatuses = []string{StatusDelivered, StatusCancelled, StatusCompleted}
