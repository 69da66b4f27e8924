package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"repairbox/internal/models"

	"github.com/shopspring/decimal"
)

const (
	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingLength   = 5

	// estimateBuffer pads the summed defect estimates.
	estimateBuffer = 1.2
)

type Totals struct {
	Service decimal.Decimal
	Charge  decimal.Decimal
	Tax     decimal.Decimal
	Grand   decimal.Decimal
}

// CalculateTotals sums the line prices and applies the priority charge and
// tax. Tax is rounded to cents.
func CalculateTotals(lines []models.RepairOrderDefect, priorityCharge, taxRate decimal.Decimal) Totals {
	service := decimal.Zero
	for _, l := range lines {
		service = service.Add(l.SellingPrice)
	}
	tax := service.Add(priorityCharge).Mul(taxRate).Round(2)
	return Totals{
		Service: service,
		Charge:  priorityCharge,
		Tax:     tax,
		Grand:   service.Add(priorityCharge).Add(tax),
	}
}

func DerivePaymentStatus(paid, grandTotal decimal.Decimal) models.PaymentStatus {
	switch {
	case paid.IsZero():
		return models.Unpaid
	case paid.GreaterThanOrEqual(grandTotal):
		return models.Paid
	default:
		return models.PartiallyPaid
	}
}

// ValidateStatusChange checks a status transition. previous is empty for a
// new order. Nothing is checked when the status did not change.
func ValidateStatusChange(previous string, order *models.RepairOrder, elevated bool) error {
	next := order.Status
	if next == previous {
		return nil
	}

	if next == models.StatusDelivered && order.PaymentStatus != string(models.Paid) && !elevated {
		return newValidationError("Payment Required",
			"Cannot mark as Delivered without full payment. Contact Manager for override.")
	}
	if next == models.StatusCompleted && len(order.Defects) == 0 {
		return newValidationError("Missing Information",
			"Cannot complete repair without defects/services recorded.")
	}
	if previous != "" && previous != models.StatusPendingReview && next == models.StatusPendingReview {
		return newValidationError("Invalid Status Change",
			"Cannot return to Pending Review status")
	}
	return nil
}

// GenerateTrackingID returns prefix followed by five random characters from
// A-Z and 0-9.
func GenerateTrackingID(prefix string) (string, error) {
	buf := make([]byte, trackingLength)
	max := big.NewInt(int64(len(trackingAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate tracking id: %w", err)
		}
		buf[i] = trackingAlphabet[n.Int64()]
	}
	return prefix + string(buf), nil
}

// ExpectedCompletion adds the buffered sum of estimates (minutes) to the
// booking date. It returns nil when there is nothing to estimate.
func ExpectedCompletion(booking time.Time, estimates []int) *time.Time {
	total := 0
	for _, m := range estimates {
		if m > 0 {
			total += m
		}
	}
	if total == 0 {
		return nil
	}
	d := time.Duration(float64(total) * estimateBuffer * float64(time.Minute))
	t := booking.Add(d)
	return &t
}
