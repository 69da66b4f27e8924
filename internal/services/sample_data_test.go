package services

import (
	"context"
	"testing"

	"repairbox/internal/models"

	"go.uber.org/zap"
)

func TestCreateSampleRepair(t *testing.T) {
	env := newTestEnv(t, "0")
	ctx := context.Background()
	samples := NewSampleDataService(
		NewCatalogService(env.catalog),
		NewCustomerService(env.customers),
		env.orders,
		zap.NewNop(),
	)

	order, err := samples.CreateSampleRepair(ctx, manager)
	if err != nil {
		t.Fatalf("CreateSampleRepair: %v", err)
	}

	if order.Status != models.StatusInProgress || order.Priority != "Express" {
		t.Errorf("status/priority = %q/%q", order.Status, order.Priority)
	}
	if order.AssignedTo == nil || *order.AssignedTo != manager.UserID {
		t.Errorf("assigned to %v, want %d", order.AssignedTo, manager.UserID)
	}
	if len(order.Defects) != 5 {
		t.Fatalf("expected 5 service lines, got %d", len(order.Defects))
	}
	if order.Defects[0].Description != "OLED screen replacement with original quality display" {
		t.Errorf("line description not filled from catalog: %q", order.Defects[0].Description)
	}
	// 280+120+150+80+95 plus the express charge
	assertDecimal(t, "grand", order.GrandTotal, "755")
	if order.PaymentStatus != string(models.PartiallyPaid) {
		t.Errorf("payment status = %q", order.PaymentStatus)
	}

	defects, err := env.catalog.ListDefects(ctx, "iPhone 12")
	if err != nil {
		t.Fatalf("ListDefects: %v", err)
	}
	if len(defects) != 6 {
		t.Errorf("expected 6 iPhone 12 defects, got %d", len(defects))
	}
	for _, d := range defects {
		if !d.IsActive || d.BrandName != "Apple" {
			t.Errorf("unexpected defect %+v", d)
		}
	}

	again, err := samples.CreateSampleRepair(ctx, manager)
	if err != nil {
		t.Fatalf("second CreateSampleRepair: %v", err)
	}
	if again.TrackingID != order.TrackingID {
		t.Errorf("second run created %q, want existing %q", again.TrackingID, order.TrackingID)
	}

	var orders, customers int64
	env.db.Model(&models.RepairOrder{}).Count(&orders)
	env.db.Model(&models.Customer{}).Count(&customers)
	if orders != 1 || customers != 1 {
		t.Errorf("expected one order and one customer, got %d and %d", orders, customers)
	}
}
