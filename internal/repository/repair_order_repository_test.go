package repository

import (
	"context"
	"testing"
	"time"

	"repairbox/internal/models"
	"repairbox/internal/testutil"

	"github.com/shopspring/decimal"
)

func at(day, hour int) *time.Time {
	t := time.Date(2026, 5, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func createOrder(t *testing.T, repo RepairOrderRepository, trackingID, status string, assigned *uint, due *time.Time) *models.RepairOrder {
	t.Helper()
	order := &models.RepairOrder{
		TrackingID:         trackingID,
		CustomerName:       "Jane",
		DeviceName:         "iPhone 13",
		Status:             status,
		AssignedTo:         assigned,
		BookingDate:        time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		ExpectedCompletion: due,
		Defects: []models.RepairOrderDefect{
			{DefectName: "iPhone 13-Screen", SellingPrice: decimal.NewFromInt(280)},
		},
		Inspection: []models.DeviceInspectionItem{
			{ItemName: "Screen", Status: models.InspectionNotTested},
		},
	}
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return order
}

func TestUpdateReplacesChildRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepairOrderRepository(db)
	ctx := context.Background()

	order := createOrder(t, repo, "RB-AAAAA", models.StatusPendingReview, nil, nil)

	order.Defects = []models.RepairOrderDefect{
		{DefectName: "iPhone 13-Battery", SellingPrice: decimal.NewFromInt(120)},
		{DefectName: "iPhone 13-Camera", SellingPrice: decimal.NewFromInt(95)},
	}
	order.Inspection = nil
	order.Status = models.StatusInProgress
	if err := repo.Update(ctx, order); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stored, err := repo.GetByTrackingID(ctx, "RB-AAAAA")
	if err != nil {
		t.Fatalf("GetByTrackingID: %v", err)
	}
	if stored.Status != models.StatusInProgress {
		t.Errorf("status = %q", stored.Status)
	}
	if len(stored.Defects) != 2 || stored.Defects[0].DefectName != "iPhone 13-Battery" || stored.Defects[1].Idx != 2 {
		t.Errorf("unexpected defects %+v", stored.Defects)
	}
	if len(stored.Inspection) != 0 {
		t.Errorf("inspection rows not removed: %d", len(stored.Inspection))
	}

	var lines int64
	db.Model(&models.RepairOrderDefect{}).Count(&lines)
	if lines != 2 {
		t.Errorf("expected 2 defect rows in total, got %d", lines)
	}
}

func TestListAssignedAndOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepairOrderRepository(db)
	ctx := context.Background()
	tech := uint(7)

	later := createOrder(t, repo, "RB-AAAA1", models.StatusInProgress, &tech, at(20, 10))
	sooner := createOrder(t, repo, "RB-AAAA2", models.StatusPendingReview, &tech, at(5, 10))
	createOrder(t, repo, "RB-AAAA3", models.StatusDelivered, &tech, at(3, 10))
	createOrder(t, repo, "RB-AAAA4", models.StatusInProgress, nil, at(4, 10))
	createOrder(t, repo, "RB-AAAA5", models.StatusCompleted, nil, at(2, 10))

	assigned, err := repo.ListAssigned(ctx, tech)
	if err != nil {
		t.Fatalf("ListAssigned: %v", err)
	}
	if len(assigned) != 2 || assigned[0].ID != sooner.ID || assigned[1].ID != later.ID {
		t.Errorf("unexpected assigned orders %+v", assigned)
	}

	overdue, err := repo.ListOverdue(ctx, *at(10, 0))
	if err != nil {
		t.Fatalf("ListOverdue: %v", err)
	}
	var got []string
	for _, o := range overdue {
		got = append(got, o.TrackingID)
	}
	if len(got) != 2 || got[0] != "RB-AAAA4" || got[1] != "RB-AAAA2" {
		t.Errorf("overdue = %v, want [RB-AAAA4 RB-AAAA2]", got)
	}
}

func TestTrackingIDExistsAndStatusCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepairOrderRepository(db)
	ctx := context.Background()

	createOrder(t, repo, "RB-BBBB1", models.StatusInProgress, nil, nil)
	createOrder(t, repo, "RB-BBBB2", models.StatusInProgress, nil, nil)
	createOrder(t, repo, "RB-BBBB3", models.StatusCompleted, nil, nil)

	exists, err := repo.TrackingIDExists(ctx, "RB-BBBB1")
	if err != nil || !exists {
		t.Errorf("TrackingIDExists = %v, %v", exists, err)
	}
	exists, _ = repo.TrackingIDExists(ctx, "RB-ZZZZZ")
	if exists {
		t.Error("unknown tracking id reported as existing")
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	want := map[string]int64{models.StatusCompleted: 1, models.StatusInProgress: 2}
	if len(counts) != 2 {
		t.Fatalf("unexpected counts %+v", counts)
	}
	for _, c := range counts {
		if want[c.Status] != c.Count {
			t.Errorf("%s: got %d, want %d", c.Status, c.Count, want[c.Status])
		}
	}

	if err := repo.SetStatus(ctx, 999, models.StatusCancelled); err != ErrNotFound {
		t.Errorf("SetStatus on missing order: %v", err)
	}
}
