package services

import (
	"context"
	"testing"

	"repairbox/internal/models"
)

func strPtr(s string) *string { return &s }

func TestFindForDevicePrecedence(t *testing.T) {
	env := newTestEnv(t, "0")
	svc := NewChecklistService(env.checklist, env.catalog)
	ctx := context.Background()

	if err := env.catalog.SaveDevice(ctx, &models.Device{Name: "MacBook Air", BrandName: "Apple", DeviceType: "Laptop"}); err != nil {
		t.Fatalf("SaveDevice: %v", err)
	}

	// type tier
	tpl, err := svc.FindForDevice(ctx, "iPhone 13")
	if err != nil {
		t.Fatalf("FindForDevice: %v", err)
	}
	if tpl == nil || tpl.Name != "Smartphone Check" {
		t.Fatalf("expected device type template, got %+v", tpl)
	}
	if len(tpl.Items) != 2 || tpl.Items[0].ItemName != "Screen" {
		t.Errorf("unexpected items %+v", tpl.Items)
	}

	// device tier wins over type
	err = svc.SaveTemplate(ctx, &models.InspectionChecklistTemplate{
		Name:       "iPhone 13 Check",
		DeviceName: strPtr("iPhone 13"),
		IsDefault:  true,
		IsActive:   true,
		Items:      []models.InspectionChecklistTemplateItem{{ItemName: "Face ID"}},
	})
	if err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	tpl, err = svc.FindForDevice(ctx, "iPhone 13")
	if err != nil {
		t.Fatalf("FindForDevice: %v", err)
	}
	if tpl == nil || tpl.Name != "iPhone 13 Check" {
		t.Fatalf("expected device template, got %+v", tpl)
	}

	// no laptop template: fall back to any active template, default first
	tpl, err = svc.FindForDevice(ctx, "MacBook Air")
	if err != nil {
		t.Fatalf("FindForDevice: %v", err)
	}
	if tpl == nil {
		t.Fatal("expected a fallback template")
	}

	tpl, err = svc.FindForDevice(ctx, "")
	if err != nil || tpl != nil {
		t.Errorf("expected nil for empty device, got %+v, %v", tpl, err)
	}
}

func TestFindForDeviceNoTemplates(t *testing.T) {
	env := newTestEnv(t, "0")
	env.db.Where("1 = 1").Delete(&models.InspectionChecklistTemplateItem{})
	env.db.Where("1 = 1").Delete(&models.InspectionChecklistTemplate{})

	svc := NewChecklistService(env.checklist, env.catalog)
	tpl, err := svc.FindForDevice(context.Background(), "iPhone 13")
	if err != nil {
		t.Fatalf("FindForDevice: %v", err)
	}
	if tpl != nil {
		t.Errorf("expected no template, got %q", tpl.Name)
	}
}

func TestChecklistSingleDefaultPerScope(t *testing.T) {
	env := newTestEnv(t, "0")
	svc := NewChecklistService(env.checklist, env.catalog)
	ctx := context.Background()

	other := &models.InspectionChecklistTemplate{Name: "Smartphone Quick", DeviceType: "Smartphone", IsDefault: true, IsActive: true}
	if err := svc.SaveTemplate(ctx, other); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	laptop := &models.InspectionChecklistTemplate{Name: "Laptop Check", DeviceType: "Laptop", IsDefault: true, IsActive: true}
	if err := svc.SaveTemplate(ctx, laptop); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}

	first, err := env.checklist.GetByName(ctx, "Smartphone Check")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if first.IsDefault {
		t.Error("previous smartphone default not cleared")
	}
	laptopStored, _ := env.checklist.GetByName(ctx, "Laptop Check")
	quick, _ := env.checklist.GetByName(ctx, "Smartphone Quick")
	if !laptopStored.IsDefault || !quick.IsDefault {
		t.Error("defaults in separate scopes must both stay set")
	}

	err = svc.SaveTemplate(ctx, &models.InspectionChecklistTemplate{
		Name:  "Broken",
		Items: []models.InspectionChecklistTemplateItem{{ItemName: "  "}},
	})
	assertValidation(t, err, "Missing Information")
}

func TestFindForDeviceSkipsInactiveTemplates(t *testing.T) {
	env := newTestEnv(t, "0")
	svc := NewChecklistService(env.checklist, env.catalog)
	ctx := context.Background()

	err := svc.SaveTemplate(ctx, &models.InspectionChecklistTemplate{
		Name:       "Retired iPhone 13 Check",
		DeviceName: strPtr("iPhone 13"),
		IsDefault:  true,
		IsActive:   false,
		Items:      []models.InspectionChecklistTemplateItem{{ItemName: "Headphone Jack"}},
	})
	if err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}

	stored, err := env.checklist.GetByName(ctx, "Retired iPhone 13 Check")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if stored.IsActive {
		t.Fatal("template saved inactive was stored as active")
	}

	tpl, err := svc.FindForDevice(ctx, "iPhone 13")
	if err != nil {
		t.Fatalf("FindForDevice: %v", err)
	}
	if tpl == nil || tpl.Name != "Smartphone Check" {
		t.Fatalf("expected the active device type template, got %+v", tpl)
	}

	// the fallback tier only considers active templates too
	env.db.Model(&models.InspectionChecklistTemplate{}).Where("name <> ?", "Retired iPhone 13 Check").Update("is_active", false)
	tpl, err = svc.FindForDevice(ctx, "iPhone 13")
	if err != nil {
		t.Fatalf("FindForDevice: %v", err)
	}
	if tpl != nil {
		t.Errorf("expected no template when all are inactive, got %q", tpl.Name)
	}
}
