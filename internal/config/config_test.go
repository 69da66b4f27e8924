package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TAX_RATE", "")
	t.Setenv("ELEVATED_ROLES", "")
	t.Setenv("TRACKING_PREFIX", "")

	cfg := Load()
	if cfg.TaxRate != 0 {
		t.Fatalf("expected default tax rate 0, got %v", cfg.TaxRate)
	}
	if cfg.TrackingPrefix != "RB-" {
		t.Fatalf("expected tracking prefix RB-, got %q", cfg.TrackingPrefix)
	}
	if !reflect.DeepEqual(cfg.ElevatedRoles, []string{"super_admin", "manager"}) {
		t.Fatalf("unexpected elevated roles %v", cfg.ElevatedRoles)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TAX_RATE", "0.19")
	t.Setenv("ELEVATED_ROLES", " owner , ,manager")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()
	if cfg.TaxRate != 0.19 {
		t.Fatalf("expected tax rate 0.19, got %v", cfg.TaxRate)
	}
	if !reflect.DeepEqual(cfg.ElevatedRoles, []string{"owner", "manager"}) {
		t.Fatalf("unexpected elevated roles %v", cfg.ElevatedRoles)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.SMTPPort)
	}
}
