package detection

import (
	"slices"
	"testing"

	"github.com/Cheertaboi/coupon-keeper/internal/models"
)

func TestSettingsStoreDomains(t *testing.T) {
	s := NewSettingsStore(models.AutoDetectionSettings{Sensitivity: models.SensitivityMedium})

	s.AddTrustedDomain(" Amazon.com ")
	s.AddTrustedDomain("amazon.com")
	s.AddTrustedDomain("")
	s.AddBlacklistedDomain("Spam.example")

	got := s.Snapshot()
	if !slices.Equal(got.TrustedDomains, []string{"amazon.com"}) {
		t.Errorf("trusted = %v, want [amazon.com]", got.TrustedDomains)
	}
	if !slices.Equal(got.BlacklistedDomains, []string{"spam.example"}) {
		t.Errorf("blacklisted = %v, want [spam.example]", got.BlacklistedDomains)
	}

	s.RemoveTrustedDomain("AMAZON.COM")
	s.RemoveBlacklistedDomain("not-there.com")
	got = s.Snapshot()
	if len(got.TrustedDomains) != 0 {
		t.Errorf("trusted = %v, want empty", got.TrustedDomains)
	}
	if len(got.BlacklistedDomains) != 1 {
		t.Errorf("blacklisted = %v, want one entry", got.BlacklistedDomains)
	}
}

func TestSettingsSnapshotIsolation(t *testing.T) {
	s := NewSettingsStore(models.DefaultAutoDetectionSettings())

	snap := s.Snapshot()
	snap.TrustedDomains[0] = "mutated.com"
	snap.Enabled = true

	again := s.Snapshot()
	if again.TrustedDomains[0] == "mutated.com" || again.Enabled {
		t.Fatalf("snapshot mutation leaked into store: %+v", again)
	}

	before := s.Snapshot()
	s.SetEnabled(true)
	if before.Enabled {
		t.Fatal("earlier snapshot changed after SetEnabled")
	}
	if !s.Enabled() {
		t.Fatal("store not enabled after SetEnabled(true)")
	}
}

func TestSettingsSensitivity(t *testing.T) {
	s := NewSettingsStore(models.DefaultAutoDetectionSettings())

	if _, err := s.SetSensitivity("extreme"); err == nil {
		t.Fatal("expected error for unknown sensitivity")
	}
	if got := s.Snapshot().Sensitivity; got != models.SensitivityMedium {
		t.Fatalf("sensitivity changed on error: %q", got)
	}

	got, err := s.SetSensitivity(models.SensitivityHigh)
	if err != nil {
		t.Fatalf("SetSensitivity: %v", err)
	}
	if got.Sensitivity.MinConfidence() != 0.7 {
		t.Errorf("high threshold = %v, want 0.7", got.Sensitivity.MinConfidence())
	}
}

func TestSettingsReplace(t *testing.T) {
	s := NewSettingsStore(models.DefaultAutoDetectionSettings())

	got, err := s.Replace(models.AutoDetectionSettings{
		Enabled:        true,
		TrustedDomains: []string{"Target.com", "target.com"},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if !got.Enabled || got.Sensitivity != models.SensitivityMedium {
		t.Errorf("unexpected settings %+v", got)
	}
	if !slices.Equal(got.TrustedDomains, []string{"target.com"}) || len(got.BlacklistedDomains) != 0 {
		t.Errorf("domains not replaced wholesale: %+v", got)
	}

	if _, err := s.Replace(models.AutoDetectionSettings{Sensitivity: "max"}); err == nil {
		t.Fatal("expected error for invalid sensitivity")
	}
	if !s.Enabled() {
		t.Fatal("failed Replace must leave settings untouched")
	}
}
