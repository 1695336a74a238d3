package detection

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Cheertaboi/coupon-keeper/internal/models"
)

// SettingsStore owns the process-wide auto-detection settings. Readers get
// an immutable snapshot; every write swaps in a complete new value so a
// concurrent tick never sees a half-applied update.
type SettingsStore struct {
	current atomic.Pointer[models.AutoDetectionSettings]
	writeMu sync.Mutex // serializes read-modify-write
}

func NewSettingsStore(initial models.AutoDetectionSettings) *SettingsStore {
	s := &SettingsStore{}
	normalized := normalize(initial)
	s.current.Store(&normalized)
	return s
}

func (s *SettingsStore) Snapshot() models.AutoDetectionSettings {
	return s.current.Load().Clone()
}

// Replace swaps in a whole new settings value.
func (s *SettingsStore) Replace(next models.AutoDetectionSettings) (models.AutoDetectionSettings, error) {
	if next.Sensitivity == "" {
		next.Sensitivity = models.SensitivityMedium
	}
	if !next.Sensitivity.Valid() {
		return s.Snapshot(), fmt.Errorf("invalid sensitivity %q", next.Sensitivity)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	normalized := normalize(next)
	s.current.Store(&normalized)
	return normalized.Clone(), nil
}

func (s *SettingsStore) update(fn func(*models.AutoDetectionSettings)) models.AutoDetectionSettings {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	next := s.current.Load().Clone()
	fn(&next)
	next = normalize(next)
	s.current.Store(&next)
	return next.Clone()
}

func (s *SettingsStore) SetEnabled(enabled bool) models.AutoDetectionSettings {
	return s.update(func(st *models.AutoDetectionSettings) { st.Enabled = enabled })
}

func (s *SettingsStore) Enabled() bool {
	return s.current.Load().Enabled
}

func (s *SettingsStore) SetSensitivity(level models.Sensitivity) (models.AutoDetectionSettings, error) {
	if !level.Valid() {
		return s.Snapshot(), fmt.Errorf("invalid sensitivity %q", level)
	}
	return s.update(func(st *models.AutoDetectionSettings) { st.Sensitivity = level }), nil
}

func (s *SettingsStore) AddTrustedDomain(domain string) models.AutoDetectionSettings {
	return s.update(func(st *models.AutoDetectionSettings) {
		st.TrustedDomains = append(st.TrustedDomains, domain)
	})
}

func (s *SettingsStore) RemoveTrustedDomain(domain string) models.AutoDetectionSettings {
	return s.update(func(st *models.AutoDetectionSettings) {
		st.TrustedDomains = without(st.TrustedDomains, domain)
	})
}

func (s *SettingsStore) AddBlacklistedDomain(domain string) models.AutoDetectionSettings {
	return s.update(func(st *models.AutoDetectionSettings) {
		st.BlacklistedDomains = append(st.BlacklistedDomains, domain)
	})
}

func (s *SettingsStore) RemoveBlacklistedDomain(domain string) models.AutoDetectionSettings {
	return s.update(func(st *models.AutoDetectionSettings) {
		st.BlacklistedDomains = without(st.BlacklistedDomains, domain)
	})
}

func normalize(s models.AutoDetectionSettings) models.AutoDetectionSettings {
	out := s.Clone()
	out.TrustedDomains = normalizeDomains(s.TrustedDomains)
	out.BlacklistedDomains = normalizeDomains(s.BlacklistedDomains)
	return out
}

// normalizeDomains lowercases, trims and drops blanks and duplicates.
func normalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || slices.Contains(out, d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func without(in []string, domain string) []string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	return slices.DeleteFunc(slices.Clone(in), func(d string) bool { return d == domain })
}
