package models

type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// MinConfidence maps a sensitivity to the lowest confidence a detection
// needs to be surfaced. Unknown values behave like medium.
func (s Sensitivity) MinConfidence() float64 {
	switch s {
	case SensitivityLow:
		return 0.3
	case SensitivityHigh:
		return 0.7
	default:
		return 0.5
	}
}

func (s Sensitivity) Valid() bool {
	return s == SensitivityLow || s == SensitivityMedium || s == SensitivityHigh
}

type AutoDetectionSettings struct {
	Enabled            bool        `json:"enabled"`
	Sensitivity        Sensitivity `json:"sensitivity"`
	TrustedDomains     []string    `json:"trustedDomains"`
	BlacklistedDomains []string    `json:"blacklistedDomains"`
}

func DefaultAutoDetectionSettings() AutoDetectionSettings {
	return AutoDetectionSettings{
		Enabled:            false,
		Sensitivity:        SensitivityMedium,
		BlacklistedDomains: []string{"example.com"},
		TrustedDomains:     []string{"amazon.com", "walmart.com", "target.com", "ebay.com"},
	}
}

// Clone returns a copy that shares no slices with s.
func (s AutoDetectionSettings) Clone() AutoDetectionSettings {
	out := s
	out.TrustedDomains = append([]string(nil), s.TrustedDomains...)
	out.BlacklistedDomains = append([]string(nil), s.BlacklistedDomains...)
	return out
}
