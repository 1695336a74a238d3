// Package expiry derives expiration state for coupons. Nothing here is
// cached: callers classify again every time they render or filter, since
// "now" keeps moving.
package expiry

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultExpiringSoonDays is the canonical "expiring soon" window.
const DefaultExpiringSoonDays = 7

const day = 24 * time.Hour

type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

type Info struct {
	IsExpired       bool
	DaysUntilExpiry *int // nil when expired or no expiry date
}

var layouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// Parse reads an expiry date. ok is false for blank or unparseable input.
func Parse(raw string) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func Classify(expiry *time.Time, now time.Time) Info {
	if expiry == nil || expiry.IsZero() {
		return Info{}
	}
	diff := int(math.Ceil(float64(expiry.Sub(now)) / float64(day)))
	if diff < 0 {
		return Info{IsExpired: true}
	}
	return Info{DaysUntilExpiry: &diff}
}

// ClassifyString treats an unparseable date exactly like a missing one.
func ClassifyString(raw string, now time.Time) Info {
	t, ok := Parse(raw)
	if !ok {
		return Info{}
	}
	return Classify(&t, now)
}

// StatusOf buckets info into a display tier. A non-positive threshold
// falls back to DefaultExpiringSoonDays.
func StatusOf(info Info, threshold int) Status {
	if threshold <= 0 {
		threshold = DefaultExpiringSoonDays
	}
	if info.IsExpired {
		return StatusExpired
	}
	if info.DaysUntilExpiry != nil && *info.DaysUntilExpiry <= threshold {
		return StatusExpiringSoon
	}
	return StatusActive
}

func Label(info Info) string {
	switch {
	case info.IsExpired:
		return "Expired"
	case info.DaysUntilExpiry == nil:
		return "No expiry"
	case *info.DaysUntilExpiry == 0:
		return "Expires today!"
	case *info.DaysUntilExpiry == 1:
		return "Expires tomorrow"
	default:
		return fmt.Sprintf("Expires in %d days", *info.DaysUntilExpiry)
	}
}
