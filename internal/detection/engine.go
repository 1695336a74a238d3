// Package detection finds likely coupon codes in page text. Results are
// heuristic: every detection carries a confidence score and callers decide
// how much of it to trust.
package detection

import (
	"math"
	"net"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/Cheertaboi/coupon-keeper/internal/metrics"
	"github.com/Cheertaboi/coupon-keeper/internal/models"
)

const UnknownStore = "Unknown Store"

const (
	baseConfidence    = 0.3
	keywordBoost      = 0.3
	trustedBoost      = 0.2
	promoShapeBoost   = 0.2
	oddLengthPenalty  = 0.2
	minTypicalCodeLen = 4
	maxTypicalCodeLen = 20
)

type Engine struct {
	now     func() time.Time
	metrics *metrics.Metrics
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan returns the candidates in content that clear the settings'
// sensitivity threshold. It never fails; bad input just yields fewer
// detections.
func (e *Engine) Scan(content, sourceURL string, settings models.AutoDetectionSettings, pageTitle string) []models.DetectedCouponData {
	if !settings.Enabled || matchesAny(sourceURL, settings.BlacklistedDomains) {
		return nil
	}

	store := StoreName(sourceURL, pageTitle)
	trusted := matchesAny(sourceURL, settings.TrustedDomains)
	hasKeyword := couponKeywords.MatchString(content)
	minConfidence := settings.Sensitivity.MinConfidence()
	detectedAt := e.now().UTC()

	var out []models.DetectedCouponData
	for _, code := range ExtractCandidates(content) {
		confidence := Confidence(code, hasKeyword, trusted)
		if confidence < minConfidence {
			continue
		}
		out = append(out, models.DetectedCouponData{
			Code:      code,
			StoreName: store,
			Source: models.DetectionSource{
				URL:        sourceURL,
				DetectedAt: detectedAt,
				Confidence: confidence,
			},
			Confidence: confidence,
		})
	}

	e.metrics.ScanCompleted(len(out))
	return out
}

// ExtractCandidates unions every pattern's matches in first-seen order,
// minus stop words.
func ExtractCandidates(content string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range codePatterns {
		for _, m := range p.FindAllStringSubmatch(content, -1) {
			code := m[0]
			if len(m) > 1 {
				code = m[1]
			}
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			if _, stop := stopWords[strings.ToUpper(code)]; stop {
				continue
			}
			out = append(out, code)
		}
	}
	return out
}

// Confidence scores one candidate in [0, 1], rounded to two decimals so
// threshold comparisons are not thrown off by float accumulation.
func Confidence(code string, hasKeyword, trusted bool) float64 {
	c := baseConfidence
	if hasKeyword {
		c += keywordBoost
	}
	if trusted {
		c += trustedBoost
	}
	if promoShape.MatchString(code) {
		c += promoShapeBoost
	}
	if n := len(code); n < minTypicalCodeLen || n > maxTypicalCodeLen {
		c -= oddLengthPenalty
	}
	c = math.Round(c*100) / 100
	return math.Min(1, math.Max(0, c))
}

// StoreName resolves a display name: known store table first, then the
// registrable domain label of the URL host, then UnknownStore.
func StoreName(sourceURL, pageTitle string) string {
	for _, s := range knownStores {
		if s.pattern.MatchString(sourceURL) || (pageTitle != "" && s.pattern.MatchString(pageTitle)) {
			return s.name
		}
	}

	u, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil || u.Hostname() == "" {
		return UnknownStore
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if net.ParseIP(host) != nil {
		return UnknownStore
	}
	if site, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		host = site
	}
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return UnknownStore
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func matchesAny(sourceURL string, domains []string) bool {
	u := strings.ToLower(sourceURL)
	for _, d := range domains {
		if d != "" && strings.Contains(u, d) {
			return true
		}
	}
	return false
}
