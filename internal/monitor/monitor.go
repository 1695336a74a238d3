// Package monitor runs the periodic detection loop: on every tick it scans
// the next source in a fixed rotation and hands non-empty results to an
// ingestion callback.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cheertaboi/coupon-keeper/internal/detection"
	"github.com/Cheertaboi/coupon-keeper/internal/metrics"
	"github.com/Cheertaboi/coupon-keeper/internal/models"
)

const DefaultInterval = 10 * time.Second

var DefaultSources = []string{
	"https://amazon.com/deals",
	"https://walmart.com/special-offers",
	"https://target.com/promotions",
}

// Ticker is the slice of time.Ticker the loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// IngestFunc receives each non-empty batch of detections.
type IngestFunc func(ctx context.Context, detected []models.DetectedCouponData)

type Config struct {
	Interval  time.Duration
	Sources   []string
	NewTicker TickerFactory
}

type Monitor struct {
	engine   *detection.Engine
	settings *detection.SettingsStore
	source   detection.PageSource
	config   Config
	metrics  *metrics.Metrics
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(engine *detection.Engine, settings *detection.SettingsStore, source detection.PageSource, cfg Config, m *metrics.Metrics, log zerolog.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewRealTicker
	}
	return &Monitor{
		engine:   engine,
		settings: settings,
		source:   source,
		config:   cfg,
		metrics:  m,
		log:      log.With().Str("component", "detection_monitor").Logger(),
	}
}

// Start launches the loop, stopping any loop already running first, so at
// most one ticker is ever live. The loop ends on Stop or when ctx is done.
// onDetected runs on the loop goroutine and must not call Start or Stop.
func (m *Monitor) Start(ctx context.Context, onDetected IngestFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := m.config.NewTicker(m.config.Interval)

	m.cancel = cancel
	m.done = done
	m.metrics.SetMonitorRunning(true)

	go m.run(loopCtx, ticker, onDetected, done)

	m.log.Info().
		Dur("interval", m.config.Interval).
		Int("sources", len(m.config.Sources)).
		Msg("detection monitor started")
}

// Stop is safe to call when nothing is running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

func (m *Monitor) stopLocked() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
	m.log.Info().Msg("detection monitor stopped")
}

func (m *Monitor) run(ctx context.Context, ticker Ticker, onDetected IngestFunc, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	defer m.metrics.SetMonitorRunning(false)

	next := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			// Each tick reads a fresh snapshot, so settings changes apply
			// from the next tick on.
			settings := m.settings.Snapshot()
			if !settings.Enabled {
				continue
			}
			url := m.config.Sources[next%len(m.config.Sources)]
			next++
			m.tick(ctx, url, settings, onDetected)
		}
	}
}

func (m *Monitor) tick(ctx context.Context, url string, settings models.AutoDetectionSettings, onDetected IngestFunc) {
	page, err := m.source.Fetch(ctx, url)
	if err != nil {
		m.log.Warn().Err(err).Str("url", url).Msg("source fetch failed")
		return
	}
	detected := m.engine.Scan(page.Content, url, settings, page.Title)
	m.log.Debug().Str("url", url).Int("detected", len(detected)).Msg("scan tick")
	if len(detected) > 0 && onDetected != nil {
		onDetected(ctx, detected)
	}
}
