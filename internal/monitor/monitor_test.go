package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cheertaboi/coupon-keeper/internal/detection"
	"github.com/Cheertaboi/coupon-keeper/internal/models"
)

// fakeTicker signals on ready each time the loop re-enters its select,
// which is how tests know a tick has been fully processed.
type fakeTicker struct {
	ch      chan time.Time
	ready   chan struct{}
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time {
	select {
	case f.ready <- struct{}{}:
	default:
	}
	return f.ch
}

func (f *fakeTicker) Stop() { f.stopped.Store(true) }

type fakeTickers struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeTickers) New(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time), ready: make(chan struct{}, 1)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeTickers) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

func (f *fakeTickers) latest() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}

type failingSource struct{}

func (failingSource) Fetch(context.Context, string) (detection.Page, error) {
	return detection.Page{}, errors.New("unreachable")
}

func newTestMonitor(settings *detection.SettingsStore, source detection.PageSource) (*Monitor, *fakeTickers) {
	tickers := &fakeTickers{}
	m := New(detection.NewEngine(), settings, source, Config{NewTicker: tickers.New}, nil, zerolog.Nop())
	return m, tickers
}

func collector() (IngestFunc, <-chan []models.DetectedCouponData) {
	ch := make(chan []models.DetectedCouponData, 16)
	return func(_ context.Context, d []models.DetectedCouponData) { ch <- d }, ch
}

func waitIdle(t *testing.T, ft *fakeTicker) {
	t.Helper()
	select {
	case <-ft.ready:
	case <-time.After(time.Second):
		t.Fatal("monitor loop never became idle")
	}
}

// tick delivers one tick and returns once the loop has finished with it.
func tick(t *testing.T, ft *fakeTicker) {
	t.Helper()
	select {
	case ft.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("monitor loop did not receive tick")
	}
	waitIdle(t, ft)
}

func nextBatch(t *testing.T, ch <-chan []models.DetectedCouponData) []models.DetectedCouponData {
	t.Helper()
	select {
	case b := <-ch:
		return b
	default:
		t.Fatal("no detections delivered")
		return nil
	}
}

func TestStartTwiceKeepsOneTicker(t *testing.T) {
	settings := detection.NewSettingsStore(models.DefaultAutoDetectionSettings())
	settings.SetEnabled(true)
	m, tickers := newTestMonitor(settings, detection.SimulatedSource{})
	onDetected, batches := collector()

	m.Start(context.Background(), onDetected)
	first := tickers.latest()
	m.Start(context.Background(), onDetected)
	defer m.Stop()
	waitIdle(t, tickers.latest())

	if got := tickers.active(); got != 1 {
		t.Fatalf("active tickers = %d, want 1", got)
	}
	if !first.stopped.Load() {
		t.Fatal("first ticker not stopped by second Start")
	}

	select {
	case first.ch <- time.Now():
		t.Fatal("stale loop still consuming ticks")
	case <-time.After(20 * time.Millisecond):
	}

	tick(t, tickers.latest())
	batch := nextBatch(t, batches)
	if batch[0].Source.URL != DefaultSources[0] {
		t.Errorf("first scan url = %q, want %q", batch[0].Source.URL, DefaultSources[0])
	}

	if n := len(batches); n != 0 {
		t.Fatalf("%d extra batches for a single tick", n)
	}
}

func TestSettingsChangesApplyOnNextTick(t *testing.T) {
	settings := detection.NewSettingsStore(models.DefaultAutoDetectionSettings())
	m, tickers := newTestMonitor(settings, detection.SimulatedSource{})
	onDetected, batches := collector()

	m.Start(context.Background(), onDetected)
	defer m.Stop()
	ft := tickers.latest()
	waitIdle(t, ft)

	// Disabled: no scan and the rotation does not advance.
	tick(t, ft)
	if n := len(batches); n != 0 {
		t.Fatalf("disabled tick delivered %d batches", n)
	}

	settings.SetEnabled(true)
	tick(t, ft)
	amazon := nextBatch(t, batches)
	if amazon[0].Source.URL != DefaultSources[0] {
		t.Fatalf("scan url = %q, want %q", amazon[0].Source.URL, DefaultSources[0])
	}
	emitted := amazon[0].Confidence

	settings.AddBlacklistedDomain("walmart.com")
	settings.SetSensitivity(models.SensitivityHigh)
	tick(t, ft) // walmart: blacklisted
	if n := len(batches); n != 0 {
		t.Fatalf("blacklisted source delivered %d batches", n)
	}
	tick(t, ft) // target

	target := nextBatch(t, batches)
	if target[0].Source.URL != DefaultSources[2] {
		t.Fatalf("scan url = %q, want %q", target[0].Source.URL, DefaultSources[2])
	}
	for _, d := range target {
		if d.Confidence < 0.7 {
			t.Errorf("%s confidence %v below high threshold", d.Code, d.Confidence)
		}
		if !strings.EqualFold(d.StoreName, "target") {
			t.Errorf("store = %q, want Target", d.StoreName)
		}
	}
	if amazon[0].Confidence != emitted {
		t.Error("earlier detection was modified by a later settings change")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	settings := detection.NewSettingsStore(models.DefaultAutoDetectionSettings())
	m, tickers := newTestMonitor(settings, detection.SimulatedSource{})

	m.Stop()
	if m.Running() {
		t.Fatal("fresh monitor reports running")
	}

	m.Start(context.Background(), nil)
	if !m.Running() {
		t.Fatal("monitor not running after Start")
	}
	m.Stop()
	m.Stop()

	if m.Running() {
		t.Fatal("monitor still running after Stop")
	}
	if got := tickers.active(); got != 0 {
		t.Fatalf("active tickers = %d, want 0", got)
	}
}

func TestParentContextEndsLoop(t *testing.T) {
	settings := detection.NewSettingsStore(models.DefaultAutoDetectionSettings())
	m, tickers := newTestMonitor(settings, detection.SimulatedSource{})

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx, nil)
	cancel()

	deadline := time.Now().Add(time.Second)
	for m.Running() {
		if time.Now().After(deadline) {
			t.Fatal("loop did not exit after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := tickers.active(); got != 0 {
		t.Fatalf("active tickers = %d, want 0", got)
	}
	m.Stop()
}

func TestFetchErrorSkipsTick(t *testing.T) {
	settings := detection.NewSettingsStore(models.DefaultAutoDetectionSettings())
	settings.SetEnabled(true)
	m, tickers := newTestMonitor(settings, failingSource{})
	onDetected, batches := collector()

	m.Start(context.Background(), onDetected)
	defer m.Stop()
	ft := tickers.latest()
	waitIdle(t, ft)

	tick(t, ft)
	tick(t, ft)

	if n := len(batches); n != 0 {
		t.Fatalf("unexpected %d batches", n)
	}
	if !m.Running() {
		t.Fatal("fetch errors must not stop the loop")
	}
}
