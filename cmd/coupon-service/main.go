package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Cheertaboi/coupon-keeper/internal/api"
	"github.com/Cheertaboi/coupon-keeper/internal/api/handlers"
	"github.com/Cheertaboi/coupon-keeper/internal/api/middleware"
	"github.com/Cheertaboi/coupon-keeper/internal/cache"
	"github.com/Cheertaboi/coupon-keeper/internal/clipboard"
	"github.com/Cheertaboi/coupon-keeper/internal/config"
	"github.com/Cheertaboi/coupon-keeper/internal/detection"
	"github.com/Cheertaboi/coupon-keeper/internal/metrics"
	"github.com/Cheertaboi/coupon-keeper/internal/models"
	"github.com/Cheertaboi/coupon-keeper/internal/monitor"
	"github.com/Cheertaboi/coupon-keeper/internal/repository"
	"github.com/Cheertaboi/coupon-keeper/internal/service"
	"github.com/Cheertaboi/coupon-keeper/pkg/db"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	slot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("open storage")
	}
	defer closeSlot()
	log.Info().Str("backend", cfg.StorageBackend).Msg("storage ready")

	svc := service.NewCouponService(repository.NewCouponRepo(slot), service.Options{
		ExpiringSoonDays:    cfg.ExpiringSoonDays,
		MinIngestConfidence: cfg.MinIngestConfidence,
	}, m, log)

	settings := detection.NewSettingsStore(models.DefaultAutoDetectionSettings())
	engine := detection.NewEngine(detection.WithMetrics(m))
	source := detection.SimulatedSource{}
	mon := monitor.New(engine, settings, source, monitor.Config{Interval: cfg.MonitorInterval}, m, log)
	defer mon.Stop()

	ingest := func(ctx context.Context, detected []models.DetectedCouponData) {
		svc.IngestDetected(ctx, detected)
	}

	if cfg.MonitorAutoStart {
		// the loop only scans while detection is enabled
		settings.SetEnabled(true)
		mon.Start(ctx, ingest)
	}

	handler := api.NewRouter(
		handlers.NewCouponHandler(svc, clipboard.NewSystemCopier(log)),
		handlers.NewDetectionHandler(ctx, engine, settings, source, mon, ingest, log),
		reg,
	)

	r := chi.NewRouter()
	r.Use(middleware.Logger(log))
	r.Mount("/", handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		mon.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown")
		}
		close(idleConnsClosed)
	}()

	log.Info().Str("addr", srv.Addr).Msg("starting coupon-keeper")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("listen")
	}

	<-idleConnsClosed
	log.Info().Msg("server stopped")
}

// openSlot picks the storage slot for the configured backend. The returned
// func releases whatever connection backs it.
func openSlot(ctx context.Context, cfg *config.Config) (repository.Slot, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		conn, err := db.NewPostgresConnection(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		slot := repository.NewPostgresSlot(conn)
		if err := slot.EnsureSchema(ctx); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return slot, closer(conn), nil
	case config.StorageRedis:
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSlot(client, "coupon-keeper:"), redisCloser(client), nil
	default:
		return cache.NewMemorySlot(), func() {}, nil
	}
}

func closer(conn *sql.DB) func() {
	return func() { _ = conn.Close() }
}

func redisCloser(client *redis.Client) func() {
	return func() { _ = client.Close() }
}
