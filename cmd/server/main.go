package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"burgerpos/internal/config"
	"burgerpos/internal/infra"
	"burgerpos/internal/metrics"
	"burgerpos/internal/realtime"
	"burgerpos/internal/repository"
	"burgerpos/internal/router"
	"burgerpos/internal/service"
	"burgerpos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open snapshot database")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	snapshotRepo := repository.NewSnapshotRepository(db)
	sessionRepo := repository.NewSnapshotSessionRepository(snapshotRepo)
	if rdb != nil {
		sessionRepo = repository.NewRedisSessionRepository(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	bus := service.NewEventBus()
	catalogSvc := service.NewCatalogService(bus)
	authSvc := service.NewAuthService(cfg, bus)
	core := service.NewCore(service.CoreConfig{
		TableCount:     cfg.TableCount,
		SplitTolerance: cfg.Tolerance(),
	}, authSvc, catalogSvc, bus)
	shiftSvc := service.NewShiftService(core)
	surfaceSvc := service.NewSurfaceService(core)
	checkoutSvc := service.NewCheckoutService(core)
	saleSvc := service.NewSaleService(core)
	reportSvc := service.NewReportService(saleSvc, shiftSvc)
	snapshotSvc := service.NewSnapshotService(core, catalogSvc, authSvc, snapshotRepo, sessionRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed := service.SeedConfig{AdminPassword: cfg.SeedAdminPassword, CashierPassword: cfg.SeedCashierPassword}
	if err := snapshotSvc.Restore(ctx, seed); err != nil {
		log.Fatal().Err(err).Msg("failed to restore state")
	}

	// ── Event sinks ──────────────────────────────────────────────────────────
	recorder := metrics.New()
	hub := realtime.NewHub(cfg.AllowedOrigins())
	snapshotCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	writer := worker.NewSnapshotWriter(worker.SnapshotWriterConfig{
		Flusher:  snapshotSvc,
		CB:       snapshotCB,
		Interval: cfg.SnapshotFlushInterval,
		OnFlush:  recorder.SnapshotFlushed,
	})
	bus.Subscribe(writer)
	bus.Subscribe(hub)
	bus.Subscribe(recorder)

	writer.Start(ctx)
	go hub.Run(ctx)

	r := router.New(cfg, router.Deps{
		DB:        db,
		Redis:     rdb,
		CB:        snapshotCB,
		Hub:       hub,
		Metrics:   recorder,
		Auth:      authSvc,
		Catalog:   catalogSvc,
		Shifts:    shiftSvc,
		Surfaces:  surfaceSvc,
		Checkout:  checkoutSvc,
		Shortcuts: service.NewShortcutDispatcher(checkoutSvc),
		Sales:     saleSvc,
		Reports:   reportSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("burgerpos listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Stop sinks and wait for the last snapshot write.
	cancel()
	select {
	case <-writer.Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("snapshot writer did not finish before timeout")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
