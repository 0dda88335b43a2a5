// cmd/seed/main.go: resets the snapshot store to the demo catalog and users.
// Every shift, sale and open table is discarded.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"burgerpos/internal/config"
	"burgerpos/internal/infra"
	"burgerpos/internal/repository"
	"burgerpos/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open snapshot database")
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	snapshotRepo := repository.NewSnapshotRepository(db)
	sessionRepo := repository.NewSnapshotSessionRepository(snapshotRepo)
	if rdb != nil {
		sessionRepo = repository.NewRedisSessionRepository(rdb)
		defer rdb.Close()
	}

	catalogSvc := service.NewCatalogService(nil)
	authSvc := service.NewAuthService(cfg, nil)
	core := service.NewCore(service.CoreConfig{TableCount: cfg.TableCount, SplitTolerance: cfg.Tolerance()}, authSvc, catalogSvc, nil)

	catalogSvc.SeedDefaults()
	if err := authSvc.SeedDefaults(cfg.SeedAdminPassword, cfg.SeedCashierPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed users")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	snapshots := service.NewSnapshotService(core, catalogSvc, authSvc, snapshotRepo, sessionRepo)
	if err := snapshots.Flush(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to write snapshot")
	}

	log.Info().
		Int("products", len(catalogSvc.Export())).
		Str("admin", "admin").
		Str("cashier", "caixa1").
		Msg("demo data written")
}
