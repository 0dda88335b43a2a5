//go:build integration

package repository

// Runs the snapshot and session stores against real Postgres and Redis.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"

	"burgerpos/internal/infra"
	"burgerpos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestIntegration_PostgresSnapshotRepo(t *testing.T) {
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("burgerpos_test"),
		tcPostgres.WithUsername("burgerpos"),
		tcPostgres.WithPassword("burgerpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)

	repo := NewSnapshotRepository(db)
	require.NoError(t, repo.Save(ctx, model.SnapshotDurable, []byte(`{"version":1,"sales":[]}`)))
	require.NoError(t, repo.Save(ctx, model.SnapshotDurable, []byte(`{"version":1,"sales":[{"id":"x"}]}`)))

	got, err := repo.Load(ctx, model.SnapshotDurable)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"sales":[{"id":"x"}]}`, string(got))
}

func TestIntegration_RedisSessionRepo(t *testing.T) {
	ctx := context.Background()

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)

	repo := NewRedisSessionRepository(rdb)
	s, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	uid := uuid.New()
	require.NoError(t, repo.SaveSession(ctx, model.Session{CurrentUserID: &uid}))

	s, err = repo.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, uid, *s.CurrentUserID)
	assert.Nil(t, s.CurrentShiftID)
}
