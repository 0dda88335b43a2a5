package repository

import (
	"context"
	"encoding/json"
	"errors"

	"burgerpos/internal/model"

	"github.com/redis/go-redis/v9"
)

const sessionRedisKey = "burgerpos:session"

// SessionRepository stores the logged-in user and active shift pointers,
// separately from the durable snapshot.
type SessionRepository interface {
	SaveSession(ctx context.Context, s model.Session) error
	// LoadSession returns (nil, nil) when no session was ever saved.
	LoadSession(ctx context.Context) (*model.Session, error)
}

// ── Redis ─────────────────────────────────────────────────────────────────────

type redisSessionRepo struct{ rdb *redis.Client }

func NewRedisSessionRepository(rdb *redis.Client) SessionRepository {
	return &redisSessionRepo{rdb: rdb}
}

func (r *redisSessionRepo) SaveSession(ctx context.Context, s model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionRedisKey, data, 0).Err()
}

func (r *redisSessionRepo) LoadSession(ctx context.Context) (*model.Session, error) {
	data, err := r.rdb.Get(ctx, sessionRedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ── Snapshot table ────────────────────────────────────────────────────────────

type snapshotSessionRepo struct{ snapshots SnapshotRepository }

// NewSnapshotSessionRepository keeps the session under its own key in the snapshot table.
func NewSnapshotSessionRepository(snapshots SnapshotRepository) SessionRepository {
	return &snapshotSessionRepo{snapshots: snapshots}
}

func (r *snapshotSessionRepo) SaveSession(ctx context.Context, s model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.snapshots.Save(ctx, model.SnapshotSession, data)
}

func (r *snapshotSessionRepo) LoadSession(ctx context.Context) (*model.Session, error) {
	data, err := r.snapshots.Load(ctx, model.SnapshotSession)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
