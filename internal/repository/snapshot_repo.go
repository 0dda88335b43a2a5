package repository

import (
	"context"
	"errors"
	"time"

	"burgerpos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSnapshotNotFound is returned by Load when no snapshot was ever saved under key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository is a durable key-value store for serialized state.
type SnapshotRepository interface {
	Save(ctx context.Context, key string, payload []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

type snapshotRepo struct{ db *gorm.DB }

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository { return &snapshotRepo{db: db} }

// Save upserts the payload under key.
func (r *snapshotRepo) Save(ctx context.Context, key string, payload []byte) error {
	rec := model.SnapshotRecord{Key: key, Payload: payload, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&rec).Error
}

func (r *snapshotRepo) Load(ctx context.Context, key string) ([]byte, error) {
	var rec model.SnapshotRecord
	err := r.db.WithContext(ctx).Where("snapshot_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Payload, nil
}
