package model

import "time"

// Snapshot keys.
const (
	SnapshotDurable = "durable"
	SnapshotSession = "session"
)

// SnapshotRecord is the key-value row holding a serialized state snapshot.
type SnapshotRecord struct {
	Key       string    `gorm:"column:snapshot_key;primaryKey;type:varchar(64)"`
	Payload   []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (SnapshotRecord) TableName() string { return "pos_snapshots" }

// DurableState is the persisted shape of everything except the session pointer.
type DurableState struct {
	Version  int       `json:"version"`
	Shifts   []Shift   `json:"shifts"`
	Products []Product `json:"products"`
	Sales    []Sale    `json:"sales"`
	Tables   []Surface `json:"tables"`
	Users    []User    `json:"users"`
}
