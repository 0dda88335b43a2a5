package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorFor(t *testing.T) {
	cases := []struct {
		url  string
		name string
	}{
		{"sqlite://:memory:", "sqlite"},
		{"postgres://u:p@localhost:5432/pos?sslmode=disable", "postgres"},
		{"postgresql://u:p@localhost/pos", "postgres"},
		{"mysql://u:p@tcp(localhost:3306)/pos?parseTime=true", "mysql"},
	}
	for _, tc := range cases {
		d, err := dialectorFor(tc.url)
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.name, d.Name(), tc.url)
	}
}

func TestDialectorFor_Rejects(t *testing.T) {
	_, err := dialectorFor("data/pos.db")
	assert.ErrorContains(t, err, "sem esquema")

	_, err = dialectorFor("mongodb://localhost")
	assert.ErrorContains(t, err, "não suportado")
}

func TestNewDatabase_SQLiteMemoryMigrates(t *testing.T) {
	db, err := NewDatabase("sqlite://:memory:")
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("pos_snapshots"))
}

func TestNewRedis_EmptyURLIsDisabled(t *testing.T) {
	rdb, err := NewRedis("")
	require.NoError(t, err)
	assert.Nil(t, rdb)
}
