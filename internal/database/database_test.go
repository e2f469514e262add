package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.db")

	db, err := New(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening must not reapply anything
	db, err = New(path, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	var version, count int
	require.NoError(t, db.QueryRow(`SELECT MAX(version), COUNT(*) FROM schema_migrations`).Scan(&version, &count))
	assert.Equal(t, len(migrations), version)
	assert.Equal(t, len(migrations), count)

	var name string
	require.NoError(t, db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'time_entries'`,
	).Scan(&name))
	assert.Equal(t, "time_entries", name)
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "activity.db"), zap.NewNop())
	assert.Error(t, err)
}
