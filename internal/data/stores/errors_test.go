package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifters/RiftedReader-sub002/internal/data/db"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(fmt.Errorf("get: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("boom")))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsCorruptionError_MessageFallback(t *testing.T) {
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.True(t, IsCorruptionError(errors.New("file is not a database")))
	assert.False(t, IsCorruptionError(errors.New("no such table: positions")))
}

func TestRecoverFromCorruption(t *testing.T) {
	dataDir := t.TempDir()
	dbPath := filepath.Join(dataDir, db.Filename)

	require.NoError(t, os.WriteFile(dbPath, []byte("not a database"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-shm", []byte("shm"), 0o644))

	require.NoError(t, RecoverFromCorruption(dataDir))

	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "corrupt file is moved aside")
	_, err = os.Stat(dbPath + "-wal")
	assert.True(t, os.IsNotExist(err), "orphaned WAL is moved aside")

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "backups remain in the data dir")

	// A fresh open must succeed on the cleaned directory.
	database, err := db.Open(dataDir)
	require.NoError(t, err)
	require.NoError(t, database.Close())
}

func TestRecoverFromCorruption_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, RecoverFromCorruption(t.TempDir()))
}
