package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, g Gateway) {
	t.Helper()

	_, ok, err := g.LastFullCharge()
	require.NoError(t, err)
	assert.False(t, ok, "fresh gateway should have no timestamp")

	ts := time.Date(2026, 1, 17, 8, 30, 15, 123456789, time.UTC)
	require.NoError(t, g.SetLastFullCharge(ts))

	got, ok, err := g.LastFullCharge()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ts.Equal(got), "got %v, want %v", got, ts)

	later := ts.Add(2 * time.Hour)
	require.NoError(t, g.SetLastFullCharge(later))
	got, _, err = g.LastFullCharge()
	require.NoError(t, err)
	assert.True(t, later.Equal(got), "overwrite: got %v, want %v", got, later)

	if c, isClearer := g.(Clearer); isClearer {
		require.NoError(t, c.Clear())
		_, ok, err = g.LastFullCharge()
		require.NoError(t, err)
		assert.False(t, ok, "timestamp should be gone after Clear")
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	roundTrip(t, NewMemory())
}

func TestFileRoundTrip(t *testing.T) {
	roundTrip(t, NewFile(filepath.Join(t.TempDir(), "nested", "state.json")))
}

func TestFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, NewFile(path).SetLastFullCharge(ts))

	got, ok, err := NewFile(path).LastFullCharge()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ts.Equal(got))
}

func TestFileEmptyAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
	_, ok, err := NewFile(empty).LastFullCharge()
	require.NoError(t, err)
	assert.False(t, ok)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o600))
	_, _, err = NewFile(corrupt).LastFullCharge()
	assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
}

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer db.Close()

	roundTrip(t, db)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ts := time.Date(2026, 5, 2, 9, 15, 0, 42, time.UTC)

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.SetLastFullCharge(ts))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	got, ok, err := db.LastFullCharge()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ts.Equal(got))
}
