package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileMissingUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)

	assert.Equal(t, "@every 10s", f.SampleSchedule())
	assert.Equal(t, 3000, f.DesignCapacityMAh())
	assert.True(t, f.NotificationsEnabled())
	assert.False(t, f.DailyReminder())
	assert.Equal(t, "20:00", f.ReminderTime())
	assert.True(t, f.ShowHealthWarning())
	assert.False(t, f.HasLaunchedBefore())
	assert.Equal(t, StoreFile, f.Store())
	assert.Equal(t, filepath.Join(dir, "state.json"), f.StatePath())
}

func TestNewFileEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte("  \n"), 0644))

	f, err := NewFile(p)
	require.NoError(t, err)
	assert.Equal(t, 3000, f.DesignCapacityMAh())
}

func TestNewFileInvalidJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0644))

	_, err := NewFile(p)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.json")
	f, err := NewFile(p)
	require.NoError(t, err)

	f.SetSampleSchedule("@every 30s")
	f.SetDesignCapacityMAh(4500)
	f.SetNotificationsEnabled(false)
	f.SetDailyReminder(true)
	f.SetReminderTime("07:30")
	f.SetShowHealthWarning(false)
	f.SetHasLaunchedBefore(true)
	f.SetStore(StoreSQLite)
	require.NoError(t, f.Save())

	g, err := NewFile(p)
	require.NoError(t, err)
	assert.Equal(t, "@every 30s", g.SampleSchedule())
	assert.Equal(t, 4500, g.DesignCapacityMAh())
	assert.False(t, g.NotificationsEnabled())
	assert.True(t, g.DailyReminder())
	assert.Equal(t, "07:30", g.ReminderTime())
	assert.False(t, g.ShowHealthWarning())
	assert.True(t, g.HasLaunchedBefore())
	assert.Equal(t, StoreSQLite, g.Store())
	assert.Equal(t, filepath.Join(filepath.Dir(p), "state.db"), g.StatePath())

	g.SetStatePath("/tmp/elsewhere.db")
	assert.Equal(t, "/tmp/elsewhere.db", g.StatePath())
}

func TestReset(t *testing.T) {
	f := NewFileFromConfig(nil, filepath.Join(t.TempDir(), "config.json"))
	f.SetHasLaunchedBefore(true)
	f.SetDesignCapacityMAh(1200)

	f.Reset()
	assert.False(t, f.HasLaunchedBefore())
	assert.Equal(t, 3000, f.DesignCapacityMAh())
}

func TestSetterValidation(t *testing.T) {
	f := NewFileFromConfig(nil, "config.json")

	assert.Panics(t, func() { f.SetDesignCapacityMAh(0) })
	assert.Panics(t, func() { f.SetStore("postgres") })
	assert.Panics(t, func() { f.SetReminderTime("25:00") })
	assert.NotPanics(t, func() { f.SetReminderTime("23:59") })
}

func TestLogrusFields(t *testing.T) {
	f := NewFileFromConfig(nil, "config.json")
	fields := f.LogrusFields()
	assert.Equal(t, "@every 10s", fields["sampleSchedule"])
	assert.Equal(t, StoreFile, fields["store"])
	assert.Len(t, fields, 9)
}
