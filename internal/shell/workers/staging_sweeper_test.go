package workers

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aceconsult/cmsapi/internal/shell/media"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

// =============================================================================
// Test Configuration
// =============================================================================

func TestNewStagingSweeper_DefaultConfig(t *testing.T) {
	s := NewStagingSweeper(t.TempDir(), StagingSweeperConfig{}, nil)

	assert.Equal(t, DefaultStagingSweeperConfig(), s.config)
	assert.Equal(t, 10*time.Minute, s.config.Interval)
	assert.Equal(t, time.Hour, s.config.MaxAge)
}

func TestNewStagingSweeper_CustomConfig(t *testing.T) {
	s := NewStagingSweeper(t.TempDir(), StagingSweeperConfig{Interval: time.Second, MaxAge: time.Minute}, testLogger())

	assert.Equal(t, time.Second, s.config.Interval)
	assert.Equal(t, time.Minute, s.config.MaxAge)
}

// =============================================================================
// Test Sweep
// =============================================================================

func TestSweep_RemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	writeFile(t, dir, "stale.jpg", now.Add(-2*time.Hour))
	writeFile(t, dir, "fresh.jpg", now.Add(-10*time.Minute))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	s := NewStagingSweeper(dir, StagingSweeperConfig{MaxAge: time.Hour}, testLogger())
	s.now = func() time.Time { return now }

	assert.Equal(t, 1, s.Sweep(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"fresh.jpg", "nested"}, names)
}

func TestSweep_KeepsFailedUploads(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	failed := filepath.Join(dir, media.FailedDir)
	require.NoError(t, os.Mkdir(failed, 0o755))
	writeFile(t, failed, "kept.jpg", now.Add(-30*24*time.Hour))
	writeFile(t, dir, "abandoned.jpg", now.Add(-2*time.Hour))

	s := NewStagingSweeper(dir, StagingSweeperConfig{MaxAge: time.Hour}, testLogger())
	s.now = func() time.Time { return now }

	assert.Equal(t, 1, s.Sweep(context.Background()))
	assert.FileExists(t, filepath.Join(failed, "kept.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "abandoned.jpg"))
}

func TestSweep_MissingDirectory(t *testing.T) {
	s := NewStagingSweeper(filepath.Join(t.TempDir(), "missing"), StagingSweeperConfig{}, testLogger())
	assert.Equal(t, 0, s.Sweep(context.Background()))
}

// =============================================================================
// Test Lifecycle
// =============================================================================

func TestStagingSweeper_StartStop(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stale.jpg", time.Now().Add(-2*time.Hour))

	s := NewStagingSweeper(dir, StagingSweeperConfig{Interval: 50 * time.Millisecond}, testLogger())
	s.Start()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "stale.jpg"))
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)

	s.Stop()

	// Should be able to start again
	s.Start()
	s.Stop()
}

func TestStagingSweeper_StopWithoutStart(t *testing.T) {
	s := NewStagingSweeper(t.TempDir(), StagingSweeperConfig{}, testLogger())
	s.Stop()
}
