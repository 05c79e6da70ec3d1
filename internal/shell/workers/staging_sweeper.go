// Package workers contains background workers for the CMS API.
package workers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StagingSweeperConfig configures the staging sweeper worker.
type StagingSweeperConfig struct {
	// Interval is the time between sweep cycles.
	// Default: 10 minutes.
	Interval time.Duration

	// MaxAge is how long a staged upload may stay before it is removed.
	// Default: 1 hour.
	MaxAge time.Duration
}

// DefaultStagingSweeperConfig returns the default configuration.
func DefaultStagingSweeperConfig() StagingSweeperConfig {
	return StagingSweeperConfig{
		Interval: 10 * time.Minute,
		MaxAge:   time.Hour,
	}
}

// StagingSweeper periodically removes staged uploads that no request
// consumed, e.g. after a crash between staging and processing.
type StagingSweeper struct {
	dir    string
	config StagingSweeperConfig
	logger *slog.Logger
	now    func() time.Time

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStagingSweeper creates a sweeper for the staging directory dir.
func NewStagingSweeper(dir string, config StagingSweeperConfig, logger *slog.Logger) *StagingSweeper {
	defaults := DefaultStagingSweeperConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.MaxAge <= 0 {
		config.MaxAge = defaults.MaxAge
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &StagingSweeper{
		dir:    dir,
		config: config,
		logger: logger.With("component", "staging_sweeper"),
		now:    time.Now,
	}
}

// Start begins the sweeper background goroutine.
func (s *StagingSweeper) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go s.run()

	s.logger.Info("staging sweeper started",
		"dir", s.dir,
		"interval", s.config.Interval,
		"max_age", s.config.MaxAge,
	)
}

// Stop stops the sweeper and waits for a running cycle to finish.
func (s *StagingSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("staging sweeper stopped")
}

func (s *StagingSweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.Sweep(s.ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.ctx)
		}
	}
}

// Sweep removes regular files in the staging directory older than MaxAge
// and returns how many were removed. Subdirectories are not entered, so the
// failed-upload directory kept for manual recovery survives.
func (s *StagingSweeper) Sweep(ctx context.Context) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("failed to read staging directory", "error", err)
		}
		return 0
	}

	cutoff := s.now().Add(-s.config.MaxAge)
	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove stale upload", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed stale staged uploads", "count", removed)
	}
	return removed
}
