package media

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aceconsult/cmsapi/internal/core/variant"
)

// Cleaner removes every stored file belonging to an image reference.
type Cleaner struct {
	root   string
	logger *slog.Logger
}

// NewCleaner creates a cleaner for the given upload root.
func NewCleaner(root string, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{root: root, logger: logger.With("component", "image_cleaner")}
}

// Cleanup deletes the file behind ref and all of its siblings. Missing files
// are ignored and other failures are logged; it never fails.
func (c *Cleaner) Cleanup(ctx context.Context, ref string) {
	candidates := variant.CleanupCandidates(ref)
	if len(candidates) == 0 {
		return
	}

	removed, failed := 0, 0
	for _, name := range candidates {
		if ctx.Err() != nil {
			break
		}
		err := os.Remove(filepath.Join(c.root, name))
		switch {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
		default:
			failed++
			c.logger.Warn("failed to remove image file", "file", name, "error", err)
		}
	}

	c.logger.Info("image cleanup",
		"ref", ref,
		"stem", variant.Stem(candidates[0]),
		"removed", removed,
		"failed", failed,
	)
}

// CleanupAll runs Cleanup for each reference.
func (c *Cleaner) CleanupAll(ctx context.Context, refs []string) {
	for _, ref := range refs {
		c.Cleanup(ctx, ref)
	}
}
