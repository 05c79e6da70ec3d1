package media

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/aceconsult/cmsapi/internal/core/variant"
)

// FailedDir is the subdirectory of the staging directory that holds sources
// which could not be stored at all. The staging sweeper leaves it alone.
const FailedDir = "failed"

// ProcessingError is returned when neither the variants nor the fallback
// copy of an upload could be written. Kept is where the source now lives.
type ProcessingError struct {
	Source string
	Kept   string
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("process image %s: %v", e.Source, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Result maps output keys to web paths.
type Result struct {
	Variants map[string]string
	Fallback bool
}

// Original returns the path stored on the owning record.
func (r *Result) Original() string {
	return r.Variants[variant.KeyOriginal]
}

// Paths returns every distinct web path the result references.
func (r *Result) Paths() []string {
	seen := make(map[string]struct{}, len(r.Variants))
	paths := make([]string, 0, len(r.Variants))
	for _, p := range r.Variants {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Processor renders variants of staged uploads into the upload root.
type Processor struct {
	root   string
	logger *slog.Logger
}

// NewProcessor creates a processor writing into root, creating it if needed.
func NewProcessor(root string, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &Processor{root: root, logger: logger.With("component", "image_processor")}, nil
}

// Root returns the upload root directory.
func (p *Processor) Root() string {
	return p.root
}

// StoredSize returns the size in bytes of the stored file behind a web path.
func (p *Processor) StoredSize(ref string) (int64, error) {
	name, ok := variant.FileNameFromWebPath(ref)
	if !ok {
		return 0, fmt.Errorf("not an upload path: %q", ref)
	}
	info, err := os.Stat(filepath.Join(p.root, name))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Process renders every spec of policy for up. On success the staged source
// is removed. When decoding or any variant fails, the variants written so far
// are removed and the source is moved unmodified into the upload root; the
// result then maps every key to that single file.
func (p *Processor) Process(ctx context.Context, up *Upload, policy variant.Policy) (*Result, error) {
	base := variant.BaseName(up.Path)

	written, err := p.render(ctx, up.Path, base, policy)
	if err == nil {
		if rmErr := os.Remove(up.Path); rmErr != nil && !os.IsNotExist(rmErr) {
			p.logger.Warn("failed to remove staged upload", "path", up.Path, "error", rmErr)
		}
		return &Result{Variants: policy.Result(base)}, nil
	}

	p.logger.Warn("image processing failed, storing original",
		"upload", up.OriginalName,
		"policy", policy.Name,
		"error", err,
	)
	for _, f := range written {
		if rmErr := os.Remove(f); rmErr != nil && !os.IsNotExist(rmErr) {
			p.logger.Warn("failed to remove partial variant", "path", f, "error", rmErr)
		}
	}

	name := filepath.Base(up.Path)
	if err := os.Rename(up.Path, filepath.Join(p.root, name)); err != nil {
		return nil, &ProcessingError{Source: up.OriginalName, Kept: p.quarantine(up.Path), Err: err}
	}
	return &Result{Variants: policy.FallbackResult(variant.WebPath(name)), Fallback: true}, nil
}

// quarantine moves a staged source into FailedDir next to it for manual
// recovery and returns its new path. On failure the source stays put.
func (p *Processor) quarantine(src string) string {
	dir := filepath.Join(filepath.Dir(src), FailedDir)
	dest := filepath.Join(dir, filepath.Base(src))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.logger.Error("failed to create failed-upload directory", "dir", dir, "error", err)
		return src
	}
	if err := os.Rename(src, dest); err != nil {
		p.logger.Error("failed to keep upload for recovery", "path", src, "error", err)
		return src
	}
	p.logger.Error("upload kept for manual recovery", "path", dest)
	return dest
}

// render writes each variant in policy order and returns the files written.
func (p *Processor) render(ctx context.Context, src, base string, policy variant.Policy) ([]string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var written []string
	for _, spec := range policy.Specs {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		dest := filepath.Join(p.root, variant.FileName(base, spec))
		if err := imaging.Save(resize(img, spec), dest, imaging.JPEGQuality(spec.Quality)); err != nil {
			// A failed save can leave a truncated file behind.
			written = append(written, dest)
			return written, fmt.Errorf("write %s variant: %w", spec.Name, err)
		}
		written = append(written, dest)
	}
	return written, nil
}

func resize(img image.Image, spec variant.Spec) image.Image {
	if spec.Mode == variant.Fill {
		return imaging.Fill(img, spec.Width, spec.Height, imaging.Center, imaging.Lanczos)
	}
	return imaging.Fit(img, spec.Width, spec.Height, imaging.Lanczos)
}
