package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/aceconsult/cmsapi/internal/core/variant"
	"github.com/aceconsult/cmsapi/internal/shell/media"
)

// =============================================================================
// Multipart Parsing
// =============================================================================

const multipartMemory = 8 << 20

var errTooManyFiles = errors.New("too many files")

// parseMultipart parses a multipart body bounded by the configured file
// limits. Callers must defer removeMultipart.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	limit := int64(h.config.MaxFiles)*h.config.MaxFileSize + maxJSONBody
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return r.ParseMultipartForm(multipartMemory)
}

func removeMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

// files returns the file parts under field, enforcing the per-request limit.
func (h *Handler) files(r *http.Request, field string) ([]*multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	fhs := r.MultipartForm.File[field]
	if len(fhs) > h.config.MaxFiles {
		return nil, errTooManyFiles
	}
	return fhs, nil
}

// formValue returns a form field and whether it was sent at all.
func formValue(r *http.Request, key string) (string, bool) {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// =============================================================================
// Image Batches
// =============================================================================

// imageBatch tracks the images produced while serving one request so that
// they can be removed again when the owning store write fails.
type imageBatch struct {
	h       *Handler
	results []*media.Result
}

func (h *Handler) newImageBatch() *imageBatch {
	return &imageBatch{h: h}
}

// process stages one file part and renders it with policy. A rejected file
// is removed from staging; on a ProcessingError the processor has moved the
// source into the failed-upload directory.
func (b *imageBatch) process(ctx context.Context, fh *multipart.FileHeader, policy variant.Policy) (*media.Result, error) {
	up, err := b.h.uploads.Accept(fh)
	if err != nil {
		return nil, err
	}
	res, err := b.h.processor.Process(ctx, up, policy)
	if err != nil {
		return nil, err
	}
	if res.Fallback {
		b.h.logger.Warn("stored unprocessed image", "upload", up.OriginalName, "path", res.Original())
	}
	b.results = append(b.results, res)
	return res, nil
}

// processAll renders every file part in order. On the first failure the
// images already produced are discarded.
func (b *imageBatch) processAll(ctx context.Context, fhs []*multipart.FileHeader, policy variant.Policy) error {
	for _, fh := range fhs {
		if _, err := b.process(ctx, fh, policy); err != nil {
			b.discard(ctx)
			return err
		}
	}
	return nil
}

// originals returns the path stored on the owning record for each image.
func (b *imageBatch) originals() []string {
	out := make([]string, 0, len(b.results))
	for _, res := range b.results {
		out = append(out, res.Original())
	}
	return out
}

// discard removes every file the batch produced.
func (b *imageBatch) discard(ctx context.Context) {
	b.h.cleanup(ctx, b.originals()...)
	b.results = nil
}

// cleanup removes stored images and all their renditions. It runs to
// completion even when the request context has been cancelled.
func (h *Handler) cleanup(ctx context.Context, refs ...string) {
	h.cleaner.CleanupAll(context.WithoutCancel(ctx), refs)
}

// =============================================================================
// Failure Helpers
// =============================================================================

// writeUploadFailure reports a multipart parsing or file limit error.
func (h *Handler) writeUploadFailure(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errTooManyFiles):
		h.writeValidation(w, "too many files in one request")
	case errors.As(err, &tooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "payload_too_large")
	default:
		h.writeValidation(w, "invalid multipart form")
	}
}
