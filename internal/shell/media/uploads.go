// Package media handles uploaded image files: staging incoming uploads,
// rendering their variants into the upload root and removing them again.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxFileSize is the largest accepted upload in bytes.
const DefaultMaxFileSize int64 = 10 << 20

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Upload is an accepted file stored in the staging directory.
type Upload struct {
	OriginalName string
	Path         string
	ContentType  string
	Size         int64
}

// RejectedError reports an upload that failed the input contract.
type RejectedError struct {
	Name   string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("upload %q rejected: %s", e.Name, e.Reason)
}

// IsRejected reports whether err is an upload rejection.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// Uploads validates multipart file parts and stages them on disk.
type Uploads struct {
	stagingDir  string
	maxFileSize int64
}

// NewUploads creates the staging directory if needed.
func NewUploads(stagingDir string, maxFileSize int64) (*Uploads, error) {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Uploads{stagingDir: stagingDir, maxFileSize: maxFileSize}, nil
}

// StagingDir returns the directory uploads are staged in.
func (u *Uploads) StagingDir() string {
	return u.stagingDir
}

// Accept validates one file part and copies it into the staging directory
// as <uuid><ext>.
func (u *Uploads) Accept(fh *multipart.FileHeader) (*Upload, error) {
	name := fh.Filename
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExts[ext] {
		return nil, &RejectedError{Name: name, Reason: "only JPEG, PNG and WEBP images are allowed"}
	}
	if fh.Size > u.maxFileSize {
		return nil, &RejectedError{Name: name, Reason: fmt.Sprintf("file exceeds %d bytes", u.maxFileSize)}
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", name, err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload %q: %w", name, err)
	}
	head = head[:n]

	contentType := declaredType(fh.Header.Get("Content-Type"))
	if !allowedTypes[contentType] {
		contentType = declaredType(http.DetectContentType(head))
	}
	if !allowedTypes[contentType] {
		return nil, &RejectedError{Name: name, Reason: "only JPEG, PNG and WEBP images are allowed"}
	}

	dest := filepath.Join(u.stagingDir, uuid.New().String()+ext)
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	written, err := io.Copy(out, io.MultiReader(bytes.NewReader(head), io.LimitReader(src, u.maxFileSize+1-int64(n))))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("write staged file: %w", err)
	}
	if written > u.maxFileSize {
		os.Remove(dest)
		return nil, &RejectedError{Name: name, Reason: fmt.Sprintf("file exceeds %d bytes", u.maxFileSize)}
	}

	return &Upload{
		OriginalName: name,
		Path:         dest,
		ContentType:  contentType,
		Size:         written,
	}, nil
}

// Discard removes a staged upload that will not be processed.
func (u *Uploads) Discard(up *Upload) {
	if up != nil {
		os.Remove(up.Path)
	}
}

func declaredType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}
