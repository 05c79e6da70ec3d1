package store

import (
	"context"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Media Library Operations
// =============================================================================

type mediaRow struct {
	ID           string  `db:"id"`
	Filename     string  `db:"filename"`
	OriginalName string  `db:"original_name"`
	URL          string  `db:"url"`
	MimeType     string  `db:"mime_type"`
	Size         int64   `db:"size"`
	Variants     *string `db:"variants"`
	CreatedAt    string  `db:"created_at"`
}

func rowToMedia(op string, r *mediaRow) (*domain.Media, error) {
	m := &domain.Media{
		ID:           r.ID,
		Filename:     r.Filename,
		OriginalName: r.OriginalName,
		URL:          r.URL,
		MimeType:     r.MimeType,
		Size:         r.Size,
		CreatedAt:    parseTime(r.CreatedAt),
	}
	if err := unmarshalJSON(op, "media", r.ID, "variants", r.Variants, &m.Variants); err != nil {
		return nil, err
	}
	if m.Variants == nil {
		m.Variants = map[string]string{}
	}
	return m, nil
}

// CreateMedia inserts a media library entry.
func (s *SQLiteStore) CreateMedia(ctx context.Context, media *domain.Media) error {
	variants := media.Variants
	if variants == nil {
		variants = map[string]string{}
	}
	raw, err := marshalJSON("CreateMedia", "media", media.ID, "variants", variants)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO media (id, filename, original_name, url, mime_type, size, variants, created_at)
		VALUES (:id, :filename, :original_name, :url, :mime_type, :size, :variants, :created_at)`

	row := map[string]any{
		"id":            media.ID,
		"filename":      media.Filename,
		"original_name": media.OriginalName,
		"url":           media.URL,
		"mime_type":     media.MimeType,
		"size":          media.Size,
		"variants":      raw,
		"created_at":    formatTime(media.CreatedAt),
	}

	if _, err := s.exec.NamedExecContext(ctx, query, row); err != nil {
		return classifyWriteError("CreateMedia", "media", "media", media.ID, err)
	}
	return nil
}

// GetMedia returns the media entry with the given ID.
func (s *SQLiteStore) GetMedia(ctx context.Context, id string) (*domain.Media, error) {
	var row mediaRow
	if err := s.exec.GetContext(ctx, &row, `SELECT * FROM media WHERE id = ?`, id); err != nil {
		return nil, notFoundOrError("GetMedia", "media", id, err)
	}
	return rowToMedia("GetMedia", &row)
}

// DeleteMedia deletes a media entry. Files are removed by the caller.
func (s *SQLiteStore) DeleteMedia(ctx context.Context, id string) error {
	result, err := s.exec.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteMedia", "media", id, err.Error(), err)
	}
	return requireAffected("DeleteMedia", "media", id, result)
}

// ListMedia returns one page of media entries, newest first, and the total.
func (s *SQLiteStore) ListMedia(ctx context.Context, opts ListOptions) ([]domain.Media, int, error) {
	opts = opts.Normalize()

	var total int
	if err := s.exec.GetContext(ctx, &total, `SELECT COUNT(*) FROM media`); err != nil {
		return nil, 0, NewStoreError("ListMedia", "media", "", err.Error(), err)
	}

	var rows []mediaRow
	if err := s.exec.SelectContext(ctx, &rows,
		`SELECT * FROM media ORDER BY created_at DESC LIMIT ? OFFSET ?`, opts.Limit, opts.Offset); err != nil {
		return nil, 0, NewStoreError("ListMedia", "media", "", err.Error(), err)
	}

	items := make([]domain.Media, 0, len(rows))
	for i := range rows {
		m, err := rowToMedia("ListMedia", &rows[i])
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *m)
	}
	return items, total, nil
}
