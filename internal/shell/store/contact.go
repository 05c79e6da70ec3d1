package store

import (
	"context"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Contact Submission Operations
// =============================================================================

type contactRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Email       string  `db:"email"`
	Phone       *string `db:"phone"`
	Company     *string `db:"company"`
	ProjectType *string `db:"project_type"`
	Message     string  `db:"message"`
	IsRead      bool    `db:"is_read"`
	CreatedAt   string  `db:"created_at"`
}

func (r *contactRow) toDomain() domain.ContactSubmission {
	return domain.ContactSubmission{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       deref(r.Phone),
		Company:     deref(r.Company),
		ProjectType: deref(r.ProjectType),
		Message:     r.Message,
		IsRead:      r.IsRead,
		CreatedAt:   parseTime(r.CreatedAt),
	}
}

// CreateContactSubmission inserts a contact form submission.
func (s *SQLiteStore) CreateContactSubmission(ctx context.Context, submission *domain.ContactSubmission) error {
	query := `
		INSERT INTO contact_submissions (id, name, email, phone, company, project_type, message, is_read, created_at)
		VALUES (:id, :name, :email, :phone, :company, :project_type, :message, :is_read, :created_at)`

	row := map[string]any{
		"id":           submission.ID,
		"name":         submission.Name,
		"email":        submission.Email,
		"phone":        nullString(submission.Phone),
		"company":      nullString(submission.Company),
		"project_type": nullString(submission.ProjectType),
		"message":      submission.Message,
		"is_read":      submission.IsRead,
		"created_at":   formatTime(submission.CreatedAt),
	}

	if _, err := s.exec.NamedExecContext(ctx, query, row); err != nil {
		return classifyWriteError("CreateContactSubmission", "contact submission", "contact_submissions", submission.ID, err)
	}
	return nil
}

// GetContactSubmission returns the submission with the given ID.
func (s *SQLiteStore) GetContactSubmission(ctx context.Context, id string) (*domain.ContactSubmission, error) {
	var row contactRow
	if err := s.exec.GetContext(ctx, &row, `SELECT * FROM contact_submissions WHERE id = ?`, id); err != nil {
		return nil, notFoundOrError("GetContactSubmission", "contact submission", id, err)
	}
	c := row.toDomain()
	return &c, nil
}

// ListContactSubmissions returns one page of submissions, newest first, and
// the total number of matches.
func (s *SQLiteStore) ListContactSubmissions(ctx context.Context, filter ContactFilter, opts ListOptions) ([]domain.ContactSubmission, int, error) {
	opts = opts.Normalize()

	clause := ""
	var args []any
	if filter.IsRead != nil {
		clause = ` WHERE is_read = ?`
		args = append(args, *filter.IsRead)
	}

	var total int
	if err := s.exec.GetContext(ctx, &total, `SELECT COUNT(*) FROM contact_submissions`+clause, args...); err != nil {
		return nil, 0, NewStoreError("ListContactSubmissions", "contact submission", "", err.Error(), err)
	}

	var rows []contactRow
	query := `SELECT * FROM contact_submissions` + clause + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := s.exec.SelectContext(ctx, &rows, query, append(args, opts.Limit, opts.Offset)...); err != nil {
		return nil, 0, NewStoreError("ListContactSubmissions", "contact submission", "", err.Error(), err)
	}

	items := make([]domain.ContactSubmission, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toDomain())
	}
	return items, total, nil
}

// MarkContactRead flags a submission as read.
func (s *SQLiteStore) MarkContactRead(ctx context.Context, id string) error {
	result, err := s.exec.ExecContext(ctx, `UPDATE contact_submissions SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("MarkContactRead", "contact submission", id, err.Error(), err)
	}
	return requireAffected("MarkContactRead", "contact submission", id, result)
}

// DeleteContactSubmission deletes a submission.
func (s *SQLiteStore) DeleteContactSubmission(ctx context.Context, id string) error {
	result, err := s.exec.ExecContext(ctx, `DELETE FROM contact_submissions WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteContactSubmission", "contact submission", id, err.Error(), err)
	}
	return requireAffected("DeleteContactSubmission", "contact submission", id, result)
}
