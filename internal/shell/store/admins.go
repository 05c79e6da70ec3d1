package store

import (
	"context"
	"strings"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

var _ Store = (*SQLiteStore)(nil)

// =============================================================================
// Admin Operations
// =============================================================================

type adminRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Name         string `db:"name"`
	Role         string `db:"role"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func (r *adminRow) toDomain() *domain.Admin {
	return &domain.Admin{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		Role:         r.Role,
		CreatedAt:    parseTime(r.CreatedAt),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}
}

// CountAdmins returns the number of admin accounts.
func (s *SQLiteStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, NewStoreError("CountAdmins", "admin", "", err.Error(), err)
	}
	return n, nil
}

// CreateFirstAdmin creates the bootstrap admin. The count check and insert
// run in one transaction; once any admin exists it returns ErrAdminExists.
func (s *SQLiteStore) CreateFirstAdmin(ctx context.Context, admin *domain.Admin) error {
	return s.WithTx(ctx, func(tx Store) error {
		n, err := tx.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return NewStoreError("CreateFirstAdmin", "admin", "", "registration is closed", ErrAdminExists)
		}
		return tx.(*SQLiteStore).insertAdmin(ctx, admin)
	})
}

func (s *SQLiteStore) insertAdmin(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, email, password_hash, name, role, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :name, :role, :created_at, :updated_at)`

	row := map[string]any{
		"id":            admin.ID,
		"email":         admin.Email,
		"password_hash": admin.PasswordHash,
		"name":          admin.Name,
		"role":          admin.Role,
		"created_at":    formatTime(admin.CreatedAt),
		"updated_at":    formatTime(admin.UpdatedAt),
	}

	if _, err := s.exec.NamedExecContext(ctx, query, row); err != nil {
		return classifyWriteError("CreateFirstAdmin", "admin", "admins", admin.ID, err)
	}
	return nil
}

// GetAdmin returns the admin with the given ID.
func (s *SQLiteStore) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	var row adminRow
	if err := s.exec.GetContext(ctx, &row, `SELECT * FROM admins WHERE id = ?`, id); err != nil {
		return nil, notFoundOrError("GetAdmin", "admin", id, err)
	}
	return row.toDomain(), nil
}

// GetAdminByEmail returns the admin with the given email, case-insensitively.
func (s *SQLiteStore) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var row adminRow
	if err := s.exec.GetContext(ctx, &row, `SELECT * FROM admins WHERE email = ?`, email); err != nil {
		return nil, notFoundOrError("GetAdminByEmail", "admin", email, err)
	}
	return row.toDomain(), nil
}
