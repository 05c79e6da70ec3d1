package store

import (
	"context"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Team Member Operations
// =============================================================================

type teamMemberRow struct {
	ID         string  `db:"id"`
	Name       string  `db:"name"`
	Title      string  `db:"title"`
	Department *string `db:"department"`
	Bio        *string `db:"bio"`
	Photo      *string `db:"photo"`
	Email      *string `db:"email"`
	LinkedIn   *string `db:"linkedin"`
	SortOrder  int     `db:"sort_order"`
	CreatedAt  string  `db:"created_at"`
	UpdatedAt  string  `db:"updated_at"`
}

func (r *teamMemberRow) toDomain() domain.TeamMember {
	return domain.TeamMember{
		ID:         r.ID,
		Name:       r.Name,
		Title:      r.Title,
		Department: deref(r.Department),
		Bio:        deref(r.Bio),
		Photo:      deref(r.Photo),
		Email:      deref(r.Email),
		LinkedIn:   deref(r.LinkedIn),
		Order:      r.SortOrder,
		CreatedAt:  parseTime(r.CreatedAt),
		UpdatedAt:  parseTime(r.UpdatedAt),
	}
}

func teamMemberToRow(m *domain.TeamMember) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"name":       m.Name,
		"title":      m.Title,
		"department": nullString(m.Department),
		"bio":        nullString(m.Bio),
		"photo":      nullString(m.Photo),
		"email":      nullString(m.Email),
		"linkedin":   nullString(m.LinkedIn),
		"sort_order": m.Order,
		"created_at": formatTime(m.CreatedAt),
		"updated_at": formatTime(m.UpdatedAt),
	}
}

// CreateTeamMember inserts a team member.
func (s *SQLiteStore) CreateTeamMember(ctx context.Context, member *domain.TeamMember) error {
	query := `
		INSERT INTO team_members (id, name, title, department, bio, photo, email, linkedin, sort_order, created_at, updated_at)
		VALUES (:id, :name, :title, :department, :bio, :photo, :email, :linkedin, :sort_order, :created_at, :updated_at)`

	if _, err := s.exec.NamedExecContext(ctx, query, teamMemberToRow(member)); err != nil {
		return classifyWriteError("CreateTeamMember", "team member", "team_members", member.ID, err)
	}
	return nil
}

// GetTeamMember returns the team member with the given ID.
func (s *SQLiteStore) GetTeamMember(ctx context.Context, id string) (*domain.TeamMember, error) {
	var row teamMemberRow
	if err := s.exec.GetContext(ctx, &row, `SELECT * FROM team_members WHERE id = ?`, id); err != nil {
		return nil, notFoundOrError("GetTeamMember", "team member", id, err)
	}
	m := row.toDomain()
	return &m, nil
}

// UpdateTeamMember rewrites a team member.
func (s *SQLiteStore) UpdateTeamMember(ctx context.Context, member *domain.TeamMember) error {
	query := `
		UPDATE team_members SET
			name = :name,
			title = :title,
			department = :department,
			bio = :bio,
			photo = :photo,
			email = :email,
			linkedin = :linkedin,
			sort_order = :sort_order,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := s.exec.NamedExecContext(ctx, query, teamMemberToRow(member))
	if err != nil {
		return classifyWriteError("UpdateTeamMember", "team member", "team_members", member.ID, err)
	}
	return requireAffected("UpdateTeamMember", "team member", member.ID, result)
}

// DeleteTeamMember deletes a team member. Articles credited to the member
// keep existing without an author.
func (s *SQLiteStore) DeleteTeamMember(ctx context.Context, id string) error {
	result, err := s.exec.ExecContext(ctx, `DELETE FROM team_members WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteTeamMember", "team member", id, err.Error(), err)
	}
	return requireAffected("DeleteTeamMember", "team member", id, result)
}

// ListTeamMembers returns team members in display order.
func (s *SQLiteStore) ListTeamMembers(ctx context.Context) ([]domain.TeamMember, error) {
	var rows []teamMemberRow
	if err := s.exec.SelectContext(ctx, &rows, `SELECT * FROM team_members ORDER BY sort_order ASC, name ASC`); err != nil {
		return nil, NewStoreError("ListTeamMembers", "team member", "", err.Error(), err)
	}

	members := make([]domain.TeamMember, 0, len(rows))
	for i := range rows {
		members = append(members, rows[i].toDomain())
	}
	return members, nil
}
