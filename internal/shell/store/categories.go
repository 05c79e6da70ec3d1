package store

import (
	"context"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Category Operations
// =============================================================================

type categoryRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Slug         string `db:"slug"`
	ProjectCount int    `db:"project_count"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func (r *categoryRow) toDomain() domain.Category {
	return domain.Category{
		ID:           r.ID,
		Name:         r.Name,
		Slug:         r.Slug,
		ProjectCount: r.ProjectCount,
		CreatedAt:    parseTime(r.CreatedAt),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}
}

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM project_categories pc WHERE pc.category_id = c.id) AS project_count
	FROM categories c`

// CreateCategory inserts a category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, created_at, updated_at)
		VALUES (:id, :name, :slug, :created_at, :updated_at)`

	row := map[string]any{
		"id":         category.ID,
		"name":       category.Name,
		"slug":       category.Slug,
		"created_at": formatTime(category.CreatedAt),
		"updated_at": formatTime(category.UpdatedAt),
	}

	if _, err := s.exec.NamedExecContext(ctx, query, row); err != nil {
		return classifyWriteError("CreateCategory", "category", "categories", category.ID, err)
	}
	return nil
}

// GetCategory returns the category with the given ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var row categoryRow
	if err := s.exec.GetContext(ctx, &row, categorySelect+` WHERE c.id = ?`, id); err != nil {
		return nil, notFoundOrError("GetCategory", "category", id, err)
	}
	c := row.toDomain()
	return &c, nil
}

// GetCategoryBySlug returns the category with the given slug.
func (s *SQLiteStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var row categoryRow
	if err := s.exec.GetContext(ctx, &row, categorySelect+` WHERE c.slug = ?`, slug); err != nil {
		return nil, notFoundOrError("GetCategoryBySlug", "category", slug, err)
	}
	c := row.toDomain()
	return &c, nil
}

// UpdateCategory updates name and slug of a category.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories SET
			name = :name,
			slug = :slug,
			updated_at = :updated_at
		WHERE id = :id`

	row := map[string]any{
		"id":         category.ID,
		"name":       category.Name,
		"slug":       category.Slug,
		"updated_at": formatTime(category.UpdatedAt),
	}

	result, err := s.exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return classifyWriteError("UpdateCategory", "category", "categories", category.ID, err)
	}
	return requireAffected("UpdateCategory", "category", category.ID, result)
}

// DeleteCategory deletes a category. It fails with ErrForeignKey while
// projects still reference it.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.exec.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return classifyWriteError("DeleteCategory", "category", "categories", id, err)
	}
	return requireAffected("DeleteCategory", "category", id, result)
}

// ListCategories returns all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := s.exec.SelectContext(ctx, &rows, categorySelect+` ORDER BY c.name ASC`); err != nil {
		return nil, NewStoreError("ListCategories", "category", "", err.Error(), err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, rows[i].toDomain())
	}
	return categories, nil
}

// categoriesForProjects loads the categories of each given project.
func (s *SQLiteStore) categoriesForProjects(ctx context.Context, projectIDs []string) (map[string][]domain.Category, error) {
	out := make(map[string][]domain.Category, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}

	type linkRow struct {
		ProjectID string `db:"project_id"`
		categoryRow
	}

	query, args, err := inQuery(`
		SELECT pc.project_id, c.id, c.name, c.slug, c.created_at, c.updated_at, 0 AS project_count
		FROM project_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.project_id IN (?)
		ORDER BY c.name ASC`, projectIDs)
	if err != nil {
		return nil, NewStoreError("categoriesForProjects", "category", "", err.Error(), err)
	}

	var rows []linkRow
	if err := s.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("categoriesForProjects", "category", "", err.Error(), err)
	}
	for i := range rows {
		out[rows[i].ProjectID] = append(out[rows[i].ProjectID], rows[i].categoryRow.toDomain())
	}
	return out, nil
}
