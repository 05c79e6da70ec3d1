package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Project Operations
// =============================================================================

type projectRow struct {
	ID             string  `db:"id"`
	Title          string  `db:"title"`
	Slug           string  `db:"slug"`
	Description    string  `db:"description"`
	Location       string  `db:"location"`
	City           *string `db:"city"`
	Country        *string `db:"country"`
	StartDate      *string `db:"start_date"`
	CompletionDate *string `db:"completion_date"`
	Status         string  `db:"status"`
	Client         *string `db:"client"`
	ProjectSize    *string `db:"project_size"`
	TechnicalSpecs *string `db:"technical_specs"`
	TeamCredits    *string `db:"team_credits"`
	Awards         *string `db:"awards"`
	IsFeatured     bool    `db:"is_featured"`
	Images         *string `db:"images"`
	FeaturedImage  *string `db:"featured_image"`
	PublishedAt    *string `db:"published_at"`
	CreatedAt      string  `db:"created_at"`
	UpdatedAt      string  `db:"updated_at"`
}

type projectSummaryRow struct {
	ID            string  `db:"id"`
	Title         string  `db:"title"`
	Slug          string  `db:"slug"`
	Location      string  `db:"location"`
	FeaturedImage *string `db:"featured_image"`
}

func (r *projectSummaryRow) toDomain() domain.ProjectSummary {
	return domain.ProjectSummary{
		ID:            r.ID,
		Title:         r.Title,
		Slug:          r.Slug,
		Location:      r.Location,
		FeaturedImage: deref(r.FeaturedImage),
	}
}

func projectToRow(op string, p *domain.Project) (map[string]any, error) {
	var specs any
	if p.TechnicalSpecs != nil {
		raw, err := marshalJSON(op, "project", p.ID, "technical_specs", p.TechnicalSpecs)
		if err != nil {
			return nil, err
		}
		specs = raw
	}

	credits, err := marshalJSON(op, "project", p.ID, "team_credits", nonNilMaps(p.TeamCredits))
	if err != nil {
		return nil, err
	}
	awards, err := marshalJSON(op, "project", p.ID, "awards", nonNilMaps(p.Awards))
	if err != nil {
		return nil, err
	}
	images, err := marshalJSON(op, "project", p.ID, "images", nonNilStrings(p.Images))
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"id":              p.ID,
		"title":           p.Title,
		"slug":            p.Slug,
		"description":     p.Description,
		"location":        p.Location,
		"city":            nullString(p.City),
		"country":         nullString(p.Country),
		"start_date":      formatTimePtr(p.StartDate),
		"completion_date": formatTimePtr(p.CompletionDate),
		"status":          p.Status,
		"client":          nullString(p.Client),
		"project_size":    nullString(p.ProjectSize),
		"technical_specs": specs,
		"team_credits":    credits,
		"awards":          awards,
		"is_featured":     p.IsFeatured,
		"images":          images,
		"featured_image":  nullString(p.FeaturedImage),
		"published_at":    formatTimePtr(p.PublishedAt),
		"created_at":      formatTime(p.CreatedAt),
		"updated_at":      formatTime(p.UpdatedAt),
	}, nil
}

func rowToProject(op string, r *projectRow) (*domain.Project, error) {
	p := &domain.Project{
		ID:             r.ID,
		Title:          r.Title,
		Slug:           r.Slug,
		Description:    r.Description,
		Location:       r.Location,
		City:           deref(r.City),
		Country:        deref(r.Country),
		StartDate:      parseTimePtr(r.StartDate),
		CompletionDate: parseTimePtr(r.CompletionDate),
		Status:         r.Status,
		Client:         deref(r.Client),
		ProjectSize:    deref(r.ProjectSize),
		IsFeatured:     r.IsFeatured,
		FeaturedImage:  deref(r.FeaturedImage),
		PublishedAt:    parseTimePtr(r.PublishedAt),
		Categories:     []domain.Category{},
		CreatedAt:      parseTime(r.CreatedAt),
		UpdatedAt:      parseTime(r.UpdatedAt),
	}

	if err := unmarshalJSON(op, "project", r.ID, "technical_specs", r.TechnicalSpecs, &p.TechnicalSpecs); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(op, "project", r.ID, "team_credits", r.TeamCredits, &p.TeamCredits); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(op, "project", r.ID, "awards", r.Awards, &p.Awards); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(op, "project", r.ID, "images", r.Images, &p.Images); err != nil {
		return nil, err
	}
	p.TeamCredits = nonNilMaps(p.TeamCredits)
	p.Awards = nonNilMaps(p.Awards)
	p.Images = nonNilStrings(p.Images)
	return p, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilMaps(v []map[string]any) []map[string]any {
	if v == nil {
		return []map[string]any{}
	}
	return v
}

func categoryIDs(categories []domain.Category) []string {
	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// CreateProject inserts a project together with its category links.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *domain.Project) error {
	row, err := projectToRow("CreateProject", project)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (
			id, title, slug, description, location, city, country, start_date,
			completion_date, status, client, project_size, technical_specs,
			team_credits, awards, is_featured, images, featured_image,
			published_at, created_at, updated_at
		) VALUES (
			:id, :title, :slug, :description, :location, :city, :country, :start_date,
			:completion_date, :status, :client, :project_size, :technical_specs,
			:team_credits, :awards, :is_featured, :images, :featured_image,
			:published_at, :created_at, :updated_at
		)`

	return s.WithTx(ctx, func(tx Store) error {
		txs := tx.(*SQLiteStore)
		if _, err := txs.exec.NamedExecContext(ctx, query, row); err != nil {
			return classifyWriteError("CreateProject", "project", "projects", project.ID, err)
		}
		return txs.setProjectCategories(ctx, "CreateProject", project.ID, categoryIDs(project.Categories))
	})
}

// GetProject returns the project with the given ID, categories included.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.getProject(ctx, "GetProject", `SELECT * FROM projects WHERE id = ?`, id)
}

// GetProjectBySlug returns the project with the given slug, categories included.
func (s *SQLiteStore) GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	return s.getProject(ctx, "GetProjectBySlug", `SELECT * FROM projects WHERE slug = ?`, slug)
}

func (s *SQLiteStore) getProject(ctx context.Context, op, query, key string) (*domain.Project, error) {
	var row projectRow
	if err := s.exec.GetContext(ctx, &row, query, key); err != nil {
		return nil, notFoundOrError(op, "project", key, err)
	}

	project, err := rowToProject(op, &row)
	if err != nil {
		return nil, err
	}

	cats, err := s.categoriesForProjects(ctx, []string{project.ID})
	if err != nil {
		return nil, err
	}
	if c, ok := cats[project.ID]; ok {
		project.Categories = c
	}
	return project, nil
}

// UpdateProject rewrites a project and replaces its category links.
func (s *SQLiteStore) UpdateProject(ctx context.Context, project *domain.Project) error {
	row, err := projectToRow("UpdateProject", project)
	if err != nil {
		return err
	}

	query := `
		UPDATE projects SET
			title = :title,
			slug = :slug,
			description = :description,
			location = :location,
			city = :city,
			country = :country,
			start_date = :start_date,
			completion_date = :completion_date,
			status = :status,
			client = :client,
			project_size = :project_size,
			technical_specs = :technical_specs,
			team_credits = :team_credits,
			awards = :awards,
			is_featured = :is_featured,
			images = :images,
			featured_image = :featured_image,
			published_at = :published_at,
			updated_at = :updated_at
		WHERE id = :id`

	return s.WithTx(ctx, func(tx Store) error {
		txs := tx.(*SQLiteStore)
		result, err := txs.exec.NamedExecContext(ctx, query, row)
		if err != nil {
			return classifyWriteError("UpdateProject", "project", "projects", project.ID, err)
		}
		if err := requireAffected("UpdateProject", "project", project.ID, result); err != nil {
			return err
		}
		return txs.setProjectCategories(ctx, "UpdateProject", project.ID, categoryIDs(project.Categories))
	})
}

func (s *SQLiteStore) setProjectCategories(ctx context.Context, op, projectID string, ids []string) error {
	if _, err := s.exec.ExecContext(ctx, `DELETE FROM project_categories WHERE project_id = ?`, projectID); err != nil {
		return NewStoreError(op, "project", projectID, err.Error(), err)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := s.exec.ExecContext(ctx,
			`INSERT INTO project_categories (project_id, category_id) VALUES (?, ?)`, projectID, id); err != nil {
			return classifyWriteError(op, "project", "project_categories", projectID, err)
		}
	}
	return nil
}

// DeleteProject deletes a project. Category and related links cascade.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.exec.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return classifyWriteError("DeleteProject", "project", "projects", id, err)
	}
	return requireAffected("DeleteProject", "project", id, result)
}

// ListProjects returns one page of projects matching filter and the total
// number of matches. Featured projects come first, then the most recently
// published.
func (s *SQLiteStore) ListProjects(ctx context.Context, filter ProjectFilter, opts ListOptions) ([]domain.Project, int, error) {
	opts = opts.Normalize()

	var where []string
	var args []any

	if filter.PublishedOnly {
		where = append(where, "p.published_at IS NOT NULL")
	}
	if filter.Status != "" {
		where = append(where, "p.status = ?")
		args = append(args, filter.Status)
	}
	if filter.FeaturedOnly {
		where = append(where, "p.is_featured = 1")
	}
	if filter.Year > 0 {
		year := strconv.Itoa(filter.Year)
		where = append(where, "(substr(p.start_date, 1, 4) = ? OR substr(p.completion_date, 1, 4) = ?)")
		args = append(args, year, year)
	}
	if filter.CategorySlug != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM project_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.project_id = p.id AND c.slug = ?)`)
		args = append(args, filter.CategorySlug)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := likePattern(term)
		where = append(where, `(LOWER(p.title) LIKE ? ESCAPE '\' OR LOWER(p.description) LIKE ? ESCAPE '\' OR LOWER(p.location) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.exec.GetContext(ctx, &total, `SELECT COUNT(*) FROM projects p`+clause, args...); err != nil {
		return nil, 0, NewStoreError("ListProjects", "project", "", err.Error(), err)
	}

	order := ` ORDER BY p.is_featured DESC, p.published_at DESC, p.created_at DESC`
	if filter.NewestFirst {
		order = ` ORDER BY p.created_at DESC`
	}
	query := `SELECT p.* FROM projects p` + clause + order + ` LIMIT ? OFFSET ?`
	var rows []projectRow
	if err := s.exec.SelectContext(ctx, &rows, query, append(args, opts.Limit, opts.Offset)...); err != nil {
		return nil, 0, NewStoreError("ListProjects", "project", "", err.Error(), err)
	}

	projects := make([]domain.Project, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for i := range rows {
		p, err := rowToProject("ListProjects", &rows[i])
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, *p)
		ids = append(ids, p.ID)
	}

	cats, err := s.categoriesForProjects(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range projects {
		if c, ok := cats[projects[i].ID]; ok {
			projects[i].Categories = c
		}
	}
	return projects, total, nil
}

// CountProjects returns the number of projects.
func (s *SQLiteStore) CountProjects(ctx context.Context) (int, error) {
	var n int
	if err := s.exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, NewStoreError("CountProjects", "project", "", err.Error(), err)
	}
	return n, nil
}

// =============================================================================
// Related Projects
// =============================================================================

// AddRelatedProject links relatedID to projectID. Linking twice is a no-op.
func (s *SQLiteStore) AddRelatedProject(ctx context.Context, projectID, relatedID string) error {
	_, err := s.exec.ExecContext(ctx,
		`INSERT INTO related_projects (project_id, related_id) VALUES (?, ?)
		 ON CONFLICT (project_id, related_id) DO NOTHING`, projectID, relatedID)
	if err != nil {
		return classifyWriteError("AddRelatedProject", "project", "related_projects", projectID, err)
	}
	return nil
}

// RemoveRelatedProject unlinks relatedID from projectID.
func (s *SQLiteStore) RemoveRelatedProject(ctx context.Context, projectID, relatedID string) error {
	result, err := s.exec.ExecContext(ctx,
		`DELETE FROM related_projects WHERE project_id = ? AND related_id = ?`, projectID, relatedID)
	if err != nil {
		return NewStoreError("RemoveRelatedProject", "project", projectID, err.Error(), err)
	}
	return requireAffected("RemoveRelatedProject", "related project", relatedID, result)
}

// ListRelatedProjects returns up to limit published projects linked to projectID.
func (s *SQLiteStore) ListRelatedProjects(ctx context.Context, projectID string, limit int) ([]domain.ProjectSummary, error) {
	query := `
		SELECT p.id, p.title, p.slug, p.location, p.featured_image
		FROM related_projects r
		JOIN projects p ON p.id = r.related_id
		WHERE r.project_id = ? AND p.published_at IS NOT NULL
		ORDER BY p.published_at DESC
		LIMIT ?`

	var rows []projectSummaryRow
	if err := s.exec.SelectContext(ctx, &rows, query, projectID, limit); err != nil {
		return nil, NewStoreError("ListRelatedProjects", "project", projectID, err.Error(), err)
	}
	return summaries(rows), nil
}

// ListSimilarProjects returns up to limit published projects other than
// projectID that share at least one of categoryIDs.
func (s *SQLiteStore) ListSimilarProjects(ctx context.Context, projectID string, categoryIDs []string, limit int) ([]domain.ProjectSummary, error) {
	if len(categoryIDs) == 0 {
		return []domain.ProjectSummary{}, nil
	}

	query, args, err := inQuery(`
		SELECT p.id, p.title, p.slug, p.location, p.featured_image
		FROM projects p
		WHERE p.published_at IS NOT NULL
		  AND p.id != ?
		  AND EXISTS (
			SELECT 1 FROM project_categories pc
			WHERE pc.project_id = p.id AND pc.category_id IN (?))
		ORDER BY p.published_at DESC
		LIMIT ?`, projectID, categoryIDs, limit)
	if err != nil {
		return nil, NewStoreError("ListSimilarProjects", "project", projectID, err.Error(), err)
	}

	var rows []projectSummaryRow
	if err := s.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, NewStoreError("ListSimilarProjects", "project", projectID, err.Error(), err)
	}
	return summaries(rows), nil
}

func summaries(rows []projectSummaryRow) []domain.ProjectSummary {
	out := make([]domain.ProjectSummary, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
