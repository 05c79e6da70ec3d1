package store

import (
	"context"
	"strings"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Article Operations
// =============================================================================

type articleRow struct {
	ID             string  `db:"id"`
	Title          string  `db:"title"`
	Slug           string  `db:"slug"`
	Excerpt        *string `db:"excerpt"`
	Content        string  `db:"content"`
	FeaturedImage  *string `db:"featured_image"`
	AuthorID       *string `db:"author_id"`
	Tags           *string `db:"tags"`
	SeoTitle       *string `db:"seo_title"`
	SeoDescription *string `db:"seo_description"`
	PublishedAt    *string `db:"published_at"`
	CreatedAt      string  `db:"created_at"`
	UpdatedAt      string  `db:"updated_at"`

	AuthorName  *string `db:"author_name"`
	AuthorTitle *string `db:"author_title"`
	AuthorPhoto *string `db:"author_photo"`
}

const articleSelect = `
	SELECT a.*,
		t.name AS author_name, t.title AS author_title, t.photo AS author_photo
	FROM articles a
	LEFT JOIN team_members t ON t.id = a.author_id`

func rowToArticle(op string, r *articleRow) (*domain.Article, error) {
	a := &domain.Article{
		ID:             r.ID,
		Title:          r.Title,
		Slug:           r.Slug,
		Excerpt:        deref(r.Excerpt),
		Content:        r.Content,
		FeaturedImage:  deref(r.FeaturedImage),
		AuthorID:       deref(r.AuthorID),
		SeoTitle:       deref(r.SeoTitle),
		SeoDescription: deref(r.SeoDescription),
		PublishedAt:    parseTimePtr(r.PublishedAt),
		CreatedAt:      parseTime(r.CreatedAt),
		UpdatedAt:      parseTime(r.UpdatedAt),
	}
	if err := unmarshalJSON(op, "article", r.ID, "tags", r.Tags, &a.Tags); err != nil {
		return nil, err
	}
	a.Tags = nonNilStrings(a.Tags)

	if a.AuthorID != "" && r.AuthorName != nil {
		a.Author = &domain.Author{
			ID:    a.AuthorID,
			Name:  *r.AuthorName,
			Title: deref(r.AuthorTitle),
			Photo: deref(r.AuthorPhoto),
		}
	}
	return a, nil
}

func articleToRow(op string, a *domain.Article) (map[string]any, error) {
	tags, err := marshalJSON(op, "article", a.ID, "tags", nonNilStrings(a.Tags))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":              a.ID,
		"title":           a.Title,
		"slug":            a.Slug,
		"excerpt":         nullString(a.Excerpt),
		"content":         a.Content,
		"featured_image":  nullString(a.FeaturedImage),
		"author_id":       nullString(a.AuthorID),
		"tags":            tags,
		"seo_title":       nullString(a.SeoTitle),
		"seo_description": nullString(a.SeoDescription),
		"published_at":    formatTimePtr(a.PublishedAt),
		"created_at":      formatTime(a.CreatedAt),
		"updated_at":      formatTime(a.UpdatedAt),
	}, nil
}

// CreateArticle inserts an article.
func (s *SQLiteStore) CreateArticle(ctx context.Context, article *domain.Article) error {
	row, err := articleToRow("CreateArticle", article)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO articles (
			id, title, slug, excerpt, content, featured_image, author_id, tags,
			seo_title, seo_description, published_at, created_at, updated_at
		) VALUES (
			:id, :title, :slug, :excerpt, :content, :featured_image, :author_id, :tags,
			:seo_title, :seo_description, :published_at, :created_at, :updated_at
		)`

	if _, err := s.exec.NamedExecContext(ctx, query, row); err != nil {
		return classifyWriteError("CreateArticle", "article", "articles", article.ID, err)
	}
	return nil
}

// GetArticle returns the article with the given ID, author included.
func (s *SQLiteStore) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	var row articleRow
	if err := s.exec.GetContext(ctx, &row, articleSelect+` WHERE a.id = ?`, id); err != nil {
		return nil, notFoundOrError("GetArticle", "article", id, err)
	}
	return rowToArticle("GetArticle", &row)
}

// GetArticleBySlug returns the article with the given slug, author included.
func (s *SQLiteStore) GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	var row articleRow
	if err := s.exec.GetContext(ctx, &row, articleSelect+` WHERE a.slug = ?`, slug); err != nil {
		return nil, notFoundOrError("GetArticleBySlug", "article", slug, err)
	}
	return rowToArticle("GetArticleBySlug", &row)
}

// UpdateArticle rewrites an article.
func (s *SQLiteStore) UpdateArticle(ctx context.Context, article *domain.Article) error {
	row, err := articleToRow("UpdateArticle", article)
	if err != nil {
		return err
	}

	query := `
		UPDATE articles SET
			title = :title,
			slug = :slug,
			excerpt = :excerpt,
			content = :content,
			featured_image = :featured_image,
			author_id = :author_id,
			tags = :tags,
			seo_title = :seo_title,
			seo_description = :seo_description,
			published_at = :published_at,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := s.exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return classifyWriteError("UpdateArticle", "article", "articles", article.ID, err)
	}
	return requireAffected("UpdateArticle", "article", article.ID, result)
}

// DeleteArticle deletes an article.
func (s *SQLiteStore) DeleteArticle(ctx context.Context, id string) error {
	result, err := s.exec.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteArticle", "article", id, err.Error(), err)
	}
	return requireAffected("DeleteArticle", "article", id, result)
}

// ListArticles returns one page of articles matching filter, newest
// publication first, and the total number of matches.
func (s *SQLiteStore) ListArticles(ctx context.Context, filter ArticleFilter, opts ListOptions) ([]domain.Article, int, error) {
	opts = opts.Normalize()

	var where []string
	var args []any

	if filter.PublishedOnly {
		where = append(where, "a.published_at IS NOT NULL")
	}
	if filter.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(a.tags) WHERE json_each.value = ?)")
		args = append(args, filter.Tag)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := likePattern(term)
		where = append(where, `(LOWER(a.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(a.excerpt, '')) LIKE ? ESCAPE '\' OR LOWER(a.content) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.exec.GetContext(ctx, &total, `SELECT COUNT(*) FROM articles a`+clause, args...); err != nil {
		return nil, 0, NewStoreError("ListArticles", "article", "", err.Error(), err)
	}

	query := articleSelect + clause + ` ORDER BY a.published_at DESC, a.created_at DESC LIMIT ? OFFSET ?`
	var rows []articleRow
	if err := s.exec.SelectContext(ctx, &rows, query, append(args, opts.Limit, opts.Offset)...); err != nil {
		return nil, 0, NewStoreError("ListArticles", "article", "", err.Error(), err)
	}

	articles := make([]domain.Article, 0, len(rows))
	for i := range rows {
		a, err := rowToArticle("ListArticles", &rows[i])
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *a)
	}
	return articles, total, nil
}
