package store

import (
	"context"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for CMS entities.
//
// Create and Update of projects, articles and categories fail with
// ErrDuplicateSlug when the slug is already taken. Lookups of absent records
// fail with ErrNotFound. Both are wrapped in *StoreError.
type Store interface {
	// Admin operations. CreateFirstAdmin succeeds only while no admin exists.
	CountAdmins(ctx context.Context) (int, error)
	CreateFirstAdmin(ctx context.Context, admin *domain.Admin) error
	GetAdmin(ctx context.Context, id string) (*domain.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)

	// Category operations
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// Project operations. Categories are written from Project.Categories IDs.
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context, filter ProjectFilter, opts ListOptions) ([]domain.Project, int, error)
	CountProjects(ctx context.Context) (int, error)

	// Related project operations
	AddRelatedProject(ctx context.Context, projectID, relatedID string) error
	RemoveRelatedProject(ctx context.Context, projectID, relatedID string) error
	ListRelatedProjects(ctx context.Context, projectID string, limit int) ([]domain.ProjectSummary, error)
	ListSimilarProjects(ctx context.Context, projectID string, categoryIDs []string, limit int) ([]domain.ProjectSummary, error)

	// Article operations
	CreateArticle(ctx context.Context, article *domain.Article) error
	GetArticle(ctx context.Context, id string) (*domain.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error)
	UpdateArticle(ctx context.Context, article *domain.Article) error
	DeleteArticle(ctx context.Context, id string) error
	ListArticles(ctx context.Context, filter ArticleFilter, opts ListOptions) ([]domain.Article, int, error)

	// Service operations
	CreateService(ctx context.Context, service *domain.Service) error
	GetService(ctx context.Context, id string) (*domain.Service, error)
	UpdateService(ctx context.Context, service *domain.Service) error
	DeleteService(ctx context.Context, id string) error
	ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error)

	// Team member operations
	CreateTeamMember(ctx context.Context, member *domain.TeamMember) error
	GetTeamMember(ctx context.Context, id string) (*domain.TeamMember, error)
	UpdateTeamMember(ctx context.Context, member *domain.TeamMember) error
	DeleteTeamMember(ctx context.Context, id string) error
	ListTeamMembers(ctx context.Context) ([]domain.TeamMember, error)

	// Media library operations
	CreateMedia(ctx context.Context, media *domain.Media) error
	GetMedia(ctx context.Context, id string) (*domain.Media, error)
	DeleteMedia(ctx context.Context, id string) error
	ListMedia(ctx context.Context, opts ListOptions) ([]domain.Media, int, error)

	// Settings operations. There is at most one settings row.
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, settings *domain.Settings) error

	// Contact submission operations
	CreateContactSubmission(ctx context.Context, submission *domain.ContactSubmission) error
	GetContactSubmission(ctx context.Context, id string) (*domain.ContactSubmission, error)
	ListContactSubmissions(ctx context.Context, filter ContactFilter, opts ListOptions) ([]domain.ContactSubmission, int, error)
	MarkContactRead(ctx context.Context, id string) error
	DeleteContactSubmission(ctx context.Context, id string) error

	// Analytics operations
	CreateAnalyticsEvent(ctx context.Context, event *domain.AnalyticsEvent) error
	GetDashboard(ctx context.Context, now time.Time) (*domain.Dashboard, error)
	GetResourceAnalytics(ctx context.Context, eventType, resourceID string, since time.Time) (*domain.ResourceAnalytics, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	// PublishedOnly restricts the listing to projects with a publication time.
	PublishedOnly bool
	// CategorySlug keeps projects linked to the category with this slug.
	CategorySlug string
	// Status keeps projects with this status label.
	Status string
	// Year keeps projects that started or completed in this calendar year.
	Year int
	// FeaturedOnly keeps featured projects.
	FeaturedOnly bool
	// Search matches title, description or location, case-insensitively.
	Search string
	// NewestFirst orders by creation time instead of featured and publication.
	NewestFirst bool
}

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	PublishedOnly bool
	Tag           string
	Search        string
}

// ContactFilter narrows contact submission listings.
type ContactFilter struct {
	// IsRead filters by read state when non-nil.
	IsRead *bool
}
