package api

import (
	"net/http"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/shell/api/openapi"
)

// apiDocs describes every API route for the OpenAPI document.
func apiDocs() []openapi.Route {
	get, post, put, del := http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete

	return []openapi.Route{
		// Meta
		{Method: get, Path: "/health", Tag: "Meta", Summary: "Liveness check", Response: HealthResponse{}},
		{Method: get, Path: "/ready", Tag: "Meta", Summary: "Readiness check", Response: ReadyResponse{}},

		// Auth
		{Method: post, Path: "/api/auth/register", Tag: "Auth", Summary: "Register the first admin", Request: RegisterRequest{}, Response: AuthResponse{}},
		{Method: post, Path: "/api/auth/login", Tag: "Auth", Summary: "Log in", Request: LoginRequest{}, Response: AuthResponse{}},
		{Method: get, Path: "/api/auth/me", Tag: "Auth", Summary: "Current admin", Response: domain.Admin{}, Admin: true},

		// Projects
		{Method: get, Path: "/api/projects", Tag: "Projects", Summary: "List published projects", Response: domain.Project{}, List: true},
		{Method: get, Path: "/api/projects/{slug}", Tag: "Projects", Summary: "Get a published project", Response: domain.Project{}},
		{Method: get, Path: "/api/projects/admin/all", Tag: "Projects", Summary: "List all projects", Response: domain.Project{}, List: true, Admin: true},
		{Method: post, Path: "/api/projects/admin", Tag: "Projects", Summary: "Create a project", Multipart: true, Response: domain.Project{}, Admin: true},
		{Method: get, Path: "/api/projects/admin/{id}", Tag: "Projects", Summary: "Get a project", Response: domain.Project{}, Admin: true},
		{Method: put, Path: "/api/projects/admin/{id}", Tag: "Projects", Summary: "Update a project", Multipart: true, Response: domain.Project{}, Admin: true},
		{Method: del, Path: "/api/projects/admin/{id}", Tag: "Projects", Summary: "Delete a project", Admin: true},
		{Method: del, Path: "/api/projects/admin/{id}/images", Tag: "Projects", Summary: "Remove a project image", Request: RemoveImageRequest{}, Response: domain.Project{}, Admin: true},
		{Method: post, Path: "/api/projects/admin/{id}/related", Tag: "Projects", Summary: "Link a related project", Request: RelatedProjectRequest{}, Admin: true},
		{Method: del, Path: "/api/projects/admin/{id}/related", Tag: "Projects", Summary: "Unlink a related project", Request: RelatedProjectRequest{}, Admin: true},

		// Articles
		{Method: get, Path: "/api/articles", Tag: "Articles", Summary: "List published articles", Response: domain.Article{}, List: true},
		{Method: get, Path: "/api/articles/{slug}", Tag: "Articles", Summary: "Get a published article", Response: domain.Article{}},
		{Method: get, Path: "/api/articles/admin/all", Tag: "Articles", Summary: "List all articles", Response: domain.Article{}, List: true, Admin: true},
		{Method: post, Path: "/api/articles/admin", Tag: "Articles", Summary: "Create an article", Request: ArticleRequest{}, Response: domain.Article{}, Admin: true},
		{Method: get, Path: "/api/articles/admin/{id}", Tag: "Articles", Summary: "Get an article", Response: domain.Article{}, Admin: true},
		{Method: put, Path: "/api/articles/admin/{id}", Tag: "Articles", Summary: "Update an article", Request: ArticleRequest{}, Response: domain.Article{}, Admin: true},
		{Method: del, Path: "/api/articles/admin/{id}", Tag: "Articles", Summary: "Delete an article", Admin: true},
		{Method: post, Path: "/api/articles/admin/{id}/featured-image", Tag: "Articles", Summary: "Upload a featured image", Multipart: true, Response: UploadResponse{}, Admin: true},

		// Categories
		{Method: get, Path: "/api/categories", Tag: "Categories", Summary: "List categories", Response: domain.Category{}, List: true},
		{Method: post, Path: "/api/categories", Tag: "Categories", Summary: "Create a category", Request: CategoryRequest{}, Response: domain.Category{}, Admin: true},
		{Method: put, Path: "/api/categories/{id}", Tag: "Categories", Summary: "Rename a category", Request: CategoryRequest{}, Response: domain.Category{}, Admin: true},
		{Method: del, Path: "/api/categories/{id}", Tag: "Categories", Summary: "Delete a category", Admin: true},

		// Services
		{Method: get, Path: "/api/services", Tag: "Services", Summary: "List active services", Response: domain.Service{}, List: true},
		{Method: get, Path: "/api/services/admin", Tag: "Services", Summary: "List all services", Response: domain.Service{}, List: true, Admin: true},
		{Method: post, Path: "/api/services", Tag: "Services", Summary: "Create a service", Request: ServiceRequest{}, Response: domain.Service{}, Admin: true},
		{Method: get, Path: "/api/services/{id}", Tag: "Services", Summary: "Get a service", Response: domain.Service{}, Admin: true},
		{Method: put, Path: "/api/services/{id}", Tag: "Services", Summary: "Update a service", Request: ServiceRequest{}, Response: domain.Service{}, Admin: true},
		{Method: del, Path: "/api/services/{id}", Tag: "Services", Summary: "Delete a service", Admin: true},

		// Team
		{Method: get, Path: "/api/team", Tag: "Team", Summary: "List team members", Response: domain.TeamMember{}, List: true},
		{Method: get, Path: "/api/team/{id}", Tag: "Team", Summary: "Get a team member", Response: domain.TeamMember{}},
		{Method: post, Path: "/api/team/admin", Tag: "Team", Summary: "Create a team member", Multipart: true, Response: domain.TeamMember{}, Admin: true},
		{Method: put, Path: "/api/team/admin/{id}", Tag: "Team", Summary: "Update a team member", Multipart: true, Response: domain.TeamMember{}, Admin: true},
		{Method: del, Path: "/api/team/admin/{id}", Tag: "Team", Summary: "Delete a team member", Admin: true},

		// Media
		{Method: post, Path: "/api/media/upload", Tag: "Media", Summary: "Upload images to the library", Multipart: true, Response: domain.Media{}, List: true, Admin: true},
		{Method: get, Path: "/api/media", Tag: "Media", Summary: "List the media library", Response: domain.Media{}, List: true, Admin: true},
		{Method: del, Path: "/api/media/{id}", Tag: "Media", Summary: "Delete a media item", Admin: true},

		// Settings
		{Method: get, Path: "/api/settings", Tag: "Settings", Summary: "Get site settings", Response: domain.Settings{}},
		{Method: put, Path: "/api/settings/admin", Tag: "Settings", Summary: "Update site settings", Request: SettingsRequest{}, Response: domain.Settings{}, Admin: true},
		{Method: post, Path: "/api/settings/admin/logo", Tag: "Settings", Summary: "Upload the site logo", Multipart: true, Response: UploadResponse{}, Admin: true},

		// Contact
		{Method: post, Path: "/api/contact/submit", Tag: "Contact", Summary: "Submit the contact form", Request: ContactRequest{}},
		{Method: get, Path: "/api/contact/admin", Tag: "Contact", Summary: "List contact submissions", Response: domain.ContactSubmission{}, List: true, Admin: true},
		{Method: put, Path: "/api/contact/admin/{id}/read", Tag: "Contact", Summary: "Mark a submission read", Response: domain.ContactSubmission{}, Admin: true},
		{Method: del, Path: "/api/contact/admin/{id}", Tag: "Contact", Summary: "Delete a submission", Admin: true},

		// Analytics
		{Method: post, Path: "/api/analytics/track", Tag: "Analytics", Summary: "Track a page view", Request: TrackRequest{}},
		{Method: get, Path: "/api/analytics/dashboard", Tag: "Analytics", Summary: "Dashboard aggregates", Response: domain.Dashboard{}, Admin: true},
		{Method: get, Path: "/api/analytics/resource/{type}/{id}", Tag: "Analytics", Summary: "View history of one resource", Response: domain.ResourceAnalytics{}, Admin: true},
	}
}
