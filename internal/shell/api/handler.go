// Package api provides HTTP handlers for the CMS API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/auth"
	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/core/slug"
	"github.com/aceconsult/cmsapi/internal/core/variant"
	mw "github.com/aceconsult/cmsapi/internal/shell/api/middleware"
	"github.com/aceconsult/cmsapi/internal/shell/api/openapi"
	"github.com/aceconsult/cmsapi/internal/shell/media"
	"github.com/aceconsult/cmsapi/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// =============================================================================
// Handler
// =============================================================================

// Config holds the HTTP-facing settings of the handler.
type Config struct {
	// MaxFiles is the largest number of files accepted in one multipart request.
	// Default: 20.
	MaxFiles int

	// MaxFileSize bounds a single uploaded file in bytes.
	// Default: media.DefaultMaxFileSize.
	MaxFileSize int64

	// CORSOrigins lists the origins allowed to call the API from a browser.
	// Empty allows every origin.
	CORSOrigins []string

	// RateLimit applies to the public contact and tracking endpoints.
	RateLimit mw.RateLimitConfig

	// Version is reported in the OpenAPI document.
	Version string
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	store     store.Store
	uploads   *media.Uploads
	processor *media.Processor
	cleaner   *media.Cleaner
	issuer    *auth.Issuer
	logger    *slog.Logger
	openapi   *openapi.Generator
	limiter   *mw.RateLimiter
	config    Config
	now       func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, uploads *media.Uploads, processor *media.Processor, cleaner *media.Cleaner, issuer *auth.Issuer, l *slog.Logger, cfg Config) *Handler {
	if l == nil {
		l = slog.Default()
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 20
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = media.DefaultMaxFileSize
	}

	opts := []openapi.Option{openapi.WithDescription("Content management API for the company website")}
	if cfg.Version != "" {
		opts = append(opts, openapi.WithVersion(cfg.Version))
	}
	gen := openapi.NewGenerator(opts...)
	gen.Register(apiDocs()...)

	return &Handler{
		store:     s,
		uploads:   uploads,
		processor: processor,
		cleaner:   cleaner,
		issuer:    issuer,
		logger:    l,
		openapi:   gen,
		limiter:   mw.NewRateLimiter(cfg.RateLimit),
		config:    cfg,
		now:       time.Now,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(h.requestIDHeader)
	r.Use(h.cors().Handler)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	// Stored images
	r.Handle(variant.URLPrefix+"*", h.serveUploads())

	requireAdmin := mw.RequireAdmin(h.issuer, h.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.jsonContentType)

		r.Get("/openapi.json", h.openapi.Handler())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.With(requireAdmin).Get("/me", h.handleMe)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.handleListProjects)
			r.Get("/{slug}", h.handleGetProjectBySlug)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/all", h.handleListAllProjects)
				r.Post("/", h.handleCreateProject)
				r.Get("/{id}", h.handleGetProject)
				r.Put("/{id}", h.handleUpdateProject)
				r.Delete("/{id}", h.handleDeleteProject)
				r.Delete("/{id}/images", h.handleRemoveProjectImage)
				r.Post("/{id}/related", h.handleAddRelatedProject)
				r.Delete("/{id}/related", h.handleRemoveRelatedProject)
			})
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.handleListArticles)
			r.Get("/{slug}", h.handleGetArticleBySlug)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/all", h.handleListAllArticles)
				r.Post("/", h.handleCreateArticle)
				r.Get("/{id}", h.handleGetArticle)
				r.Put("/{id}", h.handleUpdateArticle)
				r.Delete("/{id}", h.handleDeleteArticle)
				r.Post("/{id}/featured-image", h.handleUploadFeaturedImage)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.handleListCategories)
			r.With(requireAdmin).Post("/", h.handleCreateCategory)
			r.With(requireAdmin).Put("/{id}", h.handleUpdateCategory)
			r.With(requireAdmin).Delete("/{id}", h.handleDeleteCategory)
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", h.handleListServices)
			r.With(requireAdmin).Get("/admin", h.handleListAllServices)
			r.With(requireAdmin).Post("/", h.handleCreateService)
			r.With(requireAdmin).Get("/{id}", h.handleGetService)
			r.With(requireAdmin).Put("/{id}", h.handleUpdateService)
			r.With(requireAdmin).Delete("/{id}", h.handleDeleteService)
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/", h.handleListTeam)
			r.Get("/{id}", h.handleGetTeamMember)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", h.handleCreateTeamMember)
				r.Put("/{id}", h.handleUpdateTeamMember)
				r.Delete("/{id}", h.handleDeleteTeamMember)
			})
		})

		r.Route("/media", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/upload", h.handleUploadMedia)
			r.Get("/", h.handleListMedia)
			r.Delete("/{id}", h.handleDeleteMedia)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.handleGetSettings)
			r.With(requireAdmin).Put("/admin", h.handleUpdateSettings)
			r.With(requireAdmin).Post("/admin/logo", h.handleUploadLogo)
		})

		r.Route("/contact", func(r chi.Router) {
			r.With(h.limiter.Handler).Post("/submit", h.handleSubmitContact)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", h.handleListContacts)
				r.Put("/{id}/read", h.handleMarkContactRead)
				r.Delete("/{id}", h.handleDeleteContact)
			})
		})

		r.Route("/analytics", func(r chi.Router) {
			r.With(h.limiter.Handler).Post("/track", h.handleTrack)
			r.With(requireAdmin).Get("/dashboard", h.handleDashboard)
			r.With(requireAdmin).Get("/resource/{type}/{id}", h.handleResourceAnalytics)
		})
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   h.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: len(h.config.CORSOrigins) > 0,
		MaxAge:           600,
	})
}

// serveUploads serves the upload root without directory listings.
func (h *Handler) serveUploads() http.Handler {
	files := http.StripPrefix(variant.URLPrefix, http.FileServer(http.Dir(h.processor.Root())))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, variant.URLPrefix)
		if name == "" || strings.HasSuffix(name, "/") {
			h.writeError(w, http.StatusNotFound, "file not found", "not_found")
			return
		}
		files.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "check", "database", "error", err)
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Response Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func (h *Handler) writeValidation(w http.ResponseWriter, message string) {
	h.writeError(w, http.StatusBadRequest, message, "validation_error")
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data any, message string) {
	h.writeJSON(w, status, Response{Data: data, Message: message})
}

func (h *Handler) writeMessage(w http.ResponseWriter, message string) {
	h.writeJSON(w, http.StatusOK, Response{Message: message})
}

func (h *Handler) writeList(w http.ResponseWriter, data any, total int, page pageParams) {
	h.writeJSON(w, http.StatusOK, Response{Data: data, Pagination: page.pagination(total)})
}

// writeFailure maps an error from the store, the slug resolver or the media
// pipeline to its HTTP status. action names the operation for the generic
// internal error message, e.g. "create project".
func (h *Handler) writeFailure(w http.ResponseWriter, err error, entity, action string) {
	var procErr *media.ProcessingError
	switch {
	case store.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, entity+" not found", strings.ReplaceAll(entity, " ", "_")+"_not_found")
	case errors.Is(err, store.ErrDuplicateSlug), errors.Is(err, store.ErrDuplicateEmail):
		h.writeError(w, http.StatusConflict, conflictMessage(err), "conflict")
	case errors.Is(err, store.ErrForeignKey):
		h.writeError(w, http.StatusConflict, entity+" is still referenced by other records", "in_use")
	case errors.Is(err, store.ErrAdminExists):
		h.writeError(w, http.StatusForbidden, "registration is closed", "registration_closed")
	case errors.Is(err, domain.ErrEmptySlug):
		h.writeValidation(w, err.Error())
	case media.IsRejected(err):
		h.writeValidation(w, err.Error())
	case errors.Is(err, slug.ErrExhausted):
		h.logger.Error("slug allocation exhausted", "entity", entity, "error", err)
		h.writeError(w, http.StatusInternalServerError, "unable to allocate unique slug", "slug_allocation_exhausted")
	case errors.As(err, &procErr):
		h.logger.Error("image processing failed", "entity", entity, "source", procErr.Source, "kept", procErr.Kept, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to store uploaded image", "image_processing_failed")
	default:
		h.logger.Error("failed to "+action, "entity", entity, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to "+action, "internal_error")
	}
}

func conflictMessage(err error) string {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) && storeErr.Message != "" {
		return storeErr.Message
	}
	return err.Error()
}

// =============================================================================
// Request Helpers
// =============================================================================

const maxJSONBody = 1 << 20

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
}

// pageParams is the page/limit pair of a list request.
type pageParams struct {
	Page  int
	Limit int
}

// parsePage reads page and limit query parameters. Invalid or missing values
// fall back to page 1 and defaultLimit; limit is capped at maxLimit.
func parsePage(r *http.Request, defaultLimit, maxLimit int) pageParams {
	p := pageParams{Page: 1, Limit: defaultLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p pageParams) options() store.ListOptions {
	return store.ListOptions{Limit: p.Limit, Offset: (p.Page - 1) * p.Limit}
}

func (p pageParams) pagination(total int) *Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return &Pagination{Total: total, Page: p.Page, Pages: pages, Limit: p.Limit}
}

// =============================================================================
// Slug Helpers
// =============================================================================

// slugLookup adapts a get-by-slug store method to a slug.LookupFunc.
func slugLookup[T any](get func(context.Context, string) (*T, error), id func(*T) string) slug.LookupFunc {
	return func(ctx context.Context, candidate string) (string, bool, error) {
		rec, err := get(ctx, candidate)
		if store.IsNotFound(err) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return id(rec), true, nil
	}
}

// writeWithSlug persists a record whose slug derives from title. When keep is
// set the current slug stays and the store is not probed; otherwise a free
// slug is allocated, excluding the record's own id on updates.
func writeWithSlug(ctx context.Context, lookup slug.LookupFunc, title, excludeID string, keep bool, assign func(string), write func(context.Context) error) error {
	if keep {
		return write(ctx)
	}
	_, err := slug.Allocate(ctx, lookup, title, excludeID, store.IsDuplicateSlug, func(ctx context.Context, s string) error {
		assign(s)
		return write(ctx)
	})
	return err
}

// recordView stores an analytics event for a public read. Failures are logged.
func (h *Handler) recordView(r *http.Request, resourceType, resourceID string) {
	event := &domain.AnalyticsEvent{
		ID:           domain.NewID(),
		Type:         domain.ViewEventType(resourceType),
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Path:         r.URL.Path,
		UserAgent:    r.UserAgent(),
		IPAddress:    mw.ClientIP(r),
		CreatedAt:    h.now().UTC(),
	}
	if err := h.store.CreateAnalyticsEvent(r.Context(), event); err != nil {
		h.logger.Warn("failed to record view", "resource_type", resourceType, "resource_id", resourceID, "error", err)
	}
}
