package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/core/slug"
	"github.com/aceconsult/cmsapi/internal/core/validation"
	"github.com/aceconsult/cmsapi/internal/core/variant"
	"github.com/aceconsult/cmsapi/internal/shell/store"
	"github.com/go-chi/chi/v5"
)

const (
	relatedProjectsLimit = 3
	projectImagesField   = "images"
)

// =============================================================================
// Project Form
// =============================================================================

// projectForm is the multipart form of a project create or update. The
// structured fields arrive JSON-encoded.
type projectForm struct {
	Title          string
	Description    string
	Location       string
	City           string
	Country        string
	Status         string
	Client         string
	ProjectSize    string
	StartDate      *time.Time
	CompletionDate *time.Time
	PublishedAt    *time.Time
	TechnicalSpecs map[string]any
	TeamCredits    []map[string]any
	Awards         []map[string]any
	IsFeatured     bool

	// CategoryIDs replaces the project's categories when HasCategories is set.
	CategoryIDs   []string
	HasCategories bool

	// ExistingImages lists the current images to keep on update when
	// HasExistingImages is set.
	ExistingImages    []string
	HasExistingImages bool
}

func parseProjectForm(r *http.Request) (*projectForm, error) {
	f := &projectForm{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: r.PostFormValue("description"),
		Location:    strings.TrimSpace(r.PostFormValue("location")),
		City:        strings.TrimSpace(r.PostFormValue("city")),
		Country:     strings.TrimSpace(r.PostFormValue("country")),
		Status:      strings.TrimSpace(r.PostFormValue("status")),
		Client:      strings.TrimSpace(r.PostFormValue("client")),
		ProjectSize: strings.TrimSpace(r.PostFormValue("projectSize")),
		IsFeatured:  formBool(r.PostFormValue("isFeatured")),
	}

	var err error
	if f.StartDate, err = parseDate("startDate", r.PostFormValue("startDate")); err != nil {
		return nil, err
	}
	if f.CompletionDate, err = parseDate("completionDate", r.PostFormValue("completionDate")); err != nil {
		return nil, err
	}
	if f.PublishedAt, err = parseDate("publishedAt", r.PostFormValue("publishedAt")); err != nil {
		return nil, err
	}

	if err := formJSON(r, "technicalSpecs", &f.TechnicalSpecs); err != nil {
		return nil, err
	}
	if err := formJSON(r, "teamCredits", &f.TeamCredits); err != nil {
		return nil, err
	}
	if err := formJSON(r, "awards", &f.Awards); err != nil {
		return nil, err
	}

	if _, ok := formValue(r, "categoryIds"); ok {
		f.HasCategories = true
		if err := formJSON(r, "categoryIds", &f.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if _, ok := formValue(r, "existingImages"); ok {
		f.HasExistingImages = true
		if err := formJSON(r, "existingImages", &f.ExistingImages); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// validate checks the required fields and that the title yields a slug.
func (f *projectForm) validate() error {
	if field, msg := validation.ValidateProjectFields(f.Title, f.Description, f.Location, f.Status); field != "" {
		return errors.New(msg)
	}
	if domain.Slugify(f.Title) == "" {
		return domain.ErrEmptySlug
	}
	return nil
}

// apply copies the form onto p. Images and the slug are handled by the caller.
func (f *projectForm) apply(p *domain.Project, now time.Time) {
	p.Title = f.Title
	p.Description = f.Description
	p.Location = f.Location
	p.City = f.City
	p.Country = f.Country
	p.Client = f.Client
	p.ProjectSize = f.ProjectSize
	p.StartDate = f.StartDate
	p.CompletionDate = f.CompletionDate
	p.TechnicalSpecs = f.TechnicalSpecs
	p.TeamCredits = f.TeamCredits
	p.Awards = f.Awards
	p.IsFeatured = f.IsFeatured
	p.ApplyStatus(f.Status, f.PublishedAt, now)
	if f.HasCategories {
		p.Categories = make([]domain.Category, 0, len(f.CategoryIDs))
		for _, id := range f.CategoryIDs {
			p.Categories = append(p.Categories, domain.Category{ID: id})
		}
	}
	p.UpdatedAt = now
}

// keptImages returns the entries of requested that current holds, in the
// requested order.
func keptImages(current, requested []string) []string {
	held := make(map[string]bool, len(current))
	for _, img := range current {
		held[img] = true
	}
	kept := make([]string, 0, len(requested))
	for _, img := range requested {
		if held[img] {
			kept = append(kept, img)
			held[img] = false
		}
	}
	return kept
}

func formBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Empty means nil.
func parseDate(field, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", field)
}

// formJSON decodes a JSON-encoded form field into dest. Empty leaves dest alone.
func formJSON(r *http.Request, field string, dest any) error {
	v := strings.TrimSpace(r.PostFormValue(field))
	if v == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(v), dest); err != nil {
		return fmt.Errorf("%s must be valid JSON", field)
	}
	return nil
}

// =============================================================================
// Public Project Handlers
// =============================================================================

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parsePage(r, 12, 50)

	filter := store.ProjectFilter{
		PublishedOnly: true,
		CategorySlug:  q.Get("category"),
		FeaturedOnly:  q.Get("featured") == "true",
		Search:        strings.TrimSpace(q.Get("search")),
	}
	if status := q.Get("status"); status != "" && status != domain.StatusPublished {
		filter.Status = status
	}
	if year, err := strconv.Atoi(q.Get("year")); err == nil {
		filter.Year = year
	}

	projects, total, err := h.store.ListProjects(r.Context(), filter, page.options())
	if err != nil {
		h.writeFailure(w, err, "project", "list projects")
		return
	}
	h.writeList(w, projects, total, page)
}

func (h *Handler) handleGetProjectBySlug(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProjectBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeFailure(w, err, "project", "get project")
		return
	}
	if !project.IsPublished() {
		h.writeError(w, http.StatusNotFound, "project not found", "project_not_found")
		return
	}

	related, err := h.store.ListRelatedProjects(r.Context(), project.ID, relatedProjectsLimit)
	if err != nil {
		h.writeFailure(w, err, "project", "get project")
		return
	}
	if len(related) == 0 {
		ids := make([]string, 0, len(project.Categories))
		for _, c := range project.Categories {
			ids = append(ids, c.ID)
		}
		if related, err = h.store.ListSimilarProjects(r.Context(), project.ID, ids, relatedProjectsLimit); err != nil {
			h.writeFailure(w, err, "project", "get project")
			return
		}
	}
	project.RelatedProjects = related

	h.recordView(r, "project", project.ID)
	h.writeData(w, http.StatusOK, project, "")
}

// =============================================================================
// Admin Project Handlers
// =============================================================================

func (h *Handler) projectSlugs() slug.LookupFunc {
	return slugLookup(h.store.GetProjectBySlug, func(p *domain.Project) string { return p.ID })
}

func (h *Handler) handleListAllProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parsePage(r, 20, 100)

	filter := store.ProjectFilter{
		Status:      q.Get("status"),
		Search:      strings.TrimSpace(q.Get("search")),
		NewestFirst: true,
	}

	projects, total, err := h.store.ListProjects(r.Context(), filter, page.options())
	if err != nil {
		h.writeFailure(w, err, "project", "list projects")
		return
	}
	h.writeList(w, projects, total, page)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "project", "get project")
		return
	}
	h.writeData(w, http.StatusOK, project, "")
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	defer removeMultipart(r)

	form, err := parseProjectForm(r)
	if err == nil {
		err = form.validate()
	}
	if err != nil {
		h.writeValidation(w, err.Error())
		return
	}
	files, err := h.files(r, projectImagesField)
	if err != nil {
		h.writeUploadFailure(w, err)
		return
	}

	ctx := r.Context()
	now := h.now().UTC()
	project := domain.NewProject(form.Title, form.Description, form.Location, form.Status, now)
	form.apply(project, now)

	batch := h.newImageBatch()
	if err := batch.processAll(ctx, files, variant.Gallery); err != nil {
		h.writeFailure(w, err, "project", "store project images")
		return
	}
	project.SetImages(batch.originals())

	err = writeWithSlug(ctx, h.projectSlugs(), project.Title, "", false,
		func(s string) { project.Slug = s },
		func(ctx context.Context) error { return h.store.CreateProject(ctx, project) })
	if err != nil {
		batch.discard(ctx)
		h.writeProjectWriteFailure(w, err, "create project")
		return
	}
	h.logger.Info("project created", "project_id", project.ID, "slug", project.Slug, "images", len(project.Images))

	h.writeData(w, http.StatusCreated, h.reloadProject(r, project), "Project created successfully")
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	defer removeMultipart(r)

	ctx := r.Context()
	existing, err := h.store.GetProject(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "project", "get project")
		return
	}

	form, err := parseProjectForm(r)
	if err == nil {
		err = form.validate()
	}
	if err != nil {
		h.writeValidation(w, err.Error())
		return
	}
	files, err := h.files(r, projectImagesField)
	if err != nil {
		h.writeUploadFailure(w, err)
		return
	}

	updated := *existing
	form.apply(&updated, h.now().UTC())

	images := existing.Images
	if form.HasExistingImages {
		images = keptImages(existing.Images, form.ExistingImages)
	}

	batch := h.newImageBatch()
	if err := batch.processAll(ctx, files, variant.Gallery); err != nil {
		h.writeFailure(w, err, "project", "store project images")
		return
	}
	updated.SetImages(append(append([]string{}, images...), batch.originals()...))

	err = writeWithSlug(ctx, h.projectSlugs(), updated.Title, updated.ID, updated.Title == existing.Title,
		func(s string) { updated.Slug = s },
		func(ctx context.Context) error { return h.store.UpdateProject(ctx, &updated) })
	if err != nil {
		batch.discard(ctx)
		h.writeProjectWriteFailure(w, err, "update project")
		return
	}

	h.cleanup(ctx, domain.RemovedReferences(existing.Images, updated.Images)...)
	h.writeData(w, http.StatusOK, h.reloadProject(r, &updated), "Project updated successfully")
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project, err := h.store.GetProject(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "project", "get project")
		return
	}

	if err := h.store.DeleteProject(ctx, project.ID); err != nil {
		h.writeFailure(w, err, "project", "delete project")
		return
	}

	h.cleanup(ctx, project.Images...)
	h.writeMessage(w, "Project deleted successfully")
}

func (h *Handler) handleRemoveProjectImage(w http.ResponseWriter, r *http.Request) {
	var req RemoveImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		h.writeValidation(w, "imageUrl is required")
		return
	}

	ctx := r.Context()
	project, err := h.store.GetProject(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "project", "get project")
		return
	}

	if err := project.RemoveImage(req.ImageURL); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error(), "image_not_found")
		return
	}
	project.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateProject(ctx, project); err != nil {
		h.writeFailure(w, err, "project", "update project")
		return
	}

	h.cleanup(ctx, req.ImageURL)
	h.writeData(w, http.StatusOK, project, "Image removed successfully")
}

func (h *Handler) handleAddRelatedProject(w http.ResponseWriter, r *http.Request) {
	project, relatedID, ok := h.relatedRequest(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetProject(r.Context(), relatedID); err != nil {
		h.writeFailure(w, err, "related project", "add related project")
		return
	}
	if err := h.store.AddRelatedProject(r.Context(), project.ID, relatedID); err != nil {
		h.writeFailure(w, err, "related project", "add related project")
		return
	}
	h.writeMessage(w, "Related project added successfully")
}

func (h *Handler) handleRemoveRelatedProject(w http.ResponseWriter, r *http.Request) {
	project, relatedID, ok := h.relatedRequest(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveRelatedProject(r.Context(), project.ID, relatedID); err != nil {
		h.writeFailure(w, err, "related project", "remove related project")
		return
	}
	h.writeMessage(w, "Related project removed successfully")
}

// relatedRequest decodes a related-project body and loads the owning project.
// It writes the error response itself when ok is false.
func (h *Handler) relatedRequest(w http.ResponseWriter, r *http.Request) (project *domain.Project, relatedID string, ok bool) {
	var req RelatedProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return nil, "", false
	}
	relatedID = strings.TrimSpace(req.RelatedProjectID)
	if relatedID == "" {
		h.writeValidation(w, "relatedProjectId is required")
		return nil, "", false
	}

	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "project", "get project")
		return nil, "", false
	}
	if relatedID == project.ID {
		h.writeValidation(w, domain.ErrSelfRelation.Error())
		return nil, "", false
	}
	return project, relatedID, true
}

// reloadProject returns the stored form of p, with category names filled in.
// A failed reload falls back to p.
func (h *Handler) reloadProject(r *http.Request, p *domain.Project) *domain.Project {
	stored, err := h.store.GetProject(r.Context(), p.ID)
	if err != nil {
		h.logger.Warn("failed to reload project", "project_id", p.ID, "error", err)
		return p
	}
	return stored
}

func (h *Handler) writeProjectWriteFailure(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, store.ErrForeignKey) {
		h.writeError(w, http.StatusBadRequest, "one or more categories do not exist", "invalid_reference")
		return
	}
	h.writeFailure(w, err, "project", action)
}
