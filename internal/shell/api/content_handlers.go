package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/core/slug"
	"github.com/aceconsult/cmsapi/internal/core/validation"
	"github.com/aceconsult/cmsapi/internal/core/variant"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Category Handlers
// =============================================================================

func (h *Handler) categorySlugs() slug.LookupFunc {
	return slugLookup(h.store.GetCategoryBySlug, func(c *domain.Category) string { return c.ID })
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.writeFailure(w, err, "category", "list categories")
		return
	}
	h.writeData(w, http.StatusOK, categories, "")
}

func (h *Handler) decodeCategory(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if field, msg := validation.ValidateCategoryFields(name); field != "" {
		h.writeValidation(w, msg)
		return "", false
	}
	if domain.Slugify(name) == "" {
		h.writeValidation(w, domain.ErrEmptySlug.Error())
		return "", false
	}
	return name, true
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeCategory(w, r)
	if !ok {
		return
	}

	category := domain.NewCategory(name, h.now().UTC())
	err := writeWithSlug(r.Context(), h.categorySlugs(), name, "", false,
		func(s string) { category.Slug = s },
		func(ctx context.Context) error { return h.store.CreateCategory(ctx, category) })
	if err != nil {
		h.writeFailure(w, err, "category", "create category")
		return
	}
	h.writeData(w, http.StatusCreated, category, "Category created successfully")
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "category", "get category")
		return
	}

	name, ok := h.decodeCategory(w, r)
	if !ok {
		return
	}

	unchanged := name == category.Name
	category.Name = name
	category.UpdatedAt = h.now().UTC()
	err = writeWithSlug(r.Context(), h.categorySlugs(), name, category.ID, unchanged,
		func(s string) { category.Slug = s },
		func(ctx context.Context) error { return h.store.UpdateCategory(ctx, category) })
	if err != nil {
		h.writeFailure(w, err, "category", "update category")
		return
	}
	h.writeData(w, http.StatusOK, category, "Category updated successfully")
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeFailure(w, err, "category", "delete category")
		return
	}
	h.writeMessage(w, "Category deleted successfully")
}

// =============================================================================
// Service Handlers
// =============================================================================

func (h *Handler) handleListServices(w http.ResponseWriter, r *http.Request) {
	h.listServices(w, r, true)
}

func (h *Handler) handleListAllServices(w http.ResponseWriter, r *http.Request) {
	h.listServices(w, r, false)
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	services, err := h.store.ListServices(r.Context(), activeOnly)
	if err != nil {
		h.writeFailure(w, err, "service", "list services")
		return
	}
	h.writeData(w, http.StatusOK, services, "")
}

func (h *Handler) handleGetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.store.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "service", "get service")
		return
	}
	h.writeData(w, http.StatusOK, service, "")
}

// applyService copies the fields present in req onto svc.
func applyService(req *ServiceRequest, svc *domain.Service) {
	if req.Title != nil {
		svc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Icon != nil {
		svc.Icon = *req.Icon
	}
	if req.Image != nil {
		svc.Image = *req.Image
	}
	if req.Features != nil {
		svc.Features = []string(req.Features)
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if req.Order != nil {
		svc.Order = *req.Order
	}
}

func (h *Handler) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}

	service := domain.NewService("", "", h.now().UTC())
	applyService(&req, service)
	if field, msg := validation.ValidateServiceFields(service.Title, service.Description); field != "" {
		h.writeValidation(w, msg)
		return
	}

	if err := h.store.CreateService(r.Context(), service); err != nil {
		h.writeFailure(w, err, "service", "create service")
		return
	}
	h.writeData(w, http.StatusCreated, service, "Service created successfully")
}

func (h *Handler) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	service, err := h.store.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "service", "get service")
		return
	}

	var req ServiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}

	applyService(&req, service)
	if field, msg := validation.ValidateServiceFields(service.Title, service.Description); field != "" {
		h.writeValidation(w, msg)
		return
	}
	service.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateService(r.Context(), service); err != nil {
		h.writeFailure(w, err, "service", "update service")
		return
	}
	h.writeData(w, http.StatusOK, service, "Service updated successfully")
}

func (h *Handler) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeFailure(w, err, "service", "delete service")
		return
	}
	h.writeMessage(w, "Service deleted successfully")
}

// =============================================================================
// Team Handlers
// =============================================================================

func (h *Handler) handleListTeam(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.ListTeamMembers(r.Context())
	if err != nil {
		h.writeFailure(w, err, "team member", "list team members")
		return
	}
	h.writeData(w, http.StatusOK, members, "")
}

func (h *Handler) handleGetTeamMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.store.GetTeamMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "team member", "get team member")
		return
	}
	h.writeData(w, http.StatusOK, member, "")
}

// applyTeamForm copies the form fields that were sent onto m.
func applyTeamForm(r *http.Request, m *domain.TeamMember) error {
	fields := map[string]*string{
		"name":       &m.Name,
		"title":      &m.Title,
		"department": &m.Department,
		"bio":        &m.Bio,
		"email":      &m.Email,
		"linkedin":   &m.LinkedIn,
	}
	for key, dest := range fields {
		if v, ok := formValue(r, key); ok {
			*dest = strings.TrimSpace(v)
		}
	}
	if v, ok := formValue(r, "order"); ok && strings.TrimSpace(v) != "" {
		order, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errOrderNotInteger
		}
		m.Order = order
	}
	return nil
}

var errOrderNotInteger = errors.New("order must be an integer")

func (h *Handler) handleCreateTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	defer removeMultipart(r)

	member := domain.NewTeamMember("", "", h.now().UTC())
	if err := applyTeamForm(r, member); err != nil {
		h.writeValidation(w, err.Error())
		return
	}
	if field, msg := validation.ValidateTeamMemberFields(member.Name, member.Title); field != "" {
		h.writeValidation(w, msg)
		return
	}
	files, err := h.files(r, "image")
	if err != nil {
		h.writeUploadFailure(w, err)
		return
	}

	ctx := r.Context()
	batch := h.newImageBatch()
	if len(files) > 0 {
		res, err := batch.process(ctx, files[0], variant.Portrait)
		if err != nil {
			h.writeFailure(w, err, "team member", "store team photo")
			return
		}
		member.Photo = res.Original()
	}

	if err := h.store.CreateTeamMember(ctx, member); err != nil {
		batch.discard(ctx)
		h.writeFailure(w, err, "team member", "create team member")
		return
	}
	h.writeData(w, http.StatusCreated, member, "Team member created successfully")
}

func (h *Handler) handleUpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	defer removeMultipart(r)

	ctx := r.Context()
	member, err := h.store.GetTeamMember(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "team member", "get team member")
		return
	}
	previous := member.Photo

	if err := applyTeamForm(r, member); err != nil {
		h.writeValidation(w, err.Error())
		return
	}
	if field, msg := validation.ValidateTeamMemberFields(member.Name, member.Title); field != "" {
		h.writeValidation(w, msg)
		return
	}
	files, err := h.files(r, "image")
	if err != nil {
		h.writeUploadFailure(w, err)
		return
	}

	batch := h.newImageBatch()
	switch {
	case len(files) > 0:
		res, err := batch.process(ctx, files[0], variant.Portrait)
		if err != nil {
			h.writeFailure(w, err, "team member", "store team photo")
			return
		}
		member.Photo = res.Original()
	case formBool(r.PostFormValue("removePhoto")):
		member.Photo = ""
	}
	member.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateTeamMember(ctx, member); err != nil {
		batch.discard(ctx)
		h.writeFailure(w, err, "team member", "update team member")
		return
	}

	if previous != "" && previous != member.Photo {
		h.cleanup(ctx, previous)
	}
	h.writeData(w, http.StatusOK, member, "Team member updated successfully")
}

func (h *Handler) handleDeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	member, err := h.store.GetTeamMember(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "team member", "get team member")
		return
	}

	if err := h.store.DeleteTeamMember(ctx, member.ID); err != nil {
		h.writeFailure(w, err, "team member", "delete team member")
		return
	}

	if member.Photo != "" {
		h.cleanup(ctx, member.Photo)
	}
	h.writeMessage(w, "Team member deleted successfully")
}
