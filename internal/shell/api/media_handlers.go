package api

import (
	"net/http"
	"path"
	"strings"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/core/validation"
	"github.com/aceconsult/cmsapi/internal/core/variant"
	"github.com/aceconsult/cmsapi/internal/shell/store"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Media Library Handlers
// =============================================================================

func (h *Handler) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	defer removeMultipart(r)

	files, err := h.files(r, "files")
	if err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	if len(files) == 0 {
		h.writeValidation(w, "no files uploaded")
		return
	}

	ctx := r.Context()
	created := make([]domain.Media, 0, len(files))
	for _, fh := range files {
		batch := h.newImageBatch()
		res, err := batch.process(ctx, fh, variant.Gallery)
		if err != nil {
			h.logger.Warn("skipping media upload", "file", fh.Filename, "error", err)
			continue
		}

		mimeType := "image/jpeg"
		if res.Fallback {
			mimeType = fh.Header.Get("Content-Type")
		}
		size, err := h.processor.StoredSize(res.Original())
		if err != nil {
			h.logger.Warn("failed to stat stored media", "path", res.Original(), "error", err)
			size = fh.Size
		}
		item := domain.Media{
			ID:           domain.NewID(),
			Filename:     path.Base(res.Original()),
			OriginalName: fh.Filename,
			URL:          res.Original(),
			MimeType:     mimeType,
			Size:         size,
			Variants:     res.Variants,
			CreatedAt:    h.now().UTC(),
		}
		if err := h.store.CreateMedia(ctx, &item); err != nil {
			batch.discard(ctx)
			h.logger.Error("failed to record media upload", "file", fh.Filename, "error", err)
			continue
		}
		created = append(created, item)
	}

	if len(created) == 0 {
		h.writeValidation(w, "none of the uploaded files could be stored")
		return
	}
	h.logger.Info("media uploaded", "stored", len(created), "received", len(files))
	h.writeData(w, http.StatusCreated, created, "Files uploaded successfully")
}

func (h *Handler) handleListMedia(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, 50, 200)

	items, total, err := h.store.ListMedia(r.Context(), page.options())
	if err != nil {
		h.writeFailure(w, err, "media", "list media")
		return
	}
	h.writeList(w, items, total, page)
}

func (h *Handler) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item, err := h.store.GetMedia(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, err, "media", "get media")
		return
	}

	if err := h.store.DeleteMedia(ctx, item.ID); err != nil {
		h.writeFailure(w, err, "media", "delete media")
		return
	}

	h.cleanup(ctx, item.URL)
	h.writeMessage(w, "Media deleted successfully")
}

// =============================================================================
// Settings Handlers
// =============================================================================

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		h.writeFailure(w, err, "settings", "get settings")
		return
	}
	h.writeData(w, http.StatusOK, settings, "")
}

// currentSettings returns the stored settings, or fresh defaults when none
// have been saved yet.
func (h *Handler) currentSettings(r *http.Request) (*domain.Settings, error) {
	settings, err := h.store.GetSettings(r.Context())
	if store.IsNotFound(err) {
		return domain.NewSettings(h.now().UTC()), nil
	}
	return settings, err
}

// applySettings copies the fields present in req onto st.
func applySettings(req *SettingsRequest, st *domain.Settings) {
	set := func(dest *string, v *string) {
		if v != nil {
			*dest = strings.TrimSpace(*v)
		}
	}
	set(&st.CompanyName, req.CompanyName)
	set(&st.Tagline, req.Tagline)
	set(&st.Description, req.Description)
	set(&st.ContactEmail, req.ContactEmail)
	set(&st.Phone, req.Phone)
	set(&st.Address, req.Address)
	set(&st.HeroTitle, req.HeroTitle)
	set(&st.HeroSubtitle, req.HeroSubtitle)
	set(&st.SeoDefaultTitle, req.SeoDefaultTitle)
	set(&st.SeoDefaultDesc, req.SeoDefaultDesc)
	if req.SocialLinks != nil {
		st.SocialLinks = req.SocialLinks
	}
	if req.HeroImages != nil {
		st.HeroImages = req.HeroImages
	}
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}

	settings, err := h.currentSettings(r)
	if err != nil {
		h.writeFailure(w, err, "settings", "get settings")
		return
	}

	applySettings(&req, settings)
	switch {
	case settings.CompanyName == "":
		h.writeValidation(w, "companyName is required")
		return
	case !validation.ValidEmail(settings.ContactEmail):
		h.writeValidation(w, "invalid email format")
		return
	}
	settings.UpdatedAt = h.now().UTC()

	if err := h.store.SaveSettings(r.Context(), settings); err != nil {
		h.writeFailure(w, err, "settings", "update settings")
		return
	}
	h.writeData(w, http.StatusOK, settings, "Settings updated successfully")
}

func (h *Handler) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	defer removeMultipart(r)

	files, err := h.files(r, "image")
	if err != nil {
		h.writeUploadFailure(w, err)
		return
	}
	if len(files) == 0 {
		h.writeValidation(w, "image file is required")
		return
	}

	ctx := r.Context()
	settings, err := h.currentSettings(r)
	if err != nil {
		h.writeFailure(w, err, "settings", "get settings")
		return
	}

	batch := h.newImageBatch()
	res, err := batch.process(ctx, files[0], variant.Featured)
	if err != nil {
		h.writeFailure(w, err, "settings", "store logo")
		return
	}

	previous := settings.Logo
	settings.Logo = res.Original()
	settings.UpdatedAt = h.now().UTC()
	if err := h.store.SaveSettings(ctx, settings); err != nil {
		batch.discard(ctx)
		h.writeFailure(w, err, "settings", "update settings")
		return
	}

	if previous != "" && previous != settings.Logo {
		h.cleanup(ctx, previous)
	}
	h.writeData(w, http.StatusOK, UploadResponse{
		URL:      res.Original(),
		Variants: res.Variants,
		Fallback: res.Fallback,
	}, "Logo uploaded successfully")
}
