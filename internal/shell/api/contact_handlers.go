package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/core/validation"
	mw "github.com/aceconsult/cmsapi/internal/shell/api/middleware"
	"github.com/aceconsult/cmsapi/internal/shell/store"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Contact Handlers
// =============================================================================

func (h *Handler) handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if field, msg := validation.ValidateContactFields(req.Name, req.Email, req.Message); field != "" {
		h.writeValidation(w, msg)
		return
	}

	submission := &domain.ContactSubmission{
		ID:          domain.NewID(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       strings.TrimSpace(req.Phone),
		Company:     strings.TrimSpace(req.Company),
		ProjectType: strings.TrimSpace(req.ProjectType),
		Message:     req.Message,
		CreatedAt:   h.now().UTC(),
	}
	if err := h.store.CreateContactSubmission(r.Context(), submission); err != nil {
		h.writeFailure(w, err, "contact submission", "submit contact form")
		return
	}
	h.logger.Info("contact form submitted", "submission_id", submission.ID)

	h.writeJSON(w, http.StatusCreated, Response{
		Message: "Thank you for your message. We will get back to you soon.",
	})
}

func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, 50, 200)

	var filter store.ContactFilter
	if v, err := strconv.ParseBool(r.URL.Query().Get("isRead")); err == nil {
		filter.IsRead = &v
	}

	submissions, total, err := h.store.ListContactSubmissions(r.Context(), filter, page.options())
	if err != nil {
		h.writeFailure(w, err, "contact submission", "list contact submissions")
		return
	}
	h.writeList(w, submissions, total, page)
}

func (h *Handler) handleMarkContactRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.MarkContactRead(r.Context(), id); err != nil {
		h.writeFailure(w, err, "contact submission", "mark submission read")
		return
	}

	submission, err := h.store.GetContactSubmission(r.Context(), id)
	if err != nil {
		h.writeFailure(w, err, "contact submission", "get contact submission")
		return
	}
	h.writeData(w, http.StatusOK, submission, "Marked as read")
}

func (h *Handler) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteContactSubmission(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeFailure(w, err, "contact submission", "delete contact submission")
		return
	}
	h.writeMessage(w, "Submission deleted successfully")
}

// =============================================================================
// Analytics Handlers
// =============================================================================

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}

	if field, msg := validation.ValidateTrackFields(req.Type, req.Path); field != "" {
		h.writeValidation(w, msg)
		return
	}

	event := &domain.AnalyticsEvent{
		ID:           domain.NewID(),
		Type:         strings.TrimSpace(req.Type),
		ResourceID:   strings.TrimSpace(req.ResourceID),
		ResourceType: strings.TrimSpace(req.ResourceType),
		Path:         req.Path,
		UserAgent:    r.UserAgent(),
		IPAddress:    mw.ClientIP(r),
		CreatedAt:    h.now().UTC(),
	}
	if err := h.store.CreateAnalyticsEvent(r.Context(), event); err != nil {
		h.writeFailure(w, err, "analytics event", "track event")
		return
	}
	h.writeJSON(w, http.StatusCreated, Response{Message: "Event tracked"})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.store.GetDashboard(r.Context(), h.now().UTC())
	if err != nil {
		h.writeFailure(w, err, "dashboard", "load dashboard")
		return
	}
	h.writeData(w, http.StatusOK, dashboard, "")
}

func (h *Handler) handleResourceAnalytics(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	resourceID := chi.URLParam(r, "id")
	now := h.now().UTC()

	since := domain.TimeframeStart(r.URL.Query().Get("timeframe"), now)
	analytics, err := h.store.GetResourceAnalytics(r.Context(), domain.ViewEventType(resourceType), resourceID, since)
	if err != nil {
		h.writeFailure(w, err, "analytics", "load resource analytics")
		return
	}
	h.writeData(w, http.StatusOK, analytics, "")
}
