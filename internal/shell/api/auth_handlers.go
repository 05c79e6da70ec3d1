package api

import (
	"net/http"

	"github.com/aceconsult/cmsapi/internal/core/auth"
	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/core/validation"
	"github.com/aceconsult/cmsapi/internal/shell/store"
)

// =============================================================================
// Auth Handlers
// =============================================================================

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}

	if field, msg := validation.ValidateRegisterFields(req.Email, req.Password, req.Name); field != "" {
		h.writeValidation(w, msg)
		return
	}

	// Skip the bcrypt cost when registration is already closed.
	count, err := h.store.CountAdmins(r.Context())
	if err != nil {
		h.writeFailure(w, err, "admin", "register admin")
		return
	}
	if count > 0 {
		h.writeFailure(w, store.ErrAdminExists, "admin", "register admin")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeFailure(w, err, "admin", "register admin")
		return
	}

	admin := domain.NewAdmin(req.Email, hash, req.Name, h.now().UTC())
	if err := h.store.CreateFirstAdmin(r.Context(), admin); err != nil {
		h.writeFailure(w, err, "admin", "register admin")
		return
	}
	h.logger.Info("admin registered", "admin_id", admin.ID, "email", admin.Email)

	token, err := h.issuer.Issue(admin, h.now())
	if err != nil {
		h.writeFailure(w, err, "admin", "issue token")
		return
	}
	h.writeData(w, http.StatusCreated, AuthResponse{User: admin, Token: token}, "Admin registered successfully")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, "invalid JSON")
		return
	}

	if field, msg := validation.ValidateLoginFields(req.Email, req.Password); field != "" {
		h.writeValidation(w, msg)
		return
	}

	admin, err := h.store.GetAdminByEmail(r.Context(), req.Email)
	if err != nil && !store.IsNotFound(err) {
		h.writeFailure(w, err, "admin", "log in")
		return
	}
	if admin == nil || auth.CheckPassword(admin.PasswordHash, req.Password) != nil {
		h.writeError(w, http.StatusUnauthorized, "invalid email or password", "invalid_credentials")
		return
	}

	token, err := h.issuer.Issue(admin, h.now())
	if err != nil {
		h.writeFailure(w, err, "admin", "issue token")
		return
	}
	h.writeData(w, http.StatusOK, AuthResponse{User: admin, Token: token}, "Login successful")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	admin, err := h.store.GetAdmin(r.Context(), authCtx.AdminID)
	if err != nil {
		if store.IsNotFound(err) {
			h.writeError(w, http.StatusUnauthorized, "account no longer exists", "invalid_token")
			return
		}
		h.writeFailure(w, err, "admin", "load profile")
		return
	}
	h.writeData(w, http.StatusOK, admin, "")
}
