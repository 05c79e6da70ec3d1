package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Envelope
// =============================================================================

// Response is the success envelope of every API response.
type Response struct {
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// =============================================================================
// Auth
// =============================================================================

// RegisterRequest is the body of the first-admin registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the body of a login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the admin profile and a bearer token.
type AuthResponse struct {
	User  *domain.Admin `json:"user"`
	Token string        `json:"token"`
}

// =============================================================================
// Content Requests
// =============================================================================

// ArticleRequest is the body for creating or updating an article.
// FeaturedImage may only keep (nil or the current path) or clear ("") the
// article's image; new images are uploaded through /featured-image.
type ArticleRequest struct {
	Title          string     `json:"title"`
	Excerpt        string     `json:"excerpt,omitempty"`
	Content        string     `json:"content"`
	FeaturedImage  *string    `json:"featuredImage,omitempty"`
	AuthorID       string     `json:"authorId,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	SeoTitle       string     `json:"seoTitle,omitempty"`
	SeoDescription string     `json:"seoDescription,omitempty"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
}

// CategoryRequest is the body for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name"`
}

// ServiceRequest is the body for creating or updating a service. Pointer
// fields left nil are not changed by an update.
type ServiceRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Icon        *string     `json:"icon,omitempty"`
	Image       *string     `json:"image,omitempty"`
	Features    FeatureList `json:"features,omitempty"`
	IsActive    *bool       `json:"isActive,omitempty"`
	Order       *int        `json:"order,omitempty"`
}

// SettingsRequest is the body for updating site settings. Pointer fields
// left nil keep their stored value.
type SettingsRequest struct {
	CompanyName     *string           `json:"companyName,omitempty"`
	Tagline         *string           `json:"tagline,omitempty"`
	Description     *string           `json:"description,omitempty"`
	ContactEmail    *string           `json:"contactEmail,omitempty"`
	Phone           *string           `json:"phone,omitempty"`
	Address         *string           `json:"address,omitempty"`
	SocialLinks     map[string]string `json:"socialLinks,omitempty"`
	HeroImages      []string          `json:"heroImages,omitempty"`
	HeroTitle       *string           `json:"heroTitle,omitempty"`
	HeroSubtitle    *string           `json:"heroSubtitle,omitempty"`
	SeoDefaultTitle *string           `json:"seoDefaultTitle,omitempty"`
	SeoDefaultDesc  *string           `json:"seoDefaultDesc,omitempty"`
}

// ContactRequest is the body of a contact form submission.
type ContactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	ProjectType string `json:"projectType,omitempty"`
	Message     string `json:"message"`
}

// TrackRequest is the body of an analytics tracking call.
type TrackRequest struct {
	Type         string `json:"type"`
	ResourceID   string `json:"resourceId,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	Path         string `json:"path"`
}

// RemoveImageRequest names a project image to remove.
type RemoveImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

// RelatedProjectRequest names a project to link or unlink.
type RelatedProjectRequest struct {
	RelatedProjectID string `json:"relatedProjectId"`
}

// =============================================================================
// Responses
// =============================================================================

// UploadResponse describes the stored renditions of one uploaded image.
type UploadResponse struct {
	URL      string            `json:"url"`
	Variants map[string]string `json:"variants"`
	Fallback bool              `json:"fallback,omitempty"`
}

// =============================================================================
// Field Types
// =============================================================================

// FeatureList accepts either a JSON array of strings or one comma-separated
// string. A nil FeatureList means the field was absent.
type FeatureList []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FeatureList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*f = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("features must be an array or a comma-separated string")
	}
	*f = domain.SplitFeatures(s)
	return nil
}
