package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Article
// =============================================================================

// Article is a news or journal entry. It is public once PublishedAt is set.
type Article struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Excerpt        string     `json:"excerpt,omitempty"`
	Content        string     `json:"content"`
	FeaturedImage  string     `json:"featuredImage,omitempty"`
	AuthorID       string     `json:"authorId,omitempty"`
	Author         *Author    `json:"author,omitempty"`
	Tags           []string   `json:"tags"`
	SeoTitle       string     `json:"seoTitle,omitempty"`
	SeoDescription string     `json:"seoDescription,omitempty"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Author is the team member credited on an article.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// NewArticle creates an article with a fresh ID and timestamps.
func NewArticle(title, content string, now time.Time) *Article {
	return &Article{
		ID:        NewID(),
		Title:     title,
		Content:   content,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPublished reports whether the article is publicly visible.
func (a *Article) IsPublished() bool {
	return a.PublishedAt != nil
}

// =============================================================================
// Service
// =============================================================================

// Service is an offering shown on the services page.
type Service struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Image       string    `json:"image,omitempty"`
	Features    []string  `json:"features"`
	IsActive    bool      `json:"isActive"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewService creates an active service with a fresh ID and timestamps.
func NewService(title, description string, now time.Time) *Service {
	return &Service{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Features:    []string{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SplitFeatures turns a comma-separated feature list into trimmed, non-empty
// entries.
func SplitFeatures(s string) []string {
	features := []string{}
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return features
}

// =============================================================================
// Team Member
// =============================================================================

// TeamMember is a person shown on the team page.
type TeamMember struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	Department string    `json:"department,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Photo      string    `json:"photo,omitempty"`
	Email      string    `json:"email,omitempty"`
	LinkedIn   string    `json:"linkedin,omitempty"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewTeamMember creates a team member with a fresh ID and timestamps.
func NewTeamMember(name, title string, now time.Time) *TeamMember {
	return &TeamMember{
		ID:        NewID(),
		Name:      name,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// Media
// =============================================================================

// Media is an entry in the media library. MimeType and Size describe the
// stored file at URL, not the upload it was rendered from. Variants records
// the web path of every rendition that was produced for the upload.
type Media struct {
	ID           string            `json:"id"`
	Filename     string            `json:"filename"`
	OriginalName string            `json:"originalName"`
	URL          string            `json:"url"`
	MimeType     string            `json:"mimeType"`
	Size         int64             `json:"size"`
	Variants     map[string]string `json:"variants"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// =============================================================================
// Settings
// =============================================================================

// Default values used when the settings row is first created.
const (
	DefaultCompanyName  = "Architecture Consultancy"
	DefaultContactEmail = "contact@example.com"
)

// Settings holds the site-wide configuration. There is at most one row.
type Settings struct {
	ID              string            `json:"id"`
	CompanyName     string            `json:"companyName"`
	Tagline         string            `json:"tagline,omitempty"`
	Description     string            `json:"description,omitempty"`
	ContactEmail    string            `json:"contactEmail"`
	Phone           string            `json:"phone,omitempty"`
	Address         string            `json:"address,omitempty"`
	Logo            string            `json:"logo,omitempty"`
	SocialLinks     map[string]string `json:"socialLinks,omitempty"`
	HeroImages      []string          `json:"heroImages"`
	HeroTitle       string            `json:"heroTitle,omitempty"`
	HeroSubtitle    string            `json:"heroSubtitle,omitempty"`
	SeoDefaultTitle string            `json:"seoDefaultTitle,omitempty"`
	SeoDefaultDesc  string            `json:"seoDefaultDesc,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// NewSettings creates the settings row with defaults for the required fields.
func NewSettings(now time.Time) *Settings {
	return &Settings{
		ID:           NewID(),
		CompanyName:  DefaultCompanyName,
		ContactEmail: DefaultContactEmail,
		HeroImages:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// =============================================================================
// Contact Submission
// =============================================================================

// ContactSubmission is a message sent through the public contact form.
type ContactSubmission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	ProjectType string    `json:"projectType,omitempty"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// =============================================================================
// Admin
// =============================================================================

// RoleAdmin is the only role the system knows.
const RoleAdmin = "admin"

// Admin is the single administrative account.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewAdmin creates an admin account. Email is normalised to lower case.
func NewAdmin(email, passwordHash, name string, now time.Time) *Admin {
	return &Admin{
		ID:           NewID(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
