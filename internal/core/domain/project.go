// Package domain contains the core content types of the CMS and the pure
// helpers that operate on them.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrEmptySlug is returned when a display name produces no slug characters.
	ErrEmptySlug = errors.New("title must contain at least one letter or digit")

	// ErrImageNotFound is returned when removing an image a project does not hold.
	ErrImageNotFound = errors.New("image not found in project")

	// ErrSelfRelation is returned when relating a project to itself.
	ErrSelfRelation = errors.New("project cannot be related to itself")
)

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.New().String()
}

// =============================================================================
// Project
// =============================================================================

// StatusPublished is the project status that makes a project publicly visible.
// Other statuses (completed, ongoing, competition, draft) are free-form labels.
const StatusPublished = "published"

// Project is a portfolio entry.
type Project struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Location        string           `json:"location"`
	City            string           `json:"city,omitempty"`
	Country         string           `json:"country,omitempty"`
	StartDate       *time.Time       `json:"startDate,omitempty"`
	CompletionDate  *time.Time       `json:"completionDate,omitempty"`
	Status          string           `json:"status"`
	Client          string           `json:"client,omitempty"`
	ProjectSize     string           `json:"projectSize,omitempty"`
	TechnicalSpecs  map[string]any   `json:"technicalSpecs,omitempty"`
	TeamCredits     []map[string]any `json:"teamCredits"`
	Awards          []map[string]any `json:"awards"`
	IsFeatured      bool             `json:"isFeatured"`
	Images          []string         `json:"images"`
	FeaturedImage   string           `json:"featuredImage,omitempty"`
	PublishedAt     *time.Time       `json:"publishedAt,omitempty"`
	Categories      []Category       `json:"categories"`
	RelatedProjects []ProjectSummary `json:"relatedProjects,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ProjectSummary is the short form of a project used in listings of
// related and popular projects.
type ProjectSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Location      string `json:"location,omitempty"`
	FeaturedImage string `json:"featuredImage,omitempty"`
}

// NewProject creates a project with a fresh ID and timestamps.
// The slug is assigned separately by the slug resolver.
func NewProject(title, description, location, status string, now time.Time) *Project {
	return &Project{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Location:    location,
		Status:      status,
		TeamCredits: []map[string]any{},
		Awards:      []map[string]any{},
		Images:      []string{},
		Categories:  []Category{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsPublished reports whether the project is publicly visible.
func (p *Project) IsPublished() bool {
	return p.PublishedAt != nil
}

// ApplyStatus sets the status and derives PublishedAt from it. A published
// project takes the requested publication time, or now when none is given.
// Any other status clears the publication time.
func (p *Project) ApplyStatus(status string, requested *time.Time, now time.Time) {
	p.Status = status
	if status != StatusPublished {
		p.PublishedAt = nil
		return
	}
	if requested != nil {
		t := requested.UTC()
		p.PublishedAt = &t
		return
	}
	t := now.UTC()
	p.PublishedAt = &t
}

// SetImages replaces the image list; the first image becomes the featured one.
func (p *Project) SetImages(images []string) {
	if images == nil {
		images = []string{}
	}
	p.Images = images
	p.FeaturedImage = ""
	if len(images) > 0 {
		p.FeaturedImage = images[0]
	}
}

// RemoveImage drops one image reference. When the featured image is removed
// the first remaining image takes its place.
func (p *Project) RemoveImage(ref string) error {
	kept := make([]string, 0, len(p.Images))
	found := false
	for _, img := range p.Images {
		if img == ref {
			found = true
			continue
		}
		kept = append(kept, img)
	}
	if !found {
		return ErrImageNotFound
	}

	featured := p.FeaturedImage
	p.Images = kept
	if featured == ref || featured == "" {
		p.FeaturedImage = ""
		if len(kept) > 0 {
			p.FeaturedImage = kept[0]
		}
	}
	return nil
}

// Summary returns the short form of the project.
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Location:      p.Location,
		FeaturedImage: p.FeaturedImage,
	}
}

// RemovedReferences returns the entries of before that are absent from after,
// in their original order.
func RemovedReferences(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, ref := range after {
		keep[ref] = struct{}{}
	}
	var removed []string
	for _, ref := range before {
		if _, ok := keep[ref]; !ok {
			removed = append(removed, ref)
		}
	}
	return removed
}

// =============================================================================
// Category
// =============================================================================

// Category groups projects. Slugs are unique among categories.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ProjectCount int       `json:"projectCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewCategory creates a category with a fresh ID and timestamps.
func NewCategory(name string, now time.Time) *Category {
	return &Category{
		ID:        NewID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
