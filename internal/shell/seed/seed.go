// Package seed loads initial content from YAML documents: the project
// categories and the default site settings.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/core/validation"
	"github.com/aceconsult/cmsapi/internal/shell/store"
)

//go:embed default.yaml
var defaultDocument []byte

// DefaultName selects the built-in document in Load.
const DefaultName = "default"

// =============================================================================
// Document
// =============================================================================

// Document is a seed file.
type Document struct {
	Categories []Category `yaml:"categories"`
	Settings   *Settings  `yaml:"settings"`
}

// Category is one category to create. Slug defaults to the slugified name.
type Category struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

// Settings holds the initial site settings. Empty fields keep the built-in
// defaults.
type Settings struct {
	CompanyName     string            `yaml:"companyName"`
	Tagline         string            `yaml:"tagline"`
	Description     string            `yaml:"description"`
	ContactEmail    string            `yaml:"contactEmail"`
	Phone           string            `yaml:"phone"`
	Address         string            `yaml:"address"`
	SocialLinks     map[string]string `yaml:"socialLinks"`
	HeroImages      []string          `yaml:"heroImages"`
	HeroTitle       string            `yaml:"heroTitle"`
	HeroSubtitle    string            `yaml:"heroSubtitle"`
	SeoDefaultTitle string            `yaml:"seoDefaultTitle"`
	SeoDefaultDesc  string            `yaml:"seoDefaultDesc"`
}

// Parse decodes and validates a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed document: %w", err)
	}
	if err := doc.normalize(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads the seed document at path, or the built-in document when path
// is DefaultName.
func Load(path string) (*Document, error) {
	if path == DefaultName {
		return Parse(bytes.NewReader(defaultDocument))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// normalize fills in category slugs and checks the document.
func (d *Document) normalize() error {
	seen := make(map[string]bool, len(d.Categories))
	for i := range d.Categories {
		c := &d.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return fmt.Errorf("category %d: name is required", i+1)
		}
		if c.Slug == "" {
			c.Slug = domain.Slugify(c.Name)
		} else {
			c.Slug = domain.Slugify(c.Slug)
		}
		if c.Slug == "" {
			return fmt.Errorf("category %q: %w", c.Name, domain.ErrEmptySlug)
		}
		if seen[c.Slug] {
			return fmt.Errorf("category %q: duplicate slug %q", c.Name, c.Slug)
		}
		seen[c.Slug] = true
	}

	if d.Settings != nil && d.Settings.ContactEmail != "" && !validation.ValidEmail(d.Settings.ContactEmail) {
		return fmt.Errorf("settings: invalid contactEmail %q", d.Settings.ContactEmail)
	}
	return nil
}

// =============================================================================
// Apply
// =============================================================================

// Result reports what Apply changed.
type Result struct {
	CategoriesCreated int
	CategoriesSkipped int
	SettingsCreated   bool
}

// Apply creates the document's categories that do not exist yet, matched by
// slug, and the settings row when none exists. It runs in one transaction and
// is safe to repeat.
func Apply(ctx context.Context, s store.Store, doc *Document, now time.Time, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var res Result
	err := s.WithTx(ctx, func(tx store.Store) error {
		res = Result{}
		for _, c := range doc.Categories {
			_, err := tx.GetCategoryBySlug(ctx, c.Slug)
			if err == nil {
				res.CategoriesSkipped++
				logger.Debug("category already exists", "slug", c.Slug)
				continue
			}
			if !store.IsNotFound(err) {
				return err
			}

			category := domain.NewCategory(c.Name, now)
			category.Slug = c.Slug
			if err := tx.CreateCategory(ctx, category); err != nil {
				return err
			}
			res.CategoriesCreated++
			logger.Info("category created", "name", c.Name, "slug", c.Slug)
		}

		if doc.Settings == nil {
			return nil
		}
		_, err := tx.GetSettings(ctx)
		if err == nil {
			logger.Info("settings already exist, skipping")
			return nil
		}
		if !store.IsNotFound(err) {
			return err
		}

		settings := domain.NewSettings(now)
		doc.Settings.apply(settings)
		if err := tx.SaveSettings(ctx, settings); err != nil {
			return err
		}
		res.SettingsCreated = true
		logger.Info("default settings created", "company", settings.CompanyName)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("apply seed: %w", err)
	}
	return res, nil
}

func (s *Settings) apply(st *domain.Settings) {
	set := func(dest *string, v string) {
		if v != "" {
			*dest = v
		}
	}
	set(&st.CompanyName, s.CompanyName)
	set(&st.Tagline, s.Tagline)
	set(&st.Description, s.Description)
	set(&st.ContactEmail, s.ContactEmail)
	set(&st.Phone, s.Phone)
	set(&st.Address, s.Address)
	set(&st.HeroTitle, s.HeroTitle)
	set(&st.HeroSubtitle, s.HeroSubtitle)
	set(&st.SeoDefaultTitle, s.SeoDefaultTitle)
	set(&st.SeoDefaultDesc, s.SeoDefaultDesc)
	if s.SocialLinks != nil {
		st.SocialLinks = s.SocialLinks
	}
	if s.HeroImages != nil {
		st.HeroImages = s.HeroImages
	}
}
