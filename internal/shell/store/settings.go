package store

import (
	"context"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Settings Operations
// =============================================================================

type settingsRow struct {
	ID              string  `db:"id"`
	CompanyName     string  `db:"company_name"`
	Tagline         *string `db:"tagline"`
	Description     *string `db:"description"`
	ContactEmail    string  `db:"contact_email"`
	Phone           *string `db:"phone"`
	Address         *string `db:"address"`
	Logo            *string `db:"logo"`
	SocialLinks     *string `db:"social_links"`
	HeroImages      *string `db:"hero_images"`
	HeroTitle       *string `db:"hero_title"`
	HeroSubtitle    *string `db:"hero_subtitle"`
	SeoDefaultTitle *string `db:"seo_default_title"`
	SeoDefaultDesc  *string `db:"seo_default_desc"`
	CreatedAt       string  `db:"created_at"`
	UpdatedAt       string  `db:"updated_at"`
}

// GetSettings returns the settings row, or ErrNotFound before it is first saved.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var row settingsRow
	if err := s.exec.GetContext(ctx, &row, `SELECT * FROM settings ORDER BY created_at ASC LIMIT 1`); err != nil {
		return nil, notFoundOrError("GetSettings", "settings", "", err)
	}

	st := &domain.Settings{
		ID:              row.ID,
		CompanyName:     row.CompanyName,
		Tagline:         deref(row.Tagline),
		Description:     deref(row.Description),
		ContactEmail:    row.ContactEmail,
		Phone:           deref(row.Phone),
		Address:         deref(row.Address),
		Logo:            deref(row.Logo),
		HeroTitle:       deref(row.HeroTitle),
		HeroSubtitle:    deref(row.HeroSubtitle),
		SeoDefaultTitle: deref(row.SeoDefaultTitle),
		SeoDefaultDesc:  deref(row.SeoDefaultDesc),
		CreatedAt:       parseTime(row.CreatedAt),
		UpdatedAt:       parseTime(row.UpdatedAt),
	}
	if err := unmarshalJSON("GetSettings", "settings", row.ID, "social_links", row.SocialLinks, &st.SocialLinks); err != nil {
		return nil, err
	}
	if err := unmarshalJSON("GetSettings", "settings", row.ID, "hero_images", row.HeroImages, &st.HeroImages); err != nil {
		return nil, err
	}
	st.HeroImages = nonNilStrings(st.HeroImages)
	return st, nil
}

// SaveSettings inserts or replaces the settings row.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	var social any
	if settings.SocialLinks != nil {
		raw, err := marshalJSON("SaveSettings", "settings", settings.ID, "social_links", settings.SocialLinks)
		if err != nil {
			return err
		}
		social = raw
	}
	hero, err := marshalJSON("SaveSettings", "settings", settings.ID, "hero_images", nonNilStrings(settings.HeroImages))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO settings (
			id, company_name, tagline, description, contact_email, phone, address,
			logo, social_links, hero_images, hero_title, hero_subtitle,
			seo_default_title, seo_default_desc, created_at, updated_at
		) VALUES (
			:id, :company_name, :tagline, :description, :contact_email, :phone, :address,
			:logo, :social_links, :hero_images, :hero_title, :hero_subtitle,
			:seo_default_title, :seo_default_desc, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			company_name = excluded.company_name,
			tagline = excluded.tagline,
			description = excluded.description,
			contact_email = excluded.contact_email,
			phone = excluded.phone,
			address = excluded.address,
			logo = excluded.logo,
			social_links = excluded.social_links,
			hero_images = excluded.hero_images,
			hero_title = excluded.hero_title,
			hero_subtitle = excluded.hero_subtitle,
			seo_default_title = excluded.seo_default_title,
			seo_default_desc = excluded.seo_default_desc,
			updated_at = excluded.updated_at`

	row := map[string]any{
		"id":                settings.ID,
		"company_name":      settings.CompanyName,
		"tagline":           nullString(settings.Tagline),
		"description":       nullString(settings.Description),
		"contact_email":     settings.ContactEmail,
		"phone":             nullString(settings.Phone),
		"address":           nullString(settings.Address),
		"logo":              nullString(settings.Logo),
		"social_links":      social,
		"hero_images":       hero,
		"hero_title":        nullString(settings.HeroTitle),
		"hero_subtitle":     nullString(settings.HeroSubtitle),
		"seo_default_title": nullString(settings.SeoDefaultTitle),
		"seo_default_desc":  nullString(settings.SeoDefaultDesc),
		"created_at":        formatTime(settings.CreatedAt),
		"updated_at":        formatTime(settings.UpdatedAt),
	}

	if _, err := s.exec.NamedExecContext(ctx, query, row); err != nil {
		return classifyWriteError("SaveSettings", "settings", "settings", settings.ID, err)
	}
	return nil
}
