package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/shell/store"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParse_DerivesSlugs(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
categories:
  - name: Public Spaces
  - name: Sports & Recreation
    slug: Sports-Recreation
`))
	require.NoError(t, err)
	require.Len(t, doc.Categories, 2)
	assert.Equal(t, "public-spaces", doc.Categories[0].Slug)
	assert.Equal(t, "sports-recreation", doc.Categories[1].Slug)
	assert.Nil(t, doc.Settings)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "tags: [a]"},
		{"missing name", "categories:\n  - slug: x"},
		{"empty slug", "categories:\n  - name: '!!!'"},
		{"duplicate slug", "categories:\n  - name: Retail\n  - name: retail"},
		{"bad email", "settings:\n  contactEmail: nope"},
		{"not yaml", "categories: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	doc, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Categories)
}

func TestLoad_Default(t *testing.T) {
	doc, err := Load(DefaultName)
	require.NoError(t, err)
	assert.Len(t, doc.Categories, 14)
	require.NotNil(t, doc.Settings)
	assert.Equal(t, "Ace Consult", doc.Settings.CompanyName)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: Retail\n"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "Retail", Slug: "retail"}}, doc.Categories)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	doc, err := Load(DefaultName)
	require.NoError(t, err)

	res, err := Apply(ctx, s, doc, testNow, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 14, res.CategoriesCreated)
	assert.True(t, res.SettingsCreated)

	res, err = Apply(ctx, s, doc, testNow, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, res.CategoriesCreated)
	assert.Equal(t, 14, res.CategoriesSkipped)
	assert.False(t, res.SettingsCreated)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 14)

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "info@aceconsultltd.com", settings.ContactEmail)
	assert.Equal(t, "Building Dreams, Creating Futures", settings.Tagline)
}

func TestApply_KeepsExistingSettings(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	existing := domain.NewSettings(testNow)
	existing.CompanyName = "Already Here"
	require.NoError(t, s.SaveSettings(ctx, existing))

	doc, err := Parse(strings.NewReader("settings:\n  companyName: Seeded\n"))
	require.NoError(t, err)

	res, err := Apply(ctx, s, doc, testNow, nil)
	require.NoError(t, err)
	assert.False(t, res.SettingsCreated)

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Already Here", settings.CompanyName)
}

func TestApply_EmptyFieldsKeepDefaults(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	doc, err := Parse(strings.NewReader("settings:\n  tagline: Hello\n"))
	require.NoError(t, err)

	_, err = Apply(ctx, s, doc, testNow, testLogger())
	require.NoError(t, err)

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCompanyName, settings.CompanyName)
	assert.Equal(t, domain.DefaultContactEmail, settings.ContactEmail)
	assert.Equal(t, "Hello", settings.Tagline)
}
