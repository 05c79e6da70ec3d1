package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func createTestCategory(t *testing.T, s Store, name, slug string) *domain.Category {
	t.Helper()
	c := domain.NewCategory(name, testNow)
	c.Slug = slug
	require.NoError(t, s.CreateCategory(context.Background(), c))
	return c
}

func createTestProject(t *testing.T, s Store, title, slug string, published bool, cats ...*domain.Category) *domain.Project {
	t.Helper()
	p := domain.NewProject(title, "A building", "Lisbon", "completed", testNow)
	p.Slug = slug
	if published {
		p.ApplyStatus(domain.StatusPublished, nil, testNow)
	}
	for _, c := range cats {
		p.Categories = append(p.Categories, *c)
	}
	require.NoError(t, s.CreateProject(context.Background(), p))
	return p
}

func createTestArticle(t *testing.T, s Store, title, slug string, published bool) *domain.Article {
	t.Helper()
	a := domain.NewArticle(title, "Body text", testNow)
	a.Slug = slug
	if published {
		at := testNow
		a.PublishedAt = &at
	}
	require.NoError(t, s.CreateArticle(context.Background(), a))
	return a
}

// =============================================================================
// Admin Tests
// =============================================================================

func TestCreateFirstAdmin_OnlyOnce(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := domain.NewAdmin("Owner@Example.com", "hash", "Owner", testNow)
	require.NoError(t, s.CreateFirstAdmin(ctx, first))

	second := domain.NewAdmin("other@example.com", "hash", "Other", testNow)
	err := s.CreateFirstAdmin(ctx, second)
	assert.ErrorIs(t, err, ErrAdminExists)

	n, err := s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetAdminByEmail_CaseInsensitive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	admin := domain.NewAdmin("owner@example.com", "hash", "Owner", testNow)
	require.NoError(t, s.CreateFirstAdmin(ctx, admin))

	got, err := s.GetAdminByEmail(ctx, "  OWNER@example.com ")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = s.GetAdminByEmail(ctx, "nobody@example.com")
	assert.True(t, IsNotFound(err))
}

// =============================================================================
// Category Tests
// =============================================================================

func TestCreateCategory_DuplicateSlug(t *testing.T) {
	s := setupTestStore(t)
	createTestCategory(t, s, "Residential", "residential")

	dup := domain.NewCategory("Residential", testNow)
	dup.Slug = "residential"
	err := s.CreateCategory(context.Background(), dup)
	assert.True(t, IsDuplicateSlug(err))
}

func TestListCategories_ProjectCounts(t *testing.T) {
	s := setupTestStore(t)
	res := createTestCategory(t, s, "Residential", "residential")
	createTestCategory(t, s, "Cultural", "cultural")
	createTestProject(t, s, "House A", "house-a", true, res)
	createTestProject(t, s, "House B", "house-b", false, res)

	cats, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Cultural", cats[0].Name)
	assert.Equal(t, 0, cats[0].ProjectCount)
	assert.Equal(t, "Residential", cats[1].Name)
	assert.Equal(t, 2, cats[1].ProjectCount)
}

func TestDeleteCategory_InUse(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	res := createTestCategory(t, s, "Residential", "residential")
	p := createTestProject(t, s, "House", "house", true, res)

	err := s.DeleteCategory(ctx, res.ID)
	assert.ErrorIs(t, err, ErrForeignKey)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	require.NoError(t, s.DeleteCategory(ctx, res.ID))

	_, err = s.GetCategory(ctx, res.ID)
	assert.True(t, IsNotFound(err))
}

// =============================================================================
// Project Tests
// =============================================================================

func TestCreateProject_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := createTestCategory(t, s, "Cultural", "cultural")

	start := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
	p := domain.NewProject("Museum", "A museum", "Porto", "ongoing", testNow)
	p.Slug = "museum"
	p.City = "Porto"
	p.StartDate = &start
	p.TechnicalSpecs = map[string]any{"area": "1200m2"}
	p.TeamCredits = []map[string]any{{"name": "Ana", "role": "Lead"}}
	p.SetImages([]string{"/uploads/a-opt.jpg", "/uploads/b-opt.jpg"})
	p.Categories = []domain.Category{*cat}
	require.NoError(t, s.CreateProject(ctx, p))

	got, err := s.GetProjectBySlug(ctx, "museum")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Porto", got.City)
	require.NotNil(t, got.StartDate)
	assert.True(t, start.Equal(*got.StartDate))
	assert.Equal(t, "1200m2", got.TechnicalSpecs["area"])
	assert.Equal(t, "Ana", got.TeamCredits[0]["name"])
	assert.Equal(t, []string{"/uploads/a-opt.jpg", "/uploads/b-opt.jpg"}, got.Images)
	assert.Equal(t, "/uploads/a-opt.jpg", got.FeaturedImage)
	assert.Empty(t, got.Awards)
	assert.Nil(t, got.PublishedAt)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "cultural", got.Categories[0].Slug)
}

func TestCreateProject_DuplicateSlug(t *testing.T) {
	s := setupTestStore(t)
	createTestProject(t, s, "House", "house", true)

	dup := domain.NewProject("House", "d", "l", "completed", testNow)
	dup.Slug = "house"
	err := s.CreateProject(context.Background(), dup)
	assert.True(t, IsDuplicateSlug(err))
}

func TestCreateProject_UnknownCategoryRollsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := domain.NewProject("House", "d", "l", "completed", testNow)
	p.Slug = "house"
	p.Categories = []domain.Category{{ID: "missing"}}
	err := s.CreateProject(ctx, p)
	assert.ErrorIs(t, err, ErrForeignKey)

	_, err = s.GetProject(ctx, p.ID)
	assert.True(t, IsNotFound(err))
}

func TestUpdateProject_ReplacesCategories(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := createTestCategory(t, s, "A", "a")
	b := createTestCategory(t, s, "B", "b")
	p := createTestProject(t, s, "House", "house", false, a)

	p.Categories = []domain.Category{*b}
	p.Title = "House Renamed"
	p.Slug = "house-renamed"
	p.ApplyStatus(domain.StatusPublished, nil, testNow)
	require.NoError(t, s.UpdateProject(ctx, p))

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "house-renamed", got.Slug)
	assert.NotNil(t, got.PublishedAt)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, b.ID, got.Categories[0].ID)
}

func TestUpdateProject_NotFound(t *testing.T) {
	s := setupTestStore(t)
	p := domain.NewProject("Ghost", "d", "l", "completed", testNow)
	p.Slug = "ghost"
	err := s.UpdateProject(context.Background(), p)
	assert.True(t, IsNotFound(err))
}

func TestListProjects_Filters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	res := createTestCategory(t, s, "Residential", "residential")

	createTestProject(t, s, "Draft House", "draft-house", false, res)
	villa := createTestProject(t, s, "Sea Villa", "sea-villa", true, res)
	tower := createTestProject(t, s, "Office Tower", "office-tower", true)

	tower.IsFeatured = true
	started := time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC)
	tower.StartDate = &started
	require.NoError(t, s.UpdateProject(ctx, tower))

	all, total, err := s.ListProjects(ctx, ProjectFilter{}, DefaultListOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)
	assert.Equal(t, tower.ID, all[0].ID, "featured first")

	published, total, err := s.ListProjects(ctx, ProjectFilter{PublishedOnly: true}, DefaultListOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range published {
		assert.NotNil(t, p.PublishedAt)
	}

	byCat, total, err := s.ListProjects(ctx, ProjectFilter{PublishedOnly: true, CategorySlug: "residential"}, DefaultListOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, villa.ID, byCat[0].ID)
	require.Len(t, byCat[0].Categories, 1)

	byYear, _, err := s.ListProjects(ctx, ProjectFilter{Year: 2019}, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, tower.ID, byYear[0].ID)

	bySearch, _, err := s.ListProjects(ctx, ProjectFilter{Search: "VILLA"}, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, villa.ID, bySearch[0].ID)

	wildcard, _, err := s.ListProjects(ctx, ProjectFilter{Search: "%"}, DefaultListOptions())
	require.NoError(t, err)
	assert.Empty(t, wildcard)

	featured, _, err := s.ListProjects(ctx, ProjectFilter{FeaturedOnly: true}, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, featured, 1)
}

func TestListProjects_Pagination(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		createTestProject(t, s, fmt.Sprintf("P%d", i), fmt.Sprintf("p-%d", i), true)
	}

	page, total, err := s.ListProjects(ctx, ProjectFilter{}, ListOptions{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 1)
}

func TestRelatedProjects(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := createTestCategory(t, s, "C", "c")
	a := createTestProject(t, s, "A", "a", true, cat)
	b := createTestProject(t, s, "B", "b", true, cat)
	draft := createTestProject(t, s, "Draft", "draft", false, cat)

	require.NoError(t, s.AddRelatedProject(ctx, a.ID, b.ID))
	require.NoError(t, s.AddRelatedProject(ctx, a.ID, b.ID))
	require.NoError(t, s.AddRelatedProject(ctx, a.ID, draft.ID))

	related, err := s.ListRelatedProjects(ctx, a.ID, 3)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, b.ID, related[0].ID)

	err = s.AddRelatedProject(ctx, a.ID, "missing")
	assert.ErrorIs(t, err, ErrForeignKey)

	require.NoError(t, s.RemoveRelatedProject(ctx, a.ID, b.ID))
	err = s.RemoveRelatedProject(ctx, a.ID, b.ID)
	assert.True(t, IsNotFound(err))

	similar, err := s.ListSimilarProjects(ctx, a.ID, []string{cat.ID}, 3)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, b.ID, similar[0].ID)

	none, err := s.ListSimilarProjects(ctx, a.ID, nil, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteProject_CascadesLinks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := createTestProject(t, s, "A", "a", true)
	b := createTestProject(t, s, "B", "b", true)
	require.NoError(t, s.AddRelatedProject(ctx, a.ID, b.ID))

	require.NoError(t, s.DeleteProject(ctx, b.ID))

	related, err := s.ListRelatedProjects(ctx, a.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, related)

	assert.True(t, IsNotFound(s.DeleteProject(ctx, b.ID)))
}

// =============================================================================
// Article Tests
// =============================================================================

func TestArticle_AuthorAndTags(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	member := domain.NewTeamMember("Rita", "Partner", testNow)
	require.NoError(t, s.CreateTeamMember(ctx, member))

	a := domain.NewArticle("Opening", "Text", testNow)
	a.Slug = "opening"
	a.AuthorID = member.ID
	a.Tags = []string{"news", "culture"}
	require.NoError(t, s.CreateArticle(ctx, a))

	got, err := s.GetArticleBySlug(ctx, "opening")
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Rita", got.Author.Name)
	assert.Equal(t, []string{"news", "culture"}, got.Tags)

	require.NoError(t, s.DeleteTeamMember(ctx, member.ID))
	got, err = s.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Author)
	assert.Empty(t, got.AuthorID)
}

func TestListArticles_Filters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	news := createTestArticle(t, s, "Award Won", "award-won", true)
	news.Tags = []string{"news"}
	require.NoError(t, s.UpdateArticle(ctx, news))
	createTestArticle(t, s, "Draft Post", "draft-post", false)

	published, total, err := s.ListArticles(ctx, ArticleFilter{PublishedOnly: true}, DefaultListOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, news.ID, published[0].ID)

	tagged, _, err := s.ListArticles(ctx, ArticleFilter{Tag: "news"}, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, tagged, 1)

	partialTag, _, err := s.ListArticles(ctx, ArticleFilter{Tag: "new"}, DefaultListOptions())
	require.NoError(t, err)
	assert.Empty(t, partialTag)

	searched, _, err := s.ListArticles(ctx, ArticleFilter{Search: "draft"}, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "draft-post", searched[0].Slug)
}

func TestCreateArticle_DuplicateSlug(t *testing.T) {
	s := setupTestStore(t)
	createTestArticle(t, s, "Post", "post", false)

	dup := domain.NewArticle("Post", "x", testNow)
	dup.Slug = "post"
	assert.True(t, IsDuplicateSlug(s.CreateArticle(context.Background(), dup)))
}

// =============================================================================
// Service, Team and Media Tests
// =============================================================================

func TestListServices_ActiveOnlyAndOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	second := domain.NewService("Interiors", "d", testNow)
	second.Order = 2
	second.Features = []string{"Furniture", "Lighting"}
	first := domain.NewService("Architecture", "d", testNow)
	first.Order = 1
	hidden := domain.NewService("Legacy", "d", testNow)
	hidden.IsActive = false
	for _, svc := range []*domain.Service{second, first, hidden} {
		require.NoError(t, s.CreateService(ctx, svc))
	}

	active, err := s.ListServices(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, []string{"Furniture", "Lighting"}, active[1].Features)

	all, err := s.ListServices(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTeamMember_UpdateAndOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := domain.NewTeamMember("Bruno", "Architect", testNow)
	b.Order = 2
	a := domain.NewTeamMember("Ana", "Partner", testNow)
	a.Order = 1
	require.NoError(t, s.CreateTeamMember(ctx, b))
	require.NoError(t, s.CreateTeamMember(ctx, a))

	b.Photo = "/uploads/x-team.jpg"
	require.NoError(t, s.UpdateTeamMember(ctx, b))

	members, err := s.ListTeamMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Ana", members[0].Name)
	assert.Equal(t, "/uploads/x-team.jpg", members[1].Photo)
}

func TestMedia_VariantsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	m := &domain.Media{
		ID:           domain.NewID(),
		Filename:     "abc-opt.jpg",
		OriginalName: "photo.png",
		URL:          "/uploads/abc-opt.jpg",
		MimeType:     "image/png",
		Size:         1234,
		Variants:     map[string]string{"thumbnail": "/uploads/abc-thumb.jpg"},
		CreatedAt:    testNow,
	}
	require.NoError(t, s.CreateMedia(ctx, m))

	got, err := s.GetMedia(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Variants, got.Variants)

	items, total, err := s.ListMedia(ctx, DefaultListOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)

	require.NoError(t, s.DeleteMedia(ctx, m.ID))
	assert.True(t, IsNotFound(s.DeleteMedia(ctx, m.ID)))
}

// =============================================================================
// Settings and Contact Tests
// =============================================================================

func TestSettings_SaveIsUpsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.GetSettings(ctx)
	assert.True(t, IsNotFound(err))

	st := domain.NewSettings(testNow)
	require.NoError(t, s.SaveSettings(ctx, st))

	st.CompanyName = "Studio"
	st.SocialLinks = map[string]string{"instagram": "https://instagram.com/studio"}
	st.HeroImages = []string{"/uploads/h-opt.jpg"}
	require.NoError(t, s.SaveSettings(ctx, st))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)
	assert.Equal(t, "Studio", got.CompanyName)
	assert.Equal(t, domain.DefaultContactEmail, got.ContactEmail)
	assert.Equal(t, "https://instagram.com/studio", got.SocialLinks["instagram"])
	assert.Equal(t, []string{"/uploads/h-opt.jpg"}, got.HeroImages)
}

func TestContactSubmissions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c := &domain.ContactSubmission{
			ID:        domain.NewID(),
			Name:      "Visitor",
			Email:     "v@example.com",
			Message:   "Hello",
			CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.CreateContactSubmission(ctx, c))
	}

	all, total, err := s.ListContactSubmissions(ctx, ContactFilter{}, DefaultListOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt))

	require.NoError(t, s.MarkContactRead(ctx, all[0].ID))

	unread := false
	items, total, err := s.ListContactSubmissions(ctx, ContactFilter{IsRead: &unread}, DefaultListOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	require.NoError(t, s.DeleteContactSubmission(ctx, all[0].ID))
	assert.True(t, IsNotFound(s.MarkContactRead(ctx, all[0].ID)))
}

// =============================================================================
// Analytics Tests
// =============================================================================

func recordView(t *testing.T, s Store, eventType, resourceID string, at time.Time) {
	t.Helper()
	require.NoError(t, s.CreateAnalyticsEvent(context.Background(), &domain.AnalyticsEvent{
		ID:         domain.NewID(),
		Type:       eventType,
		ResourceID: resourceID,
		Path:       "/",
		CreatedAt:  at,
	}))
}

func TestGetDashboard(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := createTestProject(t, s, "A", "a", true)
	b := createTestProject(t, s, "B", "b", false)
	createTestArticle(t, s, "Post", "post", true)

	recordView(t, s, domain.EventProjectView, a.ID, testNow.Add(-time.Hour))
	recordView(t, s, domain.EventProjectView, a.ID, testNow.Add(-48*time.Hour))
	recordView(t, s, domain.EventProjectView, b.ID, testNow.Add(-time.Hour))
	recordView(t, s, domain.EventProjectView, b.ID, testNow.Add(-40*24*time.Hour))

	dash, err := s.GetDashboard(ctx, testNow)
	require.NoError(t, err)

	assert.Equal(t, 2, dash.Totals.Projects)
	assert.Equal(t, 1, dash.Totals.PublishedProjects)
	assert.Equal(t, 1, dash.Totals.Articles)
	assert.Equal(t, 3, dash.Totals.RecentViews)

	require.Len(t, dash.PopularProjects, 2)
	assert.Equal(t, a.ID, dash.PopularProjects[0].ID)
	assert.Equal(t, 2, dash.PopularProjects[0].Views)
	assert.Empty(t, dash.PopularArticles)

	require.Len(t, dash.DailyViews, domain.DailyViewsDays)
	last := dash.DailyViews[len(dash.DailyViews)-1]
	assert.Equal(t, "2026-03-15", last.Date)
	assert.Equal(t, 2, last.Views)
	assert.Equal(t, 1, dash.DailyViews[len(dash.DailyViews)-3].Views)

	require.Len(t, dash.MonthlyStats, 2)
	assert.Equal(t, "2026-03", dash.MonthlyStats[0].Month)
	assert.Equal(t, "article", dash.MonthlyStats[0].Type)
	assert.Equal(t, 2, dash.MonthlyStats[1].Count)
}

func TestGetResourceAnalytics(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := createTestProject(t, s, "A", "a", true)

	recordView(t, s, domain.EventProjectView, p.ID, testNow.Add(-time.Hour))
	recordView(t, s, domain.EventProjectView, p.ID, testNow.Add(-2*time.Hour))
	recordView(t, s, domain.EventProjectView, p.ID, testNow.Add(-10*24*time.Hour))
	recordView(t, s, domain.EventArticleView, p.ID, testNow.Add(-time.Hour))

	got, err := s.GetResourceAnalytics(ctx, domain.EventProjectView, p.ID, domain.TimeframeStart("7d", testNow))
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalViews)
	require.Len(t, got.DailyBreakdown, 1)

	got, err = s.GetResourceAnalytics(ctx, domain.EventProjectView, p.ID, domain.TimeframeStart("30d", testNow))
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalViews)
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestWithTx_RollbackOnError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var id string
	err := s.WithTx(ctx, func(tx Store) error {
		c := domain.NewCategory("Temp", testNow)
		c.Slug = "temp"
		id = c.ID
		require.NoError(t, tx.CreateCategory(ctx, c))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetCategory(ctx, id)
	assert.True(t, IsNotFound(err))
}

func TestWithTx_NestedReusesTx(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx Store) error {
		return tx.WithTx(ctx, func(inner Store) error {
			assert.Same(t, tx, inner)
			assert.NoError(t, inner.Close())
			return inner.CreateCategory(ctx, &domain.Category{ID: "c1", Name: "N", Slug: "n", CreatedAt: testNow, UpdatedAt: testNow})
		})
	})
	require.NoError(t, err)

	_, err = s.GetCategory(ctx, "c1")
	require.NoError(t, err)
}

// =============================================================================
// Error and Option Tests
// =============================================================================

func TestStoreError_Error(t *testing.T) {
	err := NewStoreError("GetProject", "project", "p1", "project not found", ErrNotFound)
	assert.Equal(t, "GetProject project p1: project not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	bare := NewStoreError("WithTx", "", "", "failed", ErrTxFailed)
	assert.Equal(t, "WithTx: failed", bare.Error())
}

func TestListOptions_Normalize(t *testing.T) {
	assert.Equal(t, ListOptions{Limit: 100}, ListOptions{Limit: 0, Offset: -3}.Normalize())
	assert.Equal(t, 1000, ListOptions{Limit: 5000}.Normalize().Limit)
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\% off\_now%`, likePattern("50% OFF_now"))
}
