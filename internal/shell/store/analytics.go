package store

import (
	"context"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/domain"
)

// =============================================================================
// Analytics Operations
// =============================================================================

// CreateAnalyticsEvent records one event.
func (s *SQLiteStore) CreateAnalyticsEvent(ctx context.Context, event *domain.AnalyticsEvent) error {
	query := `
		INSERT INTO analytics (id, type, resource_id, resource_type, path, user_agent, ip_address, created_at)
		VALUES (:id, :type, :resource_id, :resource_type, :path, :user_agent, :ip_address, :created_at)`

	row := map[string]any{
		"id":            event.ID,
		"type":          event.Type,
		"resource_id":   nullString(event.ResourceID),
		"resource_type": nullString(event.ResourceType),
		"path":          event.Path,
		"user_agent":    nullString(event.UserAgent),
		"ip_address":    nullString(event.IPAddress),
		"created_at":    formatTime(event.CreatedAt),
	}

	if _, err := s.exec.NamedExecContext(ctx, query, row); err != nil {
		return classifyWriteError("CreateAnalyticsEvent", "analytics event", "analytics", event.ID, err)
	}
	return nil
}

// GetDashboard computes the admin dashboard aggregates relative to now.
func (s *SQLiteStore) GetDashboard(ctx context.Context, now time.Time) (*domain.Dashboard, error) {
	now = now.UTC()
	recentSince := formatTime(now.Add(-domain.RecentWindow))

	dash := &domain.Dashboard{}

	totalsQuery := `
		SELECT
			(SELECT COUNT(*) FROM projects) AS projects,
			(SELECT COUNT(*) FROM articles) AS articles,
			(SELECT COUNT(*) FROM contact_submissions) AS contacts,
			(SELECT COUNT(*) FROM projects WHERE published_at IS NOT NULL) AS published_projects,
			(SELECT COUNT(*) FROM articles WHERE published_at IS NOT NULL) AS published_articles,
			(SELECT COUNT(*) FROM contact_submissions WHERE is_read = 0) AS unread_contacts,
			(SELECT COUNT(*) FROM analytics WHERE created_at >= ?) AS recent_views`

	var totals struct {
		Projects          int `db:"projects"`
		Articles          int `db:"articles"`
		Contacts          int `db:"contacts"`
		PublishedProjects int `db:"published_projects"`
		PublishedArticles int `db:"published_articles"`
		UnreadContacts    int `db:"unread_contacts"`
		RecentViews       int `db:"recent_views"`
	}
	if err := s.exec.GetContext(ctx, &totals, totalsQuery, recentSince); err != nil {
		return nil, NewStoreError("GetDashboard", "analytics", "", err.Error(), err)
	}
	dash.Totals = domain.DashboardTotals(totals)

	var err error
	if dash.PopularProjects, err = s.popular(ctx, "projects", domain.EventProjectView, recentSince); err != nil {
		return nil, err
	}
	if dash.PopularArticles, err = s.popular(ctx, "articles", domain.EventArticleView, recentSince); err != nil {
		return nil, err
	}

	firstDay := startOfDay(now).AddDate(0, 0, -(domain.DailyViewsDays - 1))
	var daily []domain.DailyViews
	if err := s.exec.SelectContext(ctx, &daily, `
		SELECT substr(created_at, 1, 10) AS day, COUNT(*) AS views
		FROM analytics
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day ASC`, formatTime(firstDay)); err != nil {
		return nil, NewStoreError("GetDashboard", "analytics", "", err.Error(), err)
	}
	dash.DailyViews = fillDays(firstDay, domain.DailyViewsDays, daily)

	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(domain.MonthlyStatsSpan - 1), 0)
	monthSince := formatTime(firstMonth)
	var monthly []domain.MonthlyCount
	if err := s.exec.SelectContext(ctx, &monthly, `
		SELECT month, type, count FROM (
			SELECT substr(created_at, 1, 7) AS month, 'project' AS type, COUNT(*) AS count
			FROM projects WHERE created_at >= ? GROUP BY month
			UNION ALL
			SELECT substr(created_at, 1, 7) AS month, 'article' AS type, COUNT(*) AS count
			FROM articles WHERE created_at >= ? GROUP BY month
		)
		ORDER BY month ASC, type ASC`, monthSince, monthSince); err != nil {
		return nil, NewStoreError("GetDashboard", "analytics", "", err.Error(), err)
	}
	if monthly == nil {
		monthly = []domain.MonthlyCount{}
	}
	dash.MonthlyStats = monthly

	return dash, nil
}

// popular ranks rows of table by the number of eventType events since the
// given time.
func (s *SQLiteStore) popular(ctx context.Context, table, eventType, since string) ([]domain.PopularItem, error) {
	query := `
		SELECT r.id, r.title, r.slug, COALESCE(r.featured_image, '') AS featured_image, COUNT(a.id) AS views
		FROM analytics a
		JOIN ` + table + ` r ON r.id = a.resource_id
		WHERE a.type = ? AND a.created_at >= ?
		GROUP BY r.id
		ORDER BY views DESC, r.title ASC
		LIMIT ?`

	var items []domain.PopularItem
	if err := s.exec.SelectContext(ctx, &items, query, eventType, since, domain.PopularLimit); err != nil {
		return nil, NewStoreError("GetDashboard", "analytics", "", err.Error(), err)
	}
	if items == nil {
		items = []domain.PopularItem{}
	}
	return items, nil
}

// GetResourceAnalytics returns the view history of one resource since the
// given time.
func (s *SQLiteStore) GetResourceAnalytics(ctx context.Context, eventType, resourceID string, since time.Time) (*domain.ResourceAnalytics, error) {
	var daily []domain.DailyViews
	if err := s.exec.SelectContext(ctx, &daily, `
		SELECT substr(created_at, 1, 10) AS day, COUNT(*) AS views
		FROM analytics
		WHERE type = ? AND resource_id = ? AND created_at >= ?
		GROUP BY day
		ORDER BY day ASC`, eventType, resourceID, formatTime(since)); err != nil {
		return nil, NewStoreError("GetResourceAnalytics", "analytics", resourceID, err.Error(), err)
	}

	out := &domain.ResourceAnalytics{DailyBreakdown: []domain.DailyViews{}}
	for _, d := range daily {
		out.TotalViews += d.Views
		out.DailyBreakdown = append(out.DailyBreakdown, d)
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// fillDays returns one entry per day starting at first, taking counts from
// rows and zero for days without events.
func fillDays(first time.Time, days int, rows []domain.DailyViews) []domain.DailyViews {
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Date] = r.Views
	}
	out := make([]domain.DailyViews, 0, days)
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, domain.DailyViews{Date: day, Views: counts[day]})
	}
	return out
}
