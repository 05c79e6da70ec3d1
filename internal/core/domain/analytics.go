package domain

import "time"

// =============================================================================
// Analytics Events
// =============================================================================

// Event types recorded by the API itself.
const (
	EventProjectView = "project_view"
	EventArticleView = "article_view"
	EventPageView    = "page_view"
)

// Dashboard windows.
const (
	RecentWindow     = 30 * 24 * time.Hour
	DailyViewsDays   = 14
	MonthlyStatsSpan = 12
	PopularLimit     = 5
)

// AnalyticsEvent is one tracked view.
type AnalyticsEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ResourceID   string    `json:"resourceId,omitempty"`
	ResourceType string    `json:"resourceType,omitempty"`
	Path         string    `json:"path"`
	UserAgent    string    `json:"userAgent,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ViewEventType returns the event type recorded for views of a resource type,
// e.g. "project" becomes "project_view".
func ViewEventType(resourceType string) string {
	return resourceType + "_view"
}

// TimeframeStart returns the start of a resource analytics window.
// Accepted values are 7d, 30d and 90d; anything else means 30d.
func TimeframeStart(timeframe string, now time.Time) time.Time {
	days := 30
	switch timeframe {
	case "7d":
		days = 7
	case "90d":
		days = 90
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// =============================================================================
// Aggregates
// =============================================================================

// DashboardTotals holds the headline counters of the admin dashboard.
type DashboardTotals struct {
	Projects          int `json:"projects"`
	Articles          int `json:"articles"`
	Contacts          int `json:"contacts"`
	PublishedProjects int `json:"publishedProjects"`
	PublishedArticles int `json:"publishedArticles"`
	UnreadContacts    int `json:"unreadContacts"`
	RecentViews       int `json:"recentViews"`
}

// PopularItem is a project or article ranked by recent views.
type PopularItem struct {
	ID            string `json:"id" db:"id"`
	Title         string `json:"title" db:"title"`
	Slug          string `json:"slug" db:"slug"`
	FeaturedImage string `json:"featuredImage,omitempty" db:"featured_image"`
	Views         int    `json:"views" db:"views"`
}

// DailyViews is the number of events recorded on one calendar day (UTC).
type DailyViews struct {
	Date  string `json:"date" db:"day"`
	Views int    `json:"views" db:"views"`
}

// MonthlyCount is the number of projects or articles created in one month.
type MonthlyCount struct {
	Month string `json:"month" db:"month"`
	Type  string `json:"type" db:"type"`
	Count int    `json:"count" db:"count"`
}

// Dashboard is the aggregate returned to the admin dashboard.
type Dashboard struct {
	Totals          DashboardTotals `json:"totals"`
	PopularProjects []PopularItem   `json:"popularProjects"`
	PopularArticles []PopularItem   `json:"popularArticles"`
	DailyViews      []DailyViews    `json:"dailyViews"`
	MonthlyStats    []MonthlyCount  `json:"monthlyStats"`
}

// ResourceAnalytics is the view history of one resource.
type ResourceAnalytics struct {
	TotalViews     int          `json:"totalViews"`
	DailyBreakdown []DailyViews `json:"dailyBreakdown"`
}
