package service

import (
	"context"
	"fmt"
	"linklyst/internal/logger"
	"sort"
)

const trendingSize = 2

// TrendingLink is one entry in the dashboard trending list.
type TrendingLink struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Clicks int64  `json:"clicks"`
}

// AnalyticsSummary is the per-user dashboard summary.
type AnalyticsSummary struct {
	TotalLinks       int64          `json:"total_links"`
	TotalClicks      int64          `json:"total_clicks"`
	CategoryCount    int64          `json:"categories_count"`
	SubcategoryCount int64          `json:"subcategories_count"`
	Trending         []TrendingLink `json:"trending_links"`
}

// LinkStat is one row of the public per-link click stats.
type LinkStat struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Clicks int64  `json:"clicks"`
}

// ClickServicer defines the interface for click accounting.
type ClickServicer interface {
	RecordClick(ctx context.Context, linkID int64, referrer string) (string, error)
	UserAnalytics(ctx context.Context, userID int64) *AnalyticsSummary
	PublicStats(ctx context.Context, username string) ([]LinkStat, error)
}

// ClickService records click events and computes aggregates.
type ClickService struct {
	users         UserRepository
	categories    CategoryRepository
	subcategories SubcategoryRepository
	links         LinkRepository
	clicks        ClickRepository
	log           logger.Logger
}

// NewClickService creates a new ClickService.
func NewClickService(users UserRepository, categories CategoryRepository, subcategories SubcategoryRepository, links LinkRepository, clicks ClickRepository, log logger.Logger) *ClickService {
	return &ClickService{
		users:         users,
		categories:    categories,
		subcategories: subcategories,
		links:         links,
		clicks:        clicks,
		log:           log,
	}
}

// RecordClick looks up a link without an ownership check (the redirect
// endpoint is public), records the click, and returns the stored target
// URL. Click accounting is best-effort: a failed insert is logged and the
// redirect still happens.
func (s *ClickService) RecordClick(ctx context.Context, linkID int64, referrer string) (string, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if link == nil {
		return "", ErrNotFound
	}

	var ref *string
	if referrer != "" {
		ref = &referrer
	}
	if err := s.clicks.Insert(ctx, linkID, ref); err != nil {
		s.log.Warn("Failed to record click: " + err.Error())
	}
	return link.URL, nil
}

// UserAnalytics computes the dashboard summary. A failed sub-aggregate
// degrades that metric to zero instead of failing the whole summary.
func (s *ClickService) UserAnalytics(ctx context.Context, userID int64) *AnalyticsSummary {
	summary := &AnalyticsSummary{Trending: []TrendingLink{}}

	if count, err := s.links.CountByUser(ctx, userID); err != nil {
		s.log.Error(err, "Failed to count links for analytics")
	} else {
		summary.TotalLinks = count
	}
	if total, err := s.clicks.TotalByUser(ctx, userID); err != nil {
		s.log.Error(err, "Failed to count clicks for analytics")
	} else {
		summary.TotalClicks = total
	}
	if count, err := s.categories.CountByUser(ctx, userID); err != nil {
		s.log.Error(err, "Failed to count categories for analytics")
	} else {
		summary.CategoryCount = count
	}
	if count, err := s.subcategories.CountByUser(ctx, userID); err != nil {
		s.log.Error(err, "Failed to count subcategories for analytics")
	} else {
		summary.SubcategoryCount = count
	}

	trending, err := s.trendingLinks(ctx, userID)
	if err != nil {
		s.log.Error(err, "Failed to compute trending links")
	} else {
		summary.Trending = trending
	}

	return summary
}

// trendingLinks returns the user's top links by click count. Equal counts
// keep the order of the underlying link fetch.
func (s *ClickService) trendingLinks(ctx context.Context, userID int64) ([]TrendingLink, error) {
	links, err := s.links.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.clicks.CountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := make([]TrendingLink, 0, len(links))
	for _, link := range links {
		stats = append(stats, TrendingLink{
			ID:     link.ID,
			Title:  link.Title,
			URL:    link.URL,
			Clicks: counts[link.ID],
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Clicks > stats[j].Clicks
	})
	if len(stats) > trendingSize {
		stats = stats[:trendingSize]
	}
	return stats, nil
}

// PublicStats returns per-link click counts for a public username.
func (s *ClickService) PublicStats(ctx context.Context, username string) ([]LinkStat, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	links, err := s.links.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	counts, err := s.clicks.CountsByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	stats := make([]LinkStat, 0, len(links))
	for _, link := range links {
		stats = append(stats, LinkStat{ID: link.ID, Title: link.Title, Clicks: counts[link.ID]})
	}
	return stats, nil
}
