package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"linklyst/internal/data"
	"linklyst/internal/logger"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// ProfileCachePrefix namespaces cached public profile payloads. The trial
// sweep tool clears the whole namespace after a batch expiry.
const ProfileCachePrefix = "profile:"

// PayloadCache is the TTL cache holding assembled public payloads.
type PayloadCache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// PublicProfile is the assembled view behind /u/{username}.
type PublicProfile struct {
	Username    string           `json:"username"`
	DisplayName string           `json:"display_name"`
	Bio         string           `json:"bio"`
	BioHTML     string           `json:"bio_html"`
	AvatarURL   string           `json:"avatar_url"`
	Theme       string           `json:"theme"`
	Categories  []*data.Category `json:"categories"`
}

// PublicCategory is the public JSON view of one category's contents.
type PublicCategory struct {
	Category      *data.Category      `json:"category"`
	Subcategories []*data.Subcategory `json:"subcategories"`
	Links         []*data.Link        `json:"links"`
}

// PublicServicer defines the interface for the visitor-facing read paths.
type PublicServicer interface {
	AssembleProfile(ctx context.Context, username string) (*PublicProfile, error)
	CategoryContent(ctx context.Context, categoryID int64) (*PublicCategory, error)
	SubcategoryLinks(ctx context.Context, subcategoryID int64) ([]*data.Link, error)
	InvalidateUser(ctx context.Context, userID int64)
}

// PublicService assembles the visitor-facing pages. Profile payloads are
// cached under the owner's username and dropped when the owner mutates
// anything, so visitors may see content up to one TTL stale but never
// after an explicit change within the same request cycle.
type PublicService struct {
	users         UserRepository
	profiles      ProfileRepository
	categories    CategoryRepository
	subcategories SubcategoryRepository
	links         LinkRepository
	cache         PayloadCache
	ttl           time.Duration
	markdown      goldmark.Markdown
	sanitizer     *bluemonday.Policy
	log           logger.Logger
}

// NewPublicService creates a new PublicService.
func NewPublicService(users UserRepository, profiles ProfileRepository, categories CategoryRepository, subcategories SubcategoryRepository, links LinkRepository, cache PayloadCache, ttl time.Duration, log logger.Logger) *PublicService {
	return &PublicService{
		users:         users,
		profiles:      profiles,
		categories:    categories,
		subcategories: subcategories,
		links:         links,
		cache:         cache,
		ttl:           ttl,
		markdown:      goldmark.New(),
		sanitizer:     bluemonday.UGCPolicy(),
		log:           log,
	}
}

// AssembleProfile builds the public page payload for a username: the
// profile plus the active categories with their active subcategory counts.
// Inactive accounts and unknown usernames look the same to a visitor.
func (s *PublicService) AssembleProfile(ctx context.Context, username string) (*PublicProfile, error) {
	key := ProfileCachePrefix + username
	if s.cache != nil {
		if cached, err := s.cache.Get(key); err != nil {
			s.log.Warn("Profile cache read failed: " + err.Error())
		} else if cached != nil {
			var profile PublicProfile
			if err := json.Unmarshal(cached, &profile); err == nil {
				return &profile, nil
			}
			s.log.Warn("Dropping undecodable profile cache entry for " + username)
			_ = s.cache.Delete(key)
		}
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrNotFound
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	categories, err := s.categories.ListActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	for _, category := range categories {
		count, err := s.subcategories.CountActiveByCategory(ctx, category.ID)
		if err != nil {
			s.log.Error(err, "Failed to count subcategories for public profile")
			continue
		}
		category.SubcategoryCount = count
	}

	assembled := &PublicProfile{
		Username:   user.Username,
		Theme:      "default",
		Categories: categories,
	}
	if profile != nil {
		assembled.DisplayName = profile.DisplayName
		assembled.Bio = profile.Bio
		assembled.BioHTML = s.renderBio(profile.Bio)
		assembled.AvatarURL = profile.AvatarURL
		if profile.Theme != "" {
			assembled.Theme = profile.Theme
		}
	}
	if assembled.DisplayName == "" {
		assembled.DisplayName = user.Username
	}

	if s.cache != nil {
		if payload, err := json.Marshal(assembled); err == nil {
			if err := s.cache.Set(key, payload, s.ttl); err != nil {
				s.log.Warn("Profile cache write failed: " + err.Error())
			}
		}
	}
	return assembled, nil
}

// renderBio converts the stored markdown bio to sanitized HTML.
func (s *PublicService) renderBio(bio string) string {
	if bio == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(bio), &buf); err != nil {
		s.log.Warn("Failed to render bio markdown: " + err.Error())
		return ""
	}
	return s.sanitizer.Sanitize(buf.String())
}

// CategoryContent returns the public view inside one category: its active
// subcategories with public link counts plus its direct public links. Only
// active categories are reachable.
func (s *PublicService) CategoryContent(ctx context.Context, categoryID int64) (*PublicCategory, error) {
	category, err := s.categories.GetActive(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if category == nil {
		return nil, ErrNotFound
	}

	subs, err := s.subcategories.ListActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	for _, sub := range subs {
		count, err := s.links.CountPublicBySubcategory(ctx, sub.ID)
		if err != nil {
			s.log.Error(err, "Failed to count public links")
			continue
		}
		sub.LinkCount = count
	}

	links, err := s.links.ListPublicByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return &PublicCategory{Category: category, Subcategories: subs, Links: links}, nil
}

// SubcategoryLinks returns the public links of an active subcategory.
func (s *PublicService) SubcategoryLinks(ctx context.Context, subcategoryID int64) ([]*data.Link, error) {
	sub, err := s.subcategories.GetActive(ctx, subcategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	links, err := s.links.ListPublicBySubcategory(ctx, subcategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return links, nil
}

// InvalidateUser drops the cached public payload for a user after a
// mutation. Failures only delay freshness until the TTL, so they are
// logged and swallowed.
func (s *PublicService) InvalidateUser(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		if err != nil {
			s.log.Warn("Cache invalidation lookup failed: " + err.Error())
		}
		return
	}
	if err := s.cache.Delete(ProfileCachePrefix + user.Username); err != nil {
		s.log.Warn("Cache invalidation failed: " + err.Error())
	}
}
