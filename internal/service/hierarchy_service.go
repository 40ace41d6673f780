package service

import (
	"context"
	"fmt"
	"linklyst/internal/data"
	"linklyst/internal/logger"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const defaultColor = "#6366f1"

// ParentRef is the tagged parent of a link: exactly one of the two fields
// must be set.
type ParentRef struct {
	CategoryID    *int64
	SubcategoryID *int64
}

// CategoryRef builds a ParentRef pointing at a category.
func CategoryRef(id int64) ParentRef {
	return ParentRef{CategoryID: &id}
}

// SubcategoryRef builds a ParentRef pointing at a subcategory.
func SubcategoryRef(id int64) ParentRef {
	return ParentRef{SubcategoryID: &id}
}

func (p ParentRef) valid() bool {
	return (p.CategoryID != nil) != (p.SubcategoryID != nil)
}

// CategoryInput carries the user-supplied fields for creating or updating a
// category or subcategory.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
	IconURL     *string // nil keeps the existing icon on update
	Active      *bool   // nil keeps the existing flag on update
}

// LinkInput carries the user-supplied fields for creating or updating a
// link.
type LinkInput struct {
	Title       string
	URL         string
	Description *string // nil keeps the existing text on update
	ImageURL    *string // nil keeps the existing image on update
	Public      *bool   // nil keeps the existing flag on update
	Active      *bool
}

// CategoryContents bundles what the owner sees inside one category.
type CategoryContents struct {
	Category      *data.Category
	Subcategories []*data.Subcategory
	Links         []*data.Link
}

// HierarchyServicer defines the interface for managing the content
// hierarchy.
type HierarchyServicer interface {
	CreateCategory(ctx context.Context, userID int64, in CategoryInput) (*data.Category, error)
	UpdateCategory(ctx context.Context, userID, id int64, in CategoryInput) (*data.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error
	GetCategory(ctx context.Context, userID, id int64) (*data.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]*data.Category, error)
	CategoryContents(ctx context.Context, userID, categoryID int64) (*CategoryContents, error)
	CreateSubcategory(ctx context.Context, userID, categoryID int64, in CategoryInput) (*data.Subcategory, error)
	UpdateSubcategory(ctx context.Context, userID, id int64, in CategoryInput) (*data.Subcategory, error)
	DeleteSubcategory(ctx context.Context, userID, id int64) error
	GetSubcategory(ctx context.Context, userID, id int64) (*data.Subcategory, error)
	SubcategoryLinks(ctx context.Context, userID, subcategoryID int64) (*data.Subcategory, []*data.Link, error)
	CreateLink(ctx context.Context, userID int64, parent ParentRef, in LinkInput) (*data.Link, error)
	UpdateLink(ctx context.Context, userID, id int64, in LinkInput) (*data.Link, error)
	DeleteLink(ctx context.Context, userID, id int64) (ParentRef, error)
	GetLink(ctx context.Context, userID, id int64) (*data.Link, error)
	ReorderLinks(ctx context.Context, userID int64, ids []int64) error
}

// HierarchyService manages categories, subcategories, and links with
// ownership enforcement and sort-order maintenance. Every mutation
// re-queries the parent chain under the caller's user ID rather than
// trusting IDs from the request.
type HierarchyService struct {
	categories    CategoryRepository
	subcategories SubcategoryRepository
	links         LinkRepository
	sanitizer     *bluemonday.Policy
	log           logger.Logger
}

// NewHierarchyService creates a new HierarchyService.
func NewHierarchyService(categories CategoryRepository, subcategories SubcategoryRepository, links LinkRepository, log logger.Logger) *HierarchyService {
	// Descriptions are rendered into profile pages, so strip anything
	// beyond basic formatting.
	return &HierarchyService{
		categories:    categories,
		subcategories: subcategories,
		links:         links,
		sanitizer:     bluemonday.UGCPolicy(),
		log:           log,
	}
}

// NormalizeURL ensures a URL carries a scheme, defaulting to https. The
// value is otherwise left exactly as the user typed it.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw
}

// CreateCategory adds a category at the end of the user's display order.
func (s *HierarchyService) CreateCategory(ctx context.Context, userID int64, in CategoryInput) (*data.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = defaultColor
	}

	category := &data.Category{
		UserID:      userID,
		Name:        name,
		Description: s.sanitizer.Sanitize(strings.TrimSpace(in.Description)),
		Color:       color,
		IconURL:     in.IconURL,
		IsActive:    true,
	}
	id, err := s.categories.Insert(ctx, category)
	if err != nil {
		if data.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: category name already exists", ErrConflict)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	category.ID = id
	return category, nil
}

// UpdateCategory applies a partial update to an owned category. Fields not
// supplied keep their prior values.
func (s *HierarchyService) UpdateCategory(ctx context.Context, userID, id int64, in CategoryInput) (*data.Category, error) {
	category, err := s.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if category == nil {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	category.Name = name
	category.Description = s.sanitizer.Sanitize(strings.TrimSpace(in.Description))
	if color := strings.TrimSpace(in.Color); color != "" {
		category.Color = color
	}
	if in.IconURL != nil {
		category.IconURL = in.IconURL
	}
	if in.Active != nil {
		category.IsActive = *in.Active
	}

	if err := s.categories.Update(ctx, category); err != nil {
		if data.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: category name already exists", ErrConflict)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return category, nil
}

// DeleteCategory cascades: links under subcategories, direct links,
// subcategories, then the category itself.
func (s *HierarchyService) DeleteCategory(ctx context.Context, userID, id int64) error {
	category, err := s.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if category == nil {
		return ErrNotFound
	}
	if err := s.categories.DeleteCascade(ctx, id, userID); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return nil
}

// GetCategory retrieves an owned category.
func (s *HierarchyService) GetCategory(ctx context.Context, userID, id int64) (*data.Category, error) {
	category, err := s.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// ListCategories retrieves the user's active categories with their active
// subcategory counts, for the dashboard.
func (s *HierarchyService) ListCategories(ctx context.Context, userID int64) ([]*data.Category, error) {
	categories, err := s.categories.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	for _, category := range categories {
		count, err := s.subcategories.CountActiveByCategory(ctx, category.ID)
		if err != nil {
			s.log.Error(err, "Failed to count subcategories for dashboard")
			continue
		}
		category.SubcategoryCount = count
	}
	return categories, nil
}

// CategoryContents retrieves an owned category with its active
// subcategories (plus link counts) and direct links.
func (s *HierarchyService) CategoryContents(ctx context.Context, userID, categoryID int64) (*CategoryContents, error) {
	category, err := s.categories.GetOwned(ctx, categoryID, userID)
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
		count, err := s.links.CountBySubcategory(ctx, sub.ID)
		if err != nil {
			s.log.Error(err, "Failed to count subcategory links")
			continue
		}
		sub.LinkCount = count
	}

	links, err := s.links.ListOwnedByCategory(ctx, categoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return &CategoryContents{Category: category, Subcategories: subs, Links: links}, nil
}

// CreateSubcategory adds a subcategory under a category the caller owns.
func (s *HierarchyService) CreateSubcategory(ctx context.Context, userID, categoryID int64, in CategoryInput) (*data.Subcategory, error) {
	category, err := s.categories.GetOwned(ctx, categoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if category == nil {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: subcategory name is required", ErrValidation)
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = defaultColor
	}

	sub := &data.Subcategory{
		CategoryID:  categoryID,
		UserID:      userID,
		Name:        name,
		Description: s.sanitizer.Sanitize(strings.TrimSpace(in.Description)),
		Color:       color,
		IconURL:     in.IconURL,
		IsActive:    true,
	}
	id, err := s.subcategories.Insert(ctx, sub)
	if err != nil {
		if data.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: subcategory name already exists in this category", ErrConflict)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	sub.ID = id
	return sub, nil
}

// UpdateSubcategory applies a partial update to an owned subcategory.
func (s *HierarchyService) UpdateSubcategory(ctx context.Context, userID, id int64, in CategoryInput) (*data.Subcategory, error) {
	sub, err := s.subcategories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if sub == nil {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: subcategory name is required", ErrValidation)
	}
	sub.Name = name
	sub.Description = s.sanitizer.Sanitize(strings.TrimSpace(in.Description))
	if color := strings.TrimSpace(in.Color); color != "" {
		sub.Color = color
	}
	if in.IconURL != nil {
		sub.IconURL = in.IconURL
	}
	if in.Active != nil {
		sub.IsActive = *in.Active
	}

	if err := s.subcategories.Update(ctx, sub); err != nil {
		if data.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: subcategory name already exists in this category", ErrConflict)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return sub, nil
}

// DeleteSubcategory removes a subcategory and its links.
func (s *HierarchyService) DeleteSubcategory(ctx context.Context, userID, id int64) error {
	sub, err := s.subcategories.GetOwned(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if sub == nil {
		return ErrNotFound
	}
	if err := s.subcategories.DeleteCascade(ctx, id, userID); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return nil
}

// GetSubcategory retrieves an owned subcategory.
func (s *HierarchyService) GetSubcategory(ctx context.Context, userID, id int64) (*data.Subcategory, error) {
	sub, err := s.subcategories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

// SubcategoryLinks retrieves an owned subcategory with its links.
func (s *HierarchyService) SubcategoryLinks(ctx context.Context, userID, subcategoryID int64) (*data.Subcategory, []*data.Link, error) {
	sub, err := s.subcategories.GetOwned(ctx, subcategoryID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if sub == nil {
		return nil, nil, ErrNotFound
	}
	links, err := s.links.ListOwnedBySubcategory(ctx, subcategoryID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return sub, links, nil
}

// CreateLink adds a link under a category or subcategory the caller owns.
func (s *HierarchyService) CreateLink(ctx context.Context, userID int64, parent ParentRef, in LinkInput) (*data.Link, error) {
	if !parent.valid() {
		return nil, fmt.Errorf("%w: link needs exactly one parent", ErrValidation)
	}

	// Re-query the parent under the caller's user ID; the IDs in the
	// request are never trusted.
	if parent.CategoryID != nil {
		category, err := s.categories.GetOwned(ctx, *parent.CategoryID, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		if category == nil {
			return nil, ErrNotFound
		}
	} else {
		sub, err := s.subcategories.GetOwned(ctx, *parent.SubcategoryID, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		if sub == nil {
			return nil, ErrNotFound
		}
	}

	title := strings.TrimSpace(in.Title)
	url := NormalizeURL(in.URL)
	if title == "" || url == "" {
		return nil, fmt.Errorf("%w: title and url are required", ErrValidation)
	}

	link := &data.Link{
		UserID:        userID,
		CategoryID:    parent.CategoryID,
		SubcategoryID: parent.SubcategoryID,
		Title:         title,
		URL:           url,
		IsPublic:      true,
		IsActive:      true,
	}
	if in.Description != nil {
		link.Description = s.sanitizer.Sanitize(strings.TrimSpace(*in.Description))
	}
	if in.ImageURL != nil {
		link.ImageURL = in.ImageURL
	}
	id, err := s.links.Insert(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	link.ID = id
	return link, nil
}

// UpdateLink applies a partial update to an owned link.
func (s *HierarchyService) UpdateLink(ctx context.Context, userID, id int64, in LinkInput) (*data.Link, error) {
	link, err := s.links.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if link == nil {
		return nil, ErrNotFound
	}

	title := strings.TrimSpace(in.Title)
	url := NormalizeURL(in.URL)
	if title == "" || url == "" {
		return nil, fmt.Errorf("%w: title and url are required", ErrValidation)
	}
	link.Title = title
	link.URL = url
	if in.Description != nil {
		link.Description = s.sanitizer.Sanitize(strings.TrimSpace(*in.Description))
	}
	if in.ImageURL != nil {
		link.ImageURL = in.ImageURL
	}
	if in.Public != nil {
		link.IsPublic = *in.Public
	}
	if in.Active != nil {
		link.IsActive = *in.Active
	}

	if err := s.links.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return link, nil
}

// DeleteLink removes a single link and reports its former parent so the
// caller can redirect back to the right page.
func (s *HierarchyService) DeleteLink(ctx context.Context, userID, id int64) (ParentRef, error) {
	link, err := s.links.GetOwned(ctx, id, userID)
	if err != nil {
		return ParentRef{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if link == nil {
		return ParentRef{}, ErrNotFound
	}
	parent := ParentRef{CategoryID: link.CategoryID, SubcategoryID: link.SubcategoryID}
	if err := s.links.Delete(ctx, id, userID); err != nil {
		return ParentRef{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return parent, nil
}

// GetLink retrieves an owned link.
func (s *HierarchyService) GetLink(ctx context.Context, userID, id int64) (*data.Link, error) {
	link, err := s.links.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if link == nil {
		return nil, ErrNotFound
	}
	return link, nil
}

// ReorderLinks rewrites sort order so each ID sits at its 0-based position
// in the given sequence.
func (s *HierarchyService) ReorderLinks(ctx context.Context, userID int64, ids []int64) error {
	if err := s.links.Reorder(ctx, userID, ids); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return nil
}
