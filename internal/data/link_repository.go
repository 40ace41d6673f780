package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LinkRepository handles database operations for links.
type LinkRepository struct {
	DB *sqlx.DB
}

// NewLinkRepository creates a new LinkRepository.
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{DB: db}
}

// Insert creates a new link and returns its ID. The sort order is scoped to
// the sibling set of whichever parent the link is attached to.
func (r *LinkRepository) Insert(ctx context.Context, link *Link) (int64, error) {
	var maxOrder int
	var err error
	if link.SubcategoryID != nil {
		err = r.DB.GetContext(ctx, &maxOrder,
			"SELECT COALESCE(MAX(sort_order), 0) FROM links WHERE subcategory_id = ?", *link.SubcategoryID)
	} else {
		err = r.DB.GetContext(ctx, &maxOrder,
			"SELECT COALESCE(MAX(sort_order), 0) FROM links WHERE category_id = ?", *link.CategoryID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get max link sort order: %w", err)
	}
	link.SortOrder = maxOrder + 1

	query := `INSERT INTO links (user_id, category_id, subcategory_id, title, url, description, image_url, is_public, is_active, sort_order)
	          VALUES (:user_id, :category_id, :subcategory_id, :title, :url, :description, :image_url, :is_public, :is_active, :sort_order)`
	res, err := r.DB.NamedExecContext(ctx, query, link)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetOwned finds a link by ID, scoped to the owning user.
func (r *LinkRepository) GetOwned(ctx context.Context, id, userID int64) (*Link, error) {
	var link Link
	err := r.DB.GetContext(ctx, &link,
		"SELECT * FROM links WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

// GetByID finds a link by ID with no ownership scope. The public redirect
// path uses this.
func (r *LinkRepository) GetByID(ctx context.Context, id int64) (*Link, error) {
	var link Link
	err := r.DB.GetContext(ctx, &link, "SELECT * FROM links WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get link by id: %w", err)
	}
	return &link, nil
}

// ListOwnedByCategory retrieves the links attached directly to a category,
// scoped to the owner, in display order.
func (r *LinkRepository) ListOwnedByCategory(ctx context.Context, categoryID, userID int64) ([]*Link, error) {
	var links []*Link
	err := r.DB.SelectContext(ctx, &links,
		"SELECT * FROM links WHERE category_id = ? AND user_id = ? ORDER BY sort_order", categoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category links: %w", err)
	}
	return links, nil
}

// ListOwnedBySubcategory retrieves a subcategory's links, scoped to the
// owner, in display order.
func (r *LinkRepository) ListOwnedBySubcategory(ctx context.Context, subcategoryID, userID int64) ([]*Link, error) {
	var links []*Link
	err := r.DB.SelectContext(ctx, &links,
		"SELECT * FROM links WHERE subcategory_id = ? AND user_id = ? ORDER BY sort_order", subcategoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategory links: %w", err)
	}
	return links, nil
}

// ListPublicByCategory retrieves the active, public links attached directly
// to a category, in display order.
func (r *LinkRepository) ListPublicByCategory(ctx context.Context, categoryID int64) ([]*Link, error) {
	var links []*Link
	err := r.DB.SelectContext(ctx, &links,
		"SELECT * FROM links WHERE category_id = ? AND is_active = 1 AND is_public = 1 ORDER BY sort_order", categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list public category links: %w", err)
	}
	return links, nil
}

// ListPublicBySubcategory retrieves a subcategory's active, public links in
// display order.
func (r *LinkRepository) ListPublicBySubcategory(ctx context.Context, subcategoryID int64) ([]*Link, error) {
	var links []*Link
	err := r.DB.SelectContext(ctx, &links,
		"SELECT * FROM links WHERE subcategory_id = ? AND is_active = 1 AND is_public = 1 ORDER BY sort_order", subcategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list public subcategory links: %w", err)
	}
	return links, nil
}

// CountBySubcategory counts all links under a subcategory.
func (r *LinkRepository) CountBySubcategory(ctx context.Context, subcategoryID int64) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM links WHERE subcategory_id = ?", subcategoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count subcategory links: %w", err)
	}
	return count, nil
}

// CountPublicBySubcategory counts the active, public links under a
// subcategory.
func (r *LinkRepository) CountPublicBySubcategory(ctx context.Context, subcategoryID int64) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM links WHERE subcategory_id = ? AND is_active = 1 AND is_public = 1", subcategoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count public links: %w", err)
	}
	return count, nil
}

// ListByUser retrieves all of a user's links in a stable order.
func (r *LinkRepository) ListByUser(ctx context.Context, userID int64) ([]*Link, error) {
	var links []*Link
	err := r.DB.SelectContext(ctx, &links,
		"SELECT * FROM links WHERE user_id = ? ORDER BY sort_order, id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user links: %w", err)
	}
	return links, nil
}

// CountByUser counts all of a user's links.
func (r *LinkRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM links WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

// Update rewrites the mutable link fields. The parent reference is fixed at
// creation and never changed here.
func (r *LinkRepository) Update(ctx context.Context, link *Link) error {
	query := `UPDATE links SET title = :title, url = :url, description = :description,
	          image_url = :image_url, is_public = :is_public, is_active = :is_active
	          WHERE id = :id AND user_id = :user_id`
	_, err := r.DB.NamedExecContext(ctx, query, link)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}
	return nil
}

// Delete removes a single link, scoped to the owner.
func (r *LinkRepository) Delete(ctx context.Context, id, userID int64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM links WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

// Reorder rewrites sort_order for each ID to its 0-based position in the
// given sequence, scoped to the owner, in one transaction. IDs the user does
// not own are silently skipped by the WHERE clause.
func (r *LinkRepository) Reorder(ctx context.Context, userID int64, ids []int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback()

	for pos, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"UPDATE links SET sort_order = ? WHERE id = ? AND user_id = ?", pos, id, userID); err != nil {
			return fmt.Errorf("failed to reorder link %d: %w", id, err)
		}
	}

	return tx.Commit()
}
