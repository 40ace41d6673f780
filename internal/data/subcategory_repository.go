package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SubcategoryRepository handles database operations for subcategories.
type SubcategoryRepository struct {
	DB *sqlx.DB
}

// NewSubcategoryRepository creates a new SubcategoryRepository.
func NewSubcategoryRepository(db *sqlx.DB) *SubcategoryRepository {
	return &SubcategoryRepository{DB: db}
}

// Insert creates a new subcategory and returns its ID. The sort order is
// scoped to siblings within the same category.
func (r *SubcategoryRepository) Insert(ctx context.Context, sub *Subcategory) (int64, error) {
	var maxOrder int
	err := r.DB.GetContext(ctx, &maxOrder,
		"SELECT COALESCE(MAX(sort_order), 0) FROM subcategories WHERE category_id = ?", sub.CategoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to get max subcategory sort order: %w", err)
	}
	sub.SortOrder = maxOrder + 1

	query := `INSERT INTO subcategories (category_id, user_id, name, description, color, icon_url, is_active, sort_order)
	          VALUES (:category_id, :user_id, :name, :description, :color, :icon_url, :is_active, :sort_order)`
	res, err := r.DB.NamedExecContext(ctx, query, sub)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetOwned finds a subcategory by ID, scoped to the owning user.
func (r *SubcategoryRepository) GetOwned(ctx context.Context, id, userID int64) (*Subcategory, error) {
	var sub Subcategory
	err := r.DB.GetContext(ctx, &sub,
		"SELECT * FROM subcategories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subcategory: %w", err)
	}
	return &sub, nil
}

// GetActive finds an active subcategory by ID for the public API surface.
func (r *SubcategoryRepository) GetActive(ctx context.Context, id int64) (*Subcategory, error) {
	var sub Subcategory
	err := r.DB.GetContext(ctx, &sub,
		"SELECT * FROM subcategories WHERE id = ? AND is_active = 1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active subcategory: %w", err)
	}
	return &sub, nil
}

// ListActiveByCategory retrieves a category's active subcategories in
// display order.
func (r *SubcategoryRepository) ListActiveByCategory(ctx context.Context, categoryID int64) ([]*Subcategory, error) {
	var subs []*Subcategory
	err := r.DB.SelectContext(ctx, &subs,
		"SELECT * FROM subcategories WHERE category_id = ? AND is_active = 1 ORDER BY sort_order", categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	return subs, nil
}

// CountActiveByCategory counts a category's active subcategories.
func (r *SubcategoryRepository) CountActiveByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM subcategories WHERE category_id = ? AND is_active = 1", categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active subcategories: %w", err)
	}
	return count, nil
}

// CountByUser counts all of a user's subcategories, active or not.
func (r *SubcategoryRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM subcategories WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count subcategories: %w", err)
	}
	return count, nil
}

// Update rewrites the mutable subcategory fields.
func (r *SubcategoryRepository) Update(ctx context.Context, sub *Subcategory) error {
	query := `UPDATE subcategories SET name = :name, description = :description, color = :color,
	          icon_url = :icon_url, is_active = :is_active
	          WHERE id = :id AND user_id = :user_id`
	_, err := r.DB.NamedExecContext(ctx, query, sub)
	if err != nil {
		return err
	}
	return nil
}

// DeleteCascade removes a subcategory and its links in one transaction,
// links first.
func (r *SubcategoryRepository) DeleteCascade(ctx context.Context, id, userID int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cascade delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM links WHERE subcategory_id = ? AND user_id = ?", id, userID); err != nil {
		return fmt.Errorf("failed to delete subcategory links: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM subcategories WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return fmt.Errorf("failed to delete subcategory: %w", err)
	}

	return tx.Commit()
}
