package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	DB *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// Insert creates a new category and returns its ID. The sort order is
// assigned as one past the current maximum among the user's categories.
func (r *CategoryRepository) Insert(ctx context.Context, category *Category) (int64, error) {
	var maxOrder int
	err := r.DB.GetContext(ctx, &maxOrder,
		"SELECT COALESCE(MAX(sort_order), 0) FROM categories WHERE user_id = ?", category.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to get max category sort order: %w", err)
	}
	category.SortOrder = maxOrder + 1

	query := `INSERT INTO categories (user_id, name, description, color, icon_url, is_active, sort_order)
	          VALUES (:user_id, :name, :description, :color, :icon_url, :is_active, :sort_order)`
	res, err := r.DB.NamedExecContext(ctx, query, category)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetOwned finds a category by ID, scoped to the owning user. A category
// that exists but belongs to someone else is indistinguishable from a
// missing one.
func (r *CategoryRepository) GetOwned(ctx context.Context, id, userID int64) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category,
		"SELECT * FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// GetActive finds an active category by ID without an ownership scope, for
// the public API surface.
func (r *CategoryRepository) GetActive(ctx context.Context, id int64) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category,
		"SELECT * FROM categories WHERE id = ? AND is_active = 1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active category: %w", err)
	}
	return &category, nil
}

// ListActiveByUser retrieves a user's active categories in display order.
func (r *CategoryRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*Category, error) {
	var categories []*Category
	err := r.DB.SelectContext(ctx, &categories,
		"SELECT * FROM categories WHERE user_id = ? AND is_active = 1 ORDER BY sort_order", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CountByUser counts all of a user's categories, active or not.
func (r *CategoryRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM categories WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}

// Update rewrites the mutable category fields.
func (r *CategoryRepository) Update(ctx context.Context, category *Category) error {
	query := `UPDATE categories SET name = :name, description = :description, color = :color,
	          icon_url = :icon_url, is_active = :is_active
	          WHERE id = :id AND user_id = :user_id`
	_, err := r.DB.NamedExecContext(ctx, query, category)
	if err != nil {
		return err
	}
	return nil
}

// DeleteCascade removes a category together with its subcategories and all
// links under either, children before parents, in one transaction.
func (r *CategoryRepository) DeleteCascade(ctx context.Context, id, userID int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cascade delete: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		query string
		args  []interface{}
	}{
		{`DELETE FROM links WHERE user_id = ? AND subcategory_id IN (SELECT id FROM subcategories WHERE category_id = ?)`, []interface{}{userID, id}},
		{`DELETE FROM links WHERE user_id = ? AND category_id = ?`, []interface{}{userID, id}},
		{`DELETE FROM subcategories WHERE category_id = ? AND user_id = ?`, []interface{}{id, userID}},
		{`DELETE FROM categories WHERE id = ? AND user_id = ?`, []interface{}{id, userID}},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, step.args...); err != nil {
			return fmt.Errorf("failed cascade delete step: %w", err)
		}
	}

	return tx.Commit()
}
