package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ClickRepository handles database operations for click events. Clicks are
// insert-only here; they are removed only by the cascade on the owning link.
type ClickRepository struct {
	DB *sqlx.DB
}

// NewClickRepository creates a new ClickRepository.
func NewClickRepository(db *sqlx.DB) *ClickRepository {
	return &ClickRepository{DB: db}
}

// Insert records one click event for a link.
func (r *ClickRepository) Insert(ctx context.Context, linkID int64, referrer *string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO clicks (link_id, referrer) VALUES (?, ?)", linkID, referrer)
	if err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}
	return nil
}

// CountsByUser returns the click count for each of the user's links as a
// single grouped aggregate. Links with no clicks appear with a zero count.
func (r *ClickRepository) CountsByUser(ctx context.Context, userID int64) (map[int64]int64, error) {
	rows := []struct {
		LinkID int64 `db:"link_id"`
		Clicks int64 `db:"clicks"`
	}{}
	query := `SELECT l.id AS link_id, COUNT(c.id) AS clicks
	          FROM links l LEFT JOIN clicks c ON c.link_id = l.id
	          WHERE l.user_id = ?
	          GROUP BY l.id`
	if err := r.DB.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count clicks by user: %w", err)
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.LinkID] = row.Clicks
	}
	return counts, nil
}

// TotalByUser counts all clicks across the user's links.
func (r *ClickRepository) TotalByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	query := `SELECT COUNT(c.id) FROM clicks c
	          JOIN links l ON l.id = c.link_id
	          WHERE l.user_id = ?`
	if err := r.DB.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count total clicks: %w", err)
	}
	return total, nil
}
