package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ProfileRepository handles database operations for profiles.
type ProfileRepository struct {
	DB *sqlx.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// Create inserts the profile row for a new user.
func (r *ProfileRepository) Create(ctx context.Context, profile *Profile) error {
	query := `INSERT INTO profiles (user_id, display_name, bio, avatar_url, theme)
	          VALUES (:user_id, :display_name, :bio, :avatar_url, :theme)`
	_, err := r.DB.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByUserID retrieves the profile owned by a user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	err := r.DB.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE user_id = ?", userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// Update rewrites the mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *Profile) error {
	query := `UPDATE profiles SET display_name = :display_name, bio = :bio, avatar_url = :avatar_url, theme = :theme
	          WHERE user_id = :user_id`
	_, err := r.DB.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
