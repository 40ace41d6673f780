package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for user accounts.
type UserRepository struct {
	DB *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts a new user and returns its ID.
func (r *UserRepository) Create(ctx context.Context, user *User) (int64, error) {
	query := `INSERT INTO users (email, username, password_hash, google_id, is_active, is_trial, trial_start, trial_end, subscription_status)
	          VALUES (:email, :username, :password_hash, :google_id, :is_active, :is_trial, :trial_start, :trial_end, :subscription_status)`
	res, err := r.DB.NamedExecContext(ctx, query, user)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetByID finds a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.DB.GetContext(ctx, &user, "SELECT * FROM users WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found is not an error.
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// GetByEmail finds a user by e-mail address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.DB.GetContext(ctx, &user, "SELECT * FROM users WHERE email = ?", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByUsername finds a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.DB.GetContext(ctx, &user, "SELECT * FROM users WHERE username = ?", username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// GetByGoogleID finds a user by its federated Google identity key.
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	var user User
	err := r.DB.GetContext(ctx, &user, "SELECT * FROM users WHERE google_id = ?", googleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}
	return &user, nil
}

// LinkGoogleID attaches a Google identity to an existing account.
func (r *UserRepository) LinkGoogleID(ctx context.Context, userID int64, googleID string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET google_id = ? WHERE id = ?", googleID, userID)
	if err != nil {
		return fmt.Errorf("failed to link google id: %w", err)
	}
	return nil
}

// SetAccountStatus updates the activation flags and subscription status.
func (r *UserRepository) SetAccountStatus(ctx context.Context, userID int64, isActive, isTrial bool, status string) error {
	query := `UPDATE users SET is_active = ?, is_trial = ?, subscription_status = ? WHERE id = ?`
	_, err := r.DB.ExecContext(ctx, query, isActive, isTrial, status, userID)
	if err != nil {
		return fmt.Errorf("failed to set account status: %w", err)
	}
	return nil
}

// SetTrialWindow re-opens a trial ending at the given time. Used by the
// offline sweep tool to extend trials.
func (r *UserRepository) SetTrialWindow(ctx context.Context, userID int64, end time.Time) error {
	query := `UPDATE users SET trial_end = ?, is_trial = 1, is_active = 1, subscription_status = ? WHERE id = ?`
	_, err := r.DB.ExecContext(ctx, query, end, StatusTrial, userID)
	if err != nil {
		return fmt.Errorf("failed to set trial window: %w", err)
	}
	return nil
}

// ListTrialUsers retrieves all users currently flagged as trials.
func (r *UserRepository) ListTrialUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := r.DB.SelectContext(ctx, &users, "SELECT * FROM users WHERE is_trial = 1")
	if err != nil {
		return nil, fmt.Errorf("failed to list trial users: %w", err)
	}
	return users, nil
}
