package data

import "time"

// Subscription statuses stored on the users table.
const (
	StatusTrial   = "trial"
	StatusActive  = "active"
	StatusExpired = "expired"
)

// User represents an account. PasswordHash is nil for accounts created
// through Google sign-in only.
type User struct {
	ID                 int64      `db:"id"`
	Email              string     `db:"email"`
	Username           string     `db:"username"`
	PasswordHash       *string    `db:"password_hash"`
	GoogleID           *string    `db:"google_id"`
	IsActive           bool       `db:"is_active"`
	IsTrial            bool       `db:"is_trial"`
	TrialStart         *time.Time `db:"trial_start"`
	TrialEnd           *time.Time `db:"trial_end"`
	SubscriptionStatus string     `db:"subscription_status"`
	CreatedAt          time.Time  `db:"created_at"`
}

// Profile holds the public-facing presentation of a user.
type Profile struct {
	ID          int64  `db:"id"`
	UserID      int64  `db:"user_id"`
	DisplayName string `db:"display_name"`
	Bio         string `db:"bio"`
	AvatarURL   string `db:"avatar_url"`
	Theme       string `db:"theme"`
}

// Category is a top-level grouping owned by one user. The json tags shape
// the public API payloads.
type Category struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Color       string    `db:"color" json:"color"`
	IconURL     *string   `db:"icon_url" json:"icon_url"`
	IsActive    bool      `db:"is_active" json:"-"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"-"`

	SubcategoryCount int64 `db:"-" json:"subcategory_count"`
}

// Subcategory groups links under a category.
type Subcategory struct {
	ID          int64     `db:"id" json:"id"`
	CategoryID  int64     `db:"category_id" json:"category_id"`
	UserID      int64     `db:"user_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Color       string    `db:"color" json:"color"`
	IconURL     *string   `db:"icon_url" json:"icon_url"`
	IsActive    bool      `db:"is_active" json:"-"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"-"`

	LinkCount int64 `db:"-" json:"link_count"`
}

// Link points at a target URL. Exactly one of CategoryID/SubcategoryID is
// set; the database enforces this with a CHECK constraint.
type Link struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"-"`
	CategoryID    *int64    `db:"category_id" json:"category_id"`
	SubcategoryID *int64    `db:"subcategory_id" json:"subcategory_id"`
	Title         string    `db:"title" json:"title"`
	URL           string    `db:"url" json:"url"`
	Description   string    `db:"description" json:"description"`
	ImageURL      *string   `db:"image_url" json:"image_url"`
	IsPublic      bool      `db:"is_public" json:"-"`
	IsActive      bool      `db:"is_active" json:"-"`
	SortOrder     int       `db:"sort_order" json:"sort_order"`
	CreatedAt     time.Time `db:"created_at" json:"-"`

	Clicks int64 `db:"-" json:"clicks,omitempty"`
}

// Click is an immutable visit event on a link.
type Click struct {
	ID        int64     `db:"id"`
	LinkID    int64     `db:"link_id"`
	Referrer  *string   `db:"referrer"`
	ClickedAt time.Time `db:"clicked_at"`
}
