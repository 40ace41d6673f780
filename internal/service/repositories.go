package service

import (
	"context"
	"linklyst/internal/data"
	"time"
)

// Repository interfaces implemented by the sqlx types in internal/data.
// Services depend on these so tests can substitute in-memory fakes.

// UserRepository defines the store operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *data.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*data.User, error)
	GetByEmail(ctx context.Context, email string) (*data.User, error)
	GetByUsername(ctx context.Context, username string) (*data.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*data.User, error)
	LinkGoogleID(ctx context.Context, userID int64, googleID string) error
	SetAccountStatus(ctx context.Context, userID int64, isActive, isTrial bool, status string) error
	SetTrialWindow(ctx context.Context, userID int64, end time.Time) error
	ListTrialUsers(ctx context.Context) ([]*data.User, error)
}

// ProfileRepository defines the store operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *data.Profile) error
	GetByUserID(ctx context.Context, userID int64) (*data.Profile, error)
	Update(ctx context.Context, profile *data.Profile) error
}

// CategoryRepository defines the store operations for categories.
type CategoryRepository interface {
	Insert(ctx context.Context, category *data.Category) (int64, error)
	GetOwned(ctx context.Context, id, userID int64) (*data.Category, error)
	GetActive(ctx context.Context, id int64) (*data.Category, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]*data.Category, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Update(ctx context.Context, category *data.Category) error
	DeleteCascade(ctx context.Context, id, userID int64) error
}

// SubcategoryRepository defines the store operations for subcategories.
type SubcategoryRepository interface {
	Insert(ctx context.Context, sub *data.Subcategory) (int64, error)
	GetOwned(ctx context.Context, id, userID int64) (*data.Subcategory, error)
	GetActive(ctx context.Context, id int64) (*data.Subcategory, error)
	ListActiveByCategory(ctx context.Context, categoryID int64) ([]*data.Subcategory, error)
	CountActiveByCategory(ctx context.Context, categoryID int64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Update(ctx context.Context, sub *data.Subcategory) error
	DeleteCascade(ctx context.Context, id, userID int64) error
}

// LinkRepository defines the store operations for links.
type LinkRepository interface {
	Insert(ctx context.Context, link *data.Link) (int64, error)
	GetOwned(ctx context.Context, id, userID int64) (*data.Link, error)
	GetByID(ctx context.Context, id int64) (*data.Link, error)
	ListOwnedByCategory(ctx context.Context, categoryID, userID int64) ([]*data.Link, error)
	ListOwnedBySubcategory(ctx context.Context, subcategoryID, userID int64) ([]*data.Link, error)
	ListPublicByCategory(ctx context.Context, categoryID int64) ([]*data.Link, error)
	ListPublicBySubcategory(ctx context.Context, subcategoryID int64) ([]*data.Link, error)
	CountBySubcategory(ctx context.Context, subcategoryID int64) (int64, error)
	CountPublicBySubcategory(ctx context.Context, subcategoryID int64) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]*data.Link, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Update(ctx context.Context, link *data.Link) error
	Delete(ctx context.Context, id, userID int64) error
	Reorder(ctx context.Context, userID int64, ids []int64) error
}

// ClickRepository defines the store operations for click events.
type ClickRepository interface {
	Insert(ctx context.Context, linkID int64, referrer *string) error
	CountsByUser(ctx context.Context, userID int64) (map[int64]int64, error)
	TotalByUser(ctx context.Context, userID int64) (int64, error)
}
