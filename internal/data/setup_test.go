//go:build integration

package data

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a new in-memory SQLite database with the full schema.
// It returns the handle and a teardown function to be deferred.
func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	// Use a non-shared in-memory database for complete test isolation.
	db, err := sqlx.Connect("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	schema := `
	CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		google_id TEXT UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_trial BOOLEAN NOT NULL DEFAULT 1,
		trial_start DATETIME,
		trial_end DATETIME,
		subscription_status TEXT NOT NULL DEFAULT 'trial',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE profiles (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL UNIQUE REFERENCES users(id),
		display_name TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		theme TEXT NOT NULL DEFAULT 'default'
	);

	CREATE TABLE categories (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '#6366f1',
		icon_url TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, name)
	);

	CREATE TABLE subcategories (
		id INTEGER PRIMARY KEY,
		category_id INTEGER NOT NULL REFERENCES categories(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '#6366f1',
		icon_url TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (category_id, name)
	);

	CREATE TABLE links (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		category_id INTEGER REFERENCES categories(id),
		subcategory_id INTEGER REFERENCES subcategories(id),
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT,
		is_public BOOLEAN NOT NULL DEFAULT 1,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK ((category_id IS NULL) <> (subcategory_id IS NULL))
	);

	CREATE TABLE clicks (
		id INTEGER PRIMARY KEY,
		link_id INTEGER NOT NULL REFERENCES links(id) ON DELETE CASCADE,
		referrer TEXT,
		clicked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	db.MustExec(schema)

	teardown := func() {
		db.Close()
	}
	return db, teardown
}

// mustCreateUser inserts a minimal account and returns its ID.
func mustCreateUser(t *testing.T, db *sqlx.DB, username string) int64 {
	t.Helper()
	repo := NewUserRepository(db)
	id, err := repo.Create(context.Background(), &User{
		Email:              username + "@example.com",
		Username:           username,
		IsActive:           true,
		IsTrial:            true,
		SubscriptionStatus: StatusTrial,
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

// mustCreateCategory inserts a category for the user and returns its ID.
func mustCreateCategory(t *testing.T, db *sqlx.DB, userID int64, name string) int64 {
	t.Helper()
	repo := NewCategoryRepository(db)
	id, err := repo.Insert(context.Background(), &Category{
		UserID:   userID,
		Name:     name,
		Color:    "#6366f1",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return id
}

// mustCreateSubcategory inserts a subcategory and returns its ID.
func mustCreateSubcategory(t *testing.T, db *sqlx.DB, categoryID, userID int64, name string) int64 {
	t.Helper()
	repo := NewSubcategoryRepository(db)
	id, err := repo.Insert(context.Background(), &Subcategory{
		CategoryID: categoryID,
		UserID:     userID,
		Name:       name,
		Color:      "#6366f1",
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("Failed to create test subcategory: %v", err)
	}
	return id
}

// mustCreateLink inserts a link under the given parent and returns its ID.
func mustCreateLink(t *testing.T, db *sqlx.DB, userID int64, categoryID, subcategoryID *int64, title string) int64 {
	t.Helper()
	repo := NewLinkRepository(db)
	id, err := repo.Insert(context.Background(), &Link{
		UserID:        userID,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Title:         title,
		URL:           "https://example.com/" + title,
		IsPublic:      true,
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("Failed to create test link: %v", err)
	}
	return id
}
