//go:build integration

package data

import (
	"context"
	"testing"
)

func TestClickRepository_CountsByUser(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	userID := mustCreateUser(t, db, "casey")
	categoryID := mustCreateCategory(t, db, userID, "Music")
	popular := mustCreateLink(t, db, userID, &categoryID, nil, "popular")
	quiet := mustCreateLink(t, db, userID, &categoryID, nil, "quiet")
	repo := NewClickRepository(db)

	ref := "https://referrer.example"
	for i := 0; i < 3; i++ {
		if err := repo.Insert(context.Background(), popular, &ref); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	counts, err := repo.CountsByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[popular] != 3 {
		t.Errorf("expected 3 clicks on the popular link, got %d", counts[popular])
	}
	// The grouped query reports zero-click links too.
	if got, ok := counts[quiet]; !ok || got != 0 {
		t.Errorf("expected the quiet link present with 0 clicks, got %d (present=%v)", got, ok)
	}

	total, err := repo.TotalByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
}

func TestClickRepository_CountsScopedToUser(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ownerID := mustCreateUser(t, db, "casey")
	otherID := mustCreateUser(t, db, "riley")
	ownCategory := mustCreateCategory(t, db, ownerID, "Music")
	otherCategory := mustCreateCategory(t, db, otherID, "Music")
	ownLink := mustCreateLink(t, db, ownerID, &ownCategory, nil, "own")
	otherLink := mustCreateLink(t, db, otherID, &otherCategory, nil, "other")
	repo := NewClickRepository(db)

	if err := repo.Insert(context.Background(), ownLink, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Insert(context.Background(), otherLink, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts, err := repo.CountsByUser(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 1 || counts[ownLink] != 1 {
		t.Errorf("expected only the owner's link counted, got %v", counts)
	}
}
