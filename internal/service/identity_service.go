package service

import (
	"context"
	"fmt"
	"linklyst/internal/data"
	"linklyst/internal/logger"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
)

// ProfileInput carries the user-supplied profile fields.
type ProfileInput struct {
	DisplayName string
	Bio         string
	AvatarURL   string
	Theme       string
}

// IdentityServicer defines the interface for accounts, sessions, and the
// trial gate.
type IdentityServicer interface {
	Register(ctx context.Context, email, username, password string) (*data.User, error)
	Login(ctx context.Context, email, password string) (*data.User, error)
	LoginWithGoogle(ctx context.Context, googleID, email, name string) (*data.User, error)
	CurrentUser(ctx context.Context, userID int64) (*data.User, error)
	CheckTrialExpiration(ctx context.Context, user *data.User) bool
	ProfileOf(ctx context.Context, userID int64) (*data.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, in ProfileInput) error
}

// IdentityService resolves sessions to users, authenticates credentials,
// and enforces the trial window.
type IdentityService struct {
	users     UserRepository
	profiles  ProfileRepository
	sanitizer *bluemonday.Policy
	trialDays int
	log       logger.Logger
	now       func() time.Time
}

// NewIdentityService creates a new IdentityService. trialDays is the length
// of the trial window granted at registration.
func NewIdentityService(users UserRepository, profiles ProfileRepository, trialDays int, log logger.Logger) *IdentityService {
	return &IdentityService{
		users:     users,
		profiles:  profiles,
		sanitizer: bluemonday.UGCPolicy(),
		trialDays: trialDays,
		log:       log,
		now:       time.Now,
	}
}

// Register creates a password account with a fresh trial window and its
// profile row.
func (s *IdentityService) Register(ctx context.Context, email, username, password string) (*data.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))
	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: email, username, and password are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	user := s.newTrialUser(email, username)
	user.PasswordHash = &hashStr

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if data.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: email or username already taken", ErrConflict)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	user.ID = id

	if err := s.profiles.Create(ctx, &data.Profile{
		UserID:      id,
		DisplayName: username,
		Theme:       "default",
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return user, nil
}

// Login authenticates an email/password pair. Accounts created through
// Google sign-in carry no password and are turned away with a pointed
// error.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*data.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == nil {
		return nil, ErrOAuthOnlyAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}

// LoginWithGoogle resolves a verified Google identity to an account: first
// by the federated key, then by e-mail (linking the key to an existing
// password account), and finally by creating a fresh account with a
// username derived from the e-mail local part.
func (s *IdentityService) LoginWithGoogle(ctx context.Context, googleID, email, name string) (*data.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if googleID == "" || email == "" {
		return nil, fmt.Errorf("%w: google identity is incomplete", ErrValidation)
	}

	user, err := s.users.GetByGoogleID(ctx, googleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if user != nil {
		if !user.IsActive {
			return nil, ErrAccountInactive
		}
		return user, nil
	}

	user, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if user != nil {
		if !user.IsActive {
			return nil, ErrAccountInactive
		}
		if err := s.users.LinkGoogleID(ctx, user.ID, googleID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		user.GoogleID = &googleID
		return user, nil
	}

	username, err := s.deriveUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	user = s.newTrialUser(email, username)
	user.GoogleID = &googleID

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	user.ID = id

	displayName := name
	if displayName == "" {
		displayName = username
	}
	if err := s.profiles.Create(ctx, &data.Profile{
		UserID:      id,
		DisplayName: displayName,
		Theme:       "default",
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return user, nil
}

// deriveUsername takes the e-mail local part and appends a numeric suffix
// until the name is free.
func (s *IdentityService) deriveUsername(ctx context.Context, email string) (string, error) {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	candidate := base
	for counter := 1; ; counter++ {
		existing, err := s.users.GetByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(counter)
	}
}

func (s *IdentityService) newTrialUser(email, username string) *data.User {
	start := s.now()
	end := start.AddDate(0, 0, s.trialDays)
	return &data.User{
		Email:              email,
		Username:           username,
		IsActive:           true,
		IsTrial:            true,
		TrialStart:         &start,
		TrialEnd:           &end,
		SubscriptionStatus: data.StatusTrial,
	}
}

// CurrentUser resolves a session user ID to an account. It returns nil for
// a zero ID, a missing row, or a deactivated account; the caller clears the
// session in the last case.
func (s *IdentityService) CurrentUser(ctx context.Context, userID int64) (*data.User, error) {
	if userID == 0 {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// CheckTrialExpiration flips an overdue trial account to inactive/expired.
// This is a state transition, not a read-only check: the account row is
// updated. A failed update is logged and the account is still treated as
// expired for this request.
func (s *IdentityService) CheckTrialExpiration(ctx context.Context, user *data.User) bool {
	if user == nil || !user.IsTrial || user.TrialEnd == nil {
		return false
	}
	if !s.now().After(*user.TrialEnd) {
		return false
	}
	if err := s.users.SetAccountStatus(ctx, user.ID, false, false, data.StatusExpired); err != nil {
		s.log.Error(err, "Failed to expire trial account")
	}
	return true
}

// ProfileOf retrieves a user's profile.
func (s *IdentityService) ProfileOf(ctx context.Context, userID int64) (*data.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

// UpdateProfile rewrites the user's profile fields. The bio is sanitized
// before storage since it is rendered on the public page.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if profile == nil {
		return ErrNotFound
	}

	profile.DisplayName = strings.TrimSpace(in.DisplayName)
	profile.Bio = s.sanitizer.Sanitize(strings.TrimSpace(in.Bio))
	profile.AvatarURL = strings.TrimSpace(in.AvatarURL)
	if theme := strings.TrimSpace(in.Theme); theme != "" {
		profile.Theme = theme
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return nil
}

// ExpireOverdueTrials flips every trial account whose window has elapsed.
// Used by the offline sweep tool; the running service performs the same
// transition lazily per request.
func (s *IdentityService) ExpireOverdueTrials(ctx context.Context) (int, error) {
	users, err := s.users.ListTrialUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	expired := 0
	now := s.now()
	for _, user := range users {
		if user.TrialEnd == nil || !now.After(*user.TrialEnd) {
			continue
		}
		if err := s.users.SetAccountStatus(ctx, user.ID, false, false, data.StatusExpired); err != nil {
			s.log.Error(err, "Failed to expire trial for "+user.Username)
			continue
		}
		expired++
	}
	return expired, nil
}

// ExtendTrial pushes a user's trial window out by the given number of days,
// reactivating the account. The extension is measured from the current
// trial end when one exists, otherwise from now.
func (s *IdentityService) ExtendTrial(ctx context.Context, username string, days int) (time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if user == nil {
		return time.Time{}, ErrNotFound
	}

	base := s.now()
	if user.TrialEnd != nil {
		base = *user.TrialEnd
	}
	end := base.AddDate(0, 0, days)
	if err := s.users.SetTrialWindow(ctx, user.ID, end); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return end, nil
}
