package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"linklyst/internal/auth"
	"linklyst/internal/logger"
	"linklyst/internal/middleware"
	"linklyst/internal/service"
	"linklyst/internal/session"
	"linklyst/internal/view"
	"net/http"
	"time"
)

// AuthHandler holds the dependencies for registration, login, and the
// Google sign-in flow.
type AuthHandler struct {
	identity service.IdentityServicer
	auth     *auth.Authenticator
	sessions session.Manager
	view     *view.View
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identity service.IdentityServicer, a *auth.Authenticator, sm session.Manager, v *view.View, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		auth:     a,
		sessions: sm,
		view:     v,
		log:      log,
	}
}

// loginForm renders the login page. Already signed-in users go straight to
// the dashboard.
func (h *AuthHandler) loginForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if middleware.GetCurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return nil
	}
	data := baseData(r, h.sessions)
	data["Next"] = safeNext(r.URL.Query().Get("next"))
	if err := h.view.Render(w, r, "login.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render login page", Code: http.StatusInternalServerError}
	}
	return nil
}

// login authenticates the posted credentials and starts a session.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user, err := h.identity.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.sessions.Put(r.Context(), "flash", "Invalid e-mail or password.")
		case errors.Is(err, service.ErrOAuthOnlyAccount):
			h.sessions.Put(r.Context(), "flash", "This account signs in with Google.")
		case errors.Is(err, service.ErrAccountInactive):
			h.sessions.Put(r.Context(), "flash", "This account is inactive. Your trial may have ended.")
		default:
			return toAppError(err, "Login failed")
		}
		http.Redirect(w, r, "/login", http.StatusFound)
		return nil
	}

	if err := h.startSession(r, user.ID); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusFound)
	return nil
}

// registerForm renders the signup page.
func (h *AuthHandler) registerForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if middleware.GetCurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return nil
	}
	if err := h.view.Render(w, r, "register.html", baseData(r, h.sessions)); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render signup page", Code: http.StatusInternalServerError}
	}
	return nil
}

// register creates a trial account and signs the user in.
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user, err := h.identity.Register(r.Context(), r.FormValue("email"), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			h.sessions.Put(r.Context(), "flash", "E-mail, username, and password are all required.")
		case errors.Is(err, service.ErrConflict):
			h.sessions.Put(r.Context(), "flash", "That e-mail or username is already taken.")
		default:
			return toAppError(err, "Registration failed")
		}
		http.Redirect(w, r, "/register", http.StatusFound)
		return nil
	}

	if err := h.startSession(r, user.ID); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	h.sessions.Put(r.Context(), "flash", "Welcome! Your trial has started.")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
	return nil
}

// logout destroys the session.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to log out", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

// googleLogin redirects the user to Google to sign in. It uses a random
// 'state' string for CSRF protection.
func (h *AuthHandler) googleLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	state, err := randString(16)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Internal Server Error", Code: http.StatusInternalServerError}
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
	return nil
}

// googleCallback is the redirect URL for Google. It handles the code
// exchange, verifies the ID token, and resolves the verified identity to a
// local account.
func (h *AuthHandler) googleCallback(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	// Verify the state parameter to prevent CSRF attacks.
	stateCookie, err := r.Cookie("state")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "state cookie not found", Code: http.StatusBadRequest}
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		return &middleware.AppError{Error: errors.New("oauth state mismatch"), Message: "state did not match", Code: http.StatusBadRequest}
	}

	// Exchange the authorization code for an OAuth2 token.
	oauth2Token, err := h.auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to exchange token", Code: http.StatusInternalServerError}
	}

	// Extract the ID Token from the OAuth2 token.
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return &middleware.AppError{Error: errors.New("missing id_token"), Message: "No id_token field in oauth2 token", Code: http.StatusInternalServerError}
	}

	// Verify the ID Token's signature and claims. The OIDC library checks
	// the issuer, audience, and expiry.
	idToken, err := h.auth.IDTokenVerifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to verify ID Token", Code: http.StatusInternalServerError}
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to parse ID Token claims", Code: http.StatusInternalServerError}
	}

	user, err := h.identity.LoginWithGoogle(r.Context(), claims.Subject, claims.Email, claims.Name)
	if err != nil {
		if errors.Is(err, service.ErrAccountInactive) {
			h.sessions.Put(r.Context(), "flash", "This account is inactive. Your trial may have ended.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return nil
		}
		return toAppError(err, "Google sign-in failed")
	}

	if err := h.startSession(r, user.ID); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to start session", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
	return nil
}

// startSession rotates the session token and binds it to the account.
func (h *AuthHandler) startSession(r *http.Request, userID int64) error {
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		return err
	}
	h.sessions.Put(r.Context(), "user_id", userID)
	return nil
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
