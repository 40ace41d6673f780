package handler

import (
	"errors"
	"linklyst/internal/middleware"
	"linklyst/internal/service"
	"linklyst/internal/session"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// toAppError maps service error categories onto HTTP status codes.
func toAppError(err error, msg string) *middleware.AppError {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	}
	return &middleware.AppError{Error: err, Message: msg, Code: code}
}

// urlParamID parses a numeric chi URL parameter.
func urlParamID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrValidation
	}
	return id, nil
}

// baseData seeds the template data every page shares: the signed-in user
// for the navigation bar and a one-shot flash message.
func baseData(r *http.Request, sm session.Manager) map[string]interface{} {
	return map[string]interface{}{
		"CurrentUser": middleware.GetCurrentUser(r.Context()),
		"Flash":       sm.PopString(r.Context(), "flash"),
	}
}

// safeNext keeps post-login redirects on this site. Anything that is not a
// local path falls back to the dashboard.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/dashboard"
}

// checkbox reads an HTML checkbox value, which is absent when unchecked.
func checkbox(r *http.Request, name string) bool {
	return r.FormValue(name) == "1"
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
