package middleware

import (
	"encoding/json"
	"fmt"
	"linklyst/internal/logger"
	"linklyst/internal/view"
	"net/http"
	"strings"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// Error is a middleware that converts handler errors into user-friendly
// error pages, or JSON bodies on the API surface.
func Error(log logger.Logger, view *view.View) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					renderError(w, r, view, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			err := next(w, r)
			if err != nil {
				log.Error(err.Error, err.Message)
				renderError(w, r, view, err.Code, err.Message)
			}
		})
	}
}

func renderError(w http.ResponseWriter, r *http.Request, v *view.View, code int, message string) {
	// The reorder endpoint takes a JSON body and is called from scripts,
	// so its errors come back as JSON too.
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/link/reorder" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
		return
	}
	data := map[string]interface{}{
		"StatusCode": code,
		"StatusText": message,
	}
	w.WriteHeader(code)
	v.Render(w, r, "error.html", data)
}
