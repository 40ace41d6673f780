package handler

import (
	"encoding/json"
	"linklyst/internal/logger"
	"linklyst/internal/middleware"
	"linklyst/internal/service"
	"linklyst/internal/session"
	"linklyst/internal/view"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicHandler holds the dependencies for the visitor-facing pages: the
// home page, public profiles, the click redirect, and the read-only API.
type PublicHandler struct {
	public   service.PublicServicer
	clicks   service.ClickServicer
	sessions session.Manager
	view     *view.View
	log      logger.Logger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(public service.PublicServicer, clicks service.ClickServicer, sm session.Manager, v *view.View, log logger.Logger) *PublicHandler {
	return &PublicHandler{
		public:   public,
		clicks:   clicks,
		sessions: sm,
		view:     v,
		log:      log,
	}
}

// home renders the landing page.
func (h *PublicHandler) home(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.view.Render(w, r, "home.html", baseData(r, h.sessions)); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render home page", Code: http.StatusInternalServerError}
	}
	return nil
}

// profilePage renders a user's public page.
func (h *PublicHandler) profilePage(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	username := chi.URLParam(r, "username")

	profile, err := h.public.AssembleProfile(r.Context(), username)
	if err != nil {
		return toAppError(err, "Page not found")
	}

	data := baseData(r, h.sessions)
	data["Profile"] = profile
	if err := h.view.Render(w, r, "public_profile.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render profile page", Code: http.StatusInternalServerError}
	}
	return nil
}

// redirect records a click and sends the visitor to the link's target.
func (h *PublicHandler) redirect(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := urlParamID(r, "linkID")
	if err != nil {
		return toAppError(err, "Invalid link ID")
	}

	target, err := h.clicks.RecordClick(r.Context(), id, r.Referer())
	if err != nil {
		return toAppError(err, "Link not found")
	}

	http.Redirect(w, r, target, http.StatusFound)
	return nil
}

// apiCategoryContent returns the public contents of one category as JSON.
func (h *PublicHandler) apiCategoryContent(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}

	content, err := h.public.CategoryContent(r.Context(), id)
	if err != nil {
		return toAppError(err, "Category not found")
	}
	return writeJSON(w, content)
}

// apiSubcategoryLinks returns the public links of one subcategory as JSON.
func (h *PublicHandler) apiSubcategoryLinks(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid subcategory ID")
	}

	links, err := h.public.SubcategoryLinks(r.Context(), id)
	if err != nil {
		return toAppError(err, "Subcategory not found")
	}
	return writeJSON(w, map[string]interface{}{"links": links})
}

// apiStats returns per-link click counts for a public username as JSON.
func (h *PublicHandler) apiStats(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	username := chi.URLParam(r, "username")

	stats, err := h.clicks.PublicStats(r.Context(), username)
	if err != nil {
		return toAppError(err, "User not found")
	}
	return writeJSON(w, map[string]interface{}{"links": stats})
}

func writeJSON(w http.ResponseWriter, payload interface{}) *middleware.AppError {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to encode response", Code: http.StatusInternalServerError}
	}
	return nil
}
