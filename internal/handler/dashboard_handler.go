package handler

import (
	"linklyst/internal/logger"
	"linklyst/internal/middleware"
	"linklyst/internal/service"
	"linklyst/internal/session"
	"linklyst/internal/view"
	"net/http"
	"strings"
)

// DashboardHandler holds the dependencies for the owner's dashboard and
// profile pages.
type DashboardHandler struct {
	hierarchy service.HierarchyServicer
	clicks    service.ClickServicer
	identity  service.IdentityServicer
	public    service.PublicServicer
	sessions  session.Manager
	view      *view.View
	log       logger.Logger
	baseURL   string
}

// NewDashboardHandler creates a new DashboardHandler. baseURL is the public
// origin of the site, used to build the owner's shareable profile URL.
func NewDashboardHandler(hierarchy service.HierarchyServicer, clicks service.ClickServicer, identity service.IdentityServicer, public service.PublicServicer, sm session.Manager, v *view.View, log logger.Logger, baseURL string) *DashboardHandler {
	return &DashboardHandler{
		hierarchy: hierarchy,
		clicks:    clicks,
		identity:  identity,
		public:    public,
		sessions:  sm,
		view:      v,
		log:       log,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// dashboard shows the owner's categories and analytics summary.
func (h *DashboardHandler) dashboard(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())

	categories, err := h.hierarchy.ListCategories(r.Context(), user.ID)
	if err != nil {
		return toAppError(err, "Failed to load categories")
	}

	data := baseData(r, h.sessions)
	data["Categories"] = categories
	data["Analytics"] = h.clicks.UserAnalytics(r.Context(), user.ID)
	data["PublicURL"] = h.baseURL + "/u/" + user.Username
	if err := h.view.Render(w, r, "dashboard.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render dashboard", Code: http.StatusInternalServerError}
	}
	return nil
}

// profileEditForm shows the owner's profile form.
func (h *DashboardHandler) profileEditForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())

	profile, err := h.identity.ProfileOf(r.Context(), user.ID)
	if err != nil {
		return toAppError(err, "Failed to load profile")
	}

	data := baseData(r, h.sessions)
	data["Profile"] = profile
	if err := h.view.Render(w, r, "profile_edit.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render profile form", Code: http.StatusInternalServerError}
	}
	return nil
}

// profileEdit saves the posted profile fields.
func (h *DashboardHandler) profileEdit(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())

	in := service.ProfileInput{
		DisplayName: r.FormValue("display_name"),
		Bio:         r.FormValue("bio"),
		AvatarURL:   r.FormValue("avatar_url"),
		Theme:       r.FormValue("theme"),
	}
	if err := h.identity.UpdateProfile(r.Context(), user.ID, in); err != nil {
		return toAppError(err, "Failed to update profile")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Profile saved.")
	http.Redirect(w, r, "/profile/edit", http.StatusFound)
	return nil
}
