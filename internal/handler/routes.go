package handler

import (
	appmw "linklyst/internal/middleware"
	"linklyst/internal/session"
	"linklyst/web"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router.
func NewRouter(
	public *PublicHandler,
	auth *AuthHandler,
	dashboard *DashboardHandler,
	categories *CategoryHandler,
	links *LinkHandler,
	authz func(http.Handler) http.Handler,
	errorMw func(appmw.AppHandler) http.Handler,
	sm session.Manager,
	requestTimeout time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Use(sm.LoadAndSave)
	r.Use(authz)

	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	// Visitor-facing surface.
	r.Method(http.MethodGet, "/", errorMw(public.home))
	r.Method(http.MethodGet, "/u/{username}", errorMw(public.profilePage))
	r.Method(http.MethodGet, "/r/{linkID}", errorMw(public.redirect))
	r.Method(http.MethodGet, "/api/category/{id}/content", errorMw(public.apiCategoryContent))
	r.Method(http.MethodGet, "/api/subcategory/{id}/links", errorMw(public.apiSubcategoryLinks))
	r.Method(http.MethodGet, "/api/stats/{username}", errorMw(public.apiStats))

	// Authentication routes
	r.Method(http.MethodGet, "/login", errorMw(auth.loginForm))
	r.Method(http.MethodPost, "/login", errorMw(auth.login))
	r.Method(http.MethodGet, "/register", errorMw(auth.registerForm))
	r.Method(http.MethodPost, "/register", errorMw(auth.register))
	r.Method(http.MethodPost, "/logout", errorMw(auth.logout))
	r.Method(http.MethodGet, "/auth/google", errorMw(auth.googleLogin))
	r.Method(http.MethodGet, "/auth/google/callback", errorMw(auth.googleCallback))

	// Curation surface. The Casbin policy only admits signed-in members
	// here; everything still runs behind the same authz middleware.
	r.Method(http.MethodGet, "/dashboard", errorMw(dashboard.dashboard))
	r.Method(http.MethodGet, "/profile/edit", errorMw(dashboard.profileEditForm))
	r.Method(http.MethodPost, "/profile/edit", errorMw(dashboard.profileEdit))

	r.Method(http.MethodGet, "/category/add", errorMw(categories.newForm))
	r.Method(http.MethodPost, "/category/add", errorMw(categories.create))
	r.Method(http.MethodGet, "/category/{id}", errorMw(categories.viewCategory))
	r.Method(http.MethodGet, "/category/{id}/edit", errorMw(categories.editForm))
	r.Method(http.MethodPost, "/category/{id}/edit", errorMw(categories.update))
	r.Method(http.MethodPost, "/category/{id}/delete", errorMw(categories.delete))
	r.Method(http.MethodGet, "/category/{id}/subcategory/add", errorMw(categories.subNewForm))
	r.Method(http.MethodPost, "/category/{id}/subcategory/add", errorMw(categories.subCreate))
	r.Method(http.MethodGet, "/category/{id}/link/add", errorMw(links.newCategoryLinkForm))
	r.Method(http.MethodPost, "/category/{id}/link/add", errorMw(links.createInCategory))

	r.Method(http.MethodGet, "/subcategory/{id}", errorMw(categories.subView))
	r.Method(http.MethodGet, "/subcategory/{id}/edit", errorMw(categories.subEditForm))
	r.Method(http.MethodPost, "/subcategory/{id}/edit", errorMw(categories.subUpdate))
	r.Method(http.MethodPost, "/subcategory/{id}/delete", errorMw(categories.subDelete))
	r.Method(http.MethodGet, "/subcategory/{id}/link/add", errorMw(links.newSubcategoryLinkForm))
	r.Method(http.MethodPost, "/subcategory/{id}/link/add", errorMw(links.createInSubcategory))

	r.Method(http.MethodGet, "/link/{id}/edit", errorMw(links.editForm))
	r.Method(http.MethodPost, "/link/{id}/edit", errorMw(links.update))
	r.Method(http.MethodPost, "/link/{id}/delete", errorMw(links.delete))
	r.Method(http.MethodPost, "/link/reorder", errorMw(links.reorder))

	return r
}
