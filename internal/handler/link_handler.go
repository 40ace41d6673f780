package handler

import (
	"encoding/json"
	"errors"
	"linklyst/internal/logger"
	"linklyst/internal/middleware"
	"linklyst/internal/service"
	"linklyst/internal/session"
	"linklyst/internal/view"
	"net/http"
	"strconv"
)

// LinkHandler holds the dependencies for link management.
type LinkHandler struct {
	hierarchy service.HierarchyServicer
	public    service.PublicServicer
	sessions  session.Manager
	view      *view.View
	log       logger.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(hierarchy service.HierarchyServicer, public service.PublicServicer, sm session.Manager, v *view.View, log logger.Logger) *LinkHandler {
	return &LinkHandler{
		hierarchy: hierarchy,
		public:    public,
		sessions:  sm,
		view:      v,
		log:       log,
	}
}

// linkForm reads the link form fields.
func linkForm(r *http.Request, editing bool) service.LinkInput {
	in := service.LinkInput{
		Title:       r.FormValue("title"),
		URL:         r.FormValue("url"),
		Description: strPtr(r.FormValue("description")),
		ImageURL:    strPtr(r.FormValue("image_url")),
	}
	if editing {
		in.Public = boolPtr(checkbox(r, "is_public"))
		in.Active = boolPtr(checkbox(r, "is_active"))
	}
	return in
}

// parentRedirect builds the page to return to after a link mutation.
func parentRedirect(parent service.ParentRef) string {
	if parent.SubcategoryID != nil {
		return "/subcategory/" + strconv.FormatInt(*parent.SubcategoryID, 10)
	}
	if parent.CategoryID != nil {
		return "/category/" + strconv.FormatInt(*parent.CategoryID, 10)
	}
	return "/dashboard"
}

// newForm renders the empty link form. The parent comes from the route: a
// category for direct links, a subcategory otherwise.
func (h *LinkHandler) newForm(w http.ResponseWriter, r *http.Request, action string) *middleware.AppError {
	data := baseData(r, h.sessions)
	data["Link"] = nil
	data["FormAction"] = action
	if err := h.view.Render(w, r, "link_edit.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render link form", Code: http.StatusInternalServerError}
	}
	return nil
}

// newCategoryLinkForm renders the form for a link attached to a category.
func (h *LinkHandler) newCategoryLinkForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}
	return h.newForm(w, r, "/category/"+strconv.FormatInt(id, 10)+"/link/add")
}

// newSubcategoryLinkForm renders the form for a link under a subcategory.
func (h *LinkHandler) newSubcategoryLinkForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid subcategory ID")
	}
	return h.newForm(w, r, "/subcategory/"+strconv.FormatInt(id, 10)+"/link/add")
}

// createInCategory adds a link attached directly to a category.
func (h *LinkHandler) createInCategory(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	categoryID, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}

	if _, err := h.hierarchy.CreateLink(r.Context(), user.ID, service.CategoryRef(categoryID), linkForm(r, false)); err != nil {
		return toAppError(err, "Failed to create link")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Link added.")
	http.Redirect(w, r, "/category/"+strconv.FormatInt(categoryID, 10), http.StatusFound)
	return nil
}

// createInSubcategory adds a link under a subcategory.
func (h *LinkHandler) createInSubcategory(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	subcategoryID, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid subcategory ID")
	}

	if _, err := h.hierarchy.CreateLink(r.Context(), user.ID, service.SubcategoryRef(subcategoryID), linkForm(r, false)); err != nil {
		return toAppError(err, "Failed to create link")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Link added.")
	http.Redirect(w, r, "/subcategory/"+strconv.FormatInt(subcategoryID, 10), http.StatusFound)
	return nil
}

// editForm renders the link form pre-filled.
func (h *LinkHandler) editForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid link ID")
	}

	link, err := h.hierarchy.GetLink(r.Context(), user.ID, id)
	if err != nil {
		return toAppError(err, "Link not found")
	}

	data := baseData(r, h.sessions)
	data["Link"] = link
	data["FormAction"] = "/link/" + strconv.FormatInt(id, 10) + "/edit"
	if err := h.view.Render(w, r, "link_edit.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render link form", Code: http.StatusInternalServerError}
	}
	return nil
}

// update saves the posted link fields and returns to the parent page.
func (h *LinkHandler) update(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid link ID")
	}

	link, err := h.hierarchy.UpdateLink(r.Context(), user.ID, id, linkForm(r, true))
	if err != nil {
		return toAppError(err, "Failed to update link")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Link saved.")
	http.Redirect(w, r, parentRedirect(service.ParentRef{CategoryID: link.CategoryID, SubcategoryID: link.SubcategoryID}), http.StatusFound)
	return nil
}

// delete removes a link and returns to the page it lived on.
func (h *LinkHandler) delete(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid link ID")
	}

	parent, err := h.hierarchy.DeleteLink(r.Context(), user.ID, id)
	if err != nil {
		return toAppError(err, "Failed to delete link")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Link deleted.")
	http.Redirect(w, r, parentRedirect(parent), http.StatusFound)
	return nil
}

// reorder rewrites the display order from a JSON array of link IDs.
func (h *LinkHandler) reorder(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())

	var ids []int64
	err := json.NewDecoder(r.Body).Decode(&ids)
	if err == nil && ids == nil {
		// A JSON null decodes into a nil slice without error.
		err = errors.New("expected a JSON array, got null")
	}
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Expected a JSON array of link IDs", Code: http.StatusBadRequest}
	}

	if err := h.hierarchy.ReorderLinks(r.Context(), user.ID, ids); err != nil {
		return toAppError(err, "Failed to reorder links")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	return nil
}
