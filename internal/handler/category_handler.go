package handler

import (
	"linklyst/internal/logger"
	"linklyst/internal/middleware"
	"linklyst/internal/service"
	"linklyst/internal/session"
	"linklyst/internal/view"
	"net/http"
	"strconv"
)

// CategoryHandler holds the dependencies for category and subcategory
// management.
type CategoryHandler struct {
	hierarchy service.HierarchyServicer
	public    service.PublicServicer
	sessions  session.Manager
	view      *view.View
	log       logger.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(hierarchy service.HierarchyServicer, public service.PublicServicer, sm session.Manager, v *view.View, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		hierarchy: hierarchy,
		public:    public,
		sessions:  sm,
		view:      v,
		log:       log,
	}
}

// categoryForm reads the shared category/subcategory form fields.
func categoryForm(r *http.Request, editing bool) service.CategoryInput {
	in := service.CategoryInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Color:       r.FormValue("color"),
	}
	if editing {
		in.IconURL = strPtr(r.FormValue("icon_url"))
		in.Active = boolPtr(checkbox(r, "is_active"))
	} else if icon := r.FormValue("icon_url"); icon != "" {
		in.IconURL = strPtr(icon)
	}
	return in
}

// newForm renders the empty category form.
func (h *CategoryHandler) newForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	data := baseData(r, h.sessions)
	data["Category"] = nil
	data["FormAction"] = "/category/add"
	if err := h.view.Render(w, r, "category_edit.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render category form", Code: http.StatusInternalServerError}
	}
	return nil
}

// create adds a new category at the end of the display order.
func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())

	category, err := h.hierarchy.CreateCategory(r.Context(), user.ID, categoryForm(r, false))
	if err != nil {
		return toAppError(err, "Failed to create category")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Category created.")
	http.Redirect(w, r, "/category/"+strconv.FormatInt(category.ID, 10), http.StatusFound)
	return nil
}

// viewCategory shows one category with its subcategories and direct links.
func (h *CategoryHandler) viewCategory(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}

	contents, err := h.hierarchy.CategoryContents(r.Context(), user.ID, id)
	if err != nil {
		return toAppError(err, "Category not found")
	}

	data := baseData(r, h.sessions)
	data["Contents"] = contents
	if err := h.view.Render(w, r, "category.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render category", Code: http.StatusInternalServerError}
	}
	return nil
}

// editForm renders the category form pre-filled.
func (h *CategoryHandler) editForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}

	category, err := h.hierarchy.GetCategory(r.Context(), user.ID, id)
	if err != nil {
		return toAppError(err, "Category not found")
	}

	data := baseData(r, h.sessions)
	data["Category"] = category
	data["FormAction"] = "/category/" + strconv.FormatInt(id, 10) + "/edit"
	if err := h.view.Render(w, r, "category_edit.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render category form", Code: http.StatusInternalServerError}
	}
	return nil
}

// update saves the posted category fields.
func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}

	if _, err := h.hierarchy.UpdateCategory(r.Context(), user.ID, id, categoryForm(r, true)); err != nil {
		return toAppError(err, "Failed to update category")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Category saved.")
	http.Redirect(w, r, "/category/"+strconv.FormatInt(id, 10), http.StatusFound)
	return nil
}

// delete removes a category and everything under it.
func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}

	if err := h.hierarchy.DeleteCategory(r.Context(), user.ID, id); err != nil {
		return toAppError(err, "Failed to delete category")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Category deleted.")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
	return nil
}

// subNewForm renders the empty subcategory form under a category.
func (h *CategoryHandler) subNewForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}

	data := baseData(r, h.sessions)
	data["Subcategory"] = nil
	data["FormAction"] = "/category/" + strconv.FormatInt(id, 10) + "/subcategory/add"
	if err := h.view.Render(w, r, "subcategory_edit.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render subcategory form", Code: http.StatusInternalServerError}
	}
	return nil
}

// subCreate adds a subcategory under a category the caller owns.
func (h *CategoryHandler) subCreate(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	categoryID, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid category ID")
	}

	sub, err := h.hierarchy.CreateSubcategory(r.Context(), user.ID, categoryID, categoryForm(r, false))
	if err != nil {
		return toAppError(err, "Failed to create subcategory")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Subcategory created.")
	http.Redirect(w, r, "/subcategory/"+strconv.FormatInt(sub.ID, 10), http.StatusFound)
	return nil
}

// subView shows one subcategory with its links.
func (h *CategoryHandler) subView(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid subcategory ID")
	}

	sub, links, err := h.hierarchy.SubcategoryLinks(r.Context(), user.ID, id)
	if err != nil {
		return toAppError(err, "Subcategory not found")
	}

	data := baseData(r, h.sessions)
	data["Subcategory"] = sub
	data["Links"] = links
	if err := h.view.Render(w, r, "subcategory.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render subcategory", Code: http.StatusInternalServerError}
	}
	return nil
}

// subEditForm renders the subcategory form pre-filled.
func (h *CategoryHandler) subEditForm(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid subcategory ID")
	}

	sub, err := h.hierarchy.GetSubcategory(r.Context(), user.ID, id)
	if err != nil {
		return toAppError(err, "Subcategory not found")
	}

	data := baseData(r, h.sessions)
	data["Subcategory"] = sub
	data["FormAction"] = "/subcategory/" + strconv.FormatInt(id, 10) + "/edit"
	if err := h.view.Render(w, r, "subcategory_edit.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render subcategory form", Code: http.StatusInternalServerError}
	}
	return nil
}

// subUpdate saves the posted subcategory fields.
func (h *CategoryHandler) subUpdate(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid subcategory ID")
	}

	if _, err := h.hierarchy.UpdateSubcategory(r.Context(), user.ID, id, categoryForm(r, true)); err != nil {
		return toAppError(err, "Failed to update subcategory")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Subcategory saved.")
	http.Redirect(w, r, "/subcategory/"+strconv.FormatInt(id, 10), http.StatusFound)
	return nil
}

// subDelete removes a subcategory and its links, then returns to the parent
// category.
func (h *CategoryHandler) subDelete(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user := middleware.GetCurrentUser(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		return toAppError(err, "Invalid subcategory ID")
	}

	sub, err := h.hierarchy.GetSubcategory(r.Context(), user.ID, id)
	if err != nil {
		return toAppError(err, "Subcategory not found")
	}
	if err := h.hierarchy.DeleteSubcategory(r.Context(), user.ID, id); err != nil {
		return toAppError(err, "Failed to delete subcategory")
	}

	h.public.InvalidateUser(r.Context(), user.ID)
	h.sessions.Put(r.Context(), "flash", "Subcategory deleted.")
	http.Redirect(w, r, "/category/"+strconv.FormatInt(sub.CategoryID, 10), http.StatusFound)
	return nil
}
