// Package categories serves the category maintenance screens.
package categories

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/almacen-console/almacen-console/internal/auth"
	"github.com/almacen-console/almacen-console/internal/backend"
	"github.com/almacen-console/almacen-console/internal/platform/httpx"
	"github.com/almacen-console/almacen-console/internal/shared"
	"github.com/almacen-console/almacen-console/internal/view"
)

const perPage = 10

// Handler wires HTTP endpoints for category maintenance.
type Handler struct {
	logger      *slog.Logger
	client      *backend.Client
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrfManager: csrf, validator: validator.New()}
}

// MountRoutes registers category routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.remove)
}

type categoryForm struct {
	Nombre      string `validate:"required,max=120"`
	Descripcion string `validate:"max=500"`
}

type listData struct {
	Categories []backend.Categoria
	Filter     string
	Pagination shared.Pagination
	LoadErr    string
	FormErrors map[string]string
	Form       categoryForm
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data listData) {
	role := auth.ClaimsFromContext(r.Context()).Role
	if err := h.templates.RenderPage(w, r, h.csrfManager, status, "pages/categories.html", "Categorías", role, data); err != nil {
		h.logger.Error("render categories", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	filter := r.URL.Query().Get("q")

	data := listData{Filter: filter}
	res, err := h.client.Categorias(r.Context(), page-1, perPage, filter)
	if err != nil {
		if httpx.RedirectIfAuthExpired(w, r, err) {
			return
		}
		h.logger.Warn("list categories", slog.Any("error", err))
		data.LoadErr = backend.UserMessage(err)
	} else {
		data.Categories = res.Content
		data.Pagination = shared.FromTotalPages(page, perPage, res.TotalPages)
	}
	h.render(w, r, 0, data)
}

func (h *Handler) parseForm(r *http.Request) (categoryForm, map[string]string) {
	form := categoryForm{
		Nombre:      r.PostFormValue("nombre"),
		Descripcion: r.PostFormValue("descripcion"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}
	return form, formErrors
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, formErrors := h.parseForm(r)
	if len(formErrors) > 0 {
		h.render(w, r, http.StatusBadRequest, listData{Form: form, FormErrors: formErrors})
		return
	}
	_, err := h.client.CreateCategoria(r.Context(), backend.Categoria{Nombre: form.Nombre, Descripcion: form.Descripcion})
	h.finish(w, r, err, "Categoría registrada")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, formErrors := h.parseForm(r)
	if len(formErrors) > 0 {
		h.render(w, r, http.StatusBadRequest, listData{Form: form, FormErrors: formErrors})
		return
	}
	id := chi.URLParam(r, "id")
	_, err := h.client.UpdateCategoria(r.Context(), id, backend.Categoria{Nombre: form.Nombre, Descripcion: form.Descripcion})
	h.finish(w, r, err, "Categoría actualizada")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	err := h.client.DeleteCategoria(r.Context(), chi.URLParam(r, "id"))
	h.finish(w, r, err, "Categoría eliminada")
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, err error, okMessage string) {
	if httpx.RedirectIfAuthExpired(w, r, err) {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if err != nil {
		h.logger.Warn("category write", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
	} else if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: okMessage})
	}
	http.Redirect(w, r, "/categorias", http.StatusSeeOther)
}
