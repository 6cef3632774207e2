// Package users serves the user administration screens.
package users

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

// Handler wires HTTP endpoints for user administration.
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

// MountRoutes registers user routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}", h.update)
	r.Post("/{id}/password", h.updatePassword)
	r.Post("/{id}/delete", h.remove)
}

type userForm struct {
	Nombre          string `validate:"required,max=160"`
	Email           string `validate:"required,email"`
	Direccion       string `validate:"max=300"`
	Telefono        string `validate:"max=30"`
	Password        string
	IDRol           string `validate:"required"`
	TipoDocumento   string `validate:"max=20"`
	NumeroDocumento string `validate:"omitempty,numeric,max=30"`
}

type listData struct {
	Users      []backend.Usuario
	Roles      []backend.Rol
	Filter     string
	Pagination shared.Pagination
	LoadErr    string
	FormErrors map[string]string
	Form       userForm
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data listData) {
	role := auth.ClaimsFromContext(r.Context()).Role
	if err := h.templates.RenderPage(w, r, h.csrfManager, status, "pages/users.html", "Usuarios", role, data); err != nil {
		h.logger.Error("render users", slog.Any("error", err))
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
	res, err := h.client.Usuarios(r.Context(), page-1, perPage, filter)
	if err != nil {
		if httpx.RedirectIfAuthExpired(w, r, err) {
			return
		}
		h.logger.Warn("list users", slog.Any("error", err))
		data.LoadErr = backend.UserMessage(err)
		h.render(w, r, 0, data)
		return
	}
	data.Users = res.Content
	data.Pagination = shared.FromTotalPages(page, perPage, res.TotalPages)

	if roles, err := h.client.Roles(r.Context()); err == nil {
		data.Roles = roles
	} else {
		h.logger.Warn("load roles", slog.Any("error", err))
	}
	h.render(w, r, 0, data)
}

func (h *Handler) parseForm(r *http.Request) (userForm, map[string]string) {
	form := userForm{
		Nombre:          r.PostFormValue("nombre"),
		Email:           r.PostFormValue("email"),
		Direccion:       r.PostFormValue("direccion"),
		Telefono:        r.PostFormValue("telefono"),
		Password:        r.PostFormValue("password"),
		IDRol:           r.PostFormValue("idRol"),
		TipoDocumento:   r.PostFormValue("tipoDocumento"),
		NumeroDocumento: r.PostFormValue("numeroDocumento"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}
	return form, formErrors
}

func usuarioOf(form userForm) backend.Usuario {
	return backend.Usuario{
		Nombre:          form.Nombre,
		Email:           form.Email,
		Direccion:       form.Direccion,
		Telefono:        form.Telefono,
		Password:        form.Password,
		Rol:             backend.Rol{IDRol: form.IDRol},
		TipoDocumento:   form.TipoDocumento,
		NumeroDocumento: form.NumeroDocumento,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, formErrors := h.parseForm(r)
	if form.Password == "" {
		formErrors["Password"] = "required"
	}
	if len(formErrors) > 0 {
		h.render(w, r, http.StatusBadRequest, listData{Form: form, FormErrors: formErrors})
		return
	}
	_, err := h.client.CreateUsuario(r.Context(), usuarioOf(form))
	h.finish(w, r, err, "Usuario registrado")
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
	u := usuarioOf(form)
	u.Password = ""
	_, err := h.client.UpdateUsuario(r.Context(), chi.URLParam(r, "id"), u)
	h.finish(w, r, err, "Usuario actualizado")
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	password := r.PostFormValue("password")
	if password == "" {
		sess := shared.SessionFromContext(r.Context())
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "La contraseña es obligatoria"})
		}
		http.Redirect(w, r, "/usuarios", http.StatusSeeOther)
		return
	}
	err := h.client.UpdateUsuarioPassword(r.Context(), chi.URLParam(r, "id"), password)
	h.finish(w, r, err, "Contraseña actualizada")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	err := h.client.DeleteUsuario(r.Context(), chi.URLParam(r, "id"))
	h.finish(w, r, err, "Usuario eliminado")
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, err error, okMessage string) {
	if httpx.RedirectIfAuthExpired(w, r, err) {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if err != nil {
		h.logger.Warn("user write", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
	} else if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: okMessage})
	}
	http.Redirect(w, r, "/usuarios", http.StatusSeeOther)
}
