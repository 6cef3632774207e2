// Package catalog serves the product maintenance screens.
package catalog

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

// Handler wires HTTP endpoints for product maintenance.
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

// MountRoutes registers product routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.remove)
}

type productForm struct {
	Nombre                  string  `validate:"required,max=160"`
	Descripcion             string  `validate:"max=500"`
	PrecioUnitarioVenta     float64 `validate:"gte=0"`
	PrecioUnitarioProveedor float64 `validate:"gte=0"`
	Stock                   int     `validate:"gte=0"`
	IDCategoria             string  `validate:"required"`
	IDProveedor             string  `validate:"required"`
}

type listData struct {
	Products   []backend.Producto
	Categories []backend.Categoria
	Suppliers  []backend.Usuario
	Filter     string
	FilterCat  string
	Pagination shared.Pagination
	LoadErr    string
	FormErrors map[string]string
	Form       productForm
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data listData) {
	role := auth.ClaimsFromContext(r.Context()).Role
	if err := h.templates.RenderPage(w, r, h.csrfManager, status, "pages/products.html", "Productos", role, data); err != nil {
		h.logger.Error("render products", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	filter := r.URL.Query().Get("q")
	filterCat := r.URL.Query().Get("categoria")

	data := listData{Filter: filter, FilterCat: filterCat}
	res, err := h.client.Productos(r.Context(), page-1, perPage, filter, filterCat)
	if err != nil {
		if httpx.RedirectIfAuthExpired(w, r, err) {
			return
		}
		h.logger.Warn("list products", slog.Any("error", err))
		data.LoadErr = backend.UserMessage(err)
		h.render(w, r, 0, data)
		return
	}
	data.Products = res.Content
	data.Pagination = shared.FromTotalPages(page, perPage, res.TotalPages)

	// Form selects. A failed load leaves the selects empty but keeps the
	// listing usable.
	if cats, err := h.client.AllCategorias(r.Context()); err == nil {
		data.Categories = cats
	} else {
		h.logger.Warn("load categories", slog.Any("error", err))
	}
	if sups, err := h.client.Proveedores(r.Context(), "", ""); err == nil {
		data.Suppliers = sups
	} else {
		h.logger.Warn("load suppliers", slog.Any("error", err))
	}
	h.render(w, r, 0, data)
}

func (h *Handler) parseForm(r *http.Request) (productForm, map[string]string) {
	precioVenta, _ := strconv.ParseFloat(r.PostFormValue("precioUnitarioVenta"), 64)
	precioProveedor, _ := strconv.ParseFloat(r.PostFormValue("precioUnitarioProveedor"), 64)
	stock, _ := strconv.Atoi(r.PostFormValue("stock"))
	form := productForm{
		Nombre:                  r.PostFormValue("nombre"),
		Descripcion:             r.PostFormValue("descripcion"),
		PrecioUnitarioVenta:     precioVenta,
		PrecioUnitarioProveedor: precioProveedor,
		Stock:                   stock,
		IDCategoria:             r.PostFormValue("idCategoria"),
		IDProveedor:             r.PostFormValue("idProveedor"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}
	return form, formErrors
}

func payloadOf(form productForm) backend.ProductoPayload {
	payload := backend.ProductoPayload{
		Nombre:                  form.Nombre,
		Descripcion:             form.Descripcion,
		PrecioUnitarioVenta:     form.PrecioUnitarioVenta,
		PrecioUnitarioProveedor: form.PrecioUnitarioProveedor,
		Stock:                   form.Stock,
	}
	payload.Categoria.IDCategoria = form.IDCategoria
	payload.Proveedor.IDUsuario = form.IDProveedor
	return payload
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
	_, err := h.client.CreateProducto(r.Context(), payloadOf(form))
	h.finish(w, r, err, "Producto registrado")
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
	_, err := h.client.UpdateProducto(r.Context(), chi.URLParam(r, "id"), payloadOf(form))
	h.finish(w, r, err, "Producto actualizado")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	err := h.client.DeleteProducto(r.Context(), chi.URLParam(r, "id"))
	h.finish(w, r, err, "Producto eliminado")
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, err error, okMessage string) {
	if httpx.RedirectIfAuthExpired(w, r, err) {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if err != nil {
		h.logger.Warn("product write", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
	} else if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: okMessage})
	}
	http.Redirect(w, r, "/productos", http.StatusSeeOther)
}
