// Package purchases serves the purchase listing, detail, void and
// registration screens.
package purchases

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/almacen-console/almacen-console/internal/auth"
	"github.com/almacen-console/almacen-console/internal/backend"
	"github.com/almacen-console/almacen-console/internal/invoice"
	"github.com/almacen-console/almacen-console/internal/platform/httpx"
	"github.com/almacen-console/almacen-console/internal/shared"
	"github.com/almacen-console/almacen-console/internal/trade"
	"github.com/almacen-console/almacen-console/internal/view"
)

const perPage = 10

// Handler wires HTTP endpoints for the purchase screens.
type Handler struct {
	logger      *slog.Logger
	client      *backend.Client
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
	dialog      *trade.DialogHandler
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, dialog *trade.DialogHandler) *Handler {
	return &Handler{
		logger:      logger,
		client:      client,
		templates:   templates,
		csrfManager: csrf,
		validator:   validator.New(),
		dialog:      dialog,
	}
}

// MountRoutes registers purchase routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/nueva", h.newPurchase)
	r.Get("/{id}/detalle", h.detail)
	r.Post("/{id}/anular", h.void)
	r.Get("/{id}/factura", h.downloadInvoice)
	r.Route("/dialog", h.dialog.MountRoutes)
}

type listData struct {
	Purchases  []backend.CompraResumen
	Filter     string
	Pagination shared.Pagination
	LoadErr    string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	filter := r.URL.Query().Get("q")

	data := listData{Filter: filter}
	res, err := h.client.Compras(r.Context(), page-1, perPage, filter)
	if err != nil {
		if httpx.RedirectIfAuthExpired(w, r, err) {
			return
		}
		h.logger.Warn("list purchases", slog.Any("error", err))
		data.LoadErr = backend.UserMessage(err)
	} else {
		data.Purchases = res.Content
		data.Pagination = shared.FromTotalPages(page, perPage, res.TotalPages)
	}
	role := auth.ClaimsFromContext(r.Context()).Role
	if err := h.templates.RenderPage(w, r, h.csrfManager, 0, "pages/purchases.html", "Compras", role, data); err != nil {
		h.logger.Error("render purchases", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) newPurchase(w http.ResponseWriter, r *http.Request) {
	role := auth.ClaimsFromContext(r.Context()).Role
	if err := h.templates.RenderPage(w, r, h.csrfManager, 0, "pages/purchase_new.html", "Registrar compra", role, nil); err != nil {
		h.logger.Error("render purchase dialog", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type detailData struct {
	PurchaseID string
	Lines      []backend.DetalleCompra
	Total      float64
	LoadErr    string
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data := detailData{PurchaseID: id}
	lines, err := h.client.DetalleCompra(r.Context(), id)
	if err != nil {
		if httpx.RedirectIfAuthExpired(w, r, err) {
			return
		}
		h.logger.Warn("load purchase detail", slog.String("id", id), slog.Any("error", err))
		data.LoadErr = backend.UserMessage(err)
	} else {
		data.Lines = lines
		for _, l := range lines {
			data.Total += float64(l.Cantidad) * l.PrecioUnitarioProveedor
		}
	}
	role := auth.ClaimsFromContext(r.Context()).Role
	if err := h.templates.RenderPage(w, r, h.csrfManager, 0, "pages/purchase_detail.html", "Detalle de compra", role, data); err != nil {
		h.logger.Error("render purchase detail", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type voidForm struct {
	Observacion string `validate:"required,max=300"`
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := voidForm{Observacion: r.PostFormValue("observacion")}
	if err := h.validator.Struct(form); err != nil {
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "La observación es obligatoria"})
		}
		http.Redirect(w, r, "/compras", http.StatusSeeOther)
		return
	}
	err := h.client.AnularCompra(r.Context(), chi.URLParam(r, "id"), form.Observacion)
	if httpx.RedirectIfAuthExpired(w, r, err) {
		return
	}
	if err != nil {
		h.logger.Warn("void purchase", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
	} else if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Compra anulada"})
	}
	http.Redirect(w, r, "/compras", http.StatusSeeOther)
}

// downloadInvoice streams the rendered invoice. The listing row passes the
// supplier name and date along so the filename can be built without a
// second lookup.
func (h *Handler) downloadInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, contentType, err := h.client.FacturaCompra(r.Context(), id)
	if err != nil {
		if httpx.RedirectIfAuthExpired(w, r, err) {
			return
		}
		h.logger.Warn("download purchase invoice", slog.String("id", id), slog.Any("error", err))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: backend.UserMessage(err)})
		}
		http.Redirect(w, r, "/compras", http.StatusSeeOther)
		return
	}
	name := invoice.Filename(
		invoice.Purchase,
		r.URL.Query().Get("nombre"),
		invoice.ParseWireDate(r.URL.Query().Get("fecha")),
		id,
	)
	if contentType == "" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(body)
}
