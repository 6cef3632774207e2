// Package dashboard renders the landing screen with the lowest-stock
// product listing.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almacen-console/almacen-console/internal/auth"
	"github.com/almacen-console/almacen-console/internal/backend"
	"github.com/almacen-console/almacen-console/internal/platform/httpx"
	"github.com/almacen-console/almacen-console/internal/shared"
	"github.com/almacen-console/almacen-console/internal/view"
)

// Handler serves the dashboard page.
type Handler struct {
	logger      *slog.Logger
	client      *backend.Client
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrfManager: csrf}
}

// MountRoutes registers dashboard routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showDashboard)
}

type pageData struct {
	Products []backend.Producto
	LoadErr  string
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	data := pageData{}
	products, err := h.client.ProductosLowestStock(r.Context())
	if err != nil {
		if httpx.RedirectIfAuthExpired(w, r, err) {
			return
		}
		h.logger.Warn("load lowest stock", slog.Any("error", err))
		data.LoadErr = backend.UserMessage(err)
	} else {
		data.Products = products
	}

	role := auth.ClaimsFromContext(r.Context()).Role
	if err := h.templates.RenderPage(w, r, h.csrfManager, 0, "pages/home.html", "Inicio", role, data); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
