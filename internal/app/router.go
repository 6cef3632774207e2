package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/almacen-console/almacen-console/internal/auth"
	"github.com/almacen-console/almacen-console/internal/catalog"
	"github.com/almacen-console/almacen-console/internal/categories"
	"github.com/almacen-console/almacen-console/internal/dashboard"
	"github.com/almacen-console/almacen-console/internal/purchases"
	"github.com/almacen-console/almacen-console/internal/sales"
	"github.com/almacen-console/almacen-console/internal/session"
	"github.com/almacen-console/almacen-console/internal/shared"
	"github.com/almacen-console/almacen-console/internal/users"
	"github.com/almacen-console/almacen-console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	Gates             *session.Registry
	AuthHandler       *auth.Handler
	DashboardHandler  *dashboard.Handler
	CategoriesHandler *categories.Handler
	CatalogHandler    *catalog.Handler
	UsersHandler      *users.Handler
	PurchasesHandler  *purchases.Handler
	SalesHandler      *sales.Handler
}

// NewRouter constructs the chi.Router for the console.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Gates:          params.Gates,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AuthHandler.MountRoutes(r)
	params.DashboardHandler.MountRoutes(r)
	r.Route("/categorias", params.CategoriesHandler.MountRoutes)
	r.Route("/productos", params.CatalogHandler.MountRoutes)
	r.Route("/usuarios", params.UsersHandler.MountRoutes)
	r.Route("/compras", params.PurchasesHandler.MountRoutes)
	r.Route("/ventas", params.SalesHandler.MountRoutes)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
