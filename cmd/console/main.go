package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/almacen-console/almacen-console/internal/app"
	"github.com/almacen-console/almacen-console/internal/auth"
	"github.com/almacen-console/almacen-console/internal/backend"
	"github.com/almacen-console/almacen-console/internal/cart"
	"github.com/almacen-console/almacen-console/internal/catalog"
	"github.com/almacen-console/almacen-console/internal/categories"
	"github.com/almacen-console/almacen-console/internal/dashboard"
	"github.com/almacen-console/almacen-console/internal/purchases"
	"github.com/almacen-console/almacen-console/internal/sales"
	"github.com/almacen-console/almacen-console/internal/session"
	"github.com/almacen-console/almacen-console/internal/shared"
	"github.com/almacen-console/almacen-console/internal/trade"
	"github.com/almacen-console/almacen-console/internal/users"
	"github.com/almacen-console/almacen-console/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "almacen_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	gates := session.NewRegistry(redisClient, cfg.SessionTTL)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	// The client reads the request's gate for the bearer token and funnels
	// every intercepted 401 back into it, so one expired response anywhere
	// terminates the session.
	client := backend.New(cfg.APIBaseURL,
		backend.WithLogger(logger),
		backend.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		backend.WithTokenSource(func(ctx context.Context) string {
			if gate := session.GateFromContext(ctx); gate != nil {
				return gate.Token()
			}
			return ""
		}),
		backend.WithAuthExpiredHook(func(ctx context.Context) {
			gate := session.GateFromContext(ctx)
			if gate == nil {
				return
			}
			if err := gate.SetSession(ctx, ""); err != nil {
				logger.Warn("clear expired session", slog.Any("error", err))
			}
		}),
	)

	purchaseStore := cart.NewStore(cfg.SearchDebounce, trade.PurchaseSubmit(client))
	saleStore := cart.NewStore(cfg.SearchDebounce, trade.SaleSubmit(client))
	purchaseDialog := trade.NewDialogHandler(logger, trade.PurchaseFlow(client, purchaseStore))
	saleDialog := trade.NewDialogHandler(logger, trade.SaleFlow(client, saleStore))

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		Gates:             gates,
		AuthHandler:       auth.NewHandler(logger, client, templates, sessionManager, gates, csrfManager),
		DashboardHandler:  dashboard.NewHandler(logger, client, templates, csrfManager),
		CategoriesHandler: categories.NewHandler(logger, client, templates, csrfManager),
		CatalogHandler:    catalog.NewHandler(logger, client, templates, csrfManager),
		UsersHandler:      users.NewHandler(logger, client, templates, csrfManager),
		PurchasesHandler:  purchases.NewHandler(logger, client, templates, csrfManager, purchaseDialog),
		SalesHandler:      sales.NewHandler(logger, client, templates, csrfManager, saleDialog),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("console listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
