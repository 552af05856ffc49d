package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/admin"
	"github.com/fleetora/admin-gateway/internal/docs"
	"github.com/fleetora/admin-gateway/internal/modules"
	"github.com/fleetora/admin-gateway/internal/token"
	"github.com/fleetora/admin-gateway/internal/transport"
	"github.com/fleetora/admin-gateway/internal/transport/rest"
	"github.com/fleetora/admin-gateway/internal/upstream"
	"github.com/fleetora/admin-gateway/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the gateway HTTP server that proxies the admin back-office API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	Router   *chi.Mux
	Upstream *upstream.Client
	Guard    *token.Guard
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr, "upstream", deps.Upstream.BaseURL())

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	permissionStore := modules.NewPermissionStore(deps.Upstream, deps.Config.Permissions.CacheTTL, deps.Logger)

	authHandler := token.NewHandler(deps.Guard, deps.Upstream)
	adminHandler := admin.NewHandler(deps.Upstream)
	modulesHandler := modules.NewHandler(transport.NewBaseHandler(deps.Logger), permissionStore)
	docsHandler := docs.NewHandler(deps.Upstream)

	rest.RegisterAllRoutes(
		deps.Router,
		deps.Config,
		deps.Upstream,
		deps.Guard,
		authHandler,
		adminHandler,
		modulesHandler,
		docsHandler,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.L()

	client := upstream.NewClient(upstream.Config{
		BaseURL: config.Upstream.BaseURL,
		Timeout: config.Upstream.Timeout,
	}, lg)

	guard := token.NewGuard(client, config.Session, lg)

	return &Dependencies{
		Config:   config,
		Router:   chi.NewRouter(),
		Upstream: client,
		Guard:    guard,
		Logger:   lg,
	}, nil
}
