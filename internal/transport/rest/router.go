package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/admin"
	"github.com/fleetora/admin-gateway/internal/docs"
	"github.com/fleetora/admin-gateway/internal/modules"
	"github.com/fleetora/admin-gateway/internal/token"
	"github.com/fleetora/admin-gateway/internal/transport/middleware"
	"github.com/fleetora/admin-gateway/internal/transport/swagger"
	"github.com/fleetora/admin-gateway/internal/upstream"
)

// RegisterAllRoutes wires the full gateway surface. Everything under
// /api/v1/admin sits behind the token guard.
func RegisterAllRoutes(
	router *chi.Mux,
	cfg *internal.Config,
	client *upstream.Client,
	guard *token.Guard,
	authHandler *token.Handler,
	adminHandler *admin.Handler,
	modulesHandler *modules.Handler,
	docsHandler *docs.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(client)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if cfg.Observability.Metrics.Enabled {
		middleware.InitMetrics()
		router.Use(middleware.Instrument)
		router.Method(http.MethodGet, cfg.Observability.Metrics.Path, middleware.MetricsHandler())
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/logout", authHandler.Logout)
			sr.Group(func(pr chi.Router) {
				pr.Use(guard.Middleware)
				pr.Get("/me", authHandler.Me)
			})
		})

		// Guarded gateway surface
		r.Group(func(pr chi.Router) {
			pr.Use(guard.Middleware)

			// Static configuration, never forwarded upstream
			pr.Get("/active-modules", modulesHandler.GetActiveModules)

			pr.Route("/admin", func(ar chi.Router) {
				ar.Get("/permissions/me", modulesHandler.GetMyPermissions)
				ar.Get("/permissions", adminHandler.ListPermissions)

				ar.Route("/users", func(ur chi.Router) {
					ur.Get("/", adminHandler.ListUsers)
					ur.Post("/", adminHandler.CreateUser)
					ur.Get("/{id}", adminHandler.GetUser)
					ur.Patch("/{id}", adminHandler.UpdateUser)
					ur.Delete("/{id}", adminHandler.DeleteUser)
				})

				ar.Route("/roles", func(rr chi.Router) {
					rr.Get("/", adminHandler.ListRoles)
					rr.Post("/", adminHandler.CreateRole)
					rr.Patch("/{id}", adminHandler.UpdateRole)
					rr.Delete("/{id}", adminHandler.DeleteRole)
					rr.Put("/{id}/permissions", adminHandler.SetRolePermissions)
				})

				ar.Route("/balance", func(br chi.Router) {
					br.Get("/{userID}", adminHandler.GetBalance)
					br.Post("/deposit", adminHandler.Deposit)
				})

				ar.Route("/automations", func(wr chi.Router) {
					wr.Get("/", adminHandler.ListAutomations)
					wr.Post("/", adminHandler.CreateAutomation)
					wr.Get("/{id}", adminHandler.GetAutomation)
					wr.Patch("/{id}", adminHandler.UpdateAutomation)
					wr.Delete("/{id}", adminHandler.DeleteAutomation)
					wr.Post("/{id}/run", adminHandler.RunAutomation)
				})

				ar.Route("/bookings", func(br chi.Router) {
					br.Get("/", adminHandler.ListBookings)
					br.Get("/{id}", adminHandler.GetBooking)
					br.Patch("/{id}", adminHandler.UpdateBooking)
				})

				ar.Route("/vehicles/{collection}", func(vr chi.Router) {
					vr.Get("/", adminHandler.ListVehicleCollection)
					vr.Post("/", adminHandler.CreateVehicleEntry)
					vr.Patch("/{id}", adminHandler.UpdateVehicleEntry)
					vr.Delete("/{id}", adminHandler.DeleteVehicleEntry)
				})

				ar.Get("/audit-logs", adminHandler.ListAuditLogs)

				ar.Route("/docs", func(dr chi.Router) {
					dr.Get("/tree", docsHandler.Tree)
					dr.Get("/content", docsHandler.Content)
				})
			})
		})
	})
}
