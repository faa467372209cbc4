package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partnerdesk/platform/internal/auth"
	"github.com/partnerdesk/platform/internal/guard"
	"github.com/partnerdesk/platform/internal/handler"
	adminhandler "github.com/partnerdesk/platform/internal/handler/admin"
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/partnerdesk/platform/internal/policy"
	"github.com/partnerdesk/platform/internal/projection"
	"github.com/partnerdesk/platform/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Logger *slog.Logger
	Tiers  policy.TierTable
	// Cache holds level summaries; nil falls back to an in-process store.
	Cache    projection.Store
	CacheTTL time.Duration
	// Redis is probed by /health when set.
	Redis *redis.Client
	// Manual level refreshes allowed per partner per minute.
	RefreshLimit       int
	CORSAllowedOrigins string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) (chi.Router, error) {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	cache := deps.Cache
	if cache == nil {
		cache = projection.NewInMemoryStore()
	}

	// Services
	st := service.NewStores(pool)
	levelSvc := service.NewLevelService(st, deps.Tiers, cache, deps.CacheTTL, logger)
	partnerSvc, err := service.NewPartnerService(st, deps.Tiers, logger)
	if err != nil {
		return nil, fmt.Errorf("partner service: %w", err)
	}
	clientSvc := service.NewClientService(st, levelSvc, logger)
	paymentSvc := service.NewPaymentService(st, levelSvc, guard.NewIdempotencyGuard(), logger)
	dashboardSvc := service.NewDashboardService(st, deps.Tiers, logger)
	notificationSvc := service.NewNotificationService(st)

	// Handlers
	partnerHandler := handler.NewPartnerHandler(clientSvc, levelSvc, dashboardSvc, notificationSvc)

	// Admin handlers
	refreshRL := guard.NewRateLimiter(deps.RefreshLimit, time.Minute)
	partnerAdmin := adminhandler.NewPartnerAdminHandler(partnerSvc, clientSvc, levelSvc, dashboardSvc, refreshRL)
	clientAdmin := adminhandler.NewClientAdminHandler(clientSvc, paymentSvc)
	reportsAdmin := adminhandler.NewReportsHandler(dashboardSvc)
	evaluateAdmin := adminhandler.NewEvaluateHandler(deps.Tiers)

	// Health probes
	checks := []handler.HealthCheck{{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return infra.HealthCheck(ctx, pool) },
	}}
	if deps.Redis != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() },
		})
	}

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.Metrics)
	r.Use(handler.CORSWithOrigins(deps.CORSAllowedOrigins))

	// Prometheus scrape endpoint (plain text exposition format)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		// Health (no auth)
		r.Get("/health", handler.HealthHandler(checks...))

		// Partner portal
		r.Route("/partner/me", func(r chi.Router) {
			r.Use(auth.AuthenticatePartner(jwtMgr, partnerSvc))

			r.Get("/", partnerHandler.GetMe)
			r.Get("/dashboard", partnerHandler.GetDashboard)
			r.Get("/clients", partnerHandler.ListClients)
			r.Get("/level", partnerHandler.GetLevel)
			r.Get("/notifications", partnerHandler.ListNotifications)
			r.Post("/notifications/{id}/read", partnerHandler.MarkNotificationRead)
		})

		// Admin-authenticated routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.AuthenticateAdmin(jwtMgr))
			r.Use(auth.RequireRole(auth.AllAdminRoles()...))

			// Read-only
			r.Get("/partners", partnerAdmin.ListPartners)
			r.Get("/partners/{id}", partnerAdmin.GetPartner)
			r.Get("/partners/{id}/level", partnerAdmin.GetLevel)
			r.Get("/partners/{id}/dashboard", partnerAdmin.GetDashboard)
			r.Get("/partners/{id}/clients", partnerAdmin.ListClients)
			r.Get("/clients/{id}", clientAdmin.GetClient)
			r.Get("/reports/overview", reportsAdmin.GetOverview)
			r.Get("/tiers", evaluateAdmin.ListTiers)
			r.Post("/evaluate", evaluateAdmin.Evaluate)

			// Writes
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.WriteRoles()...))

				r.Post("/partners", partnerAdmin.CreatePartner)
				r.Patch("/partners/{id}", partnerAdmin.UpdatePartner)
				r.Patch("/partners/{id}/status", partnerAdmin.UpdatePartnerStatus)
				r.Post("/partners/{id}/level/refresh", partnerAdmin.RefreshLevel)
				r.Post("/partners/{id}/clients", partnerAdmin.CreateClient)
				r.Post("/partners/{id}/import", partnerAdmin.ImportClients)
				r.Post("/clients/{id}/payments", clientAdmin.RecordPayment)
				r.Patch("/payments/{id}/status", clientAdmin.UpdatePaymentStatus)
			})
		})
	})

	return r, nil
}
