package app

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/controllers"
	"github.com/poofware/logistics-gateway/internal/middleware"
	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/routes"
	"github.com/poofware/logistics-gateway/internal/services"
	"github.com/poofware/logistics-gateway/internal/utils"
)

// CORSLowSecurityAllowedOriginLocalhost is admitted when cors_high_security
// is off, for local front-end development.
const CORSLowSecurityAllowedOriginLocalhost = "http://localhost:3000"

// Services is the wired service layer.
type Services struct {
	Partners     repositories.PartnerRepository
	Tokens       services.TokenService
	RateLimiter  services.RateLimiterService
	Dispatch     services.DispatchService
	State        services.StateService
	QueueMonitor services.QueueMonitorService
}

// Wire builds the repositories and services on top of the app's clients.
func (a *App) Wire() *Services {
	cfg := a.Config

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	partnerRepo := a.PartnerRepository()
	tokenRepo := repositories.NewRedisTokenRepository(a.Redis)
	rateLimitRepo := repositories.NewRedisRateLimitRepository(a.Redis)
	stateRepo := repositories.NewRedisStateRepository(a.Redis)
	queueRepo := repositories.NewRedisJobQueueRepository(a.Redis, cfg.QueueNamespace)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	return &Services{
		Partners:     partnerRepo,
		Tokens:       services.NewTokenService(cfg, partnerRepo, tokenRepo),
		RateLimiter:  services.NewRateLimiterService(rateLimitRepo, cfg),
		Dispatch:     services.NewDispatchService(queueRepo),
		State:        services.NewStateService(cfg, stateRepo, queueRepo),
		QueueMonitor: services.NewQueueMonitorService(queueRepo, constants.KnownQueues),
	}
}

// NewRouter mounts every endpoint. Everything but /health and /auth/token
// requires a bearer token.
func (a *App) NewRouter(svc *Services) *mux.Router {
	authController := controllers.NewAuthController(svc.Tokens, svc.RateLimiter, a.Config.TrustedProxies)
	transferController := controllers.NewTransferController(svc.Dispatch, svc.State)
	invoiceController := controllers.NewInvoiceController(svc.Dispatch, svc.State)
	healthController := controllers.NewHealthController(func(ctx context.Context) error {
		return a.Redis.Ping(ctx).Err()
	}, svc.QueueMonitor)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Invalid request endpoint", nil)
	})

	// Health
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	// Public
	router.HandleFunc(routes.AuthToken, authController.Token).Methods(http.MethodPost)

	// Protected endpoints require a valid token
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware(svc.Tokens))
	protected.HandleFunc(routes.AuthRevoke, authController.Revoke).Methods(http.MethodPost)

	protected.HandleFunc(routes.TransferInbound, transferController.CreateInbound).Methods(http.MethodPost)
	protected.HandleFunc(routes.TransferOutbound, transferController.CreateOutbound).Methods(http.MethodPost)
	protected.HandleFunc(routes.TransferState, transferController.State).Methods(http.MethodPost)

	protected.HandleFunc(routes.InvoiceIssue, invoiceController.Issue).Methods(http.MethodPost)
	protected.HandleFunc(routes.InvoiceActual, invoiceController.Actual).Methods(http.MethodPost)
	protected.HandleFunc(routes.InvoiceState, invoiceController.State).Methods(http.MethodPost)

	return router
}

// WithCORS wraps the router in the CORS policy selected by config.
func (a *App) WithCORS(h http.Handler) http.Handler {
	allowedOrigins := []string{a.Config.AppUrl}
	if !a.Config.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return co.Handler(h)
}
