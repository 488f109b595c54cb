package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pixelforge/studio/pkg/checkout"
	"github.com/pixelforge/studio/pkg/dashboard"
	"github.com/pixelforge/studio/pkg/httputil"
	"github.com/pixelforge/studio/pkg/identity"
	"github.com/pixelforge/studio/pkg/middleware"
	"github.com/pixelforge/studio/pkg/observability"
	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/uploads"
	"github.com/pixelforge/studio/pkg/wizard"
)

const maxRequestBytes = 10 << 20 // attachments ride in wizard submissions

// Server is the public API server.
type Server struct {
	router *mux.Router
	logger *logrus.Logger
}

// Deps carries the wired services the handlers need.
type Deps struct {
	Table         *pricing.Table
	Machine       *wizard.Machine
	Sessions      wizard.SessionStore
	Checkout      *checkout.Service
	Dashboard     *dashboard.Reader
	Identity      *identity.Manager
	Uploads       uploads.Store
	WebhookSecret string
	Metrics       *observability.Metrics
	Logger        *logrus.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: deps.Logger,
	}

	authMW := middleware.NewAuthMiddleware(deps.Identity, true)
	publicLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	chain := httputil.Chain(
		httputil.RequestIDMiddleware,
		authMW.Handler,
		httputil.LoggingMiddleware(deps.Logger),
		observability.HTTPMetricsMiddleware(deps.Metrics),
		httputil.RecoveryMiddleware(deps.Logger),
		httputil.MaxBytesMiddleware(maxRequestBytes),
	)
	s.router.Use(mux.MiddlewareFunc(chain))

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	NewPricingHandlers(deps.Table).RegisterRoutes(v1, publicLimiter)
	NewIntakeHandlers(deps.Machine, deps.Sessions, deps.Uploads, deps.Metrics, deps.Logger).RegisterRoutes(v1)
	NewCheckoutHandlers(deps.Checkout, deps.Dashboard, deps.WebhookSecret, deps.Metrics, deps.Logger).RegisterRoutes(v1)
	NewDashboardHandlers(deps.Dashboard, deps.Logger).RegisterRoutes(v1)
	NewAuthHandlers(deps.Identity, deps.Logger).RegisterRoutes(v1)

	return s
}

// Router returns the configured router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the router wrapped with tracing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "studio-api")
}
