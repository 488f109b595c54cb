package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Intake wizard metrics
	WizardStepsTotal       *prometheus.CounterVec
	WizardValidationErrors *prometheus.CounterVec
	WizardSubmissionsTotal *prometheus.CounterVec
	WizardSubmitDuration   prometheus.Histogram
	WizardSessionsActive   prometheus.Gauge

	// Checkout metrics
	CheckoutSessionsTotal *prometheus.CounterVec
	WebhookEventsTotal    *prometheus.CounterVec

	// Email metrics
	NotificationsTotal *prometheus.CounterVec

	// Dashboard metrics
	DashboardCacheHits   prometheus.Counter
	DashboardCacheMisses prometheus.Counter

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		WizardStepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_wizard_steps_total",
				Help: "Wizard step transitions by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		WizardValidationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_wizard_validation_errors_total",
				Help: "Validation failures by wizard step",
			},
			[]string{"step"},
		),
		WizardSubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_wizard_submissions_total",
				Help: "Wizard submissions by outcome",
			},
			[]string{"outcome"},
		),
		WizardSubmitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "studio_wizard_submit_duration_seconds",
				Help:    "Time to persist a submission and fan out to checkout and email",
				Buckets: prometheus.DefBuckets,
			},
		),
		WizardSessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_wizard_sessions_active",
				Help: "Number of live wizard sessions",
			},
		),

		CheckoutSessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_checkout_sessions_total",
				Help: "Checkout sessions created by outcome",
			},
			[]string{"outcome"},
		),
		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_webhook_events_total",
				Help: "Payment provider webhook events by type",
			},
			[]string{"type"},
		),

		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_notifications_total",
				Help: "Operator notification emails by outcome",
			},
			[]string{"outcome"},
		),

		DashboardCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "studio_dashboard_cache_hits_total",
				Help: "Dashboard projection cache hits",
			},
		),
		DashboardCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "studio_dashboard_cache_misses_total",
				Help: "Dashboard projection cache misses",
			},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.WizardStepsTotal,
		m.WizardValidationErrors,
		m.WizardSubmissionsTotal,
		m.WizardSubmitDuration,
		m.WizardSessionsActive,
		m.CheckoutSessionsTotal,
		m.WebhookEventsTotal,
		m.NotificationsTotal,
		m.DashboardCacheHits,
		m.DashboardCacheMisses,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
