package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/checkout"
	"github.com/pixelforge/studio/pkg/dashboard"
	"github.com/pixelforge/studio/pkg/httputil"
	"github.com/pixelforge/studio/pkg/observability"
	"github.com/pixelforge/studio/pkg/submission"
)

// CheckoutHandlers exposes direct session creation (used by the pricing
// widget's buy button) and the payment provider webhook.
type CheckoutHandlers struct {
	service       *checkout.Service
	dashboard     *dashboard.Reader
	webhookSecret string
	metrics       *observability.Metrics
	logger        *logrus.Logger
}

// NewCheckoutHandlers creates a new CheckoutHandlers. An empty
// webhookSecret skips signature verification.
func NewCheckoutHandlers(service *checkout.Service, dash *dashboard.Reader, webhookSecret string, metrics *observability.Metrics, logger *logrus.Logger) *CheckoutHandlers {
	return &CheckoutHandlers{
		service:       service,
		dashboard:     dash,
		webhookSecret: webhookSecret,
		metrics:       metrics,
		logger:        logger,
	}
}

// RegisterRoutes registers checkout routes
func (h *CheckoutHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/checkout/session", h.CreateSession).Methods("POST")
	router.HandleFunc("/checkout/webhook", h.Webhook).Methods("POST")
}

// CreateSession opens a hosted checkout session.
func (h *CheckoutHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req checkout.CreateSessionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	session, err := h.service.CreateSession(r.Context(), &req)
	if err != nil {
		h.metrics.CheckoutSessionsTotal.WithLabelValues("failed").Inc()
		h.logger.WithError(err).Warn("Checkout session creation failed")
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	h.metrics.CheckoutSessionsTotal.WithLabelValues("created").Inc()
	httputil.WriteCreated(w, session)
}

// Webhook receives payment provider callbacks. Completed sessions flip
// their submission to completed and invalidate the dashboard cache.
func (h *CheckoutHandlers) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequest(w, "failed to read payload")
		return
	}

	if h.webhookSecret != "" {
		if !checkout.VerifySignature(payload, r.Header.Get(checkout.SignatureHeader), h.webhookSecret) {
			h.logger.Warn("Webhook signature mismatch")
			httputil.WriteUnauthorized(w, "invalid signature")
			return
		}
	}

	var event checkout.WebhookEvent
	if err := json.Unmarshal(payload, &event); err == nil && event.Type != "" {
		h.metrics.WebhookEventsTotal.WithLabelValues(event.Type).Inc()
	}

	if err := h.service.HandleWebhook(r.Context(), payload); err != nil {
		h.logger.WithError(err).Warn("Webhook handling failed")
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	// the payer's dashboard should see the new plan on next load
	if event.Type == checkout.EventSessionCompleted && h.dashboard != nil {
		h.invalidateForSession(r, event.Data.SessionID)
	}

	httputil.WriteSuccess(w, map[string]string{"status": "ok"})
}

func (h *CheckoutHandlers) invalidateForSession(r *http.Request, sessionID string) {
	sub, err := h.service.SubmissionBySession(r.Context(), sessionID)
	if err != nil || sub == nil {
		return
	}
	h.dashboard.Invalidate(submission.Identity{UserID: sub.UserID, Email: sub.Email})
}
