package checkout

import (
	"context"

	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

// CreateSessionRequest carries everything needed to open a hosted checkout.
// SubmissionID may be empty for the standalone pricing widget; when present,
// the session id and pending status are written back to that submission.
type CreateSessionRequest struct {
	SubmissionID string                  `json:"submission_id,omitempty"`
	Plan         pricing.PlanID          `json:"plan"`
	AddOns       pricing.Selection       `json:"add_ons"`
	PageCount    int                     `json:"page_count"`
	BillingCycle submission.BillingCycle `json:"billing_cycle"`
	Email        string                  `json:"email"`
	CompanyName  string                  `json:"company_name,omitempty"`
}

// Session is the hosted checkout handle returned to the client. The
// browser redirects to URL to collect payment.
type Session struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// Client is the interface the wizard submits through.
type Client interface {
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error)
}

// WebhookEvent is the payload the payment provider posts back when a
// session changes state.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		SessionID  string `json:"session_id"`
		CustomerID string `json:"customer_id,omitempty"`
	} `json:"data"`
}

// EventSessionCompleted marks a paid checkout session.
const EventSessionCompleted = "checkout.session.completed"
