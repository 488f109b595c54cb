package checkout

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

// Schema is the DDL for billing customers.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	company    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
`

// EnsureSchema creates the billing tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create checkout schema: %w", err)
	}
	return nil
}

// Service implements Client against a SQL customer registry and a hosted
// payment page addressed by baseURL.
type Service struct {
	db          *sql.DB
	table       *pricing.Table
	submissions *submission.Store
	baseURL     string
	logger      *logrus.Logger
}

// NewService creates a checkout service.
func NewService(db *sql.DB, table *pricing.Table, submissions *submission.Store, baseURL string, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		table:       table,
		submissions: submissions,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		logger:      logger,
	}
}

// CreateSession opens a hosted checkout session. Totals are recomputed from
// the canonical table; amounts supplied by the client are ignored.
func (s *Service) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if _, ok := s.table.Plan(req.Plan); !ok {
		return nil, fmt.Errorf("unknown plan %q", req.Plan)
	}

	quote := s.table.Calculate(req.Plan, req.PageCount, req.AddOns)

	customerID, err := s.ensureCustomer(ctx, req.Email, req.CompanyName)
	if err != nil {
		return nil, err
	}

	sessionID := newID("cs_")
	session := &Session{
		URL:       fmt.Sprintf("%s/pay/%s", s.baseURL, sessionID),
		SessionID: sessionID,
	}

	if req.SubmissionID != "" {
		if err := s.submissions.AttachCheckoutSession(ctx, req.SubmissionID, sessionID, customerID); err != nil {
			return nil, fmt.Errorf("failed to attach session to submission: %w", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":    sessionID,
		"customer_id":   customerID,
		"submission_id": req.SubmissionID,
		"plan":          req.Plan,
		"grand_total":   quote.GrandTotal,
	}).Info("Created checkout session")

	return session, nil
}

// ensureCustomer returns the billing customer for an email, creating one on
// first contact. Company name is recorded on creation only.
func (s *Service) ensureCustomer(ctx context.Context, email, company string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE email = $1`, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up customer: %w", err)
	}

	id = newID("cus_")
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO customers (id, email, company, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, email, company, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return id, nil
}

// HandleWebhook processes a payment-provider callback. Completed sessions
// flip their submission to completed; unrecognized event types are ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte) error {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to parse webhook: %w", err)
	}

	switch event.Type {
	case EventSessionCompleted:
		if event.Data.SessionID == "" {
			return fmt.Errorf("completed event missing session id")
		}
		if err := s.submissions.MarkCompletedBySession(ctx, event.Data.SessionID); err != nil {
			return err
		}
		s.logger.WithField("session_id", event.Data.SessionID).Info("Checkout session completed")
		return nil
	default:
		return nil
	}
}

// SubmissionBySession fetches the submission attached to a checkout
// session, or nil when the session was created without one.
func (s *Service) SubmissionBySession(ctx context.Context, sessionID string) (*submission.Submission, error) {
	return s.submissions.GetBySession(ctx, sessionID)
}

func newID(prefix string) string {
	b := make([]byte, 12)
	rand.Read(b)
	return prefix + hex.EncodeToString(b)
}
