package mailer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/observability"
	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

// Service sends every notification to one fixed operator address.
type Service struct {
	sender   Sender
	table    *pricing.Table
	from     string
	operator string
	metrics  *observability.Metrics
	logger   *logrus.Logger
}

// NewService creates a notification service. metrics may be nil.
func NewService(sender Sender, table *pricing.Table, from, operator string, metrics *observability.Metrics, logger *logrus.Logger) *Service {
	return &Service{
		sender:   sender,
		table:    table,
		from:     from,
		operator: operator,
		metrics:  metrics,
		logger:   logger,
	}
}

// SendSubmissionNotification renders and dispatches the operator email for
// one submission. Callers treat a returned error as non-fatal.
func (s *Service) SendSubmissionNotification(ctx context.Context, sub *submission.Submission, attachments []Attachment) error {
	body, err := RenderNotification(s.table, sub, len(attachments))
	if err != nil {
		return err
	}

	msg := &Message{
		From:        s.from,
		To:          s.operator,
		Subject:     fmt.Sprintf("New project submission: %s", sub.BusinessName),
		HTMLBody:    body,
		Attachments: attachments,
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		}
		return fmt.Errorf("failed to deliver notification for submission %s: %w", sub.ID, err)
	}
	if s.metrics != nil {
		s.metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id": sub.ID,
		"attachments":   len(attachments),
	}).Info("Sent submission notification")
	return nil
}
