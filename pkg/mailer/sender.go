package mailer

import (
	"context"
	"fmt"
	"net/smtp"
)

// Sender delivers an encoded email message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender delivers mail over plain SMTP with optional auth.
type SMTPSender struct {
	addr string // host:port
	auth smtp.Auth
}

// NewSMTPSender creates a sender for the given SMTP endpoint. Pass empty
// username to skip auth (local relays, test servers).
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	s := &SMTPSender{addr: fmt.Sprintf("%s:%d", host, port)}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

// Send implements Sender.Send
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := smtp.SendMail(s.addr, s.auth, msg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
