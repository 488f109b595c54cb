package mailer

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

func TestMessageEncode(t *testing.T) {
	msg := &Message{
		From:     "noreply@pixelforge.studio",
		To:       "hello@pixelforge.studio",
		Subject:  "New project submission: River Cafe",
		HTMLBody: "<p>hi</p>",
		Attachments: []Attachment{
			{
				Filename:      "logo.png",
				ContentBase64: base64.StdEncoding.EncodeToString([]byte("png-bytes")),
				MimeType:      "image/png",
			},
		},
	}

	raw, err := msg.Encode()
	require.NoError(t, err)
	s := string(raw)

	assert.Contains(t, s, "To: hello@pixelforge.studio")
	assert.Contains(t, s, "Subject: New project submission: River Cafe")
	assert.Contains(t, s, "Content-Type: multipart/mixed")
	assert.Contains(t, s, `text/html; charset="utf-8"`)
	assert.Contains(t, s, "<p>hi</p>")
	assert.Contains(t, s, `attachment; filename="logo.png"`)
	assert.Contains(t, s, "Content-Transfer-Encoding: base64")
	assert.Contains(t, s, base64.StdEncoding.EncodeToString([]byte("png-bytes")))
}

func TestMessageEncodeBadAttachment(t *testing.T) {
	msg := &Message{
		From:     "noreply@pixelforge.studio",
		To:       "hello@pixelforge.studio",
		Subject:  "bad",
		HTMLBody: "<p>hi</p>",
		Attachments: []Attachment{
			{Filename: "x.bin", ContentBase64: "!!!not base64!!!", MimeType: "application/octet-stream"},
		},
	}

	_, err := msg.Encode()
	assert.ErrorContains(t, err, "not valid base64")
}

func TestWrapBase64(t *testing.T) {
	long := strings.Repeat("A", 200)
	wrapped := wrapBase64(long)

	for _, line := range strings.Split(wrapped, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	assert.Equal(t, long, strings.ReplaceAll(wrapped, "\r\n", ""))
}

type recordingSender struct {
	sent []*Message
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg *Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestServiceSendSubmissionNotification(t *testing.T) {
	sender := &recordingSender{}
	table := pricing.DefaultTable()
	svc := NewService(sender, table, "noreply@pixelforge.studio", "hello@pixelforge.studio", nil, logrus.New())

	sub := &submission.Submission{
		ID:           "sub-1",
		Name:         "Ana",
		Email:        "ana@example.com",
		BusinessName: "River Cafe",
		PageCount:    2,
		Plan:         pricing.PlanStarter,
		AddOns:       pricing.Selection{pricing.AddOnLogo: true, pricing.AddOnMaintenance: true},
		BillingCycle: submission.CycleMonthly,
		Totals:       submission.Totals{SetupFee: 149, OneTimeTotal: 20, FirstMonth: 60, MonthlyRecurring: 60, GrandTotal: 229},
	}

	err := svc.SendSubmissionNotification(context.Background(), sub, []Attachment{
		{Filename: "logo.png", ContentBase64: base64.StdEncoding.EncodeToString([]byte("x")), MimeType: "image/png"},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "hello@pixelforge.studio", msg.To)
	assert.Contains(t, msg.Subject, "River Cafe")
	assert.Contains(t, msg.HTMLBody, "Starter")
	assert.Contains(t, msg.HTMLBody, "Logo design")
	assert.Contains(t, msg.HTMLBody, "Maintenance")
	assert.Contains(t, msg.HTMLBody, "$229")
	assert.Len(t, msg.Attachments, 1)
}
