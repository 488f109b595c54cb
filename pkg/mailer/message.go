package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Attachment is a file carried on the notification email. Content is
// base64-encoded at the transport boundary; the wizard encodes uploads
// before handing them over.
type Attachment struct {
	Filename      string `json:"filename"`
	ContentBase64 string `json:"content"`
	MimeType      string `json:"mime_type"`
}

// Message is a fully addressed email ready for a Sender.
type Message struct {
	From        string
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Encode renders the message as a MIME document: a multipart/mixed
// envelope with one text/html part followed by base64 attachment parts.
func (m *Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", m.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	body, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="utf-8"`},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := body.Write([]byte(m.HTMLBody)); err != nil {
		return nil, fmt.Errorf("failed to write body: %w", err)
	}

	for _, att := range m.Attachments {
		// validate the payload before shipping it
		if _, err := base64.StdEncoding.DecodeString(att.ContentBase64); err != nil {
			return nil, fmt.Errorf("attachment %s is not valid base64: %w", att.Filename, err)
		}

		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {att.MimeType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := part.Write([]byte(wrapBase64(att.ContentBase64))); err != nil {
			return nil, fmt.Errorf("failed to write attachment: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapBase64 re-flows a base64 string to 76-character lines per RFC 2045.
func wrapBase64(s string) string {
	const lineLen = 76
	var b strings.Builder
	for len(s) > lineLen {
		b.WriteString(s[:lineLen])
		b.WriteString("\r\n")
		s = s[lineLen:]
	}
	b.WriteString(s)
	return b.String()
}
