// Package email sends transactional mail to producers and businesses.
//
// Services depend on the Sender interface; main wires either the Resend
// implementation or a no-op sender when no API key is configured.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Title   string
	Body    string
	// LinkURL is rendered as a call-to-action button when set.
	LinkURL   string
	LinkLabel string
}

// Sender delivers Messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
}

// NewResendSender builds a Sender backed by the Resend API.
func NewResendSender(apiKey, fromEmail string) Sender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}
}

func (s *resendSender) Send(ctx context.Context, msg Message) error {
	html, err := Render(msg)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Dixis <%s>", s.fromEmail),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

type nopSender struct{}

// NewNopSender returns a Sender that drops every message.
func NewNopSender() Sender { return nopSender{} }

func (nopSender) Send(context.Context, Message) error { return nil }

var layout = template.Must(template.New("notice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;background-color:#f4f7f2;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" style="padding:32px 0;">
    <tr><td align="center">
      <table width="520" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:32px;">
        <tr><td>
          <h1 style="color:#2f6b2f;font-size:22px;margin:0 0 16px 0;">Dixis</h1>
          <h2 style="color:#1f2937;font-size:18px;margin:0 0 16px 0;">{{.Title}}</h2>
          <p style="color:#374151;font-size:15px;line-height:1.6;margin:0 0 24px 0;">{{.Body}}</p>
          {{if .LinkURL}}<a href="{{.LinkURL}}" style="background-color:#2f6b2f;color:#ffffff;text-decoration:none;padding:12px 28px;border-radius:6px;font-weight:600;">{{.LinkLabel}}</a>{{end}}
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

// Render produces the HTML body for msg. Title and Body are escaped.
func Render(msg Message) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
