// Package notify delivers report status emails.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/bwise1/reportnow/internal/model"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrMissingAPIKey = errors.New("RESEND_API_KEY is missing")

// Email is a single outgoing message.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender hands an email to a transactional provider.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// ResendSender sends through the Resend API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &ResendSender{client: resend.NewClient(apiKey)}, nil
}

func (s *ResendSender) Send(ctx context.Context, email Email) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return errors.Wrap(err, "resend send")
	}
	return nil
}

// StatusUpdateEmail renders the message sent when a report changes status.
func StatusUpdateEmail(from string, report model.Report) (Email, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "status_update", report); err != nil {
		return Email{}, fmt.Errorf("failed to render status update email template: %w", err)
	}

	return Email{
		From:    from,
		To:      report.Email,
		Subject: "Report Status Update: " + report.Title,
		HTML:    buf.String(),
	}, nil
}
