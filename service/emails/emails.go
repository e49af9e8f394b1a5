package emails

import (
	"context"
	"fmt"

	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/service/logger"
	"github.com/minters-xyz/go-minters/service/persist"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const senderName = "Team Minters"

// Sender sends transactional email. When the email credentials are missing
// the sender is unconfigured and callers mock success instead of failing.
type Sender struct {
	client *sendgrid.Client
	from   string
}

// NewSender creates a sender from the environment-held credentials
func NewSender() *Sender {
	apiKey := env.GetString("SENDGRID_API_KEY")
	from := env.GetString("SENDER_EMAIL")

	s := &Sender{from: from}
	if apiKey != "" && from != "" {
		s.client = sendgrid.NewSendClient(apiKey)
	}

	return s
}

// Configured reports whether the email collaborator can actually be reached
func (s *Sender) Configured() bool {
	return s.client != nil
}

// Send delivers one HTML email to the given recipients
func (s *Sender) Send(ctx context.Context, recipients []string, subject, htmlContent string) error {
	if !s.Configured() {
		return fmt.Errorf("SENDGRID_API_KEY or SENDER_EMAIL is missing")
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(senderName, s.from))
	m.Subject = subject

	p := mail.NewPersonalization()
	for _, recipient := range recipients {
		p.AddTos(mail.NewEmail("", recipient))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", htmlContent))

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("email service returned status %d: %s", resp.StatusCode, resp.Body)
	}

	logger.For(ctx).Infof("sent %q to %d recipient(s)", subject, len(recipients))

	return nil
}

// SendDisputeNotification emails the owner of a disputed asset. The dispute
// is considered raised whether or not this delivery succeeds.
func (s *Sender) SendDisputeNotification(ctx context.Context, recipient persist.Email, dispute persist.Dispute) error {
	appURL := env.GetString("APP_URL")
	disputeURL := fmt.Sprintf("%s/disputes/%s", appURL, dispute.DisputeID)

	subject := fmt.Sprintf("Action Required: Dispute Raised Against Your IP %s", dispute.TargetIPID)
	html := fmt.Sprintf(`
		<h1>Dispute Notification</h1>
		<p>A dispute has been raised against your IP Asset <strong>%s</strong>.</p>
		<p><strong>Reason:</strong> %s</p>
		<p><strong>Evidence:</strong> %s</p>
		<p><strong>Dispute ID:</strong> %s</p>
		<p>Please review the dispute details immediately.</p>
		<a href="%s" style="background-color: #ef4444; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Dispute</a>`,
		dispute.TargetIPID, dispute.TargetTag, dispute.Evidence, dispute.DisputeID, disputeURL)

	return s.Send(ctx, []string{recipient.String()}, subject, html)
}
