package notify

import (
	"context"
	"fmt"
	"log"

	"peakform/coaching-app/internal/domain"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier sends transactional mail via the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
}

// NewResendNotifier creates a sender with the given API key and from address.
func NewResendNotifier(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// SendWelcome sends the post-onboarding welcome email.
func (n *ResendNotifier) SendWelcome(ctx context.Context, email, name string, cycle domain.CycleName) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{email},
		Subject: "Welcome to PeakForm: your plan is ready",
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your onboarding is complete and your roadmap is live. "+
				"You are starting in the <strong>%s</strong> cycle. Your first week of training is waiting on your dashboard.</p>",
			name, cycle),
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	log.Printf("Welcome email sent to %s (message %s)", email, sent.Id)
	return nil
}
