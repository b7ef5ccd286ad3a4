package notify

import (
	"context"
	"fmt"

	"travel-guardian-backend/pkg/logger"
)

// EmailSender delivers one rendered email. Implementations wrap whatever
// mail infrastructure the deployment has (SMTP relay, SES, a queue).
type EmailSender interface {
	SendMail(ctx context.Context, userID, subject, body string) error
}

// EmailChannel renders alert payloads as plain-text mail.
type EmailChannel struct {
	sender EmailSender
	log    logger.Logger
}

func NewEmailChannel(sender EmailSender, log logger.Logger) *EmailChannel {
	return &EmailChannel{sender: sender, log: log}
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, p Payload) error {
	body := p.Message
	if p.CTALabel != "" && p.CTAUrl != "" {
		body = fmt.Sprintf("%s\n\n%s: %s", p.Message, p.CTALabel, p.CTAUrl)
	}
	if err := c.sender.SendMail(ctx, p.UserID, p.Title, body); err != nil {
		return fmt.Errorf("email delivery failed: %w", err)
	}
	return nil
}
