package notify

import (
	"context"
	"fmt"

	"travel-guardian-backend/pkg/logger"
)

// SMSSender delivers one short message to a user.
type SMSSender interface {
	SendSMS(ctx context.Context, userID, text string) error
}

// SMSChannel condenses alert payloads to a single line. SMS is reserved for
// critical alerts by the channel routing, so the text leads with the title.
type SMSChannel struct {
	sender SMSSender
	log    logger.Logger
}

func NewSMSChannel(sender SMSSender, log logger.Logger) *SMSChannel {
	return &SMSChannel{sender: sender, log: log}
}

func (c *SMSChannel) Name() string { return ChannelSMS }

func (c *SMSChannel) Send(ctx context.Context, p Payload) error {
	text := p.Title
	if p.Message != "" {
		text = fmt.Sprintf("%s %s", p.Title, p.Message)
	}
	if len(text) > 160 {
		text = text[:157] + "..."
	}
	if err := c.sender.SendSMS(ctx, p.UserID, text); err != nil {
		return fmt.Errorf("sms delivery failed: %w", err)
	}
	return nil
}
