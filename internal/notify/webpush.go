package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"travel-guardian-backend/internal/store"
	"travel-guardian-backend/pkg/logger"
)

// PushSender defines the interface for sending a web push notification.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// libSender is the real implementation backed by the webpush library.
type libSender struct{}

func (s *libSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WebPushChannel delivers payloads to every push subscription of the target
// user. Gone subscriptions (410) are deleted on sight.
type WebPushChannel struct {
	store   store.Store
	options *webpush.Options
	sender  PushSender
	log     logger.Logger
}

func NewWebPushChannel(s store.Store, options *webpush.Options, log logger.Logger) *WebPushChannel {
	return &WebPushChannel{
		store:   s,
		options: options,
		sender:  &libSender{},
		log:     log,
	}
}

// WithSender swaps the underlying sender, for tests.
func (c *WebPushChannel) WithSender(sender PushSender) *WebPushChannel {
	c.sender = sender
	return c
}

func (c *WebPushChannel) Name() string { return ChannelWebPush }

func (c *WebPushChannel) Send(ctx context.Context, p Payload) error {
	subs, err := c.store.SubscriptionsForUser(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"title":    p.Title,
		"message":  p.Message,
		"type":     string(p.Type),
		"severity": string(p.Severity),
		"ctaLabel": p.CTALabel,
		"ctaUrl":   p.CTAUrl,
	})
	if err != nil {
		return err
	}

	var lastErr error
	for _, sub := range subs {
		wpSub := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256DH,
				Auth:   sub.Auth,
			},
		}

		resp, err := c.sender.Send(body, wpSub, c.options)
		if err != nil {
			c.log.Warn("web push send failed", "endpoint", sub.Endpoint, "error", err)
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusGone {
			c.log.Info("deleting expired push subscription", "endpoint", sub.Endpoint)
			if err := c.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
				c.log.Error("failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
			}
		}
	}
	return lastErr
}
