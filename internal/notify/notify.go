// Package notify fans persisted alerts out to delivery channels. Delivery is
// best-effort: a channel failure is logged and counted but never fails the
// monitoring cycle that produced the alert.
package notify

import (
	"context"

	"travel-guardian-backend/internal/model"
)

// Payload is the channel-independent notification body built from an alert.
type Payload struct {
	UserID   string
	Type     model.AlertType
	Severity model.AlertSeverity
	Title    string
	Message  string
	CTALabel string
	CTAUrl   string
}

// Channel delivers one payload to one medium.
type Channel interface {
	Name() string
	Send(ctx context.Context, p Payload) error
}

// Dispatcher accepts payloads for asynchronous delivery.
type Dispatcher interface {
	Dispatch(p Payload)
}

// ChannelsFor selects the channel names for a payload by severity. Critical
// alerts escalate to every configured channel; everything else stays on push.
func ChannelsFor(severity model.AlertSeverity) []string {
	switch severity {
	case model.SeverityCritical:
		return []string{ChannelWebPush, ChannelEmail, ChannelSMS}
	case model.SeverityWarning, model.SeverityMoney:
		return []string{ChannelWebPush, ChannelEmail}
	default:
		return []string{ChannelWebPush}
	}
}

const (
	ChannelWebPush = "webpush"
	ChannelEmail   = "email"
	ChannelSMS     = "sms"
)
