package notify

import "context"

// Error kinds reported by senders
const (
	ErrKindNotConfigured    = "not_configured"
	ErrKindInvalidRecipient = "invalid_recipient"
	ErrKindProvider         = "provider_error"
	ErrKindNetwork          = "network_error"
)

// SendResult is the typed outcome of a send attempt. Senders never return
// errors; failures are reported here and the caller decides whether to
// surface them.
type SendResult struct {
	Success           bool   `json:"success"`
	ProviderMessageID string `json:"providerMessageId,omitempty"`
	ErrorKind         string `json:"errorKind,omitempty"`
	Detail            string `json:"detail,omitempty"`
}

// Sender delivers a rendered message over one channel
type Sender interface {
	Channel() string
	Send(ctx context.Context, message string, recipients []string) SendResult
}

// NullSender stands in for a channel whose provider credentials are absent.
// Selected explicitly at startup, never by caught-exception fallback.
type NullSender struct {
	channel string
}

// NewNullSender creates a NullSender for the named channel
func NewNullSender(channel string) *NullSender {
	return &NullSender{channel: channel}
}

// Channel returns the channel name
func (s *NullSender) Channel() string { return s.channel }

// Send always reports the channel as not configured
func (s *NullSender) Send(ctx context.Context, message string, recipients []string) SendResult {
	return SendResult{
		Success:   false,
		ErrorKind: ErrKindNotConfigured,
		Detail:    s.channel + " sender is not configured",
	}
}
