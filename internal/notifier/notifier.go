package notifier

import "context"

// Notifier delivers formatted messages to the player.
type Notifier interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NoopNotifier drops every message. Used when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(string) error                                { return nil }
func (NoopNotifier) SendWithRetry(context.Context, string, int) error { return nil }
