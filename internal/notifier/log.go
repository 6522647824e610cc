package notifier

import (
	"context"

	"github.com/pfrederiksen/termin-watch/internal/logger"
)

// LogNotifier only logs messages. It stands in when no messaging
// credentials are configured so the monitor keeps running.
type LogNotifier struct{}

// Notify logs the message at warning level
func (LogNotifier) Notify(ctx context.Context, msg Message) error {
	logger.Warn("No notification sink configured, message not delivered", logger.Fields{
		"kind": string(msg.Kind),
		"text": msg.Text,
	})
	return nil
}
