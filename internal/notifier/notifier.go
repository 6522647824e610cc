package notifier

import (
	"context"

	"github.com/pfrederiksen/termin-watch/internal/criteria"
)

// Kind classifies a message so sinks can decide what to deliver
type Kind string

const (
	KindUrgent Kind = "urgent" // a new slot satisfied an urgency criterion
	KindDaily  Kind = "daily"  // once-a-day summary of known slots
	KindStatus Kind = "status" // service started, stopped or crashed
)

// Message is a notification ready for delivery.
// Text uses Telegram's legacy Markdown.
type Message struct {
	Kind  Kind
	Text  string
	Match *criteria.Match // set for KindUrgent
}

// Notifier defines the interface for delivering notifications
type Notifier interface {
	// Notify delivers the message. Delivery is best-effort; the error
	// reports what failed and is never retried by callers.
	Notify(ctx context.Context, msg Message) error
}
