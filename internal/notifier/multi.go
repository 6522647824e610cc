package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/pfrederiksen/termin-watch/internal/logger"
)

// Multi delivers every message to all of its sinks
type Multi []Notifier

// Notify sends msg to each sink in order. A failing sink is logged and
// does not stop the others; all failures are returned joined.
func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for i, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			logger.Error("Notification sink failed", logger.Fields{
				"sink":  fmt.Sprintf("%T", n),
				"kind":  string(msg.Kind),
				"index": i,
			}, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
