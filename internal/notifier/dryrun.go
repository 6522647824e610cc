package notifier

import (
	"context"
	"fmt"
	"io"
)

// DryRunNotifier prints what would be sent without actually sending
type DryRunNotifier struct {
	out   io.Writer
	count int
}

// NewDryRunNotifier creates a new dry-run notifier writing to out
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Notify prints the message that would be sent
func (n *DryRunNotifier) Notify(ctx context.Context, msg Message) error {
	n.count++
	fmt.Fprintf(n.out, "--- Message %d (%s) ---\n", n.count, msg.Kind)
	fmt.Fprintln(n.out, msg.Text)
	fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", len(msg.Text))
	return nil
}
