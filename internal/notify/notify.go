// Package notify pushes finished reports through chat-bot, email and
// desktop channels. Notification failures are logged and never abort
// report generation or persistence.
package notify

import (
	"context"
	"log"
)

// Notifier delivers a report summary through one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, title, content string) error
}

// Dispatch sends through every notifier, collecting per-channel results.
// Errors are logged, not returned: no channel failure may propagate.
func Dispatch(ctx context.Context, notifiers []Notifier, title, content string) map[string]bool {
	results := make(map[string]bool, len(notifiers))
	for _, n := range notifiers {
		if err := n.Send(ctx, title, content); err != nil {
			log.Printf("notification via %s failed: %v", n.Name(), err)
			results[n.Name()] = false
			continue
		}
		results[n.Name()] = true
	}
	return results
}
