package notify

import (
	"context"

	"github.com/gen2brain/beeep"

	"github.com/mbellini/effwatch/internal/domain"
)

// DesktopNotifier raises a local desktop notification when a report is
// ready. Content is a short summary, not the full report.
type DesktopNotifier struct{}

// NewDesktopNotifier creates a desktop notifier.
func NewDesktopNotifier() *DesktopNotifier {
	beeep.AppName = "effwatch"
	return &DesktopNotifier{}
}

func (n *DesktopNotifier) Name() string { return "desktop" }

func (n *DesktopNotifier) Send(_ context.Context, title, content string) error {
	if len(content) > 200 {
		content = content[:200]
	}
	if err := beeep.Notify(title, content, ""); err != nil {
		return &domain.NotifyError{Channel: n.Name(), Err: err}
	}
	return nil
}
