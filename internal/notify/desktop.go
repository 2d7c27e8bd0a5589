package notify

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// DesktopNotifier delivers notifications through the desktop
// environment's notification daemon via notify-send.
type DesktopNotifier struct {
	log *zap.Logger

	// sendPath is the resolved notify-send binary, set by Setup.
	sendPath string
}

// NewDesktopNotifier creates a desktop notifier.
func NewDesktopNotifier(log *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{log: log}
}

// Setup resolves the notification command. A desktop without a
// notification daemon is the platform refusing delivery, so the
// missing binary maps to ErrPermissionDenied.
func (d *DesktopNotifier) Setup(ctx context.Context) error {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return fmt.Errorf("locating notify-send: %w", ErrPermissionDenied)
	}
	d.sendPath = path
	return nil
}

// Deliver shows the notification. The category's actions cannot be
// rendered as buttons by notify-send, so they are appended as a hint
// line; responses arrive through the respond command either way.
func (d *DesktopNotifier) Deliver(ctx context.Context, n Notification) error {
	if d.sendPath == "" {
		return fmt.Errorf("notifier not set up: %w", ErrPermissionDenied)
	}

	body := n.Body
	for _, a := range n.Actions {
		body += fmt.Sprintf("\n[%s] %s", a.ID, a.Title)
	}

	cmd := exec.CommandContext(ctx, d.sendPath,
		"--app-name", "taskdue",
		"--category", n.Category,
		n.Title, body,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("delivering notification %s: %w", n.ID, err)
	}

	d.log.Debug("notification delivered",
		zap.String("id", n.ID),
		zap.String("title", n.Title),
	)
	return nil
}
