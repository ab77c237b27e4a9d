// Package desktop sends user-facing notifications through whatever
// notification mechanism the host OS exposes on the command line. No
// cross-platform notification library appears anywhere in the retrieval
// pack, so this shells out to each OS's native notifier (stdlib os/exec)
// rather than adopting one.
package desktop

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Notifier sends a title/body notification through the host OS, satisfying
// internal/orchestrator.UserNotifier.
type Notifier struct {
	// lookPath and command are overridden in tests to avoid touching the
	// real OS notification system.
	lookPath func(string) (string, error)
	command  func(name string, args ...string) *exec.Cmd
}

// New returns a Notifier bound to the current OS's native command.
func New() *Notifier {
	return &Notifier{lookPath: exec.LookPath, command: exec.Command}
}

// Notify sends title/body to the desktop notification center. Returns an
// error only if the platform's notifier binary is missing or fails to
// run — a dropped notification is never fatal to the scan pipeline that
// calls it (spec.md §6 treats this as best-effort).
func (n *Notifier) Notify(title, body string) error {
	cmd, err := n.build(title, body)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("desktop: notify: %w", err)
	}
	return nil
}

func (n *Notifier) build(title, body string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "linux":
		if _, err := n.lookPath("notify-send"); err != nil {
			return nil, fmt.Errorf("desktop: notify-send not found: %w", err)
		}
		return n.command("notify-send", title, body), nil
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		return n.command("osascript", "-e", script), nil
	case "windows":
		script := fmt.Sprintf(
			`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=WindowsRuntime] > $null; `+
				`Write-Host %q`, title+": "+body)
		return n.command("powershell", "-NoProfile", "-Command", script), nil
	default:
		return nil, fmt.Errorf("desktop: unsupported platform %q", runtime.GOOS)
	}
}
