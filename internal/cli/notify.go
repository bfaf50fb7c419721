package cli

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/creassist/internal/notify"
)

// printNotification renders a notification on stderr so it never mixes
// with command output.
func printNotification(n notify.Notification) {
	fmt.Fprintln(os.Stderr, renderNotification(defaultTheme, n))
}

func renderNotification(t Theme, n notify.Notification) string {
	switch n.Level {
	case notify.Success:
		return t.completedStyle().Render("✓ " + n.Text)
	case notify.Warning:
		return t.warningStyle().Render("! " + n.Text)
	case notify.Error:
		return t.errorStyle().Render("✗ " + n.Text)
	default:
		return t.statusStyle().Render("• " + n.Text)
	}
}
