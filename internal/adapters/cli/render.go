// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"time"

	"github.com/fatih/color"
)

const timeLayout = "2006-01-02 15:04"

func statusLabel(status string) string {
	switch status {
	case "pending":
		return color.New(color.FgYellow).Sprint(status)
	case "in_progress":
		return color.New(color.FgHiBlue).Sprint(status)
	case "completed":
		return color.New(color.FgHiGreen).Sprint(status)
	default:
		return status
	}
}

func kindLabel(kind string) string {
	switch kind {
	case "assign":
		return color.New(color.FgCyan).Sprint(kind)
	case "unassign":
		return color.New(color.FgMagenta).Sprint(kind)
	case "completion":
		return color.New(color.FgGreen).Sprint(kind)
	default:
		return kind
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func check() string {
	return color.New(color.FgGreen).Sprint("✓")
}
