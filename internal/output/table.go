// Package output provides terminal output utilities for idlereap's
// observability commands.
//
// Table rendering uses ASCII characters and ANSI color codes; color is
// gated on stdout being a TTY and NO_COLOR being unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/driftworks/idlereap/internal/store"
)

// ANSI color codes for outcome display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is
// not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is
// enabled, otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderEventTable renders recent activity events, newest first.
func RenderEventTable(events []store.ActivityEvent) string {
	if len(events) == 0 {
		return "No activity recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-21s %-8s %s\n", "Observed", "Event", "Path"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, ev := range events {
		sb.WriteString(fmt.Sprintf("%-21s %-8s %s\n",
			ev.ObservedAt.Local().Format("2006-01-02 15:04:05"),
			ev.Op,
			truncate(ev.Path, 48)))
	}

	return sb.String()
}

// RenderActionSummary renders the last action log entry as a single
// line, or an idle note when no action has fired yet.
func RenderActionSummary(rec *store.ActionRecord) string {
	if rec == nil {
		return "No self-destruct attempt recorded.\n"
	}

	label := rec.Outcome
	switch rec.Outcome {
	case "destroyed":
		label = colorize(colorGreen, label)
	case "aborted":
		label = colorize(colorYellow, label)
	case "failed":
		label = colorize(colorRed, label)
	}

	line := fmt.Sprintf("Last action: %s at %s", label,
		rec.OccurredAt.Local().Format("2006-01-02 15:04:05"))
	if rec.DropletID != "" {
		line += fmt.Sprintf(" (droplet %s)", rec.DropletID)
	}
	if rec.Detail != "" {
		line += fmt.Sprintf(": %s", rec.Detail)
	}
	return line + "\n"
}

// FormatRelativeTime renders a timestamp as a coarse age ("3m ago").
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncate shortens s to max runes, appending "…" when cut.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return s[:max-1] + "…"
}
