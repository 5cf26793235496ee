// Package output provides terminal output utilities for muxdash.
//
// Table rendering uses ASCII characters and ANSI color codes; color is
// suppressed when stdout is not a TTY or NO_COLOR is set.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
)

// ANSI color codes for event type display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if !IsColorEnabled() {
		return text
	}
	return color + text + colorReset
}

// RenderEventTable renders a table of events in append order.
func RenderEventTable(events []*eventlog.Event) string {
	if len(events) == 0 {
		return "No events.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-13s %-8s %-14s %s\n", "When", "Type", "Subject", "Detail"))
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteString("\n")

	for _, ev := range events {
		sb.WriteString(fmt.Sprintf("%-13s %s %-14s %s\n",
			FormatRelativeTime(ev.Time()),
			colorize(eventTypeColor(ev.Type), fmt.Sprintf("%-8s", ev.Type)),
			truncate(eventSubject(ev), 14),
			truncate(eventDetail(ev), 40)))
	}
	return sb.String()
}

// RenderEventLine renders a single event without a table header, for
// follow/tail output.
func RenderEventLine(ev *eventlog.Event) string {
	return fmt.Sprintf("%s %s %s %s\n",
		ev.Time().Format("15:04:05"),
		colorize(eventTypeColor(ev.Type), fmt.Sprintf("%-8s", ev.Type)),
		eventSubject(ev),
		eventDetail(ev))
}

// eventSubject picks the identifying column per event type.
func eventSubject(ev *eventlog.Event) string {
	switch ev.Type {
	case eventlog.TypeReady, eventlog.TypeError:
		return ev.Svc
	case eventlog.TypeResult:
		return ev.ID
	default:
		return ""
	}
}

// eventDetail summarizes the type-specific payload in one cell.
func eventDetail(ev *eventlog.Event) string {
	switch ev.Type {
	case eventlog.TypeReady:
		if ev.URL != "" {
			return ev.URL
		}
		if ev.Port != 0 {
			return fmt.Sprintf("port %d", ev.Port)
		}
		return ""
	case eventlog.TypeError:
		if ev.Exit != nil {
			return fmt.Sprintf("%s (exit %d)", ev.Msg, *ev.Exit)
		}
		return ev.Msg
	case eventlog.TypeResult:
		return ev.Action
	case eventlog.TypeReload:
		return fmt.Sprintf("+%d -%d ~%d", len(ev.Added), len(ev.Removed), len(ev.Changed))
	case eventlog.TypeStatus:
		return ev.Message
	default:
		return ""
	}
}

func eventTypeColor(typ string) string {
	switch typ {
	case eventlog.TypeReady:
		return colorGreen
	case eventlog.TypeError:
		return colorRed
	case eventlog.TypeResult:
		return colorYellow
	default:
		return colorGray
	}
}

// FormatRelativeTime renders a timestamp as a short "Ns/Nm/Nh ago" phrase.
// Session timescales are short, so the buckets stop at days.
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
