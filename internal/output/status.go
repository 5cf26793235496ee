package output

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SessionStatus is the data behind `muxdash status` for one session.
type SessionStatus struct {
	Session        string
	HeartbeatAge   time.Duration // negative when no heartbeat file exists
	HeartbeatFresh bool
	EventCounts    map[string]int
	Pending        []string          // interaction IDs awaiting a terminal result
	Terminal       map[string]string // interaction ID -> final action
}

// RenderStatus renders the one-screen session summary.
func RenderStatus(st *SessionStatus) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Session: %s\n", st.Session))

	switch {
	case st.HeartbeatAge < 0:
		sb.WriteString("Heartbeat: " + colorize(colorGray, "none") + "\n")
	case st.HeartbeatFresh:
		sb.WriteString(fmt.Sprintf("Heartbeat: %s (touched %s)\n",
			colorize(colorGreen, "alive"), FormatRelativeTime(time.Now().Add(-st.HeartbeatAge))))
	default:
		sb.WriteString(fmt.Sprintf("Heartbeat: %s (touched %s)\n",
			colorize(colorRed, "stale"), FormatRelativeTime(time.Now().Add(-st.HeartbeatAge))))
	}

	total := 0
	types := make([]string, 0, len(st.EventCounts))
	for typ, n := range st.EventCounts {
		total += n
		types = append(types, typ)
	}
	sort.Strings(types)
	sb.WriteString(fmt.Sprintf("Events: %d", total))
	if total > 0 {
		var parts []string
		for _, typ := range types {
			parts = append(parts, fmt.Sprintf("%s %d", typ, st.EventCounts[typ]))
		}
		sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	sb.WriteString("\n")

	if len(st.Pending) > 0 {
		sb.WriteString(fmt.Sprintf("Pending interactions: %s\n", strings.Join(st.Pending, ", ")))
	}
	if len(st.Terminal) > 0 {
		ids := make([]string, 0, len(st.Terminal))
		for id := range st.Terminal {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		var parts []string
		for _, id := range ids {
			parts = append(parts, fmt.Sprintf("%s=%s", id, st.Terminal[id]))
		}
		sb.WriteString(fmt.Sprintf("Completed interactions: %s\n", strings.Join(parts, ", ")))
	}
	return sb.String()
}
