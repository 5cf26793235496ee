package eventlog

import "time"

// Event type tags. Every line in the log carries exactly one of these.
const (
	TypeReady  = "ready"
	TypeError  = "error"
	TypeResult = "result"
	TypeReload = "reload"
	TypeStatus = "status"
)

// Result actions. The most recently appended result event for an interaction
// ID is authoritative; terminal actions are final.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
	ActionCancel  = "cancel"
	ActionTimeout = "timeout"
)

// Event is one immutable record in a session's event log. It is a flat union
// of all variant fields; Type decides which fields are meaningful. Unknown
// fields on the wire are ignored, absent fields are omitted, so independently
// deployed producers and consumers can disagree about minor fields without
// breaking each other.
type Event struct {
	Ts   int64  `json:"ts"` // epoch milliseconds
	Type string `json:"type"`

	// ready / error
	Svc  string `json:"svc,omitempty"`
	Port int    `json:"port,omitempty"`
	URL  string `json:"url,omitempty"`
	Msg  string `json:"msg,omitempty"`
	Exit *int   `json:"exit,omitempty"`

	// result
	ID      string         `json:"id,omitempty"`
	Action  string         `json:"action,omitempty"`
	Answers map[string]any `json:"answers,omitempty"`
	Result  any            `json:"result,omitempty"`

	// reload
	Added             []string `json:"added,omitempty"`
	Removed           []string `json:"removed,omitempty"`
	Changed           []string `json:"changed,omitempty"`
	DashboardReloaded bool     `json:"dashboardReloaded,omitempty"`

	// status
	Message string   `json:"message,omitempty"`
	Prompts []string `json:"prompts,omitempty"`
}

// Now returns the current time as epoch milliseconds, the log's timestamp
// unit.
func Now() int64 {
	return time.Now().UnixMilli()
}

// Time returns the event timestamp as a time.Time.
func (e *Event) Time() time.Time {
	return time.UnixMilli(e.Ts)
}

// IsTerminal reports whether a result event's action ends its interaction.
// All four defined actions are terminal; an empty or unknown action is not.
func IsTerminal(action string) bool {
	switch action {
	case ActionAccept, ActionDecline, ActionCancel, ActionTimeout:
		return true
	}
	return false
}
