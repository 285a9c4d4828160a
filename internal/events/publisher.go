package events

import "time"

// Event describes a moderation state change. Role dashboards subscribe to
// refresh their lists in place instead of reloading.
type Event struct {
	Type      string `json:"type"`       // flagged, unflagged, hidden, unhidden, muted, unmuted
	Entity    string `json:"entity"`     // question, answer, review, staff_message, student_message, reviewer_message, user
	EntityID  string `json:"entity_id"`  // row id, or username for user events
	Actor     string `json:"actor"`      // who performed the action
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Publisher fans moderation events out to subscribed dashboards.
type Publisher interface {
	Publish(event Event) error
	Close() error
}

// Now is the timestamp format events carry on the wire.
func Now() string {
	return time.Now().Format(time.RFC3339)
}
