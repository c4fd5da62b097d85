// Package models defines the domain types shared across the brenner-bot
// compile subsystem.
package models

import (
	"sort"
	"time"
)

// Message is one entry in a thread's history as supplied by the mailbox
// transport. Messages are immutable once observed; everything the
// subsystem derives from them (deltas, artifacts, statuses) is
// recomputed per request.
type Message struct {
	ID          int64     `json:"id"`
	ThreadID    string    `json:"thread_id"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body,omitempty"`
	From        string    `json:"from,omitempty"`
	Recipients  []string  `json:"recipients,omitempty"`
	AckRequired bool      `json:"ack_required,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Before reports whether m orders strictly before other in the canonical
// thread order: ascending created_at, with the lower message id winning
// a timestamp tie. The tie-break is deterministic, not meaningful.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// SortMessages orders messages in place by (created_at, id).
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Before(msgs[j])
	})
}
