// Package artifact models the shared research document compiled from a
// thread's history, and its canonical markdown rendering.
package artifact

import (
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
)

// Artifact statuses.
const (
	StatusDraft  = "draft"
	StatusActive = "active"
)

// Metadata carries the artifact's compile bookkeeping. Version goes up
// by exactly 1 per compile cycle; UpdatedAt is monotonically
// non-decreasing across compiles of the same thread.
type Metadata struct {
	ThreadID  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
	Status    string    `json:"status"`
}

// Entry is one statement in a section. The ID is stable: assigned at
// creation and never reused. Agent/UpdatedAt record the provenance of
// the delta that last touched the entry; Rev counts applied edits.
type Entry struct {
	ID        string            `json:"id"`
	Fields    map[string]string `json:"fields"`
	Rationale string            `json:"rationale,omitempty"`
	Anchors   []string          `json:"anchors,omitempty"`
	Agent     string            `json:"agent,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
	Rev       int               `json:"rev"`
}

// Artifact is the shared document: metadata plus per-section entry
// lists in append order.
type Artifact struct {
	Metadata Metadata                      `json:"metadata"`
	Sections map[delta.Section][]Entry `json:"sections"`
}

// New returns an empty draft artifact for a thread.
func New(threadID string, now time.Time) *Artifact {
	return &Artifact{
		Metadata: Metadata{
			ThreadID:  threadID,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
			Version:   0,
			Status:    StatusDraft,
		},
		Sections: map[delta.Section][]Entry{},
	}
}

// Clone returns a deep copy. Merge runs mutate only their own copy, so
// callers can hand the same baseline to repeated or concurrent runs.
func (a *Artifact) Clone() *Artifact {
	out := &Artifact{
		Metadata: a.Metadata,
		Sections: make(map[delta.Section][]Entry, len(a.Sections)),
	}
	for sec, entries := range a.Sections {
		cp := make([]Entry, len(entries))
		for i, e := range entries {
			cp[i] = e.clone()
		}
		out.Sections[sec] = cp
	}
	return out
}

func (e Entry) clone() Entry {
	out := e
	out.Fields = make(map[string]string, len(e.Fields))
	for k, v := range e.Fields {
		out.Fields[k] = v
	}
	if e.Anchors != nil {
		out.Anchors = append([]string(nil), e.Anchors...)
	}
	return out
}

// Find returns a pointer into the section's entry list for the entry
// with the given id, or nil when absent.
func (a *Artifact) Find(sec delta.Section, id string) *Entry {
	entries := a.Sections[sec]
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}
