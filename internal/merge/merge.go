// Package merge folds an ordered stream of edit instructions onto a
// baseline artifact under deterministic conflict-resolution rules.
package merge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/artifact"
	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
)

// Input is one delta with the ordering and provenance of the message
// that carried it. Callers supply the full batch already sorted by
// (timestamp, message id); the engine validates and refuses to re-sort,
// since sort-key ties are caller-domain knowledge.
type Input struct {
	Delta     delta.Delta
	Agent     string
	Timestamp time.Time
	MessageID int64
}

// Warning codes.
const (
	WarnTargetNotFound = "target_not_found"
	WarnFieldConflict  = "field_conflict"
)

// Warning records a non-blocking per-delta outcome.
type Warning struct {
	Code    string        `json:"code"`
	Section delta.Section `json:"section,omitempty"`
	EntryID string        `json:"entry_id,omitempty"`
	Message string        `json:"message"`
}

// Result is the outcome of one merge run. OK is false only for
// structural failures (corrupt baseline, unsorted batch) that block
// producing any artifact; individual delta failures are skips.
type Result struct {
	OK       bool               `json:"ok"`
	Artifact *artifact.Artifact `json:"artifact,omitempty"`
	Applied  int                `json:"applied_count"`
	Skipped  int                `json:"skipped_count"`
	Warnings []Warning          `json:"warnings"`
	Errors   []string           `json:"errors,omitempty"`
}

// fieldWrite tracks who last wrote a field during this run, for
// conflict diagnostics.
type fieldWrite struct {
	agent string
	value string
}

// Merge applies ordered deltas onto a copy of baseline. Apart from the
// structural checks it never aborts: target-not-found deltas are
// skipped with a warning and the run continues, so callers always get
// a best-effort artifact plus a full account of what went wrong.
func Merge(baseline *artifact.Artifact, ordered []Input) Result {
	res := Result{Warnings: []Warning{}}

	if baseline == nil {
		res.Errors = append(res.Errors, "baseline artifact is nil")
		return res
	}
	if err := checkBaseline(baseline); err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	if err := checkOrdered(ordered); err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	out := baseline.Clone()
	counters := seedCounters(out)
	writes := map[string]fieldWrite{}
	updated := out.Metadata.UpdatedAt

	for _, in := range ordered {
		d := in.Delta
		switch {
		case d.Operation == delta.OpDelete:
			if !removeEntry(out, d.Section, d.TargetID) {
				res.Skipped++
				res.Warnings = append(res.Warnings, missingTarget(d))
				continue
			}
			res.Applied++

		case d.TargetID == "":
			createEntry(out, counters, in, writes)
			res.Applied++

		default:
			e := out.Find(d.Section, d.TargetID)
			if e == nil {
				res.Skipped++
				res.Warnings = append(res.Warnings, missingTarget(d))
				continue
			}
			res.Warnings = append(res.Warnings, editEntry(e, in, writes)...)
			res.Applied++
		}

		if in.Timestamp.After(updated) {
			updated = in.Timestamp
		}
	}

	out.Metadata.UpdatedAt = updated.UTC()
	out.Metadata.Version = baseline.Metadata.Version + 1
	out.Metadata.Status = artifact.StatusActive

	res.OK = true
	res.Artifact = out
	return res
}

// checkBaseline rejects structurally impossible input: duplicate entry
// ids already present within a section before the merge starts.
func checkBaseline(a *artifact.Artifact) error {
	for sec, entries := range a.Sections {
		seen := map[string]bool{}
		for _, e := range entries {
			if seen[e.ID] {
				return fmt.Errorf("corrupt baseline: duplicate entry id %q in section %s", e.ID, sec)
			}
			seen[e.ID] = true
		}
	}
	return nil
}

// checkOrdered fails loudly on an unsorted batch rather than silently
// re-sorting: strict (timestamp, message id) order is the single
// source of merge determinism.
func checkOrdered(ordered []Input) error {
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if cur.Timestamp.Before(prev.Timestamp) {
			return fmt.Errorf("unsorted batch: delta %d precedes delta %d in time", i, i-1)
		}
		if cur.Timestamp.Equal(prev.Timestamp) && cur.MessageID < prev.MessageID {
			return fmt.Errorf("unsorted batch: message id order violated at delta %d", i)
		}
	}
	return nil
}

// seedCounters derives the next id number per section from the highest
// numeric suffix already present, so minted ids never collide with or
// reuse baseline ids.
func seedCounters(a *artifact.Artifact) map[delta.Section]int {
	counters := map[delta.Section]int{}
	for sec, entries := range a.Sections {
		for _, e := range entries {
			if i := strings.LastIndex(e.ID, "-"); i >= 0 {
				if n, err := strconv.Atoi(e.ID[i+1:]); err == nil && n > counters[sec] {
					counters[sec] = n
				}
			}
		}
	}
	return counters
}

func mintID(counters map[delta.Section]int, sec delta.Section) string {
	schema, _ := delta.SchemaFor(sec)
	counters[sec]++
	return fmt.Sprintf("%s-%d", schema.Prefix, counters[sec])
}

func createEntry(a *artifact.Artifact, counters map[delta.Section]int, in Input, writes map[string]fieldWrite) {
	d := in.Delta
	e := artifact.Entry{
		ID:        mintID(counters, d.Section),
		Fields:    map[string]string{},
		Rationale: d.Rationale,
		Anchors:   append([]string(nil), d.Anchors...),
		Agent:     in.Agent,
		UpdatedAt: in.Timestamp.UTC(),
		Rev:       1,
	}
	for _, k := range sortedFields(d.Payload) {
		e.Fields[k] = d.Payload[k]
		writes[writeKey(d.Section, e.ID, k)] = fieldWrite{agent: in.Agent, value: d.Payload[k]}
	}
	a.Sections[d.Section] = append(a.Sections[d.Section], e)
}

// editEntry overwrites only the fields present in the payload (partial
// update). When a field written earlier in this run by a different
// agent gets a different value, that is recorded as an informational
// conflict warning; the later write wins. Fields are applied in sorted
// order so warning order is repeatable.
func editEntry(e *artifact.Entry, in Input, writes map[string]fieldWrite) []Warning {
	d := in.Delta
	var warnings []Warning
	for _, k := range sortedFields(d.Payload) {
		v := d.Payload[k]
		key := writeKey(d.Section, e.ID, k)
		if prev, ok := writes[key]; ok && prev.agent != in.Agent && prev.value != v {
			warnings = append(warnings, Warning{
				Code:    WarnFieldConflict,
				Section: d.Section,
				EntryID: e.ID,
				Message: fmt.Sprintf("field %q: %s wrote %q, %s wrote %q; later value wins",
					k, prev.agent, prev.value, in.Agent, v),
			})
		}
		e.Fields[k] = v
		writes[key] = fieldWrite{agent: in.Agent, value: v}
	}
	if d.Rationale != "" {
		e.Rationale = d.Rationale
	}
	if len(d.Anchors) > 0 {
		e.Anchors = append([]string(nil), d.Anchors...)
	}
	e.Agent = in.Agent
	e.UpdatedAt = in.Timestamp.UTC()
	e.Rev++
	return warnings
}

func removeEntry(a *artifact.Artifact, sec delta.Section, id string) bool {
	entries := a.Sections[sec]
	for i, e := range entries {
		if e.ID == id {
			a.Sections[sec] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

func missingTarget(d delta.Delta) Warning {
	return Warning{
		Code:    WarnTargetNotFound,
		Section: d.Section,
		EntryID: d.TargetID,
		Message: fmt.Sprintf("%s targets %q in section %s, which does not exist", d.Operation, d.TargetID, d.Section),
	}
}

func writeKey(sec delta.Section, id, field string) string {
	return string(sec) + "/" + id + "/" + field
}

func sortedFields(payload map[string]string) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
