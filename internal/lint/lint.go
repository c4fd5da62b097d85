// Package lint evaluates a finalized artifact against a fixed rule
// set, producing a severity-bucketed report. Linting looks only at the
// artifact's current state, never at its history, so a report can be
// re-run on any snapshot without re-deriving deltas.
package lint

import (
	"github.com/nikolaef43/brenner-bot-sub013/internal/artifact"
	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
)

// Severity buckets.
const (
	SevError   = "error"
	SevWarning = "warning"
	SevInfo    = "info"
)

// Issue is one finding, tagged with the offending section/entry where
// applicable.
type Issue struct {
	Severity string        `json:"severity"`
	Section  delta.Section `json:"section,omitempty"`
	EntryID  string        `json:"entry_id,omitempty"`
	Message  string        `json:"message"`
}

// Summary tallies issues by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Report is the lint outcome. Valid is true when no error-severity
// issue was emitted. Lint issues describe the artifact's quality; they
// are the subsystem's output, never its failure.
type Report struct {
	Valid   bool    `json:"valid"`
	Summary Summary `json:"summary"`
	Issues  []Issue `json:"issues"`
}

// rule inspects the artifact and emits zero or more issues. Rules are
// side-effect-free and must not mutate the artifact.
type rule func(a *artifact.Artifact) []Issue

// rules is the fixed, ordered rule list.
var rules = []rule{
	requiredSectionsNonEmpty,
	anchorFormat,
	duplicateStatements,
	editedWithoutRationale,
	staleEntries,
}

// Lint runs every rule against the artifact and tallies the results.
func Lint(a *artifact.Artifact) Report {
	rep := Report{Issues: []Issue{}}
	for _, r := range rules {
		rep.Issues = append(rep.Issues, r(a)...)
	}
	for _, is := range rep.Issues {
		switch is.Severity {
		case SevError:
			rep.Summary.Errors++
		case SevWarning:
			rep.Summary.Warnings++
		case SevInfo:
			rep.Summary.Info++
		}
	}
	rep.Valid = rep.Summary.Errors == 0
	return rep
}
