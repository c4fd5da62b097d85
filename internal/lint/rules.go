package lint

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/artifact"
	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
)

// requiredSections must hold at least one entry in a finalized artifact.
var requiredSections = []delta.Section{
	delta.SectionResearchThread,
	delta.SectionHypothesis,
}

// anchorRe is the citation token format: msg:<id> or msg:<id>-<id>
// referencing a span of the source transcript.
var anchorRe = regexp.MustCompile(`^msg:\d+(-\d+)?$`)

// staleAfter is how far an entry may lag behind the artifact's own
// updated_at before it is flagged as stale.
const staleAfter = 14 * 24 * time.Hour

func requiredSectionsNonEmpty(a *artifact.Artifact) []Issue {
	var issues []Issue
	for _, sec := range requiredSections {
		if len(a.Sections[sec]) == 0 {
			issues = append(issues, Issue{
				Severity: SevError,
				Section:  sec,
				Message:  fmt.Sprintf("required section %s is empty", sec),
			})
		}
	}
	return issues
}

func anchorFormat(a *artifact.Artifact) []Issue {
	var issues []Issue
	eachEntry(a, func(sec delta.Section, e artifact.Entry) {
		for _, anchor := range e.Anchors {
			if !anchorRe.MatchString(anchor) {
				issues = append(issues, Issue{
					Severity: SevWarning,
					Section:  sec,
					EntryID:  e.ID,
					Message:  fmt.Sprintf("anchor %q does not match msg:<id>[-<id>]", anchor),
				})
			}
		}
	})
	return issues
}

// duplicateStatements flags entries within a section whose primary
// field matches an earlier entry after whitespace/case normalization.
func duplicateStatements(a *artifact.Artifact) []Issue {
	var issues []Issue
	for _, sec := range delta.Sections() {
		schema, _ := delta.SchemaFor(sec)
		seen := map[string]string{}
		for _, e := range a.Sections[sec] {
			key := normalize(e.Fields[schema.PrimaryField()])
			if key == "" {
				continue
			}
			if first, dup := seen[key]; dup {
				issues = append(issues, Issue{
					Severity: SevWarning,
					Section:  sec,
					EntryID:  e.ID,
					Message:  fmt.Sprintf("duplicates the %s of %s", schema.PrimaryField(), first),
				})
				continue
			}
			seen[key] = e.ID
		}
	}
	return issues
}

// editedWithoutRationale flags entries that have been revised after
// creation without any recorded rationale.
func editedWithoutRationale(a *artifact.Artifact) []Issue {
	var issues []Issue
	eachEntry(a, func(sec delta.Section, e artifact.Entry) {
		if e.Rev > 1 && e.Rationale == "" {
			issues = append(issues, Issue{
				Severity: SevWarning,
				Section:  sec,
				EntryID:  e.ID,
				Message:  fmt.Sprintf("revised %d times without a rationale", e.Rev-1),
			})
		}
	})
	return issues
}

// staleEntries flags entries that lag far behind metadata.updated_at.
// The comparison is internal to the artifact value, keeping the rule
// repeatable regardless of when it runs.
func staleEntries(a *artifact.Artifact) []Issue {
	var issues []Issue
	cutoff := a.Metadata.UpdatedAt.Add(-staleAfter)
	eachEntry(a, func(sec delta.Section, e artifact.Entry) {
		if !e.UpdatedAt.IsZero() && e.UpdatedAt.Before(cutoff) {
			issues = append(issues, Issue{
				Severity: SevInfo,
				Section:  sec,
				EntryID:  e.ID,
				Message:  fmt.Sprintf("not touched since %s", e.UpdatedAt.UTC().Format(time.RFC3339)),
			})
		}
	})
	return issues
}

// eachEntry visits entries in canonical section order, then append
// order, so issue order is deterministic.
func eachEntry(a *artifact.Artifact, fn func(sec delta.Section, e artifact.Entry)) {
	for _, sec := range delta.Sections() {
		for _, e := range a.Sections[sec] {
			fn(sec, e)
		}
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
