package lint

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/artifact"
	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// healthy returns an artifact that passes every rule.
func healthy() *artifact.Artifact {
	a := artifact.New("exp-001", t0)
	a.Metadata.UpdatedAt = t0
	a.Sections[delta.SectionResearchThread] = []artifact.Entry{
		{ID: "rt-1", Fields: map[string]string{"statement": "Does caching help?"}, UpdatedAt: t0, Rev: 1},
	}
	a.Sections[delta.SectionHypothesis] = []artifact.Entry{
		{ID: "hyp-1", Fields: map[string]string{"statement": "Caching halves latency"}, Anchors: []string{"msg:12"}, UpdatedAt: t0, Rev: 1},
	}
	return a
}

func TestLint_HealthyArtifact(t *testing.T) {
	rep := Lint(healthy())
	if !rep.Valid {
		t.Fatalf("healthy artifact invalid: %+v", rep.Issues)
	}
	if len(rep.Issues) != 0 {
		t.Errorf("issues = %+v", rep.Issues)
	}
}

func TestLint_EmptyRequiredSections(t *testing.T) {
	rep := Lint(artifact.New("exp-001", t0))
	if rep.Valid {
		t.Fatal("empty artifact passed")
	}
	if rep.Summary.Errors != 2 {
		t.Errorf("errors = %d, want one per required section", rep.Summary.Errors)
	}
	for _, is := range rep.Issues {
		if is.Severity != SevError {
			t.Errorf("unexpected issue: %+v", is)
		}
	}
}

func TestLint_MalformedAnchor(t *testing.T) {
	a := healthy()
	hyp := &a.Sections[delta.SectionHypothesis][0]
	hyp.Anchors = []string{"msg:12", "msg:12-15", "message 12", "msg:"}
	rep := Lint(a)
	if !rep.Valid {
		t.Fatalf("anchor warnings must not invalidate: %+v", rep)
	}
	if rep.Summary.Warnings != 2 {
		t.Errorf("warnings = %d, want 2 (two malformed anchors)", rep.Summary.Warnings)
	}
	for _, is := range rep.Issues {
		if is.EntryID != "hyp-1" || !strings.Contains(is.Message, "anchor") {
			t.Errorf("issue = %+v", is)
		}
	}
}

func TestLint_DuplicateStatements(t *testing.T) {
	a := healthy()
	a.Sections[delta.SectionHypothesis] = append(a.Sections[delta.SectionHypothesis],
		artifact.Entry{ID: "hyp-2", Fields: map[string]string{"statement": "  caching HALVES latency "}, UpdatedAt: t0, Rev: 1})
	rep := Lint(a)
	if rep.Summary.Warnings != 1 {
		t.Fatalf("warnings = %d: %+v", rep.Summary.Warnings, rep.Issues)
	}
	is := rep.Issues[0]
	if is.EntryID != "hyp-2" || !strings.Contains(is.Message, "hyp-1") {
		t.Errorf("issue = %+v, want later entry flagged against first", is)
	}
}

func TestLint_DuplicatesScopedToSection(t *testing.T) {
	a := healthy()
	// Same primary text in a different section is not a duplicate.
	a.Sections[delta.SectionOpenQuestion] = []artifact.Entry{
		{ID: "oq-1", Fields: map[string]string{"question": "Caching halves latency"}, UpdatedAt: t0, Rev: 1},
	}
	if rep := Lint(a); rep.Summary.Warnings != 0 {
		t.Errorf("cross-section duplicate flagged: %+v", rep.Issues)
	}
}

func TestLint_EditedWithoutRationale(t *testing.T) {
	a := healthy()
	a.Sections[delta.SectionHypothesis][0].Rev = 3
	rep := Lint(a)
	if rep.Summary.Warnings != 1 {
		t.Fatalf("issues = %+v", rep.Issues)
	}
	if !strings.Contains(rep.Issues[0].Message, "rationale") {
		t.Errorf("message = %q", rep.Issues[0].Message)
	}

	a.Sections[delta.SectionHypothesis][0].Rationale = "tightened wording"
	if rep := Lint(a); rep.Summary.Warnings != 0 {
		t.Errorf("rationale present but still flagged: %+v", rep.Issues)
	}
}

func TestLint_StaleEntries(t *testing.T) {
	a := healthy()
	a.Metadata.UpdatedAt = t0.Add(30 * 24 * time.Hour)
	rep := Lint(a)
	if !rep.Valid {
		t.Fatalf("staleness must stay informational: %+v", rep)
	}
	if rep.Summary.Info != 2 {
		t.Errorf("info = %d, want both lagging entries flagged", rep.Summary.Info)
	}
}

func TestLint_Repeatable(t *testing.T) {
	a := healthy()
	a.Sections[delta.SectionHypothesis][0].Rev = 2
	r1 := Lint(a)
	r2 := Lint(a)
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("reports differ:\n%+v\n%+v", r1, r2)
	}
}

func TestLint_DoesNotMutate(t *testing.T) {
	a := healthy()
	before := artifact.Render(a)
	Lint(a)
	if artifact.Render(a) != before {
		t.Error("lint mutated the artifact")
	}
}
