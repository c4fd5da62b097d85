package artifact

import (
	"strings"
	"testing"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sample() *Artifact {
	a := New("exp-001", t0)
	a.Metadata.Version = 2
	a.Metadata.Status = StatusActive
	a.Metadata.UpdatedAt = t0.Add(time.Hour)
	// Populated out of canonical order on purpose.
	a.Sections[delta.SectionNextStep] = []Entry{
		{ID: "ns-1", Fields: map[string]string{"description": "rerun with cache", "owner": "bob"}, Agent: "bob", UpdatedAt: t0, Rev: 1},
	}
	a.Sections[delta.SectionHypothesis] = []Entry{
		{ID: "hyp-1", Fields: map[string]string{"statement": "Caching halves latency", "confidence": "0.8"},
			Rationale: "matches run 4", Anchors: []string{"msg:12", "msg:14-15"}, Agent: "alice", UpdatedAt: t0.Add(time.Hour), Rev: 2},
	}
	a.Sections[delta.SectionResearchThread] = []Entry{
		{ID: "rt-1", Fields: map[string]string{"statement": "Does caching help?"}, Agent: "alice", UpdatedAt: t0, Rev: 1},
	}
	return a
}

func TestRender_Deterministic(t *testing.T) {
	a := sample()
	first := Render(a)
	for i := 0; i < 5; i++ {
		if Render(a) != first {
			t.Fatal("render output varies across calls")
		}
	}
}

func TestRender_Layout(t *testing.T) {
	out := Render(sample())

	if !strings.HasPrefix(out, "# Research Artifact: exp-001\n") {
		t.Errorf("header missing:\n%s", out)
	}
	for _, want := range []string{
		"- version: 2\n",
		"- status: active\n",
		"- created_at: 2026-03-01T12:00:00Z\n",
		"- updated_at: 2026-03-01T13:00:00Z\n",
		"### hyp-1\n",
		"- statement: Caching halves latency\n",
		"- confidence: 0.8\n",
		"- rationale: matches run 4\n",
		"- anchors: msg:12, msg:14-15\n",
		"- provenance: alice at 2026-03-01T13:00:00Z (rev 2)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRender_SectionOrderIsCanonical(t *testing.T) {
	out := Render(sample())
	rt := strings.Index(out, "## Research Thread")
	hy := strings.Index(out, "## Hypotheses")
	ns := strings.Index(out, "## Next Steps")
	if rt < 0 || hy < 0 || ns < 0 {
		t.Fatalf("headings missing:\n%s", out)
	}
	if !(rt < hy && hy < ns) {
		t.Errorf("section order wrong: rt=%d hy=%d ns=%d", rt, hy, ns)
	}
}

func TestRender_OmitsEmptySections(t *testing.T) {
	out := Render(sample())
	for _, absent := range []string{"## Evidence", "## Experiments", "## Open Questions"} {
		if strings.Contains(out, absent) {
			t.Errorf("empty section rendered: %s", absent)
		}
	}
}

func TestRender_FieldOrderFollowsSchema(t *testing.T) {
	out := Render(sample())
	st := strings.Index(out, "- statement: Caching halves latency")
	cf := strings.Index(out, "- confidence: 0.8")
	if st < 0 || cf < 0 || st > cf {
		t.Errorf("field order wrong: statement=%d confidence=%d", st, cf)
	}
}

func TestClone_Independent(t *testing.T) {
	a := sample()
	c := a.Clone()
	c.Sections[delta.SectionHypothesis][0].Fields["statement"] = "changed"
	c.Sections[delta.SectionHypothesis][0].Anchors[0] = "msg:99"
	if a.Sections[delta.SectionHypothesis][0].Fields["statement"] != "Caching halves latency" {
		t.Error("clone shares field map")
	}
	if a.Sections[delta.SectionHypothesis][0].Anchors[0] != "msg:12" {
		t.Error("clone shares anchors slice")
	}
}

func TestFind(t *testing.T) {
	a := sample()
	if e := a.Find(delta.SectionHypothesis, "hyp-1"); e == nil || e.ID != "hyp-1" {
		t.Errorf("find = %+v", e)
	}
	if e := a.Find(delta.SectionHypothesis, "hyp-2"); e != nil {
		t.Errorf("phantom entry: %+v", e)
	}
	if e := a.Find(delta.SectionEvidence, "hyp-1"); e != nil {
		t.Errorf("cross-section hit: %+v", e)
	}
}
