package artifact

import (
	"fmt"
	"strings"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
)

// sectionTitles is the fixed, hard-coded heading per section. Sections
// render in delta.Sections() order, never in insertion order.
var sectionTitles = map[delta.Section]string{
	delta.SectionResearchThread: "Research Thread",
	delta.SectionHypothesis:     "Hypotheses",
	delta.SectionEvidence:       "Evidence",
	delta.SectionExperiment:     "Experiments",
	delta.SectionOpenQuestion:   "Open Questions",
	delta.SectionNextStep:       "Next Steps",
}

// Render serializes the artifact to its canonical markdown document.
// It is deterministic: the same artifact value always renders to
// byte-identical output, since the rendered text is what other
// participants publish and diff. Entries keep their section's append
// order; nothing here may reorder them.
func Render(a *Artifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Research Artifact: %s\n\n", a.Metadata.ThreadID)
	fmt.Fprintf(&b, "- version: %d\n", a.Metadata.Version)
	fmt.Fprintf(&b, "- status: %s\n", a.Metadata.Status)
	fmt.Fprintf(&b, "- created_at: %s\n", stamp(a.Metadata.CreatedAt))
	fmt.Fprintf(&b, "- updated_at: %s\n", stamp(a.Metadata.UpdatedAt))

	for _, sec := range delta.Sections() {
		entries := a.Sections[sec]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", sectionTitles[sec])
		schema, _ := delta.SchemaFor(sec)
		for _, e := range entries {
			renderEntry(&b, schema, e)
		}
	}

	return b.String()
}

func renderEntry(b *strings.Builder, schema delta.Schema, e Entry) {
	fmt.Fprintf(b, "\n### %s\n", e.ID)
	for _, f := range schema.Fields {
		if v, ok := e.Fields[f]; ok {
			fmt.Fprintf(b, "- %s: %s\n", f, v)
		}
	}
	if e.Rationale != "" {
		fmt.Fprintf(b, "- rationale: %s\n", e.Rationale)
	}
	if len(e.Anchors) > 0 {
		fmt.Fprintf(b, "- anchors: %s\n", strings.Join(e.Anchors, ", "))
	}
	fmt.Fprintf(b, "- provenance: %s at %s (rev %d)\n", e.Agent, stamp(e.UpdatedAt), e.Rev)
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
