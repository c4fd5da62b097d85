// Package delta extracts and validates structured edit instructions
// embedded in message bodies as fenced ```delta code blocks.
package delta

// Operation is the kind of edit a delta performs on the artifact.
type Operation string

// Recognized operations.
const (
	OpAdd    Operation = "ADD"
	OpEdit   Operation = "EDIT"
	OpDelete Operation = "DELETE"
)

// Section identifies which part of the artifact a delta targets.
type Section string

// Recognized artifact sections.
const (
	SectionResearchThread Section = "research_thread"
	SectionHypothesis     Section = "hypothesis"
	SectionEvidence       Section = "evidence"
	SectionExperiment     Section = "experiment"
	SectionOpenQuestion   Section = "open_question"
	SectionNextStep       Section = "next_step"
)

// Delta is one validated edit instruction.
//
// An empty TargetID means "create a new entry"; a non-empty value names
// the stable entry id to mutate.
type Delta struct {
	Operation Operation         `json:"operation"`
	Section   Section           `json:"section"`
	TargetID  string            `json:"target_id,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
	Rationale string            `json:"rationale,omitempty"`
	Anchors   []string          `json:"anchors,omitempty"`
}

// Block is the outcome of parsing one fenced delta block: either a
// valid Delta, or the verbatim block text with a specific reason.
type Block struct {
	Delta  *Delta `json:"delta,omitempty"`
	Raw    string `json:"raw,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Valid reports whether the block parsed into a usable delta.
func (b Block) Valid() bool { return b.Delta != nil }

// ParsedMessage is the result of extracting one message body.
// Invariant: TotalBlocks == ValidCount + InvalidCount == len(Blocks).
type ParsedMessage struct {
	TotalBlocks  int     `json:"total_blocks"`
	ValidCount   int     `json:"valid_count"`
	InvalidCount int     `json:"invalid_count"`
	Blocks       []Block `json:"deltas"`
}

// ValidDeltas returns the valid deltas in block order.
func (p ParsedMessage) ValidDeltas() []Delta {
	out := make([]Delta, 0, p.ValidCount)
	for _, b := range p.Blocks {
		if b.Valid() {
			out = append(out, *b.Delta)
		}
	}
	return out
}
