package delta

import (
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Schema describes the field set a section's payload may carry.
// Fields lists every known field in canonical render order; Required
// names the subset that must be present when an entry is created.
type Schema struct {
	Section  Section
	Prefix   string // entry id prefix, e.g. "hyp" → hyp-1
	Fields   []string
	Required []string
}

// schemas is the closed registry of section kinds. A section string not
// present here is not a recognized member of the Section enum.
var schemas = map[Section]Schema{
	SectionResearchThread: {
		Section:  SectionResearchThread,
		Prefix:   "rt",
		Fields:   []string{"statement", "status"},
		Required: []string{"statement"},
	},
	SectionHypothesis: {
		Section:  SectionHypothesis,
		Prefix:   "hyp",
		Fields:   []string{"statement", "confidence", "status"},
		Required: []string{"statement"},
	},
	SectionEvidence: {
		Section:  SectionEvidence,
		Prefix:   "ev",
		Fields:   []string{"summary", "source", "strength"},
		Required: []string{"summary", "source"},
	},
	SectionExperiment: {
		Section:  SectionExperiment,
		Prefix:   "exp",
		Fields:   []string{"description", "status", "result"},
		Required: []string{"description"},
	},
	SectionOpenQuestion: {
		Section:  SectionOpenQuestion,
		Prefix:   "oq",
		Fields:   []string{"question", "owner"},
		Required: []string{"question"},
	},
	SectionNextStep: {
		Section:  SectionNextStep,
		Prefix:   "ns",
		Fields:   []string{"description", "owner"},
		Required: []string{"description"},
	},
}

// SchemaFor returns the schema for a section, or false when the section
// is not a recognized enum member.
func SchemaFor(s Section) (Schema, bool) {
	sc, ok := schemas[s]
	return sc, ok
}

// Sections returns the recognized sections in canonical artifact order.
func Sections() []Section {
	return []Section{
		SectionResearchThread,
		SectionHypothesis,
		SectionEvidence,
		SectionExperiment,
		SectionOpenQuestion,
		SectionNextStep,
	}
}

func (s Schema) knows(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// PrimaryField is the field that carries the section's main statement,
// used for duplicate detection.
func (s Schema) PrimaryField() string { return s.Fields[0] }

// validatePayload checks a coerced payload against the schema.
// full=true enforces the required-field set (creates); full=false only
// rejects unknown fields and empty values (partial updates). Fields
// are checked in sorted order so a payload with several problems
// always reports the same one.
func (s Schema) validatePayload(fields map[string]string, full bool) error {
	for _, k := range sortedKeys(fields) {
		if !s.knows(k) {
			return fmt.Errorf("unknown field %q for section %s", k, s.Section)
		}
		if err := validation.Validate(fields[k], validation.Required, validation.Length(1, 8000)); err != nil {
			return fmt.Errorf("field %q: %v", k, err)
		}
	}
	if !full {
		return nil
	}
	for _, f := range s.Required {
		if _, ok := fields[f]; !ok {
			return fmt.Errorf("missing required field %q for section %s", f, s.Section)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
