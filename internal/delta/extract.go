package delta

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Extract scans a message body for fenced code blocks tagged `delta`
// and parses each one. Blocks with any other fence tag are ignored and
// do not count toward TotalBlocks. Extraction never fails: a malformed
// block becomes an invalid Block carrying the verbatim text and a
// specific reason, and scanning continues with the next block.
//
// The closing delimiter is the first bare ``` fence at start of line;
// tagged fences inside a block's payload (example snippets in a
// rationale) do not terminate the block.
func Extract(body string) ParsedMessage {
	pm := ParsedMessage{Blocks: []Block{}}
	if body == "" {
		return pm
	}

	lines := strings.Split(body, "\n")
	for i := 0; i < len(lines); i++ {
		if !isDeltaFence(lines[i]) {
			continue
		}
		j := i + 1
		for j < len(lines) && !isClosingFence(lines[j]) {
			j++
		}
		raw := strings.Join(lines[i+1:j], "\n")
		pm.Blocks = append(pm.Blocks, parseBlock(raw))
		i = j
	}

	pm.TotalBlocks = len(pm.Blocks)
	for _, b := range pm.Blocks {
		if b.Valid() {
			pm.ValidCount++
		} else {
			pm.InvalidCount++
		}
	}
	return pm
}

// isDeltaFence matches an opening ```delta fence, ignoring trailing
// whitespace. The tag comparison is case-insensitive.
func isDeltaFence(line string) bool {
	trimmed := strings.TrimRight(line, " \t\r")
	return strings.EqualFold(trimmed, "```delta")
}

// isClosingFence matches a bare ``` fence at start of line.
func isClosingFence(line string) bool {
	return strings.TrimRight(line, " \t\r") == "```"
}

// rawDelta mirrors the wire shape of a delta block.
type rawDelta struct {
	Operation string         `json:"operation"`
	Section   string         `json:"section"`
	TargetID  *string        `json:"target_id"`
	Payload   map[string]any `json:"payload"`
	Rationale string         `json:"rationale"`
	Anchors   []string       `json:"anchors"`
}

func parseBlock(raw string) Block {
	invalid := func(reason string) Block {
		return Block{Raw: raw, Reason: reason}
	}

	if strings.TrimSpace(raw) == "" {
		return invalid("empty block")
	}

	var rd rawDelta
	if err := json.Unmarshal([]byte(raw), &rd); err != nil {
		return invalid(fmt.Sprintf("invalid JSON: %v", err))
	}

	op := Operation(strings.ToUpper(strings.TrimSpace(rd.Operation)))
	switch op {
	case OpAdd, OpEdit, OpDelete:
	case "":
		return invalid("missing operation")
	default:
		return invalid(fmt.Sprintf("unknown operation %q", rd.Operation))
	}

	section := Section(strings.ToLower(strings.TrimSpace(rd.Section)))
	schema, ok := SchemaFor(section)
	if !ok {
		if section == "" {
			return invalid("missing section")
		}
		return invalid(fmt.Sprintf("unknown section %q", rd.Section))
	}

	target := ""
	if rd.TargetID != nil {
		target = strings.TrimSpace(*rd.TargetID)
	}

	d := Delta{
		Operation: op,
		Section:   section,
		TargetID:  target,
		Rationale: strings.TrimSpace(rd.Rationale),
		Anchors:   rd.Anchors,
	}

	if op == OpDelete {
		if target == "" {
			return invalid("DELETE requires a target_id")
		}
		return Block{Delta: &d}
	}

	fields, err := coercePayload(rd.Payload)
	if err != nil {
		return invalid(err.Error())
	}
	if len(fields) == 0 {
		return invalid("empty payload")
	}

	// A delta that names an existing entry is a partial update; only a
	// create must satisfy the full required-field set.
	full := target == ""
	if err := schema.validatePayload(fields, full); err != nil {
		return invalid(err.Error())
	}

	d.Payload = fields
	return Block{Delta: &d}
}

// coercePayload flattens JSON scalars to strings and rejects nested
// structures, keeping payloads representable as ordered field values.
// Keys are visited in sorted order so the reported field is stable
// when several values are bad.
func coercePayload(payload map[string]any) (map[string]string, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(payload))
	for _, k := range keys {
		switch val := payload[k].(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		case nil:
			return nil, fmt.Errorf("field %q: null value", k)
		default:
			return nil, fmt.Errorf("field %q: expected a scalar value", k)
		}
	}
	return out, nil
}
