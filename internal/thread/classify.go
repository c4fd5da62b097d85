// Package thread classifies messages by their subject-line conventions
// and derives the authoritative thread status from a full history.
package thread

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the state-machine vocabulary a subject line maps into.
type Kind string

// Recognized message kinds.
const (
	KindKickoff  Kind = "kickoff"
	KindDelta    Kind = "delta"
	KindCompiled Kind = "compiled"
	KindCritique Kind = "critique"
	KindAck      Kind = "ack"
	KindClaim    Kind = "claim"
	KindHandoff  Kind = "handoff"
	KindBlocked  Kind = "blocked"
	KindQuestion Kind = "question"
	KindInfo     Kind = "info"
	KindUnknown  Kind = "unknown"
)

// Classification is the result of classifying one subject line.
// Version is the first integer after the marker for conventions that
// define one (compiled, critique, delta rounds, ack targets); nil when
// no integer is present.
type Classification struct {
	Kind    Kind   `json:"type"`
	Role    string `json:"role,omitempty"`
	Version *int   `json:"version,omitempty"`
}

var (
	// Matches the bracketed-role form: [DELTA][hypothesis-lead] round 2.
	deltaRoleRe = regexp.MustCompile(`(?i)^\[delta\]\[([a-z0-9_/-]+)\]`)
	firstIntRe  = regexp.MustCompile(`\d+`)
)

// markerKinds maps a leading keyword to its kind, and records whether
// the convention defines a trailing version/round number.
var markerKinds = []struct {
	marker     string
	kind       Kind
	hasVersion bool
}{
	{"kickoff", KindKickoff, false},
	{"delta", KindDelta, true},
	{"compiled", KindCompiled, true},
	{"critique", KindCritique, true},
	{"ack", KindAck, true},
	{"claim", KindClaim, false},
	{"handoff", KindHandoff, false},
	{"blocked", KindBlocked, false},
	{"question", KindQuestion, false},
	{"info", KindInfo, false},
}

// Classify labels a subject line. Matching is case-insensitive on the
// marker keyword; anything not matching a known convention is unknown.
// Classify is pure: the same subject always classifies identically.
func Classify(subject string) Classification {
	s := strings.TrimSpace(subject)

	if m := deltaRoleRe.FindStringSubmatch(s); m != nil {
		rest := s[len(m[0]):]
		return Classification{
			Kind:    KindDelta,
			Role:    strings.ToLower(m[1]),
			Version: firstInt(rest),
		}
	}

	lower := strings.ToLower(s)
	for _, mk := range markerKinds {
		if !strings.HasPrefix(lower, mk.marker) {
			continue
		}
		rest := s[len(mk.marker):]
		// The keyword must be a whole leading token, not a prefix of a
		// longer word ("information" is not an INFO marker).
		if rest != "" && !isMarkerBoundary(rest[0]) {
			continue
		}
		c := Classification{Kind: mk.kind}
		if mk.hasVersion {
			c.Version = firstInt(rest)
		}
		return c
	}

	return Classification{Kind: KindUnknown}
}

func isMarkerBoundary(b byte) bool {
	switch b {
	case ' ', '\t', ':', '-', '[', '(':
		return true
	}
	return false
}

// firstInt extracts the first integer in s, or nil when none parses.
func firstInt(s string) *int {
	m := firstIntRe.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}
