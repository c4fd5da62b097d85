package thread

import (
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/models"
)

// Phase is the derived "where are we in the process" state name.
type Phase string

// Derived phases.
const (
	// PhaseKickoff: no deltas and no compile yet.
	PhaseKickoff Phase = "kickoff"
	// PhaseDrafting: deltas exist but nothing has been compiled.
	PhaseDrafting Phase = "drafting"
	// PhaseRevising: deltas arrived after the latest compile.
	PhaseRevising Phase = "revising"
	// PhaseCritique: critiques are pending against the latest compile.
	PhaseCritique Phase = "critique"
	// PhaseStable: compiled, with no activity since.
	PhaseStable Phase = "stable"
)

// RoleStatus is per-role completion for the current round.
type RoleStatus struct {
	Completed    bool     `json:"completed"`
	Contributors []string `json:"contributors"`
}

// ArtifactPointer identifies the latest compiled artifact.
type ArtifactPointer struct {
	Version      int       `json:"version"`
	CompiledAt   time.Time `json:"compiled_at"`
	Contributors []string  `json:"contributors"`
}

// AckStatus tracks outstanding acknowledgements for the most recent
// ack-required message.
type AckStatus struct {
	PendingCount int      `json:"pending_count"`
	AwaitingFrom []string `json:"awaiting_from"`
}

// Status is the derived, non-persisted view of a thread.
type Status struct {
	Round                   int                   `json:"round"`
	Phase                   Phase                 `json:"phase"`
	Roles                   map[string]RoleStatus `json:"roles"`
	DeltasInCurrentRound    int                   `json:"deltas_in_current_round"`
	CritiquesInCurrentRound int                   `json:"critiques_in_current_round"`
	LatestArtifact          *ArtifactPointer      `json:"latest_artifact,omitempty"`
	Acks                    AckStatus             `json:"acks"`
}

// DeriveStatus computes the thread status from a full message history.
// It is a read-only derivation: messages are classified per subject,
// no merging happens, and no state is held between calls. The input
// slice is not modified; ordering is established internally.
func DeriveStatus(messages []models.Message) Status {
	msgs := make([]models.Message, len(messages))
	copy(msgs, messages)
	models.SortMessages(msgs)

	classes := make([]Classification, len(msgs))
	for i, m := range msgs {
		classes[i] = Classify(m.Subject)
	}

	st := Status{
		Phase: PhaseKickoff,
		Roles: map[string]RoleStatus{},
		Acks:  AckStatus{AwaitingFrom: []string{}},
	}

	// Round number and compile boundaries.
	lastCompile := -1
	prevCompile := -1
	for i, c := range classes {
		if c.Kind == KindCompiled {
			st.Round++
			prevCompile = lastCompile
			lastCompile = i
		}
	}

	totalDeltas := 0
	for i, c := range classes {
		switch c.Kind {
		case KindDelta:
			totalDeltas++
			if i > lastCompile {
				st.DeltasInCurrentRound++
			}
			if c.Role != "" {
				rs := st.Roles[c.Role]
				if i > lastCompile {
					rs.Completed = true
				}
				rs.Contributors = appendUnique(rs.Contributors, msgs[i].From)
				st.Roles[c.Role] = rs
			}
		case KindCritique:
			if i > lastCompile {
				st.CritiquesInCurrentRound++
			}
		}
	}

	if lastCompile >= 0 {
		ptr := &ArtifactPointer{
			Version:    st.Round,
			CompiledAt: msgs[lastCompile].CreatedAt,
		}
		if v := classes[lastCompile].Version; v != nil {
			ptr.Version = *v
		}
		// Contributors: authors of the deltas the compile folded in.
		for i := prevCompile + 1; i < lastCompile; i++ {
			if classes[i].Kind == KindDelta {
				ptr.Contributors = appendUnique(ptr.Contributors, msgs[i].From)
			}
		}
		st.LatestArtifact = ptr
	}

	st.Acks = deriveAcks(msgs, classes)
	st.Phase = derivePhase(st, totalDeltas)
	return st
}

func derivePhase(st Status, totalDeltas int) Phase {
	switch {
	case st.Round == 0 && totalDeltas == 0:
		return PhaseKickoff
	case st.Round == 0:
		return PhaseDrafting
	case st.DeltasInCurrentRound > 0:
		return PhaseRevising
	case st.CritiquesInCurrentRound > 0:
		return PhaseCritique
	default:
		return PhaseStable
	}
}

// deriveAcks finds the most recent ack-required message and the set of
// its recipients who have not yet replied with an ack addressed to it.
// An ack carrying a version number is addressed to the message with
// that id; an ack without one counts for the most recent ack-required
// message preceding it.
func deriveAcks(msgs []models.Message, classes []Classification) AckStatus {
	target := -1
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].AckRequired {
			target = i
			break
		}
	}
	if target < 0 {
		return AckStatus{AwaitingFrom: []string{}}
	}

	acked := map[string]bool{}
	for i := target + 1; i < len(msgs); i++ {
		if classes[i].Kind != KindAck || msgs[i].From == "" {
			continue
		}
		if v := classes[i].Version; v != nil && int64(*v) != msgs[target].ID {
			continue
		}
		acked[msgs[i].From] = true
	}

	out := AckStatus{AwaitingFrom: []string{}}
	for _, r := range msgs[target].Recipients {
		if !acked[r] {
			out.AwaitingFrom = append(out.AwaitingFrom, r)
		}
	}
	out.PendingCount = len(out.AwaitingFrom)
	return out
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
