// Package compilesvc coordinates the compile pathway: fetch a thread's
// history, extract and order its deltas, merge them onto an empty
// baseline, lint and render the result, and optionally publish the
// compiled artifact back to the thread.
package compilesvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nikolaef43/brenner-bot-sub013/internal/apperr"
	"github.com/nikolaef43/brenner-bot-sub013/internal/artifact"
	"github.com/nikolaef43/brenner-bot-sub013/internal/compilelog"
	"github.com/nikolaef43/brenner-bot-sub013/internal/delta"
	"github.com/nikolaef43/brenner-bot-sub013/internal/lint"
	"github.com/nikolaef43/brenner-bot-sub013/internal/mailbox"
	"github.com/nikolaef43/brenner-bot-sub013/internal/merge"
	"github.com/nikolaef43/brenner-bot-sub013/internal/models"
	"github.com/nikolaef43/brenner-bot-sub013/internal/thread"
)

// Service wires the mailbox transport and the compile log to the pure
// compile subsystem. The artifact is recomputed from the full message
// history on every call; nothing here caches it.
type Service struct {
	mail mailbox.Client
	log  compilelog.Log
}

// NewService creates a compile service.
func NewService(mail mailbox.Client, log compilelog.Log) *Service {
	return &Service{mail: mail, log: log}
}

// Result is the outcome of one compile or preview.
type Result struct {
	ThreadID      string             `json:"thread_id"`
	Artifact      *artifact.Artifact `json:"artifact"`
	Rendered      string             `json:"rendered"`
	Checksum      string             `json:"checksum"`
	Applied       int                `json:"applied_count"`
	Skipped       int                `json:"skipped_count"`
	InvalidBlocks int                `json:"invalid_blocks"`
	Warnings      []merge.Warning    `json:"warnings"`
	Report        lint.Report        `json:"report"`
	MessageID     int64              `json:"message_id,omitempty"`
}

// Preview compiles the thread without recording or publishing anything.
func (s *Service) Preview(ctx context.Context, threadID string) (*Result, error) {
	res, _, err := s.build(ctx, threadID)
	return res, err
}

// Compile compiles the thread, records the run in the compile log, and
// publishes the rendered artifact back to the thread as a
// "COMPILED: v<N> artifact" message with acknowledgement required from
// every delta contributor.
func (s *Service) Compile(ctx context.Context, threadID string) (*Result, error) {
	res, contributors, err := s.build(ctx, threadID)
	if err != nil {
		return nil, err
	}

	msgID, err := s.mail.Send(ctx, mailbox.SendRequest{
		ThreadID:    threadID,
		Subject:     fmt.Sprintf("COMPILED: v%d artifact", res.Artifact.Metadata.Version),
		Body:        res.Rendered,
		Recipients:  contributors,
		AckRequired: true,
	})
	if err != nil {
		return nil, fmt.Errorf("compilesvc: publish: %w", err)
	}
	res.MessageID = msgID

	if err := s.log.Append(compilelog.Record{
		ThreadID:     threadID,
		Version:      res.Artifact.Metadata.Version,
		Checksum:     res.Checksum,
		Applied:      res.Applied,
		Skipped:      res.Skipped,
		LintErrors:   res.Report.Summary.Errors,
		LintWarnings: res.Report.Summary.Warnings,
		MessageID:    msgID,
		CompiledAt:   res.Artifact.Metadata.UpdatedAt,
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Status derives the thread's status from its full message history.
func (s *Service) Status(ctx context.Context, threadID string) (*thread.Status, error) {
	msgs, err := s.mail.ListMessages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("compilesvc: list messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil, apperr.ErrNotFound
	}
	st := thread.DeriveStatus(msgs)
	return &st, nil
}

// History returns the thread's recorded compiles, newest first.
func (s *Service) History(_ context.Context, threadID string, limit int) ([]compilelog.Record, error) {
	return s.log.History(threadID, limit)
}

// build fetches and compiles a thread, returning the result and the
// deduplicated delta contributors in first-appearance order.
func (s *Service) build(ctx context.Context, threadID string) (*Result, []string, error) {
	msgs, err := s.mail.ListMessages(ctx, threadID)
	if err != nil {
		return nil, nil, fmt.Errorf("compilesvc: list messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil, nil, apperr.ErrNotFound
	}
	models.SortMessages(msgs)

	// Rounds completed so far seed the baseline version; the merge run
	// is this cycle's +1.
	baseVersion := 0
	for _, m := range msgs {
		if thread.Classify(m.Subject).Kind == thread.KindCompiled {
			baseVersion++
		}
	}

	baseline := artifact.New(threadID, msgs[0].CreatedAt)
	baseline.Metadata.Version = baseVersion

	var (
		inputs       []merge.Input
		invalid      int
		contributors []string
	)
	for _, m := range msgs {
		if thread.Classify(m.Subject).Kind != thread.KindDelta {
			continue
		}
		parsed := delta.Extract(m.Body)
		invalid += parsed.InvalidCount
		for _, d := range parsed.ValidDeltas() {
			inputs = append(inputs, merge.Input{
				Delta:     d,
				Agent:     m.From,
				Timestamp: m.CreatedAt,
				MessageID: m.ID,
			})
		}
		if parsed.ValidCount > 0 {
			contributors = appendUnique(contributors, m.From)
		}
	}

	mres := merge.Merge(baseline, inputs)
	if !mres.OK {
		return nil, nil, fmt.Errorf("compilesvc: %w: %s", apperr.ErrMergeFailed, strings.Join(mres.Errors, "; "))
	}

	rendered := artifact.Render(mres.Artifact)
	sum := sha256.Sum256([]byte(rendered))

	return &Result{
		ThreadID:      threadID,
		Artifact:      mres.Artifact,
		Rendered:      rendered,
		Checksum:      hex.EncodeToString(sum[:]),
		Applied:       mres.Applied,
		Skipped:       mres.Skipped,
		InvalidBlocks: invalid,
		Warnings:      mres.Warnings,
		Report:        lint.Lint(mres.Artifact),
	}, contributors, nil
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
