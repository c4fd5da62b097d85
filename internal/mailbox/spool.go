package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/models"
)

// Spool is a filesystem-backed mailbox for development and tests: one
// directory per thread, one JSON file per message.
type Spool struct {
	root string // absolute path to the spool directory
}

// NewSpool creates a spool rooted at the given directory. The directory
// must already exist.
func NewSpool(root string) (*Spool, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("spool: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("spool: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spool: root is not a directory: %s", abs)
	}
	return &Spool{root: abs}, nil
}

// threadDir resolves a thread id against the spool root and rejects
// any result that escapes it (directory traversal).
func (s *Spool) threadDir(threadID string) (string, error) {
	cleaned := filepath.Clean(threadID)
	if cleaned == "." || cleaned == ".." || filepath.IsAbs(cleaned) || strings.Contains(cleaned, string(os.PathSeparator)) {
		return "", fmt.Errorf("spool: invalid thread id: %q", threadID)
	}
	return filepath.Join(s.root, cleaned), nil
}

// ListMessages reads every message file in the thread's directory.
// A thread with no directory has an empty history, not an error.
func (s *Spool) ListMessages(_ context.Context, threadID string) ([]models.Message, error) {
	dir, err := s.threadDir(threadID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("spool: list %s: %w", threadID, err)
	}

	out := make([]models.Message, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("spool: read %s: %w", e.Name(), err)
		}
		var m models.Message
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("spool: decode %s: %w", e.Name(), err)
		}
		m.ThreadID = threadID
		out = append(out, m)
	}
	models.SortMessages(out)
	return out, nil
}

// Send assigns the next message id in the thread and writes the
// message atomically: tmp file, fsync, rename.
func (s *Spool) Send(ctx context.Context, req SendRequest) (int64, error) {
	existing, err := s.ListMessages(ctx, req.ThreadID)
	if err != nil {
		return 0, err
	}
	var next int64 = 1
	for _, m := range existing {
		if m.ID >= next {
			next = m.ID + 1
		}
	}

	msg := models.Message{
		ID:          next,
		ThreadID:    req.ThreadID,
		Subject:     req.Subject,
		Body:        req.Body,
		Recipients:  req.Recipients,
		AckRequired: req.AckRequired,
		CreatedAt:   time.Now().UTC(),
	}
	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("spool: marshal message: %w", err)
	}

	dir, err := s.threadDir(req.ThreadID)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("spool: mkdir: %w", err)
	}
	if err := atomicWrite(filepath.Join(dir, fmt.Sprintf("%06d.json", next)), data); err != nil {
		return 0, err
	}
	return next, nil
}

func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".spool-tmp-*")
	if err != nil {
		return fmt.Errorf("spool: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("spool: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("spool: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("spool: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("spool: rename: %w", err)
	}
	success = true
	return nil
}
