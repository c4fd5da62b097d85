package mailbox

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/models"
)

func newSpool(t *testing.T) *Spool {
	t.Helper()
	s, err := NewSpool(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSpool_SendListRoundtrip(t *testing.T) {
	s := newSpool(t)
	ctx := context.Background()

	id, err := s.Send(ctx, SendRequest{
		ThreadID:    "exp-001",
		Subject:     "KICKOFF: start",
		Body:        "hello",
		Recipients:  []string{"bob"},
		AckRequired: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Errorf("first id = %d", id)
	}

	msgs, err := s.ListMessages(ctx, "exp-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("messages = %+v", msgs)
	}
	m := msgs[0]
	if m.Subject != "KICKOFF: start" || m.Body != "hello" || !m.AckRequired {
		t.Errorf("message = %+v", m)
	}
	if m.ThreadID != "exp-001" {
		t.Errorf("thread id = %q", m.ThreadID)
	}
}

func TestSpool_SequentialIDs(t *testing.T) {
	s := newSpool(t)
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		id, err := s.Send(ctx, SendRequest{ThreadID: "exp-001", Subject: "INFO: n"})
		if err != nil {
			t.Fatal(err)
		}
		if id != want {
			t.Errorf("id = %d, want %d", id, want)
		}
	}
	// Separate threads number independently.
	id, err := s.Send(ctx, SendRequest{ThreadID: "exp-002", Subject: "INFO: other"})
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Errorf("other thread id = %d", id)
	}
}

func TestSpool_MissingThreadIsEmpty(t *testing.T) {
	s := newSpool(t)
	msgs, err := s.ListMessages(context.Background(), "never-written")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestSpool_RejectsTraversal(t *testing.T) {
	s := newSpool(t)
	for _, id := range []string{"..", ".", "../outside", "a/b", "/abs"} {
		if _, err := s.ListMessages(context.Background(), id); err == nil {
			t.Errorf("thread id %q accepted", id)
		}
	}
}

func TestSpool_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSpool(dir)
	if err != nil {
		t.Fatal(err)
	}
	threadDir := filepath.Join(dir, "exp-001")
	if err := os.MkdirAll(threadDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(threadDir, "notes.txt"), []byte("not a message"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Send(context.Background(), SendRequest{ThreadID: "exp-001", Subject: "INFO: hi"}); err != nil {
		t.Fatal(err)
	}
	msgs, err := s.ListMessages(context.Background(), "exp-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestSpool_ListSortsByCreatedAtThenID(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSpool(dir)
	if err != nil {
		t.Fatal(err)
	}
	threadDir := filepath.Join(dir, "exp-001")
	if err := os.MkdirAll(threadDir, 0o755); err != nil {
		t.Fatal(err)
	}
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	write := func(name string, m models.Message) {
		data, err := json.Marshal(m)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(threadDir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("000002.json", models.Message{ID: 2, Subject: "second", CreatedAt: t0.Add(time.Minute)})
	write("000001.json", models.Message{ID: 1, Subject: "first", CreatedAt: t0})

	msgs, err := s.ListMessages(context.Background(), "exp-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].ID != 1 || msgs[1].ID != 2 {
		t.Errorf("order = %+v", msgs)
	}
}
