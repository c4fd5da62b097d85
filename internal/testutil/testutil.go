// Package testutil provides shared test helpers for seeding mailboxes
// and temporary compile logs.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/compilelog"
	"github.com/nikolaef43/brenner-bot-sub013/internal/mailbox"
	"github.com/nikolaef43/brenner-bot-sub013/internal/models"
)

// TestLog creates a temporary SQLite compile log that is automatically
// cleaned up.
func TestLog(t *testing.T) *compilelog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "brenner-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := compilelog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Msg builds a message for seeding, with the timestamp derived from
// the id so (created_at, id) order matches id order.
func Msg(thread string, id int64, from, subject, body string) models.Message {
	return models.Message{
		ID:        id,
		ThreadID:  thread,
		Subject:   subject,
		Body:      body,
		From:      from,
		CreatedAt: BaseTime().Add(time.Duration(id) * time.Minute),
	}
}

// SeedThread fills a memory mailbox with the given messages.
func SeedThread(mb *mailbox.Memory, msgs ...models.Message) {
	for _, m := range msgs {
		mb.Seed(m)
	}
}

// BaseTime is the fixed origin used by Msg, far enough in the past to
// stay clear of staleness windows only when tests want it to.
func BaseTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// DeltaBody wraps a JSON delta record in a fenced delta block.
func DeltaBody(inner string) string {
	return "```delta\n" + inner + "\n```\n"
}
