package mailbox

import (
	"context"
	"sync"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/models"
)

// Memory is an in-process mailbox used by tests and by the MCP server
// in ephemeral mode. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	threads map[string][]models.Message
}

// NewMemory creates an empty in-memory mailbox.
func NewMemory() *Memory {
	return &Memory{nextID: 1, threads: map[string][]models.Message{}}
}

// ListMessages returns a copy of the thread's history.
func (m *Memory) ListMessages(_ context.Context, threadID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.threads[threadID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Send appends a message with the next global id.
func (m *Memory) Send(_ context.Context, req SendRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.threads[req.ThreadID] = append(m.threads[req.ThreadID], models.Message{
		ID:          id,
		ThreadID:    req.ThreadID,
		Subject:     req.Subject,
		Body:        req.Body,
		Recipients:  req.Recipients,
		AckRequired: req.AckRequired,
		CreatedAt:   time.Now().UTC(),
	})
	return id, nil
}

// Seed inserts a fully specified message, for tests that need fixed
// ids and timestamps.
func (m *Memory) Seed(msg models.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID >= m.nextID {
		m.nextID = msg.ID + 1
	}
	m.threads[msg.ThreadID] = append(m.threads[msg.ThreadID], msg)
}
