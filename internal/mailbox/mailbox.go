// Package mailbox abstracts the message transport the compile
// subsystem reads thread histories from and publishes compiled
// artifacts to.
package mailbox

import (
	"context"

	"github.com/nikolaef43/brenner-bot-sub013/internal/models"
)

// SendRequest is an outgoing message.
type SendRequest struct {
	ThreadID    string   `json:"thread_id"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Recipients  []string `json:"recipients,omitempty"`
	AckRequired bool     `json:"ack_required,omitempty"`
}

// Client is the interface to the mailbox transport. Fetching a thread
// is potentially slow remote I/O; callers own retries and deadlines via
// ctx. Everything computed from the returned messages is deterministic
// and local.
type Client interface {
	// ListMessages returns the full history for a thread. Order is not
	// guaranteed by the transport; callers sort by (created_at, id).
	ListMessages(ctx context.Context, threadID string) ([]models.Message, error)
	// Send posts a message to a thread and returns its assigned id.
	Send(ctx context.Context, req SendRequest) (int64, error)
}
