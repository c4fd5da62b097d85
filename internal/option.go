package internal

import "github.com/nikolaef43/brenner-bot-sub013/internal/mailbox"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	mail   mailbox.Client
	mcp    bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMailbox overrides the transport built from config, for tests and
// embedding.
func WithMailbox(c mailbox.Client) Option {
	return func(a *application) {
		a.mail = c
	}
}

// WithMCP runs the MCP stdio server instead of the HTTP API.
func WithMCP(enabled bool) Option {
	return func(a *application) {
		a.mcp = enabled
	}
}
