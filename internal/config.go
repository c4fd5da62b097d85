package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Mailbox modes.
const (
	MailboxModeHTTP  = "http"
	MailboxModeSpool = "spool"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Mailbox MailboxConfig     `yaml:"mailbox"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Mailbox.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// MailboxConfig selects and configures the message transport.
//
// Mode controls where thread histories come from:
//   - "spool" (default): a local directory of message files, suitable
//     for development and single-host agent fleets.
//   - "http": the remote mailbox service; BaseURL must be set.
type MailboxConfig struct {
	Mode    string `yaml:"mode"`
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	Spool   string `yaml:"spool_path"`
}

// Validate validates the mailbox configuration.
func (c *MailboxConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = MailboxModeSpool
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(MailboxModeHTTP, MailboxModeSpool)),
	); err != nil {
		return err
	}
	if c.Mode == MailboxModeHTTP && c.BaseURL == "" {
		return fmt.Errorf("mailbox: mode is %q but base_url is empty", MailboxModeHTTP)
	}
	if c.Mode == MailboxModeSpool && c.Spool == "" {
		return fmt.Errorf("mailbox: mode is %q but spool_path is empty", MailboxModeSpool)
	}
	return nil
}

// SQLiteConfig holds the compile log database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds API authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Mailbox: MailboxConfig{
			Mode:  MailboxModeSpool,
			Spool: "./spool",
		},
		SQLite: SQLiteConfig{
			Path: "./brenner.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
