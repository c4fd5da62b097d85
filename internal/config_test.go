package internal

import (
	"strings"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.App.HTTP.Port != 8080 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.Mailbox.Mode != MailboxModeSpool {
		t.Errorf("mailbox mode = %q", cfg.Mailbox.Mode)
	}
	if cfg.Auth.AuthEnabled() {
		t.Error("auth enabled by default")
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		c := HTTPConfig{Port: port}
		if err := c.Validate(); err == nil {
			t.Errorf("port %d accepted", port)
		}
	}
	c := HTTPConfig{Port: 8080}
	if err := c.Validate(); err != nil {
		t.Errorf("port 8080 rejected: %v", err)
	}
	if c.Address() != ":8080" {
		t.Errorf("address = %q", c.Address())
	}
}

func TestMailboxConfig_EmptyModeDefaultsToSpool(t *testing.T) {
	c := MailboxConfig{Spool: "./spool"}
	if err := c.Validate(); err != nil {
		t.Fatalf("err = %v", err)
	}
	if c.Mode != MailboxModeSpool {
		t.Errorf("mode = %q", c.Mode)
	}
}

func TestMailboxConfig_HTTPModeRequiresBaseURL(t *testing.T) {
	c := MailboxConfig{Mode: MailboxModeHTTP}
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Errorf("err = %v", err)
	}
	c.BaseURL = "http://mailbox:9000"
	if err := c.Validate(); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestMailboxConfig_SpoolModeRequiresPath(t *testing.T) {
	c := MailboxConfig{Mode: MailboxModeSpool}
	if err := c.Validate(); err == nil {
		t.Error("empty spool path accepted")
	}
}

func TestMailboxConfig_UnknownMode(t *testing.T) {
	c := MailboxConfig{Mode: "carrier-pigeon"}
	if err := c.Validate(); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	c := AuthConfig{Mode: AuthModeToken}
	if err := c.Validate(); err == nil {
		t.Error("token mode without token accepted")
	}
	c.Token = "secret"
	if err := c.Validate(); err != nil {
		t.Errorf("err = %v", err)
	}
	if !c.AuthEnabled() {
		t.Error("token mode not reported enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsToDisabled(t *testing.T) {
	c := AuthConfig{}
	if err := c.Validate(); err != nil {
		t.Fatalf("err = %v", err)
	}
	if c.Mode != AuthModeDisabled || c.AuthEnabled() {
		t.Errorf("config = %+v", c)
	}
}

func TestSQLiteConfig_RequiresPath(t *testing.T) {
	c := SQLiteConfig{}
	if err := c.Validate(); err == nil {
		t.Error("empty path accepted")
	}
}
