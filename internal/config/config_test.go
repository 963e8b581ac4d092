package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Address != ":3000" {
		t.Errorf("expected default address :3000, got %q", cfg.Server.Address)
	}
	if cfg.Interaction.ScrollThreshold != 50 || cfg.Interaction.ProbeOffset != 100 {
		t.Errorf("unexpected scroll defaults %+v", cfg.Interaction)
	}
	if cfg.Contact.Backend != BackendSimulated {
		t.Errorf("expected simulated backend, got %q", cfg.Contact.Backend)
	}
	if cfg.Contact.Latency != time.Second || cfg.Contact.NoticeDuration != 5*time.Second {
		t.Errorf("unexpected contact timings %+v", cfg.Contact)
	}
	if cfg.Theme.Persist {
		t.Error("expected theme persistence off by default")
	}
	if cfg.Contact.RateLimit.Count != 5 || cfg.Contact.RateLimit.Window != time.Hour {
		t.Errorf("unexpected rate limit %+v", cfg.Contact.RateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected defaults, got log level %q", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livefolio.yml")
	data := `
server:
  address: ":8080"
  allowed_origins: ["example.com"]
theme:
  persist: true
contact:
  backend: inbox
  latency: 250ms
  database: /tmp/inbox.db
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("address: got %q", cfg.Server.Address)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "example.com" {
		t.Errorf("allowed_origins: got %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Theme.Persist || cfg.Theme.Cookie != "livefolio_theme" {
		t.Errorf("theme: got %+v", cfg.Theme)
	}
	if cfg.Contact.Latency != 250*time.Millisecond {
		t.Errorf("latency: got %v", cfg.Contact.Latency)
	}
	if !cfg.Contact.UsesInbox() || cfg.Contact.UsesSMTP() {
		t.Errorf("backend flags wrong for %q", cfg.Contact.Backend)
	}
	if cfg.Contact.NoticeDuration != 5*time.Second {
		t.Errorf("unset keys should keep defaults, got notice %v", cfg.Contact.NoticeDuration)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LIVEFOLIO_SERVER__ADDRESS", ":9000")
	t.Setenv("LIVEFOLIO_CONTACT__LATENCY", "2s")
	t.Setenv("LIVEFOLIO_CONTACT__SIMULATE_FAILURE", "true")
	t.Setenv("LIVEFOLIO_INTERACTION__SCROLL_THRESHOLD", "80")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Address != ":9000" {
		t.Errorf("address: got %q", cfg.Server.Address)
	}
	if cfg.Contact.Latency != 2*time.Second {
		t.Errorf("latency: got %v", cfg.Contact.Latency)
	}
	if !cfg.Contact.SimulateFailure {
		t.Error("expected simulate_failure from env")
	}
	if cfg.Interaction.ScrollThreshold != 80 {
		t.Errorf("scroll_threshold: got %v", cfg.Interaction.ScrollThreshold)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"LIVEFOLIO_LOG__LEVEL":        "log.level",
		"LIVEFOLIO_CONTACT__SMTP__TO": "contact.smtp.to",
		"LIVEFOLIO_RESUME__PATH":      "resume.path",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Contact.Backend = "carrier-pigeon" }, "invalid contact.backend"},
		{"negative latency", func(c *Config) { c.Contact.Latency = -time.Second }, "contact.latency"},
		{"negative notice", func(c *Config) { c.Contact.NoticeDuration = -1 }, "contact.notice_duration"},
		{"negative probe", func(c *Config) { c.Interaction.ProbeOffset = -5 }, "probe_offset"},
		{"negative threshold", func(c *Config) { c.Interaction.ScrollThreshold = -1 }, "scroll_threshold"},
		{"smtp without host", func(c *Config) { c.Contact.Backend = BackendSMTP }, "contact.smtp.host"},
		{"persist without cookie", func(c *Config) { c.Theme.Persist = true; c.Theme.Cookie = "" }, "theme.cookie"},
		{"empty address", func(c *Config) { c.Server.Address = "" }, "server.address"},
		{"inbox without database", func(c *Config) { c.Contact.Backend = BackendInbox; c.Contact.Database = "" }, "contact.database"},
		{"negative per-ip cap", func(c *Config) { c.Server.MaxPerIP = -1 }, "server.max_per_ip"},
		{"rate limit without window", func(c *Config) { c.Contact.RateLimit.Window = 0 }, "contact.rate_limit.window"},
		{"negative rate limit", func(c *Config) { c.Contact.RateLimit.Count = -1 }, "contact.rate_limit.count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_SMTPComplete(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contact.Backend = BackendInboxSMTP
	cfg.Contact.SMTP.Host = "smtp.example.com"
	cfg.Contact.SMTP.To = "me@example.com"

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
