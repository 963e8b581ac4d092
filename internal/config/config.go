// Package config loads livefolio settings from defaults, an optional YAML
// file and LIVEFOLIO_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: LIVEFOLIO_CONTACT__BACKEND sets contact.backend.
const EnvPrefix = "LIVEFOLIO_"

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "livefolio.yml"

// Contact backends.
const (
	BackendSimulated = "simulated"
	BackendInbox     = "inbox"
	BackendSMTP      = "smtp"
	BackendInboxSMTP = "inbox+smtp"
)

var validBackends = map[string]bool{
	BackendSimulated: true,
	BackendInbox:     true,
	BackendSMTP:      true,
	BackendInboxSMTP: true,
}

// Config is the top-level configuration, corresponding to livefolio.yml.
type Config struct {
	Server      ServerConfig      `yaml:"server" koanf:"server"`
	Log         LogConfig         `yaml:"log" koanf:"log"`
	Interaction InteractionConfig `yaml:"interaction" koanf:"interaction"`
	Theme       ThemeConfig       `yaml:"theme" koanf:"theme"`
	Contact     ContactConfig     `yaml:"contact" koanf:"contact"`
	Resume      ResumeConfig      `yaml:"resume" koanf:"resume"`
}

// ServerConfig holds HTTP and WebSocket settings.
type ServerConfig struct {
	Address        string   `yaml:"address" koanf:"address"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	InsecureDev    bool     `yaml:"insecure_dev" koanf:"insecure_dev"`
	MaxConnections int      `yaml:"max_connections" koanf:"max_connections"`
	MaxPerIP       int      `yaml:"max_per_ip" koanf:"max_per_ip"`
	Codec          string   `yaml:"codec" koanf:"codec"`
	Metrics        bool     `yaml:"metrics" koanf:"metrics"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	JSON  bool   `yaml:"json" koanf:"json"`
}

// InteractionConfig tunes the scroll tracker.
type InteractionConfig struct {
	ScrollThreshold float64 `yaml:"scroll_threshold" koanf:"scroll_threshold"`
	ProbeOffset     float64 `yaml:"probe_offset" koanf:"probe_offset"`
}

// ThemeConfig controls dark-mode persistence.
type ThemeConfig struct {
	Persist bool   `yaml:"persist" koanf:"persist"`
	Cookie  string `yaml:"cookie" koanf:"cookie"`
}

// ContactConfig selects and tunes the contact submission backend.
type ContactConfig struct {
	Backend         string        `yaml:"backend" koanf:"backend"`
	Latency         time.Duration `yaml:"latency" koanf:"latency"`
	NoticeDuration  time.Duration `yaml:"notice_duration" koanf:"notice_duration"`
	SimulateFailure bool          `yaml:"simulate_failure" koanf:"simulate_failure"`
	Database        string        `yaml:"database" koanf:"database"`
	SMTP            SMTPConfig    `yaml:"smtp" koanf:"smtp"`
	RateLimit       RateLimit     `yaml:"rate_limit" koanf:"rate_limit"`
}

// RateLimit allows Count submissions per sender address within Window.
// A zero Count disables it.
type RateLimit struct {
	Count  int           `yaml:"count" koanf:"count"`
	Window time.Duration `yaml:"window" koanf:"window"`
}

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host     string `yaml:"host" koanf:"host"`
	Port     int    `yaml:"port" koanf:"port"`
	Username string `yaml:"username" koanf:"username"`
	Password string `yaml:"password" koanf:"password"`
	From     string `yaml:"from" koanf:"from"`
	To       string `yaml:"to" koanf:"to"`
}

// ResumeConfig points at resume data. An empty path uses the embedded data.
type ResumeConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// UsesInbox reports whether submissions are stored in the SQLite inbox.
func (c ContactConfig) UsesInbox() bool {
	return c.Backend == BackendInbox || c.Backend == BackendInboxSMTP
}

// UsesSMTP reports whether submissions are mailed.
func (c ContactConfig) UsesSMTP() bool {
	return c.Backend == BackendSMTP || c.Backend == BackendInboxSMTP
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":3000",
			MaxConnections: 10000,
			MaxPerIP:       50,
			Codec:          "phoenix",
			Metrics:        true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Interaction: InteractionConfig{
			ScrollThreshold: 50,
			ProbeOffset:     100,
		},
		Theme: ThemeConfig{
			Cookie: "livefolio_theme",
		},
		Contact: ContactConfig{
			Backend:        BackendSimulated,
			Latency:        time.Second,
			NoticeDuration: 5 * time.Second,
			Database:       "data/inbox.db",
			SMTP: SMTPConfig{
				Port: 587,
			},
			RateLimit: RateLimit{
				Count:  5,
				Window: time.Hour,
			},
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps LIVEFOLIO_CONTACT__SMTP__HOST to contact.smtp.host.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections must be non-negative")
	}
	if c.Server.MaxPerIP < 0 {
		return fmt.Errorf("server.max_per_ip must be non-negative")
	}
	if c.Interaction.ScrollThreshold < 0 {
		return fmt.Errorf("interaction.scroll_threshold must be non-negative")
	}
	if c.Interaction.ProbeOffset < 0 {
		return fmt.Errorf("interaction.probe_offset must be non-negative")
	}
	if c.Theme.Persist && c.Theme.Cookie == "" {
		return fmt.Errorf("theme.cookie is required when theme.persist is set")
	}

	if !validBackends[c.Contact.Backend] {
		return fmt.Errorf("invalid contact.backend %q: must be one of simulated, inbox, smtp, inbox+smtp", c.Contact.Backend)
	}
	if c.Contact.Latency < 0 {
		return fmt.Errorf("contact.latency must be non-negative")
	}
	if c.Contact.NoticeDuration < 0 {
		return fmt.Errorf("contact.notice_duration must be non-negative")
	}
	if c.Contact.RateLimit.Count < 0 {
		return fmt.Errorf("contact.rate_limit.count must be non-negative")
	}
	if c.Contact.RateLimit.Count > 0 && c.Contact.RateLimit.Window <= 0 {
		return fmt.Errorf("contact.rate_limit.window must be positive when count is set")
	}
	if c.Contact.UsesInbox() && c.Contact.Database == "" {
		return fmt.Errorf("contact.database is required for the %s backend", c.Contact.Backend)
	}
	if c.Contact.UsesSMTP() {
		if c.Contact.SMTP.Host == "" || c.Contact.SMTP.To == "" {
			return fmt.Errorf("contact.smtp.host and contact.smtp.to are required for the %s backend", c.Contact.Backend)
		}
		if c.Contact.SMTP.Port <= 0 {
			return fmt.Errorf("contact.smtp.port must be positive")
		}
	}

	return nil
}
