package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pranayvarade/livefolio/internal/config"
	"github.com/pranayvarade/livefolio/internal/inbox"
	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/pkg/logging"
	"github.com/pranayvarade/livefolio/pkg/shutdown"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "livefolio.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "livefolio "+version+"\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestResumeCheckCommand(t *testing.T) {
	cfgPath := writeConfig(t, "log:\n  level: info\n")

	out, err := execute(t, "resume", "check", "--config", cfgPath)
	if err != nil {
		t.Fatalf("resume check failed: %v", err)
	}
	for _, s := range []string{"embedded resume: OK", "Pranay Varade", "projects:   4", "Full-Stack"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in %q", s, out)
		}
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("personal: [\n"), 0o644)
	if _, err := execute(t, "resume", "check", "--file", bad); err == nil {
		t.Error("expected invalid YAML to fail")
	}
	resumeFile = ""
}

func TestInboxListCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "inbox.db")
	cfgPath := writeConfig(t, "contact:\n  database: "+db+"\n")

	out, err := execute(t, "inbox", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("inbox list failed: %v", err)
	}
	if !strings.Contains(out, "No messages.") {
		t.Errorf("expected an empty inbox, got %q", out)
	}

	store, err := inbox.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Save(context.Background(), interaction.ContactForm{
		Name: "Ada", Email: "ada@example.com", Subject: "Hello", Message: "Hi",
	})
	store.Close()
	if err != nil {
		t.Fatal(err)
	}

	out, err = execute(t, "inbox", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("inbox list failed: %v", err)
	}
	if !strings.Contains(out, "RECEIVED") || !strings.Contains(out, "ada@example.com") {
		t.Errorf("unexpected listing %q", out)
	}

	out, err = execute(t, "inbox", "list", "--config", cfgPath, "--json")
	if err != nil {
		t.Fatalf("inbox list --json failed: %v", err)
	}
	var msgs []messageJSON
	if err := json.Unmarshal([]byte(out), &msgs); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(msgs) != 1 || msgs[0].Subject != "Hello" {
		t.Errorf("unexpected messages %+v", msgs)
	}
	inboxJSON = false
}

func TestNewApp(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Contact.Backend = config.BackendInbox
	cfg.Contact.Database = filepath.Join(t.TempDir(), "inbox.db")

	a, err := newApp(cfg, logging.NopLogger{})
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Close()

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html", `data-section="projects"`},
		{"/assets/livefolio.css", "text/css", ":root{"},
		{"/assets/livefolio.js", "text/javascript", "phx_join"},
		{"/healthz", "application/json", `"alive"`},
		{"/readyz", "application/json", `"inbox"`},
		{"/metrics", "text/plain", "livefolio_connections_active"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("expected %s, got %q", tt.contentType, ct)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("expected %q in body", tt.contains)
			}
			if rec.Header().Get("Content-Security-Policy") == "" {
				t.Error("expected security headers")
			}
		})
	}
}

func TestNewApp_PerIPLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxPerIP = 1
	cfg.Server.Metrics = false

	a, err := newApp(cfg, logging.NopLogger{})
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Close()

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected /metrics to be off, got %d", rec.Code)
	}

	// Sequential requests each release their slot.
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRegisterShutdown_Order(t *testing.T) {
	cfg := config.DefaultConfig()
	a, err := newApp(cfg, logging.NopLogger{})
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}

	var order []string
	sd := shutdown.NewHandler(&shutdown.Config{
		Timeout: time.Second,
		OnHookComplete: func(name string, err error, d time.Duration) {
			order = append(order, name)
		},
	})
	stop := make(chan struct{})
	registerShutdown(sd, &http.Server{}, a, stop)

	if err := sd.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	want := []string{"http", "live", "cleanup", "inbox"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("expected order %v, got %v", want, order)
	}
	select {
	case <-stop:
	default:
		t.Error("expected the cleanup hook to close stop")
	}
}

func TestNewApp_BadResume(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Resume.Path = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := newApp(cfg, logging.NopLogger{}); err == nil {
		t.Error("expected a missing resume to fail")
	}
}
