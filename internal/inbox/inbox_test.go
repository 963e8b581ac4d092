package inbox

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pranayvarade/livefolio/internal/interaction"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func form(subject string) interaction.ContactForm {
	return interaction.ContactForm{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: subject,
		Message: "Hello there",
	}
}

func TestSaveAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, form("first"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if first.ID == "" || first.ReceivedAt.IsZero() {
		t.Errorf("expected id and timestamp, got %+v", first)
	}
	if _, err := s.Save(ctx, form("second")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	msgs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Form.Subject != "second" {
		t.Errorf("expected newest first, got %q", msgs[0].Form.Subject)
	}
	if msgs[1].Form != form("first") {
		t.Errorf("form did not round-trip: %+v", msgs[1].Form)
	}
}

func TestListLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.Save(ctx, form("x"))
	}

	msgs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Errorf("expected 2 messages, got %d", len(msgs))
	}
}

func TestCountAndPing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("expected empty inbox, got %d", n)
	}
	withCompany := form("hi")
	withCompany.Company = "Acme"
	s.Save(ctx, withCompany)

	if n, err := s.Count(ctx); err != nil || n != 1 {
		t.Errorf("expected 1 message, got %d (%v)", n, err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "inbox.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s.Save(context.Background(), form("persisted"))
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	if n, _ := s.Count(context.Background()); n != 1 {
		t.Errorf("expected message to persist, got %d", n)
	}
	if s.Path() != path {
		t.Errorf("unexpected path %q", s.Path())
	}
}

func TestOpenFile_Pragmas(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "inbox.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("reading journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %q", mode)
	}

	var timeout int
	if err := s.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("reading busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy_timeout 5000, got %d", timeout)
	}
}

func TestClosedStore(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected ping on closed store to fail")
	}
	if _, err := s.Save(context.Background(), form("x")); err == nil {
		t.Error("expected save on closed store to fail")
	}
}
