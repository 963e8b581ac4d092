package delivery

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/pranayvarade/livefolio/internal/config"
	"github.com/pranayvarade/livefolio/internal/inbox"
	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/pkg/logging"
	"github.com/pranayvarade/livefolio/pkg/retry"
)

func testForm() interaction.ContactForm {
	return interaction.ContactForm{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hello",
		Message: "line one\nline two",
	}
}

func TestSimulated(t *testing.T) {
	tests := []struct {
		name    string
		backend Simulated
		wantErr error
	}{
		{"succeeds", Simulated{Latency: time.Millisecond}, nil},
		{"fails", Simulated{Latency: time.Millisecond, Fail: true}, ErrSimulatedFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.backend.Submit(context.Background(), testForm())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSimulated_HonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Simulated{Latency: time.Minute}.Submit(ctx, testForm())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("expected cancel to cut the latency short")
	}
}

func TestInbox(t *testing.T) {
	store, err := inbox.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := (Inbox{Store: store}).Submit(context.Background(), testForm()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	msgs, _ := store.List(context.Background(), 0)
	if len(msgs) != 1 || msgs[0].Form != testForm() {
		t.Errorf("expected stored form, got %+v", msgs)
	}
}

func TestNotifying(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		recordErr error
		notifyErr error
		wantErr   error
		wantCalls string
		wantLog   bool
	}{
		{"both succeed", nil, nil, nil, "rn", false},
		{"record fails", boom, nil, boom, "r", false},
		{"notify fails", nil, boom, nil, "rn", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls string
			var buf bytes.Buffer
			logger, _ := logging.New("debug", false, &buf)

			n := Notifying{
				Record: interaction.BackendFunc(func(ctx context.Context, f interaction.ContactForm) error {
					calls += "r"
					return tt.recordErr
				}),
				Notify: interaction.BackendFunc(func(ctx context.Context, f interaction.ContactForm) error {
					calls += "n"
					return tt.notifyErr
				}),
				Logger: logger,
			}

			if err := n.Submit(context.Background(), testForm()); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if calls != tt.wantCalls {
				t.Errorf("expected calls %q, got %q", tt.wantCalls, calls)
			}
			if got := strings.Contains(buf.String(), "contact notification failed"); got != tt.wantLog {
				t.Errorf("expected logged=%v, got %q", tt.wantLog, buf.String())
			}
		})
	}
}

func TestFromConfig_InboxSMTPStoresOnce(t *testing.T) {
	store, err := inbox.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	cfg := config.DefaultConfig().Contact
	cfg.Backend = config.BackendInboxSMTP
	cfg.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: 587, To: "me@example.com"}
	cfg.RateLimit = config.RateLimit{}

	b, err := FromConfig(cfg, store, nil)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	mail := SMTPOf(b)
	mail.Retry = &retry.Config{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	mail.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("mail relay down")
	}

	if err := b.Submit(context.Background(), testForm()); err != nil {
		t.Fatalf("expected a stored message to count as delivered, got %v", err)
	}
	if count, _ := store.Count(context.Background()); count != 1 {
		t.Errorf("expected exactly one stored message, got %d", count)
	}
}

func TestFromConfig(t *testing.T) {
	store, err := inbox.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	smtpCfg := config.SMTPConfig{Host: "smtp.example.com", Port: 587, To: "me@example.com"}

	tests := []struct {
		backend string
		store   *inbox.Store
		check   func(b interaction.Backend) bool
		wantErr bool
	}{
		{config.BackendSimulated, nil, func(b interaction.Backend) bool { _, ok := b.(Simulated); return ok }, false},
		{config.BackendInbox, store, func(b interaction.Backend) bool { _, ok := b.(Inbox); return ok }, false},
		{config.BackendInbox, nil, nil, true},
		{config.BackendSMTP, nil, func(b interaction.Backend) bool { _, ok := b.(*SMTP); return ok }, false},
		{config.BackendInboxSMTP, store, func(b interaction.Backend) bool { _, ok := b.(Notifying); return ok }, false},
		{"pigeon", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.DefaultConfig().Contact
			cfg.Backend = tt.backend
			cfg.SMTP = smtpCfg
			cfg.RateLimit = config.RateLimit{}

			b, err := FromConfig(cfg, tt.store, nil)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromConfig failed: %v", err)
			}
			if !tt.check(b) {
				t.Errorf("unexpected backend %T", b)
			}
		})
	}
}

func TestSMTPOf(t *testing.T) {
	mail := NewSMTP(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, nil)

	tests := []struct {
		name    string
		backend interaction.Backend
		want    *SMTP
	}{
		{"direct", mail, mail},
		{"notify", Notifying{Record: Simulated{}, Notify: mail}, mail},
		{"nested", Notifying{Record: Notifying{Record: mail, Notify: Simulated{}}, Notify: Simulated{}}, mail},
		{"none", Simulated{}, nil},
		{"throttled", NewThrottled(Notifying{Record: Simulated{}, Notify: mail}, 1, time.Minute, nil), mail},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		if got := SMTPOf(tt.backend); got != tt.want {
			t.Errorf("%s: SMTPOf = %p, want %p", tt.name, got, tt.want)
		}
	}
}

func TestFromConfig_SimulatedSettings(t *testing.T) {
	cfg := config.DefaultConfig().Contact
	cfg.Latency = 10 * time.Millisecond
	cfg.SimulateFailure = true
	cfg.RateLimit = config.RateLimit{}

	b, _ := FromConfig(cfg, nil, nil)
	sim := b.(Simulated)
	if sim.Latency != 10*time.Millisecond || !sim.Fail {
		t.Errorf("unexpected simulated backend %+v", sim)
	}
}

func TestFromConfig_Throttled(t *testing.T) {
	cfg := config.DefaultConfig().Contact
	cfg.Latency = 0

	b, err := FromConfig(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	th, ok := b.(*Throttled)
	if !ok {
		t.Fatalf("expected *Throttled, got %T", b)
	}
	if _, ok := th.Next.(Simulated); !ok {
		t.Errorf("expected simulated backend inside, got %T", th.Next)
	}
}

func TestThrottled_LogOmitsSender(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := logging.New("debug", false, &buf)
	th := NewThrottled(Simulated{}, 1, time.Hour, logger)

	th.Submit(context.Background(), testForm())
	if err := th.Submit(context.Background(), testForm()); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "contact submission throttled") {
		t.Errorf("expected a throttle warning, got %q", out)
	}
	if strings.Contains(out, "ada@example.com") {
		t.Errorf("expected the sender address to stay out of the log, got %q", out)
	}
}

func TestThrottled(t *testing.T) {
	var calls int
	next := interaction.BackendFunc(func(ctx context.Context, form interaction.ContactForm) error {
		calls++
		return nil
	})
	th := NewThrottled(next, 2, time.Hour, nil)
	ctx := context.Background()

	form := testForm()
	for i := 0; i < 2; i++ {
		if err := th.Submit(ctx, form); err != nil {
			t.Fatalf("submission %d: %v", i+1, err)
		}
	}

	// The sender key ignores case and surrounding space.
	form.Email = "  ADA@example.com "
	if err := th.Submit(ctx, form); !errors.Is(err, ErrThrottled) {
		t.Errorf("expected ErrThrottled, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls to reach the backend, got %d", calls)
	}

	form.Email = "grace@example.com"
	if err := th.Submit(ctx, form); err != nil {
		t.Errorf("other senders should not be throttled: %v", err)
	}
}

type sent struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestSMTP(fail func(n int) error) (*SMTP, *[]sent) {
	s := NewSMTP(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     2525,
		Username: "site@example.com",
		Password: "secret",
		To:       "me@example.com",
	}, nil)
	s.Retry = &retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	var calls []sent
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls = append(calls, sent{addr, a, from, to, string(msg)})
		if fail != nil {
			return fail(len(calls))
		}
		return nil
	}
	return s, &calls
}

func TestSMTP_Sends(t *testing.T) {
	s, calls := newTestSMTP(nil)

	if err := s.Submit(context.Background(), testForm()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(*calls))
	}

	c := (*calls)[0]
	if c.addr != "smtp.example.com:2525" || c.from != "site@example.com" || c.to[0] != "me@example.com" {
		t.Errorf("unexpected envelope %+v", c)
	}
	if c.auth == nil {
		t.Error("expected auth when a username is set")
	}
	for _, want := range []string{
		"Subject: Portfolio Contact: Hello\r\n",
		"Reply-To: ada@example.com\r\n",
		"line one\r\nline two",
	} {
		if !strings.Contains(c.msg, want) {
			t.Errorf("message missing %q:\n%s", want, c.msg)
		}
	}
}

func TestSMTP_HeaderInjection(t *testing.T) {
	s, calls := newTestSMTP(nil)
	form := testForm()
	form.Subject = "Hi\r\nBcc: victim@example.com"

	s.Submit(context.Background(), form)

	msg := (*calls)[0].msg
	header := msg[:strings.Index(msg, "\r\n\r\n")]
	if strings.Contains(header, "\r\nBcc:") {
		t.Errorf("subject injected a header:\n%s", header)
	}
}

func TestSMTP_RetriesTransientFailures(t *testing.T) {
	s, calls := newTestSMTP(func(n int) error {
		if n < 3 {
			return errors.New("421 try again")
		}
		return nil
	})

	if err := s.Submit(context.Background(), testForm()); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(*calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(*calls))
	}
}

func TestSMTP_BreakerOpens(t *testing.T) {
	s, calls := newTestSMTP(func(n int) error { return errors.New("relay down") })
	s.Retry.MaxRetries = 0

	for i := 0; i < 5; i++ {
		if err := s.Submit(context.Background(), testForm()); err == nil {
			t.Fatal("expected failure")
		}
	}
	if s.BreakerState() != retry.CircuitOpen {
		t.Fatalf("expected open breaker, got %s", s.BreakerState())
	}

	err := s.Submit(context.Background(), testForm())
	if !errors.Is(err, retry.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if len(*calls) != 5 {
		t.Errorf("expected no send while open, got %d sends", len(*calls))
	}
}
