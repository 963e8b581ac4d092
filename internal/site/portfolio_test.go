package site

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pranayvarade/livefolio/internal/interaction"
	"github.com/pranayvarade/livefolio/pkg/js"
	"github.com/pranayvarade/livefolio/pkg/metrics"
	livetest "github.com/pranayvarade/livefolio/pkg/testing"
)

// recordingBackend counts submissions. With a gate it blocks until the gate
// closes or the call is canceled.
type recordingBackend struct {
	mu       sync.Mutex
	forms    []interaction.ContactForm
	err      error
	gate     chan struct{}
	canceled chan error
}

func (b *recordingBackend) Submit(ctx context.Context, form interaction.ContactForm) error {
	b.mu.Lock()
	b.forms = append(b.forms, form)
	b.mu.Unlock()

	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			if b.canceled != nil {
				b.canceled <- ctx.Err()
			}
			return ctx.Err()
		}
	}
	return b.err
}

func (b *recordingBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.forms)
}

var validSubmit = map[string]any{
	"name":    "Ada Lovelace",
	"email":   "ada@example.com",
	"company": "Analytical Engines",
	"subject": "Hiring",
	"message": "Let's talk.",
}

func mountPortfolio(t *testing.T, opts Options, mountOpts ...livetest.MountOption) (*Portfolio, *livetest.LiveViewTest) {
	t.Helper()
	p := NewPortfolio(opts)
	return p, livetest.Mount(t, p, mountOpts...)
}

// lastOps returns the ops of the most recent client command batch.
func lastOps(t *testing.T, lvt *livetest.LiveViewTest) []map[string]any {
	t.Helper()
	msg := lvt.AssertPushed(js.Event)
	ops, _ := msg.Payload["ops"].([]map[string]any)
	return ops
}

func hasOp(ops []map[string]any, name, key, value string) bool {
	for _, op := range ops {
		if op["op"] == name && op[key] == value {
			return true
		}
	}
	return false
}

func TestPortfolio_InitialRender(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{})

	lvt.AssertText("Hi, I'm").
		AssertText("Pranay Varade").
		AssertText(`data-slot="header"`).
		AssertText(`data-slot="project-filters"`).
		AssertText(`data-slot="projects"`).
		AssertText(`data-slot="contact-form"`).
		AssertText(`data-slot="toasts"`)

	for _, id := range interaction.Sections() {
		lvt.AssertText(`data-section="` + string(id) + `"`)
	}

	lvt.AssertAssign("scrolled", false).
		AssertAssign("active", "hero").
		AssertAssign("dark", false).
		AssertAssign("menu", false).
		AssertAssign("category", "all").
		AssertAssign("submission", "idle")

	if ops := lastOps(t, lvt); !hasOp(ops, "set_attr", "value", scrollOn) {
		t.Errorf("expected scroll sampling to start, got %v", ops)
	}
}

func TestPortfolio_Scroll(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{})

	sample := func(y float64, hero, about [2]float64) map[string]any {
		return map[string]any{
			"y": y,
			"sections": map[string]any{
				"hero":  map[string]any{"top": hero[0], "bottom": hero[1]},
				"about": map[string]any{"top": about[0], "bottom": about[1]},
				"bogus": map[string]any{"top": 0.0, "bottom": 1.0},
			},
		}
	}

	lvt.MustEvent(EventScroll, sample(50, [2]float64{-50, 750}, [2]float64{750, 1500}))
	lvt.AssertAssign("scrolled", false).AssertAssign("active", "hero")

	lvt.MustEvent(EventScroll, sample(800, [2]float64{-800, -50}, [2]float64{-50, 700}))
	lvt.AssertAssign("scrolled", true).AssertAssign("active", "about")
	lvt.AssertText("site-header-scrolled").AssertText(`aria-current="true">About</button>`)

	// A gap at the probe line keeps the previous section.
	lvt.MustEvent(EventScroll, sample(1000, [2]float64{-1000, -250}, [2]float64{150, 900}))
	lvt.AssertAssign("active", "about")

	if err := lvt.Event(EventScroll, map[string]any{}); err == nil {
		t.Error("expected an error for a sample without an offset")
	}
}

func TestPortfolio_NavigateClosesMenu(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{})

	lvt.MustEvent(EventToggleMenu, nil)
	lvt.AssertAssign("menu", true).AssertText(`id="mobile-menu"`)

	lvt.MustEvent(EventNavigate, map[string]any{"section": "projects"})
	lvt.AssertAssign("menu", false).AssertNoText(`id="mobile-menu"`)

	if ops := lastOps(t, lvt); !hasOp(ops, "scroll_into_view", "target", "#projects") {
		t.Errorf("expected a scroll to #projects, got %v", ops)
	}
}

func TestPortfolio_NavigateUnknownSection(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{})
	lvt.MustEvent(EventToggleMenu, nil)

	before := lvt.Transport().SentCount()
	lvt.MustEvent(EventNavigate, map[string]any{"section": "blog"})

	lvt.AssertAssign("menu", false)
	if lvt.Transport().SentCount() != before {
		t.Errorf("expected no client commands for an unknown section, sent %v", lvt.Transport().SentMessages())
	}
}

func TestPortfolio_ToggleTheme(t *testing.T) {
	p, lvt := mountPortfolio(t, Options{})

	lvt.MustEvent(EventToggleTheme, nil)
	lvt.AssertAssign("dark", true)
	if !p.DarkMode() {
		t.Error("expected DarkMode to report true")
	}
	ops := lastOps(t, lvt)
	if !hasOp(ops, "add_class", "class", "dark") {
		t.Errorf("expected add_class dark, got %v", ops)
	}
	if hasOp(ops, "set_cookie", "name", "livefolio_theme") {
		t.Error("theme must not persist unless enabled")
	}

	lvt.MustEvent(EventToggleTheme, nil)
	lvt.AssertAssign("dark", false)
	if ops := lastOps(t, lvt); !hasOp(ops, "remove_class", "class", "dark") {
		t.Errorf("expected remove_class dark, got %v", ops)
	}
}

func TestPortfolio_MountWritesMode(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		cookie string
		op     string
	}{
		{"light by default", Options{}, "", "remove_class"},
		{"cookie ignored without persistence", Options{ThemeCookie: "theme"}, "dark", "remove_class"},
		{"restored dark", Options{PersistTheme: true, ThemeCookie: "theme"}, "dark", "add_class"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mountOpts []livetest.MountOption
			if tt.cookie != "" {
				mountOpts = append(mountOpts, livetest.WithCookie("theme", tt.cookie))
			}
			_, lvt := mountPortfolio(t, tt.opts, mountOpts...)

			if ops := lastOps(t, lvt); !hasOp(ops, tt.op, "class", "dark") {
				t.Errorf("expected %s dark on mount, got %v", tt.op, ops)
			}
		})
	}
}

func TestPortfolio_PersistTheme(t *testing.T) {
	opts := Options{PersistTheme: true, ThemeCookie: "theme"}

	p, lvt := mountPortfolio(t, opts, livetest.WithCookie("theme", "dark"))
	if !p.DarkMode() {
		t.Fatal("expected the cookie to restore dark mode")
	}
	if ops := lastOps(t, lvt); !hasOp(ops, "add_class", "class", "dark") {
		t.Errorf("expected restored mode on the page, got %v", ops)
	}

	lvt.MustEvent(EventToggleTheme, nil)
	if ops := lastOps(t, lvt); !hasOp(ops, "set_cookie", "value", "light") {
		t.Errorf("expected the cookie to be updated, got %v", ops)
	}
}

func TestPortfolio_Filter(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{})
	lvt.AssertText("Wageworker Management System").AssertText("All Projects (4)")

	lvt.MustEvent(EventFilter, map[string]any{"category": "frontend"})
	lvt.AssertAssign("category", "frontend").
		AssertText("Data Visualization Dashboard").
		AssertNoText("Wageworker Management System")

	if err := lvt.Event(EventFilter, map[string]any{"category": "games"}); err == nil {
		t.Error("expected an error for an unknown category")
	}
	lvt.AssertAssign("category", "frontend")
}

func TestPortfolio_SubmitSuccess(t *testing.T) {
	backend := &recordingBackend{}
	_, lvt := mountPortfolio(t, Options{Backend: backend, NoticeDuration: time.Hour})

	lvt.MustEvent(EventChange, map[string]any{"field": "name", "value": "Ada"})
	lvt.AssertText(`value="Ada"`)

	lvt.MustEvent(EventSubmit, validSubmit)
	lvt.AssertAssign("submitting", true).AssertText("Sending Message...")

	if !lvt.AwaitInfo(time.Second) {
		t.Fatal("expected a submission result")
	}

	lvt.AssertAssign("submission", "succeeded").
		AssertAssign("form", interaction.ContactForm{}).
		AssertText("Message sent successfully!").
		AssertNoText(`value="Ada Lovelace"`)

	if backend.calls() != 1 || backend.forms[0].Company != "Analytical Engines" {
		t.Errorf("unexpected backend calls %+v", backend.forms)
	}
}

func TestPortfolio_SubmitInvalid(t *testing.T) {
	backend := &recordingBackend{}
	_, lvt := mountPortfolio(t, Options{Backend: backend})

	payload := map[string]any{}
	for k, v := range validSubmit {
		payload[k] = v
	}
	payload["message"] = "  "

	invalid := metrics.Default.Submissions.WithLabel(metrics.SubmissionInvalid)
	before := invalid.Value()

	lvt.MustEvent(EventSubmit, payload)
	lvt.AssertAssign("submission", "idle").AssertText("Message is required")

	if got := invalid.Value() - before; got != 1 {
		t.Errorf("expected one invalid submission counted, got %v", got)
	}

	if backend.calls() != 0 {
		t.Errorf("expected no backend call, got %d", backend.calls())
	}

	lvt.MustEvent(EventChange, map[string]any{"field": "message", "value": "hello"})
	lvt.AssertNoText("Message is required")

	if err := lvt.Event(EventChange, map[string]any{"field": "phone", "value": "1"}); err == nil {
		t.Error("expected an error for an unknown field")
	}
}

func TestPortfolio_SubmitFailureKeepsForm(t *testing.T) {
	backend := &recordingBackend{err: errors.New("smtp down")}
	_, lvt := mountPortfolio(t, Options{Backend: backend, NoticeDuration: time.Hour})

	lvt.MustEvent(EventSubmit, validSubmit)
	if !lvt.AwaitInfo(time.Second) {
		t.Fatal("expected a submission result")
	}

	lvt.AssertAssign("submission", "failed").
		AssertText("Failed to send message").
		AssertText(`value="Ada Lovelace"`).
		AssertText(`role="alert"`)

	// Retry goes straight back to submitting.
	backend.err = nil
	lvt.MustEvent(EventSubmit, nil)
	lvt.AssertAssign("submission", "submitting")
	lvt.AwaitInfo(time.Second)
	lvt.AssertAssign("submission", "succeeded")
}

func TestPortfolio_DoubleSubmit(t *testing.T) {
	backend := &recordingBackend{gate: make(chan struct{})}
	_, lvt := mountPortfolio(t, Options{Backend: backend, NoticeDuration: time.Hour})

	lvt.MustEvent(EventSubmit, validSubmit)
	lvt.MustEvent(EventSubmit, validSubmit)

	close(backend.gate)
	if !lvt.AwaitInfo(time.Second) {
		t.Fatal("expected a submission result")
	}
	if n := lvt.DrainInfo(50 * time.Millisecond); n != 0 {
		t.Errorf("expected exactly one result, drained %d more", n)
	}

	if backend.calls() != 1 {
		t.Errorf("expected one backend call, got %d", backend.calls())
	}
	if n := strings.Count(lvt.HTML(), "Message sent successfully!"); n != 1 {
		t.Errorf("expected one notification, got %d", n)
	}
}

func TestPortfolio_ToastAutoDismiss(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{Backend: &recordingBackend{}, NoticeDuration: 20 * time.Millisecond})

	lvt.MustEvent(EventSubmit, validSubmit)
	lvt.AwaitInfo(time.Second)
	lvt.AssertText("Message sent successfully!")

	if !lvt.AwaitInfo(time.Second) {
		t.Fatal("expected the toast to be dismissed")
	}
	lvt.AssertNoText("Message sent successfully!")
}

func TestPortfolio_DismissToast(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{Backend: &recordingBackend{}, NoticeDuration: time.Hour})

	lvt.MustEvent(EventSubmit, validSubmit)
	lvt.AwaitInfo(time.Second)

	lvt.MustEvent(EventDismissToast, map[string]any{"id": "1"})
	lvt.AssertNoText("Message sent successfully!")
}

func TestPortfolio_TerminateAbandonsSubmission(t *testing.T) {
	backend := &recordingBackend{gate: make(chan struct{}), canceled: make(chan error, 1)}
	_, lvt := mountPortfolio(t, Options{Backend: backend})

	lvt.MustEvent(EventSubmit, validSubmit)
	lvt.Terminate(0)

	select {
	case err := <-backend.canceled:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the backend call to be canceled")
	}

	if ops := lastOps(t, lvt); !hasOp(ops, "set_attr", "value", scrollOff) {
		t.Errorf("expected scroll sampling to stop, got %v", ops)
	}

	lvt.Info(interaction.SubmissionResult{Seq: 1})
	lvt.AssertAssign("submission", "submitting")
}

func TestPortfolio_Disconnected(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{}, livetest.Disconnected())

	lvt.MustEvent(EventScroll, map[string]any{"y": 500.0})
	lvt.AssertAssign("scrolled", false)
}

func TestPortfolio_UnknownEvent(t *testing.T) {
	_, lvt := mountPortfolio(t, Options{})

	if err := lvt.Event("explode", nil); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{int8(-3), -3, true},
		{uint16(300), 300, true},
		{int64(1 << 40), 1 << 40, true},
		{"42", 42, true},
		{"x", 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := number(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("number(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
