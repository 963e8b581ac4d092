// Package testing drives live components without a browser or a WebSocket.
// The harness plays the router's part: it mounts the component on a socket
// backed by a MockTransport, dispatches events and info messages one at a
// time, and re-renders after each.
package testing

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pranayvarade/livefolio/pkg/core"
)

// LiveViewTest is a mounted component under test.
type LiveViewTest struct {
	t         *testing.T
	ctx       context.Context
	component core.Component
	transport *MockTransport
	socket    *core.Socket
	params    core.Params
	session   core.Session
	rendered  string
	events    []string

	terminated bool
}

// MountOption configures the test mount.
type MountOption func(*LiveViewTest)

// WithParams sets mount parameters.
func WithParams(params core.Params) MountOption {
	return func(lvt *LiveViewTest) {
		lvt.params = params
	}
}

// WithSession sets session data, for example captured cookies.
func WithSession(session core.Session) MountOption {
	return func(lvt *LiveViewTest) {
		lvt.session = session
	}
}

// WithCookie adds a request cookie to the session.
func WithCookie(name, value string) MountOption {
	return func(lvt *LiveViewTest) {
		if lvt.session == nil {
			lvt.session = core.Session{}
		}
		lvt.session["cookie:"+name] = value
	}
}

// Disconnected mounts the component the way a plain HTTP request does,
// without a socket.
func Disconnected() MountOption {
	return func(lvt *LiveViewTest) {
		lvt.socket = nil
	}
}

// Mount creates and mounts a component for testing. The component is
// terminated with TerminateNormal when the test ends.
func Mount(t *testing.T, comp core.Component, opts ...MountOption) *LiveViewTest {
	t.Helper()

	lvt := &LiveViewTest{
		t:         t,
		component: comp,
		transport: NewMockTransport(),
		params:    core.Params{},
		session:   core.Session{},
	}
	lvt.socket = core.NewSocket(lvt.transport.ID, lvt.transport)

	for _, opt := range opts {
		opt(lvt)
	}

	lvt.ctx = context.Background()

	if lvt.socket != nil {
		if setter, ok := comp.(interface{ SetSocket(*core.Socket) }); ok {
			setter.SetSocket(lvt.socket)
		}
	}

	if err := comp.Mount(lvt.ctx, lvt.params, lvt.session); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	lvt.render()

	t.Cleanup(func() {
		lvt.Terminate(core.TerminateNormal)
	})

	return lvt
}

// Terminate ends the component the way the router does when a connection
// goes away. Later calls do nothing.
func (lvt *LiveViewTest) Terminate(reason core.TerminateReason) error {
	if lvt.terminated {
		return nil
	}
	lvt.terminated = true

	err := lvt.component.Terminate(context.WithoutCancel(lvt.ctx), reason)
	if lvt.socket != nil {
		lvt.socket.Close()
	}
	return err
}

// Event dispatches a client event and re-renders. Handler errors are
// returned so tests can check rejected input.
func (lvt *LiveViewTest) Event(name string, payload map[string]any) error {
	lvt.t.Helper()
	lvt.events = append(lvt.events, name)

	if payload == nil {
		payload = map[string]any{}
	}
	if err := lvt.component.HandleEvent(lvt.ctx, name, payload); err != nil {
		return err
	}

	lvt.render()
	return nil
}

// MustEvent is Event that fails the test on error.
func (lvt *LiveViewTest) MustEvent(name string, payload map[string]any) *LiveViewTest {
	lvt.t.Helper()
	if err := lvt.Event(name, payload); err != nil {
		lvt.t.Fatalf("HandleEvent(%q) failed: %v", name, err)
	}
	return lvt
}

// Info delivers msg to HandleInfo and re-renders.
func (lvt *LiveViewTest) Info(msg any) *LiveViewTest {
	lvt.t.Helper()

	if err := lvt.component.HandleInfo(lvt.ctx, msg); err != nil {
		lvt.t.Errorf("HandleInfo failed: %v", err)
		return lvt
	}

	lvt.render()
	return lvt
}

// AwaitInfo waits for the next message the component posted with
// Socket.SendInfo and delivers it. It returns false on timeout.
func (lvt *LiveViewTest) AwaitInfo(timeout time.Duration) bool {
	lvt.t.Helper()
	if lvt.socket == nil {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-lvt.socket.Info():
		lvt.Info(msg)
		return true
	case <-timer.C:
		return false
	}
}

// DrainInfo delivers queued info messages until none arrives within quiet.
// It returns how many were delivered.
func (lvt *LiveViewTest) DrainInfo(quiet time.Duration) int {
	lvt.t.Helper()

	n := 0
	for lvt.AwaitInfo(quiet) {
		n++
	}
	return n
}

func (lvt *LiveViewTest) render() {
	lvt.t.Helper()

	renderer := lvt.component.Render(lvt.ctx)
	if renderer == nil {
		lvt.t.Fatalf("Render returned nil")
	}

	var buf bytes.Buffer
	if err := renderer.Render(lvt.ctx, &buf); err != nil {
		lvt.t.Fatalf("Render failed: %v", err)
	}

	lvt.rendered = buf.String()
}

// HTML returns the current rendered HTML.
func (lvt *LiveViewTest) HTML() string {
	return lvt.rendered
}

// AssertText verifies the rendered output contains text.
func (lvt *LiveViewTest) AssertText(text string) *LiveViewTest {
	lvt.t.Helper()

	if !strings.Contains(lvt.rendered, text) {
		lvt.t.Errorf("Text not found: %q\nRendered HTML:\n%s", text, lvt.rendered)
	}
	return lvt
}

// AssertNoText verifies the rendered output does not contain text.
func (lvt *LiveViewTest) AssertNoText(text string) *LiveViewTest {
	lvt.t.Helper()

	if strings.Contains(lvt.rendered, text) {
		lvt.t.Errorf("Text should not exist: %q", text)
	}
	return lvt
}

// AssertAssign verifies an assign value on components that expose Assigns.
func (lvt *LiveViewTest) AssertAssign(key string, expected any) *LiveViewTest {
	lvt.t.Helper()

	getter, ok := lvt.component.(interface{ Assigns() *core.Assigns })
	if !ok {
		lvt.t.Errorf("Component %T has no assigns", lvt.component)
		return lvt
	}

	actual := getter.Assigns().Get(key)
	if !reflect.DeepEqual(actual, expected) {
		lvt.t.Errorf("Assign %s mismatch:\n  Expected: %v (%T)\n  Actual:   %v (%T)",
			key, expected, expected, actual, actual)
	}
	return lvt
}

// AssertPushed verifies at least one message with event was pushed and
// returns the last one.
func (lvt *LiveViewTest) AssertPushed(event string) core.Message {
	lvt.t.Helper()

	msgs := lvt.transport.SentEvents(event)
	if len(msgs) == 0 {
		lvt.t.Errorf("No %q push; sent %d messages", event, lvt.transport.SentCount())
		return core.Message{}
	}
	return msgs[len(msgs)-1]
}

// Transport returns the mock transport.
func (lvt *LiveViewTest) Transport() *MockTransport {
	return lvt.transport
}

// Socket returns the socket, or nil for a disconnected mount.
func (lvt *LiveViewTest) Socket() *core.Socket {
	return lvt.socket
}

// Component returns the component under test.
func (lvt *LiveViewTest) Component() core.Component {
	return lvt.component
}

// Events returns the names of dispatched events.
func (lvt *LiveViewTest) Events() []string {
	return lvt.events
}
