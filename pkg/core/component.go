// Package core provides the live component contract and the per-connection
// socket that the router drives.
package core

import (
	"context"
	"io"
)

// Component is a stateful server-side view bound to one browser connection.
// The router calls every method from the connection's message loop, one at
// a time, so implementations need no locking of their own.
type Component interface {
	// Name returns the component type name used in logs.
	Name() string

	// Mount is called once, before the first render.
	Mount(ctx context.Context, params Params, session Session) error

	// Render returns the current HTML. It is called after Mount and after
	// every event or info message.
	Render(ctx context.Context) Renderer

	// HandleEvent processes a user interaction sent by the client.
	HandleEvent(ctx context.Context, event string, payload map[string]any) error

	// HandleInfo processes a message posted with Socket.SendInfo, typically
	// the result of background work or a timer.
	HandleInfo(ctx context.Context, msg any) error

	// Terminate is called when the connection goes away.
	Terminate(ctx context.Context, reason TerminateReason) error
}

// Renderer writes HTML.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// RendererFunc is an adapter to allow ordinary functions to be used as Renderers.
type RendererFunc func(ctx context.Context, w io.Writer) error

func (f RendererFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// Params contains the query parameters of the connection.
type Params map[string]string

// Get returns a parameter value or empty string if not found.
func (p Params) Get(key string) string {
	return p[key]
}

// GetDefault returns a parameter value or the default if not found.
func (p Params) GetDefault(key, defaultValue string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return defaultValue
}

// Session contains request data captured when the connection was opened.
type Session map[string]any

// Get returns a session value.
func (s Session) Get(key string) any {
	return s[key]
}

// GetString returns a session value as string.
func (s Session) GetString(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Cookie returns the value of a request cookie captured in the session.
func (s Session) Cookie(name string) string {
	return s.GetString("cookie:" + name)
}

// TerminateReason indicates why a component is being terminated.
type TerminateReason int

const (
	// TerminateNormal indicates the client left.
	TerminateNormal TerminateReason = iota
	// TerminateShutdown indicates server shutdown.
	TerminateShutdown
	// TerminateError indicates termination due to an error.
	TerminateError
	// TerminateClosed indicates the connection dropped.
	TerminateClosed
)

func (r TerminateReason) String() string {
	switch r {
	case TerminateNormal:
		return "normal"
	case TerminateShutdown:
		return "shutdown"
	case TerminateError:
		return "error"
	case TerminateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// BaseComponent provides default implementations for Component methods.
// Embed it to get a socket and an assigns store.
type BaseComponent struct {
	socket  *Socket
	assigns *Assigns
}

// SetSocket is called by the router before Mount.
func (bc *BaseComponent) SetSocket(s *Socket) {
	bc.socket = s
}

// Socket returns the component's socket, or nil for a plain HTTP render.
func (bc *BaseComponent) Socket() *Socket {
	return bc.socket
}

// Assigns returns the component's assigns store.
func (bc *BaseComponent) Assigns() *Assigns {
	if bc.assigns == nil {
		bc.assigns = NewAssigns()
	}
	return bc.assigns
}

// Connected reports whether the component is bound to a live socket.
func (bc *BaseComponent) Connected() bool {
	return bc.socket != nil && bc.socket.IsConnected()
}

// Name returns an empty string (override in your component).
func (bc *BaseComponent) Name() string {
	return ""
}

// Mount does nothing by default.
func (bc *BaseComponent) Mount(ctx context.Context, params Params, session Session) error {
	return nil
}

// HandleEvent does nothing by default.
func (bc *BaseComponent) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	return nil
}

// HandleInfo does nothing by default.
func (bc *BaseComponent) HandleInfo(ctx context.Context, msg any) error {
	return nil
}

// Terminate does nothing by default.
func (bc *BaseComponent) Terminate(ctx context.Context, reason TerminateReason) error {
	return nil
}
