package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/pranayvarade/livefolio/pkg/core"
)

type greeter struct {
	core.BaseComponent
	terminated []core.TerminateReason
}

func (g *greeter) Name() string { return "greeter" }

func (g *greeter) Mount(ctx context.Context, params core.Params, session core.Session) error {
	g.Assigns().Set("name", params.GetDefault("name", "world"))
	g.Assigns().Set("theme", session.Cookie("theme"))
	return nil
}

func (g *greeter) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<p>hello %s</p><i>%s</i>", g.Assigns().GetString("name"), g.Assigns().GetString("theme"))
		return err
	})
}

func (g *greeter) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case "rename":
		name, _ := payload["name"].(string)
		if name == "" {
			return errors.New("name required")
		}
		g.Assigns().Set("name", name)
	case "later":
		socket := g.Socket()
		go socket.SendInfo("from-background")
	case "push":
		return g.Socket().Push("ping", map[string]any{"n": 1})
	}
	return nil
}

func (g *greeter) HandleInfo(ctx context.Context, msg any) error {
	if s, ok := msg.(string); ok {
		g.Assigns().Set("name", s)
	}
	return nil
}

func (g *greeter) Terminate(ctx context.Context, reason core.TerminateReason) error {
	g.terminated = append(g.terminated, reason)
	return nil
}

func TestMount_ParamsAndCookies(t *testing.T) {
	lvt := Mount(t, &greeter{}, WithParams(core.Params{"name": "ana"}), WithCookie("theme", "dark"))

	lvt.AssertText("hello ana").AssertText("<i>dark</i>")
	lvt.AssertAssign("theme", "dark")
}

func TestEvent_RerendersAndReturnsErrors(t *testing.T) {
	lvt := Mount(t, &greeter{})

	lvt.MustEvent("rename", map[string]any{"name": "bo"})
	lvt.AssertText("hello bo")

	if err := lvt.Event("rename", nil); err == nil {
		t.Error("expected error for empty name")
	}
	lvt.AssertText("hello bo")

	if len(lvt.Events()) != 2 {
		t.Errorf("expected 2 events recorded, got %d", len(lvt.Events()))
	}
}

func TestAwaitInfo(t *testing.T) {
	lvt := Mount(t, &greeter{})
	lvt.MustEvent("later", nil)

	if !lvt.AwaitInfo(time.Second) {
		t.Fatal("expected an info message")
	}
	lvt.AssertText("hello from-background")

	if n := lvt.DrainInfo(10 * time.Millisecond); n != 0 {
		t.Errorf("expected empty queue, drained %d", n)
	}
}

func TestAssertPushed(t *testing.T) {
	lvt := Mount(t, &greeter{})
	lvt.MustEvent("push", nil)

	msg := lvt.AssertPushed("ping")
	if msg.Payload["n"] != 1 {
		t.Errorf("unexpected payload %v", msg.Payload)
	}
}

func TestDisconnected(t *testing.T) {
	g := &greeter{}
	lvt := Mount(t, g, Disconnected())

	if lvt.Socket() != nil || g.Socket() != nil {
		t.Error("expected no socket")
	}
	if lvt.AwaitInfo(time.Millisecond) {
		t.Error("expected no info without a socket")
	}
}

func TestTerminate_Once(t *testing.T) {
	g := &greeter{}
	lvt := Mount(t, g)

	lvt.Terminate(core.TerminateShutdown)
	lvt.Terminate(core.TerminateNormal)

	if len(g.terminated) != 1 || g.terminated[0] != core.TerminateShutdown {
		t.Errorf("expected a single shutdown termination, got %v", g.terminated)
	}
	if !lvt.Transport().Closed {
		t.Error("expected transport closed")
	}
}

func TestMockTransport(t *testing.T) {
	mt := NewMockTransport()
	mt.Send(core.Message{Event: "a"})
	mt.Send(core.Message{Event: "b"})

	if mt.SentCount() != 2 || mt.LastSent().Event != "b" {
		t.Errorf("unexpected messages %v", mt.SentMessages())
	}

	boom := errors.New("boom")
	mt.SetError(boom)
	if err := mt.Send(core.Message{}); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}

	mt.Reset()
	mt.Close()
	if err := mt.Send(core.Message{}); !errors.Is(err, core.ErrSocketClosed) {
		t.Errorf("expected ErrSocketClosed, got %v", err)
	}
	if mt.IsConnected() {
		t.Error("expected disconnected")
	}
}
