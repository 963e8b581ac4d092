package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pranayvarade/livefolio/pkg/protocol"
)

func TestWebSocket_OriginValidation(t *testing.T) {
	config := DefaultTransportConfig()

	tests := []struct {
		name          string
		wsConfig      *WebSocketConfig
		origin        string
		host          string
		expectAllowed bool
	}{
		{
			name:          "same-origin allowed",
			wsConfig:      &WebSocketConfig{},
			origin:        "https://example.com",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "no origin allowed",
			wsConfig:      &WebSocketConfig{},
			origin:        "",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "explicit origin allowed",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}},
			origin:        "https://allowed.com",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "origin not in list blocked",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}},
			origin:        "https://attacker.com",
			host:          "example.com",
			expectAllowed: false,
		},
		{
			name:          "wildcard allows all",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"*"}},
			origin:        "https://any-site.com",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "insecure dev mode allows all",
			wsConfig:      &WebSocketConfig{InsecureDevMode: true},
			origin:        "https://attacker.com",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "cross-origin blocked by default",
			wsConfig:      &WebSocketConfig{},
			origin:        "https://other-site.com",
			host:          "example.com",
			expectAllowed: false,
		},
		{
			name:          "malformed origin blocked",
			wsConfig:      &WebSocketConfig{},
			origin:        "://bad",
			host:          "example.com",
			expectAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewWebSocketTransport(config, tt.wsConfig, nil)

			allowed := transport.isOriginAllowed(tt.origin, tt.host)

			if allowed != tt.expectAllowed {
				t.Errorf("isOriginAllowed(%q, %q) = %v, want %v",
					tt.origin, tt.host, allowed, tt.expectAllowed)
			}
		})
	}
}

func TestWebSocket_AcceptOptions(t *testing.T) {
	tr := NewWebSocketTransport(nil, &WebSocketConfig{
		AllowedOrigins: []string{"https://allowed.com", "https://cdn.allowed.com:8443"},
	}, nil)

	opts := tr.acceptOptions()
	if opts.InsecureSkipVerify {
		t.Error("expected origin verification to stay on")
	}
	if len(opts.OriginPatterns) != 2 || opts.OriginPatterns[0] != "allowed.com" || opts.OriginPatterns[1] != "cdn.allowed.com:8443" {
		t.Errorf("unexpected origin patterns %v", opts.OriginPatterns)
	}

	wild := NewWebSocketTransport(nil, &WebSocketConfig{AllowedOrigins: []string{"*"}}, nil)
	if !wild.acceptOptions().InsecureSkipVerify {
		t.Error("expected wildcard to skip verification")
	}
}

func TestWebSocket_RejectsInvalidOrigin(t *testing.T) {
	wsConfig := &WebSocketConfig{
		AllowedOrigins: []string{"https://allowed.com"},
	}
	transport := NewWebSocketTransport(DefaultTransportConfig(), wsConfig, nil)

	req := httptest.NewRequest("GET", "/live", nil)
	req.Header.Set("Origin", "https://attacker.com")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Host = "example.com"

	w := httptest.NewRecorder()

	err := transport.Upgrade(w, req)

	if err != ErrOriginNotAllowed {
		t.Errorf("Expected ErrOriginNotAllowed, got %v", err)
	}

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestDefaultWebSocketConfig(t *testing.T) {
	config := DefaultWebSocketConfig()

	if config.InsecureDevMode {
		t.Error("InsecureDevMode should be false by default")
	}

	if config.AllowedOrigins != nil {
		t.Error("AllowedOrigins should be nil by default (same-origin only)")
	}
}

func TestWebSocket_SendBeforeConnect(t *testing.T) {
	tr := NewWebSocketTransport(nil, nil, nil)
	if err := tr.Send(protocol.NewMessage("lv:x", "navigate")); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if err := tr.Connect(context.Background()); err == nil {
		t.Error("expected Connect without URL to fail")
	}
}

func TestWebSocket_RoundTrip(t *testing.T) {
	codecs := []protocol.Codec{
		protocol.NewPhoenixCodec(),
		protocol.NewJSONCodec(),
		protocol.NewMsgPackCodec(),
	}

	for _, codec := range codecs {
		t.Run(codec.Name(), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				server := NewWebSocketTransport(nil, nil, codec)
				if err := server.Upgrade(w, r); err != nil {
					return
				}
				select {
				case msg := <-server.Receive():
					reply := protocol.OkReply(msg.JoinRef, msg.Ref, msg.Topic, map[string]any{
						"section": msg.GetPayloadString("section"),
					})
					server.Send(reply)
				case <-time.After(2 * time.Second):
				}
				<-server.CloseChan()
			}))
			defer srv.Close()

			client := NewWebSocketTransport(nil, nil, codec)
			client.SetURL("ws" + strings.TrimPrefix(srv.URL, "http"))

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if err := client.Connect(ctx); err != nil {
				t.Fatalf("Connect failed: %v", err)
			}
			defer client.Close()

			if !client.IsConnected() {
				t.Fatal("expected client to be connected")
			}

			out := protocol.NewMessage("lv:abc", "navigate").
				WithJoinRef("1").
				WithRef("7").
				WithPayload(map[string]any{"section": "projects"})
			if err := client.Send(out); err != nil {
				t.Fatalf("Send failed: %v", err)
			}

			select {
			case reply := <-client.Receive():
				if reply.Event != protocol.EventReply {
					t.Errorf("expected phx_reply, got %q", reply.Event)
				}
				if reply.Ref != "7" {
					t.Errorf("expected ref 7, got %q", reply.Ref)
				}
				if reply.GetPayloadString("status") != "ok" {
					t.Errorf("expected ok status, got %v", reply.Payload)
				}
			case <-ctx.Done():
				t.Fatal("timed out waiting for reply")
			}
		})
	}
}
