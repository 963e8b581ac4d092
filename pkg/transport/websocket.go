package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/pranayvarade/livefolio/pkg/logging"
	"github.com/pranayvarade/livefolio/pkg/protocol"
)

// WebSocket security errors
var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
)

// WebSocketConfig configures WebSocket security settings.
type WebSocketConfig struct {
	// AllowedOrigins lists extra origins besides the page's own.
	// "*" allows any origin.
	AllowedOrigins []string

	// InsecureDevMode disables origin validation (ONLY for development).
	InsecureDevMode bool
}

// DefaultWebSocketConfig returns secure default configuration.
func DefaultWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{
		AllowedOrigins:  nil,
		InsecureDevMode: false,
	}
}

// WebSocketTransport implements Transport over github.com/coder/websocket.
// Frames are encoded with the codec chosen at construction; binary codecs
// use binary frames.
type WebSocketTransport struct {
	*BaseTransport
	conn     *websocket.Conn
	codec    protocol.Codec
	url      string
	headers  http.Header
	wsConfig *WebSocketConfig
	logger   logging.Logger
	mu       sync.Mutex
}

// NewWebSocketTransport creates a WebSocket transport. Nil arguments fall
// back to defaults and the Phoenix codec.
func NewWebSocketTransport(config *TransportConfig, wsConfig *WebSocketConfig, codec protocol.Codec) *WebSocketTransport {
	if wsConfig == nil {
		wsConfig = DefaultWebSocketConfig()
	}
	if codec == nil {
		codec = protocol.NewPhoenixCodec()
	}
	return &WebSocketTransport{
		BaseTransport: NewBaseTransport(config),
		codec:         codec,
		headers:       make(http.Header),
		wsConfig:      wsConfig,
		logger:        logging.NopLogger{},
	}
}

// SetLogger sets the logger used for frame-level diagnostics.
func (t *WebSocketTransport) SetLogger(l logging.Logger) {
	t.logger = l
}

// Codec returns the codec used for frames.
func (t *WebSocketTransport) Codec() protocol.Codec {
	return t.codec
}

// isOriginAllowed checks if the origin is allowed for WebSocket connections.
func (t *WebSocketTransport) isOriginAllowed(origin string, requestHost string) bool {
	if t.wsConfig.InsecureDevMode {
		return true
	}

	// No Origin header: not a browser cross-site request.
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if originURL.Host == requestHost {
		return true
	}

	for _, allowed := range t.wsConfig.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if allowedURL, err := url.Parse(allowed); err == nil && allowedURL.Host == originURL.Host {
			return true
		}
	}

	return false
}

// acceptOptions mirrors the origin policy into the websocket library, which
// performs its own same-origin check.
func (t *WebSocketTransport) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	if t.wsConfig.InsecureDevMode {
		opts.InsecureSkipVerify = true
		return opts
	}
	for _, allowed := range t.wsConfig.AllowedOrigins {
		if allowed == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		if u, err := url.Parse(allowed); err == nil && u.Host != "" {
			opts.OriginPatterns = append(opts.OriginPatterns, u.Host)
		}
	}
	return opts
}

// Type returns the transport type.
func (t *WebSocketTransport) Type() TransportType {
	return TransportWebSocket
}

// SetURL sets the WebSocket URL for client-side connections.
func (t *WebSocketTransport) SetURL(url string) {
	t.url = url
}

// SetHeader sets a header for client-side connections.
func (t *WebSocketTransport) SetHeader(key, value string) {
	t.headers.Set(key, value)
}

// Connect establishes a WebSocket connection (client side).
func (t *WebSocketTransport) Connect(ctx context.Context) error {
	if t.url == "" {
		return fmt.Errorf("websocket URL not set")
	}

	conn, _, err := websocket.Dial(ctx, t.url, &websocket.DialOptions{
		HTTPHeader: t.headers,
	})
	if err != nil {
		return fmt.Errorf("dial websocket: %w", err)
	}

	t.start(conn)
	return nil
}

// Upgrade upgrades an HTTP connection to WebSocket (server side). Requests
// from origins outside the policy get a 403 and ErrOriginNotAllowed.
func (t *WebSocketTransport) Upgrade(w http.ResponseWriter, r *http.Request) error {
	if !t.isOriginAllowed(r.Header.Get("Origin"), r.Host) {
		http.Error(w, "Forbidden: Origin not allowed", http.StatusForbidden)
		return ErrOriginNotAllowed
	}

	conn, err := websocket.Accept(w, r, t.acceptOptions())
	if err != nil {
		return fmt.Errorf("accept websocket: %w", err)
	}

	t.start(conn)
	return nil
}

func (t *WebSocketTransport) start(conn *websocket.Conn) {
	conn.SetReadLimit(t.config.MaxMessageSize)

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	t.SetConnected(true)

	go t.readLoop()
	go t.writeLoop()
	go t.pingLoop()
}

// Send queues a message. It fails fast once the transport is closed and
// gives up after the write timeout if the queue stays full.
func (t *WebSocketTransport) Send(msg *protocol.Message) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}

	timer := time.NewTimer(t.config.WriteTimeout)
	defer timer.Stop()

	select {
	case t.sendCh <- msg:
		return nil
	case <-t.closeCh:
		return ErrConnectionClosed
	case <-timer.C:
		return ErrSendTimeout
	}
}

// Close closes the WebSocket connection.
func (t *WebSocketTransport) Close() error {
	t.BaseTransport.Close()

	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

func (t *WebSocketTransport) currentConn() *websocket.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *WebSocketTransport) readLoop() {
	defer t.Close()

	for {
		conn := t.currentConn()
		if conn == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), t.config.ReadTimeout)
		_, data, err := conn.Read(ctx)
		cancel()

		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				t.logger.Debug("websocket read ended", logging.Err(err))
			}
			return
		}

		msg, err := t.codec.Decode(data)
		if err != nil {
			t.logger.Debug("dropping undecodable frame",
				logging.String("codec", t.codec.Name()),
				logging.Err(err),
			)
			continue
		}

		if !t.deliver(msg) {
			return
		}
	}
}

func (t *WebSocketTransport) writeLoop() {
	frameType := websocket.MessageText
	if t.codec.Binary() {
		frameType = websocket.MessageBinary
	}

	for {
		select {
		case msg := <-t.sendCh:
			conn := t.currentConn()
			if conn == nil {
				return
			}

			data, err := t.codec.Encode(msg)
			if err != nil {
				t.logger.Warn("dropping unencodable message",
					logging.String("event", msg.Event),
					logging.Err(err),
				)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			err = conn.Write(ctx, frameType, data)
			cancel()

			if err != nil {
				t.logger.Debug("websocket write failed", logging.Err(err))
				t.Close()
				return
			}

		case <-t.closeCh:
			return
		}
	}
}

func (t *WebSocketTransport) pingLoop() {
	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn := t.currentConn()
			if conn == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			conn.Ping(ctx)
			cancel()
		case <-t.closeCh:
			return
		}
	}
}
