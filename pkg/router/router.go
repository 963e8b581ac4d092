// Package router serves live components over HTTP and WebSocket.
package router

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pranayvarade/livefolio/pkg/core"
	"github.com/pranayvarade/livefolio/pkg/limits"
	"github.com/pranayvarade/livefolio/pkg/logging"
	"github.com/pranayvarade/livefolio/pkg/metrics"
	"github.com/pranayvarade/livefolio/pkg/pool"
	"github.com/pranayvarade/livefolio/pkg/protocol"
	"github.com/pranayvarade/livefolio/pkg/transport"
)

// Common router errors.
var (
	ErrNilRenderer      = errors.New("component returned nil renderer")
	ErrNotJoined        = errors.New("not joined")
	ErrComponentPanic   = errors.New("component panicked")
	ErrTooManySockets   = errors.New("too many connections")
	errShutdownRejected = errors.New("server shutting down")
)

// maxComponentErrors is how many consecutive handler failures a connection
// tolerates before it is closed.
const maxComponentErrors = 10

// Router serves live routes and plain handlers.
type Router struct {
	mux          *http.ServeMux
	liveRoutes   map[string]*LiveRoute
	middleware   []Middleware
	errorHandler ErrorHandler

	sessionManager *LiveViewSessionManager
	socketManager  *core.SocketManager
	codecs         *protocol.CodecRegistry

	config core.Config
	logger logging.Logger

	mu sync.RWMutex
}

// LiveRoute defines a route that renders a live component.
type LiveRoute struct {
	Path string

	// Component creates a fresh component for each request or connection.
	Component func() core.Component

	// Layout wraps the static HTTP render. Live updates never include it.
	Layout Layout

	Middleware []Middleware
}

// Layout writes the document around a component's rendered content.
type Layout func(ctx context.Context, w io.Writer, comp core.Component, content string) error

// Middleware is a function that wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// ErrorHandler handles errors during request processing.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures a Router.
type Option func(*Router)

// WithConfig sets the runtime configuration.
func WithConfig(cfg core.Config) Option {
	return func(r *Router) {
		r.config = cfg
	}
}

// WithLogger sets the router logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// New creates a new router.
func New(opts ...Option) *Router {
	r := &Router{
		mux:            http.NewServeMux(),
		liveRoutes:     make(map[string]*LiveRoute),
		sessionManager: NewLiveViewSessionManager(),
		socketManager:  core.NewSocketManager(),
		codecs:         protocol.NewCodecRegistry(),
		config:         core.DefaultConfig(),
		logger:         logging.NopLogger{},
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.codecs.SetDefault(r.config.Codec); err != nil {
		r.logger.Warn("unknown default codec, using phoenix", logging.String("codec", r.config.Codec))
	}

	r.errorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		r.logger.Error("request failed",
			logging.String("path", req.URL.Path),
			logging.Err(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	return r
}

// Use adds global middleware. It applies to routes registered afterwards.
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

// SetErrorHandler sets the error handler.
func (r *Router) SetErrorHandler(handler ErrorHandler) {
	r.errorHandler = handler
}

// SessionManager returns the session manager.
func (r *Router) SessionManager() *LiveViewSessionManager {
	return r.sessionManager
}

// SocketManager returns the socket manager.
func (r *Router) SocketManager() *core.SocketManager {
	return r.socketManager
}

// Codecs returns the codec registry used for negotiation.
func (r *Router) Codecs() *protocol.CodecRegistry {
	return r.codecs
}

// Live registers a live route.
func (r *Router) Live(path string, component func() core.Component, opts ...RouteOption) {
	route := &LiveRoute{
		Path:      path,
		Component: component,
	}

	for _, opt := range opts {
		opt(route)
	}

	r.mu.Lock()
	r.liveRoutes[path] = route
	r.mu.Unlock()

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.serveLive(w, req, route)
	})
	for i := len(route.Middleware) - 1; i >= 0; i-- {
		handler = route.Middleware[i](handler)
	}

	r.Handle(path, handler)
}

// Handle registers a standard HTTP handler wrapped in the global middleware.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mu.RLock()
	middleware := make([]Middleware, len(r.middleware))
	copy(middleware, r.middleware)
	r.mu.RUnlock()

	h := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}

	r.mux.Handle(pattern, h)
}

// HandleFunc registers a standard HTTP handler function.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Shutdown closes every live connection and refuses new ones.
func (r *Router) Shutdown(ctx context.Context) error {
	return r.socketManager.Shutdown(ctx)
}

// StartCleanup closes sockets that stay idle longer than the read timeout,
// checking every SessionCleanup interval until stop is closed.
func (r *Router) StartCleanup(stop <-chan struct{}) {
	interval := r.config.Timeouts.SessionCleanup
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := r.socketManager.CleanupInactive(r.config.Timeouts.WebSocketRead); n > 0 {
					r.logger.Info("closed idle sockets", logging.Int("count", n))
				}
			case <-stop:
				return
			}
		}
	}()
}

func (r *Router) serveLive(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	if isWebSocketRequest(req) {
		r.handleWebSocket(w, req, route.Component())
		return
	}

	component := route.Component()
	ctx := req.Context()

	mountCtx, cancel := r.withTimeout(ctx, r.config.Timeouts.ComponentMount)
	err := component.Mount(mountCtx, extractParams(req), extractSession(req))
	cancel()
	if err != nil {
		r.errorHandler(w, req, err)
		return
	}
	defer component.Terminate(ctx, core.TerminateNormal)

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := renderTo(ctx, component, buf); err != nil {
		r.errorHandler(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if route.Layout == nil {
		w.Write(buf.Bytes())
		return
	}

	page := pool.GetBuffer()
	defer pool.PutBuffer(page)

	if err := route.Layout(ctx, page, component, buf.String()); err != nil {
		r.errorHandler(w, req, err)
		return
	}
	w.Write(page.Bytes())
}

func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request, component core.Component) {
	if r.socketManager.IsShutdown() {
		http.Error(w, errShutdownRejected.Error(), http.StatusServiceUnavailable)
		return
	}
	if limit := r.config.MaxConnections; limit > 0 && r.socketManager.Count() >= limit {
		http.Error(w, ErrTooManySockets.Error(), http.StatusServiceUnavailable)
		return
	}

	codec := r.codecs.Negotiate(req.URL.Query().Get("vsn"))

	tcfg := transport.DefaultTransportConfig()
	tcfg.ReadTimeout = r.config.Timeouts.WebSocketRead
	tcfg.WriteTimeout = r.config.Timeouts.WebSocketWrite
	tcfg.MaxMessageSize = r.config.MaxMessageSize

	ws := transport.NewWebSocketTransport(tcfg, &transport.WebSocketConfig{
		AllowedOrigins:  r.config.Security.AllowedOrigins,
		InsecureDevMode: r.config.Security.InsecureDevMode,
	}, codec)

	socketID := uuid.NewString()
	log := r.logger.With(logging.String("socket", socketID))
	ws.SetLogger(log)

	if err := ws.Upgrade(w, req); err != nil {
		log.Warn("websocket upgrade failed",
			logging.String("origin", req.Header.Get("Origin")),
			logging.Err(err),
		)
		return
	}

	adapter := NewTransportAdapter(ws)
	socket := core.NewSocket(socketID, adapter)

	if bc, ok := component.(interface{ SetSocket(*core.Socket) }); ok {
		bc.SetSocket(socket)
	}

	params := extractParams(req)
	session := extractSession(req)

	lvSession := r.sessionManager.Create(socketID, component, params, session)
	lvSession.Socket = socket
	lvSession.Transport = ws
	lvSession.Adapter = adapter
	lvSession.releaseSlot = limits.Keep(req.Context())

	r.socketManager.Add(socket)
	metrics.ConnectionOpened()

	log.Debug("socket connected", logging.String("codec", codec.Name()))

	// The connection outlives the upgrade request, so the loop gets its own
	// root context rather than req.Context().
	ctx := logging.ContextWithLogger(context.Background(), log)
	go r.messageLoop(ctx, lvSession)
}

// messageLoop is the only goroutine that touches the component. Client
// messages and info messages are handled one at a time.
func (r *Router) messageLoop(ctx context.Context, session *LiveViewSession) {
	reason := core.TerminateClosed
	defer func() {
		r.handleDisconnect(ctx, session, reason)
	}()

	recvCh := session.Transport.Receive()
	closeCh := session.Transport.CloseChan()
	infoCh := session.Socket.Info()
	doneCh := session.Socket.Done()

	for {
		select {
		case msg := <-recvCh:
			session.UpdateActivity()
			session.Socket.UpdateActivity()
			metrics.MessageReceived(msg.Type.String())

			switch msg.Type {
			case protocol.MsgHeartbeat:
				r.sendReply(session, msg, nil)

			case protocol.MsgJoin:
				r.handleJoin(ctx, session, msg)

			case protocol.MsgLeave:
				r.sendReply(session, msg, nil)
				reason = core.TerminateNormal
				return

			default:
				if !session.IsMounted() {
					r.sendError(session, msg, ErrNotJoined)
					continue
				}
				if err := r.dispatchEvent(ctx, session, msg); err != nil {
					metrics.RecordError("event")
					r.sendError(session, msg, err)
					if r.recordFailure(ctx, session, err) {
						reason = core.TerminateError
						return
					}
					continue
				}
				session.Socket.ResetFailures()
				r.sendReply(session, msg, nil)
				r.renderAndSendDiff(ctx, session)
			}

		case info := <-infoCh:
			if !session.IsMounted() {
				continue
			}
			if err := r.dispatchInfo(ctx, session, info); err != nil {
				metrics.RecordError("info")
				if r.recordFailure(ctx, session, err) {
					reason = core.TerminateError
					return
				}
				continue
			}
			r.renderAndSendDiff(ctx, session)

		case <-closeCh:
			return

		case <-doneCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (r *Router) recordFailure(ctx context.Context, session *LiveViewSession, err error) bool {
	count := session.Socket.RecordFailure()
	logging.L(ctx).Warn("component handler failed",
		logging.Int("consecutive", count),
		logging.Err(err),
	)
	return count >= maxComponentErrors
}

func (r *Router) handleJoin(ctx context.Context, session *LiveViewSession, msg *protocol.Message) {
	session.SetJoin(msg.JoinRef, msg.Topic)
	session.Adapter.Bind(msg.Topic, msg.JoinRef)

	component := session.Component

	if !session.IsMounted() {
		err := r.guard(func() error {
			mountCtx, cancel := r.withTimeout(ctx, r.config.Timeouts.ComponentMount)
			defer cancel()
			return component.Mount(mountCtx, session.Params, session.Session)
		})
		if err != nil {
			logging.L(ctx).Warn("mount failed", logging.Err(err))
			r.sendError(session, msg, err)
			return
		}
		session.SetMounted(true)
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := r.guard(func() error { return renderTo(ctx, component, buf) }); err != nil {
		r.sendError(session, msg, err)
		return
	}

	html := buf.String()
	textSlots, htmlSlots := extractSlotsOptimized(html)
	session.SetSlotHashes(slotHashes(html, textSlots, htmlSlots))

	if ar, ok := component.(core.AssignsRenderer); ok {
		ar.Assigns().Tracker().Collect()
	}

	r.sendReply(session, msg, map[string]any{
		"rendered": map[string]any{
			"s": []string{html},
		},
	})

	logging.L(ctx).Debug("joined",
		logging.String("component", component.Name()),
		logging.String("topic", msg.Topic),
	)
}

func (r *Router) dispatchEvent(ctx context.Context, session *LiveViewSession, msg *protocol.Message) error {
	payload := msg.Payload
	if payload == nil {
		payload = make(map[string]any)
	}

	return r.guard(func() error {
		evCtx, cancel := r.withTimeout(ctx, r.config.Timeouts.ComponentEvent)
		defer cancel()
		return session.Component.HandleEvent(evCtx, msg.Event, payload)
	})
}

func (r *Router) dispatchInfo(ctx context.Context, session *LiveViewSession, info any) error {
	return r.guard(func() error {
		infoCtx, cancel := r.withTimeout(ctx, r.config.Timeouts.ComponentEvent)
		defer cancel()
		return session.Component.HandleInfo(infoCtx, info)
	})
}

// guard runs fn, converting a panic into ErrComponentPanic.
func (r *Router) guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("component panic",
				logging.Any("panic", p),
				logging.String("stack", string(debug.Stack())),
			)
			err = ErrComponentPanic
		}
	}()
	return fn()
}

func (r *Router) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// renderAndSendDiff renders the component and pushes the slots that changed.
// Components that render purely from assigns are skipped when no assign
// changed.
func (r *Router) renderAndSendDiff(ctx context.Context, session *LiveViewSession) {
	component := session.Component

	ar, tracked := component.(core.AssignsRenderer)
	if tracked && !ar.Assigns().Tracker().HasChanges() {
		return
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	start := time.Now()
	if err := r.guard(func() error { return renderTo(ctx, component, buf) }); err != nil {
		metrics.RecordError("render")
		logging.L(ctx).Warn("render failed", logging.Err(err))
		return
	}

	if tracked {
		ar.Assigns().Tracker().Collect()
	}

	payload := buildDiffPayload(session, buf.String())
	metrics.RecordRender(time.Since(start), payload.Size())
	if payload.IsEmpty() {
		return
	}

	if err := session.Socket.SendDiff(payload); err != nil {
		logging.L(ctx).Debug("diff not sent", logging.Err(err))
	}
}

// fullSlot is the hash key used when the render has no slots at all.
const fullSlot = ""

// buildDiffPayload compares the render against the previous slot hashes.
// HTML with no data-slot markers is sent whole when it changes.
func buildDiffPayload(session *LiveViewSession, html string) *core.DiffPayload {
	payload := &core.DiffPayload{
		Slots:     make(map[string]string),
		HTMLSlots: make(map[string]string),
	}

	textSlots, htmlSlots := extractSlotsOptimized(html)
	prev := session.GetSlotHashes()
	next := slotHashes(html, textSlots, htmlSlots)

	for id, content := range textSlots {
		if h, ok := prev[id]; !ok || h != next[id] {
			payload.Slots[id] = content
		}
	}
	for id, content := range htmlSlots {
		if h, ok := prev[id]; !ok || h != next[id] {
			payload.HTMLSlots[id] = content
		}
	}
	if h, ok := next[fullSlot]; ok {
		if p, seen := prev[fullSlot]; !seen || p != h {
			payload.Full = html
		}
	}

	session.SetSlotHashes(next)

	if !payload.IsEmpty() {
		payload.Version = session.NextVersion()
	}
	return payload
}

func slotHashes(html string, textSlots, htmlSlots map[string]string) map[string]uint64 {
	hashes := make(map[string]uint64, len(textSlots)+len(htmlSlots))
	for id, content := range textSlots {
		hashes[id] = hashSlotContent(content)
	}
	for id, content := range htmlSlots {
		hashes[id] = hashSlotContent(content)
	}
	if len(hashes) == 0 {
		hashes[fullSlot] = hashSlotContent(html)
	}
	return hashes
}

// extractSlotsOptimized extracts top-level data-slot contents in one pass.
// Slots nested inside another slot travel with their parent.
func extractSlotsOptimized(html string) (textSlots, htmlSlots map[string]string) {
	textSlots = make(map[string]string)
	htmlSlots = make(map[string]string)

	const marker = `data-slot="`
	markerLen := len(marker)
	htmlLen := len(html)
	pos := 0

	for pos < htmlLen {
		idx := strings.Index(html[pos:], marker)
		if idx == -1 {
			break
		}

		slotStart := pos + idx + markerLen

		slotEnd := strings.IndexByte(html[slotStart:], '"')
		if slotEnd == -1 {
			pos = slotStart
			continue
		}

		slotID := html[slotStart : slotStart+slotEnd]

		tagStart := pos + idx
		for tagStart > 0 && html[tagStart] != '<' {
			tagStart--
		}

		tagNameEnd := tagStart + 1
		for tagNameEnd < htmlLen && html[tagNameEnd] != ' ' && html[tagNameEnd] != '>' && html[tagNameEnd] != '/' {
			tagNameEnd++
		}
		tagName := html[tagStart+1 : tagNameEnd]

		closeAngle := strings.IndexByte(html[slotStart+slotEnd:], '>')
		if closeAngle == -1 {
			pos = slotStart + slotEnd
			continue
		}

		contentStart := slotStart + slotEnd + closeAngle + 1

		openTag := "<" + tagName
		closeTag := "</" + tagName
		openTagLen := len(openTag)
		closeTagLen := len(closeTag)

		depth := 1
		searchPos := contentStart
		contentEnd := -1

		for depth > 0 && searchPos < htmlLen {
			nextOpen := strings.Index(html[searchPos:], openTag)
			nextClose := strings.Index(html[searchPos:], closeTag)

			if nextClose == -1 {
				break
			}

			if nextOpen != -1 {
				nextOpen += searchPos
			} else {
				nextOpen = htmlLen
			}
			nextClose += searchPos

			if nextOpen < nextClose {
				afterOpen := nextOpen + openTagLen
				if afterOpen < htmlLen {
					c := html[afterOpen]
					if c == ' ' || c == '>' || c == '/' || c == '\t' || c == '\n' {
						depth++
					}
				}
				searchPos = nextOpen + openTagLen
			} else {
				depth--
				if depth == 0 {
					contentEnd = nextClose
				}
				searchPos = nextClose + closeTagLen
			}
		}

		if contentEnd == -1 {
			pos = contentStart
			continue
		}

		content := strings.TrimSpace(html[contentStart:contentEnd])
		if strings.ContainsAny(content, "<>") {
			htmlSlots[slotID] = content
		} else {
			textSlots[slotID] = content
		}

		pos = searchPos
	}

	return textSlots, htmlSlots
}

func hashSlotContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}

// handleDisconnect terminates the component and releases the connection.
// It runs once per session.
func (r *Router) handleDisconnect(ctx context.Context, session *LiveViewSession, reason core.TerminateReason) {
	session.closeOnce.Do(func() {
		if reason == core.TerminateClosed && r.socketManager.IsShutdown() {
			reason = core.TerminateShutdown
		}

		if session.IsMounted() {
			r.guard(func() error {
				return session.Component.Terminate(context.WithoutCancel(ctx), reason)
			})
		}

		r.sessionManager.Remove(session.ID)
		r.socketManager.Remove(session.SocketID)
		metrics.ConnectionClosed()
		session.Socket.Close()
		if session.releaseSlot != nil {
			session.releaseSlot()
		}

		logging.L(ctx).Debug("socket disconnected", logging.String("reason", reason.String()))
	})
}

func (r *Router) sendReply(session *LiveViewSession, req *protocol.Message, response map[string]any) {
	r.send(session, protocol.OkReply(req.JoinRef, req.Ref, req.Topic, response))
}

func (r *Router) sendError(session *LiveViewSession, req *protocol.Message, err error) {
	r.send(session, protocol.ErrorReply(req.JoinRef, req.Ref, req.Topic, err.Error()))
}

func (r *Router) send(session *LiveViewSession, msg *protocol.Message) {
	if err := session.Transport.Send(msg); err != nil {
		r.logger.Debug("reply not sent",
			logging.String("socket", session.SocketID),
			logging.String("event", msg.Event),
			logging.Err(err),
		)
	}
}

func renderTo(ctx context.Context, component core.Component, w io.Writer) error {
	renderer := component.Render(ctx)
	if renderer == nil {
		return ErrNilRenderer
	}
	if err := renderer.Render(ctx, w); err != nil {
		return fmt.Errorf("render %s: %w", component.Name(), err)
	}
	return nil
}

// extractSession captures request cookies for the component.
func extractSession(req *http.Request) core.Session {
	session := make(core.Session)
	for _, cookie := range req.Cookies() {
		session["cookie:"+cookie.Name] = cookie.Value
	}
	if id := GetRequestID(req.Context()); id != "" {
		session["request_id"] = id
	}
	return session
}

// extractParams extracts query parameters.
func extractParams(req *http.Request) core.Params {
	params := make(core.Params)
	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func isWebSocketRequest(req *http.Request) bool {
	return strings.Contains(strings.ToLower(req.Header.Get("Upgrade")), "websocket")
}

// RouteOption configures a LiveRoute.
type RouteOption func(*LiveRoute)

// WithLayout sets the layout used for the static render.
func WithLayout(layout Layout) RouteOption {
	return func(r *LiveRoute) {
		r.Layout = layout
	}
}

// WithRouteMiddleware adds middleware to the route.
func WithRouteMiddleware(mw ...Middleware) RouteOption {
	return func(r *LiveRoute) {
		r.Middleware = append(r.Middleware, mw...)
	}
}
