package router

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pranayvarade/livefolio/pkg/logging"
)

// RequestID middleware adds a unique request ID to the context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			w.Header().Set("X-Request-ID", id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type requestIDKey struct{}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Logger middleware logs each request once it completes and puts a
// request-scoped logger in the context.
func Logger(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger.With(
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
			)
			if id := GetRequestID(r.Context()); id != "" {
				reqLogger = reqLogger.With(logging.String("request_id", id))
			}

			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(logging.ContextWithLogger(r.Context(), reqLogger)))

			reqLogger.Info("request",
				logging.Int("status", rw.status),
				logging.Int("bytes", rw.size),
				logging.Duration("duration", time.Since(start)),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Hijack lets WebSocket upgrades pass through the logger.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Recovery middleware turns handler panics into 500 responses.
func Recovery(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						logging.String("path", r.URL.Path),
						logging.Any("panic", rec),
						logging.String("stack", string(debug.Stack())),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeadersConfig configures security headers.
type SecureHeadersConfig struct {
	// FrameOptions controls X-Frame-Options. Default: "DENY"
	FrameOptions string

	ContentTypeNosniff bool

	// ReferrerPolicy sets Referrer-Policy.
	// Default: "strict-origin-when-cross-origin"
	ReferrerPolicy string

	// PermissionsPolicy sets Permissions-Policy.
	PermissionsPolicy string

	// HSTSEnabled sends Strict-Transport-Security on HTTPS requests.
	HSTSEnabled bool
	HSTSMaxAge  int

	// ContentSecurityPolicy overrides the generated nonce policy.
	ContentSecurityPolicy string

	// CSPNonceEnabled generates a per-request script nonce.
	CSPNonceEnabled bool
}

// DefaultSecureHeadersConfig returns secure default configuration.
func DefaultSecureHeadersConfig() SecureHeadersConfig {
	return SecureHeadersConfig{
		FrameOptions:       "DENY",
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		PermissionsPolicy:  "geolocation=(), microphone=(), camera=()",
		HSTSEnabled:        true,
		HSTSMaxAge:         31536000,
		CSPNonceEnabled:    true,
	}
}

type cspNonceKey struct{}

// GetCSPNonce retrieves the CSP nonce from context.
func GetCSPNonce(ctx context.Context) string {
	if nonce, ok := ctx.Value(cspNonceKey{}).(string); ok {
		return nonce
	}
	return ""
}

func generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

// SecureHeaders middleware adds the default security headers.
func SecureHeaders() Middleware {
	return SecureHeadersWithConfig(DefaultSecureHeadersConfig())
}

// SecureHeadersWithConfig creates middleware with custom config.
func SecureHeadersWithConfig(config SecureHeadersConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			if config.FrameOptions != "" {
				h.Set("X-Frame-Options", config.FrameOptions)
			}
			if config.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}
			if config.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", config.PermissionsPolicy)
			}
			if config.HSTSEnabled && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
				h.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(config.HSTSMaxAge)+"; includeSubDomains")
			}

			ctx := r.Context()
			if config.CSPNonceEnabled {
				nonce := generateNonce()
				ctx = context.WithValue(ctx, cspNonceKey{}, nonce)

				csp := config.ContentSecurityPolicy
				if csp == "" {
					csp = "default-src 'self'; " +
						"script-src 'self' 'nonce-" + nonce + "'; " +
						"style-src 'self'; " +
						"img-src 'self' data: https:; " +
						"connect-src 'self' ws: wss:; " +
						"frame-ancestors 'none'; " +
						"base-uri 'self'; " +
						"form-action 'self'"
				}
				h.Set("Content-Security-Policy", csp)
			} else if config.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
