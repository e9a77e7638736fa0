package middleware

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// HeaderXRequestID is the header name for request ID.
	HeaderXRequestID = "X-Request-ID"
	// HeaderXForwardedFor is the header name for forwarded client IP.
	HeaderXForwardedFor = "X-Forwarded-For"
	// HeaderXRealIP is the header name for real client IP.
	HeaderXRealIP = "X-Real-IP"
)

// Inbound request IDs are accepted only if short and made of safe
// characters; anything else is replaced so log lines stay injectable-free.
const requestIDMaxLength = 128

var requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// RequestID returns a middleware that tags each request with an ID. A
// valid inbound X-Request-ID is reused; otherwise a UUID is generated.
// The ID is echoed in the response header and stored in context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderXRequestID)
			if !acceptableRequestID(id) {
				id = uuid.New().String()
			}

			w.Header().Set(HeaderXRequestID, id)

			ctx := context.WithValue(r.Context(), RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func acceptableRequestID(id string) bool {
	return id != "" && len(id) <= requestIDMaxLength && requestIDPattern.MatchString(id)
}

// ClientIP returns a middleware that resolves the client address and
// stores it in context. With trustProxy set, X-Forwarded-For and
// X-Real-IP are consulted; trustedProxies, when non-empty, restricts
// which peers may supply those headers.
func ClientIP(trustProxy bool, trustedProxies []string) Middleware {
	trusted := make(map[string]bool, len(trustedProxies))
	for _, ip := range trustedProxies {
		trusted[ip] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := resolveClientIP(r, trustProxy, trusted)
			ctx := context.WithValue(r.Context(), ClientIPKey, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveClientIP(r *http.Request, trustProxy bool, trusted map[string]bool) string {
	peer := hostOnly(r.RemoteAddr)

	if !trustProxy {
		return peer
	}
	if len(trusted) > 0 && !trusted[peer] {
		return peer
	}

	// First entry in X-Forwarded-For is the originating client
	if xff := r.Header.Get(HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get(HeaderXRealIP)); xri != "" {
		return xri
	}

	return peer
}

// hostOnly strips the port from a host:port address, tolerating addresses
// without one.
func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
