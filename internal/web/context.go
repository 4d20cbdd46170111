package web

import (
	"context"
	"net"
	"net/http"
	"time"
)

// importContext returns the request context without its cancellation.
// Request-scoped values such as the request id are kept; the import's own
// timeout still applies.
func importContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// probeContext bounds a health probe.
func probeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 2*time.Second)
}

// clientIP returns the host part of RemoteAddr, already rewritten by
// TrustedRealIP for trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
