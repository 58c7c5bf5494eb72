package server

import (
	"context"
	"net"
	"net/http"
)

type contextKey string

const clientIPKey contextKey = "client_ip"

// withClientIP stores the request's client IP in the context so audit code
// below the HTTP layer can record it.
func withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPKey, ip)))
	})
}

// ClientIP returns the client IP recorded by the router middleware, or
// "unknown" outside a request. Matches the audit.IPExtractor signature.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
