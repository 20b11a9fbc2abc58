package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating client address of r.
// It checks X-Forwarded-For (first entry) and X-Real-IP before falling back to
// RemoteAddr. Returns "" when nothing usable is present.
func ClientIP(r *http.Request) string {
	// X-Forwarded-For can be a comma-separated list of IPs
	// The first IP is the original client IP
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port in some edge cases
		ip = r.RemoteAddr
	}
	return strings.TrimSpace(ip)
}
