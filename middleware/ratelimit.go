package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/yourusername/rsvpfence/core"
)

// SetRateLimitHeaders writes the standard rate limit headers for d.
//
// Headers (RFC 6585 + draft-ietf-httpapi-ratelimit-headers):
//   - X-RateLimit-Limit: Maximum requests allowed in the window
//   - X-RateLimit-Remaining: Remaining requests in current window
//   - X-RateLimit-Reset: Time when the window resets (Unix timestamp)
//   - Retry-After: Seconds to wait before retrying (when rate limited)
func SetRateLimitHeaders(w http.ResponseWriter, d core.Decision, now time.Time) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

	if d.Allowed {
		return
	}
	seconds := int64(math.Ceil(d.RetryAfter(now).Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	h.Set("Retry-After", strconv.FormatInt(seconds, 10))
}
