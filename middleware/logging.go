package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/rsvpfence/token"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the ID assigned to the request carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Logging assigns a request ID, recovers panics and writes one access log
// line per request. Capability tokens in the path are redacted.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				if p := recover(); p != nil {
					logger.Error("handler panicked",
						zap.String("request_id", id),
						zap.Any("panic", p),
						zap.Stack("stack"),
					)
					if rec.status == 0 {
						http.Error(rec, "Internal Server Error", http.StatusInternalServerError)
					}
				}

				logger.Info("request",
					zap.String("request_id", id),
					zap.String("method", r.Method),
					zap.String("path", RedactPath(r.URL.Path)),
					zap.Int("status", rec.status),
					zap.Int("bytes", rec.bytes),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// RedactPath shortens any capability token segment in path.
func RedactPath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if _, ok := token.ValidateSyntax(seg); ok {
			segments[i] = token.Redact(seg)
		}
	}
	return strings.Join(segments, "/")
}
