// Package trace tags every request with an id and a request-scoped logger
// and records how long it took.
package trace

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"contribot/internal/log"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// HeaderRequestID is honored on input and echoed on output.
const HeaderRequestID = "X-Request-ID"

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of keep-alive HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"path", "status"},
)

type Middleware struct {
	logger *log.Logger
	total  atomic.Int64
}

// Metrics is a snapshot of the middleware counters.
type Metrics struct {
	TotalRequests int64
}

func NewMiddleware(logger *log.Logger) *Middleware {
	return &Middleware{logger: logger}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		logger := m.logger.With(log.FieldRequestID, requestID)
		ctx = log.WithLogger(ctx, logger)
		r = r.WithContext(ctx)

		m.total.Add(1)

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		// The mux sets Pattern on r, which keeps the label set bounded.
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		elapsed := time.Since(start)
		requestDuration.WithLabelValues(pattern, strconv.Itoa(rw.status)).Observe(elapsed.Seconds())
		log.NewStructuredLogger(logger).LogHTTPEnd(ctx, r, rw.status, elapsed.Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func GenerateRequestID() string {
	return uuid.NewString()
}

// GetRequestID returns the id stored by the middleware, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{TotalRequests: m.total.Load()}
}
