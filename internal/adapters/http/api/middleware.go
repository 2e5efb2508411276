package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/rally/pkg/metrics"
)

// MetricsMiddleware records request count, latency and errors for next.
// An empty endpoint falls back to the matched route pattern.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		name := endpoint
		if name == "" {
			name = r.Pattern
		}
		ms := float64(time.Since(start).Microseconds()) / 1000
		code := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(name, r.Method, code)
		metrics.RecordHTTPRequestDuration(name, r.Method, code, ms)

		if rec.status >= http.StatusBadRequest {
			kind, severity := classify(rec.status)
			metrics.RecordErrorByEndpoint(name, r.Method, kind)
			metrics.RecordErrorByType(kind, severity)
			metrics.RecordErrorLatency("http", kind, ms)
		}
	}
}

// classify maps an error status to the error type and severity labels.
func classify(status int) (kind, severity string) {
	switch {
	case status == http.StatusServiceUnavailable:
		return "unavailable", "high"
	case status >= http.StatusInternalServerError:
		return "server_error", "high"
	case status == http.StatusConflict:
		return "conflict", "low"
	case status == http.StatusNotFound:
		return "not_found", "low"
	case status >= http.StatusBadRequest:
		return "client_error", "medium"
	}
	return "unknown", "low"
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
