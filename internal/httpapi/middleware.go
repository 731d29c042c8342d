package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// responseMeter tracks what a handler sent back.
type responseMeter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (m *responseMeter) WriteHeader(code int) {
	m.status = code
	m.ResponseWriter.WriteHeader(code)
}

func (m *responseMeter) Write(b []byte) (int, error) {
	n, err := m.ResponseWriter.Write(b)
	m.bytes += n
	return n, err
}

// Health polls are frequent and uninteresting.
func accessLevel(r *http.Request) slog.Level {
	if r.URL.Path == "/healthz" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m := &responseMeter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(m, r)

		slog.Log(context.Background(), accessLevel(r), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.status,
			"bytes", m.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
