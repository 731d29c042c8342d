package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/config"
)

func newTestServer(t *testing.T, probes ...Probe) *httptest.Server {
	t.Helper()

	srv := NewServer(config.Config{HTTPAddr: ":0"}, NewMux(probes...))
	ts := httptest.NewServer(srv.Handler)

	t.Cleanup(ts.Close)
	return ts
}

func mustGetJSON[T any](t *testing.T, client *http.Client, url string, out *T) *http.Response {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, ProbeFunc(func() error { return nil }))

	var body map[string]string
	resp := mustGetJSON(t, ts.Client(), ts.URL+"/healthz", &body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestHealthz_NoProbes(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	resp := mustGetJSON(t, ts.Client(), ts.URL+"/healthz", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestHealthz_ProbeFails(t *testing.T) {
	ts := newTestServer(t,
		ProbeFunc(func() error { return nil }),
		ProbeFunc(func() error { return errors.New("archive gone") }),
	)

	var body map[string]string
	resp := mustGetJSON(t, ts.Client(), ts.URL+"/healthz", &body)

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if body["message"] != "healthcheck failed" {
		t.Errorf("message = %q, want %q", body["message"], "healthcheck failed")
	}
}

func TestHealthz_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Post(ts.URL+"/healthz", "text/plain", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestRequestLogger_RecordsStatus(t *testing.T) {
	var seen int
	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		if m, ok := w.(*responseMeter); ok {
			seen = m.status
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if seen != http.StatusTeapot {
		t.Errorf("recorded status = %d, want %d", seen, http.StatusTeapot)
	}
}

func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRequestLogger_Fields(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)
	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
		_, _ = w.Write([]byte(", world"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sensors", nil))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	for k, want := range map[string]any{
		"msg":    "http request",
		"level":  "INFO",
		"method": http.MethodGet,
		"path":   "/api/v1/sensors",
		"status": float64(http.StatusOK),
		"bytes":  float64(len("hello, world")),
	} {
		if rec[k] != want {
			t.Errorf("%s = %v, want %v", k, rec[k], want)
		}
	}
}

func TestRequestLogger_HealthzAtDebug(t *testing.T) {
	h := requestLogger(NewMux())

	buf := captureLogs(t, slog.LevelInfo)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if buf.Len() != 0 {
		t.Errorf("healthz logged at info: %q", buf.String())
	}

	buf = captureLogs(t, slog.LevelDebug)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !strings.Contains(buf.String(), `"level":"DEBUG"`) || !strings.Contains(buf.String(), `"path":"/healthz"`) {
		t.Errorf("healthz debug log = %q", buf.String())
	}
}

func TestListen_BindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()

	addr := ln.Addr().String()
	_, err = Listen(addr)
	if err == nil {
		t.Fatal("Listen() on a taken port error = nil, want non-nil")
	}
	if !errors.Is(err, ErrBind) {
		t.Errorf("errors.Is(err, ErrBind) = false for %v", err)
	}
	var bindErr *BindError
	if !errors.As(err, &bindErr) || bindErr.Addr != addr {
		t.Errorf("errors.As(*BindError) = %+v, want Addr %q", bindErr, addr)
	}
}

func TestListen_OK(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	_ = ln.Close()
}
