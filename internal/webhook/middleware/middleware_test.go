package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ricirt/hubgateway/internal/webhook/middleware"
)

func TestCorrelationID(t *testing.T) {
	var seen string
	h := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.CorrelationIDFrom(r.Context())
	}))

	t.Run("echoes inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
		req.Header.Set(middleware.CorrelationHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "abc-123" {
			t.Fatalf("expected context id abc-123, got %q", seen)
		}
		if got := rec.Header().Get(middleware.CorrelationHeader); got != "abc-123" {
			t.Fatalf("expected echoed header abc-123, got %q", got)
		}
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))

		if seen == "" {
			t.Fatal("expected a generated correlation id")
		}
		if got := rec.Header().Get(middleware.CorrelationHeader); got != seen {
			t.Fatalf("header %q does not match context id %q", got, seen)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := middleware.RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/webhook", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 5xx, got %v", e.Level)
	}
	fields := e.ContextMap()
	if fields["status"] != int64(500) {
		t.Fatalf("expected status 500, got %v", fields["status"])
	}
	if fields["bytes"] != int64(len("Internal server error")) {
		t.Fatalf("unexpected bytes field %v", fields["bytes"])
	}
}
