package channel_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/channel"
)

// recorder is a fake provider endpoint that counts calls and keeps the
// last request it saw.
type recorder struct {
	calls   atomic.Int32
	path    atomic.Value
	auth    atomic.Value
	body    atomic.Value
	respond func(w http.ResponseWriter, call int32)
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := rec.calls.Add(1)
	raw, _ := io.ReadAll(r.Body)
	rec.path.Store(r.URL.Path)
	rec.auth.Store(r.Header.Get("Authorization"))
	rec.body.Store(raw)
	rec.respond(w, n)
}

func (rec *recorder) lastPath() string {
	v, _ := rec.path.Load().(string)
	return v
}

func (rec *recorder) lastAuth() string {
	v, _ := rec.auth.Load().(string)
	return v
}

func (rec *recorder) lastBody(t *testing.T) map[string]any {
	t.Helper()
	raw, _ := rec.body.Load().([]byte)
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode request body %q: %v", raw, err)
	}
	return out
}

func replyJSON(status int, body string) func(http.ResponseWriter, int32) {
	return func(w http.ResponseWriter, _ int32) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newProvider(t *testing.T, respond func(http.ResponseWriter, int32)) (*recorder, *httptest.Server) {
	t.Helper()
	rec := &recorder{respond: respond}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return rec, srv
}

func settings(baseURL string) channel.Settings {
	return channel.Settings{
		Transport: channel.NewTransport(baseURL, "hub-token", 5*time.Second, nil, zap.NewNop()),
		Retry:     channel.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		Logger:    zap.NewNop(),
	}
}
