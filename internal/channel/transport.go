package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "hubgateway-go/1.0.0"
	maxResponseBytes = 4 << 20
)

// Request describes one provider HTTP exchange. Path is resolved against the
// transport base URL unless it is already absolute. LogPath, when set, is
// logged instead of Path so credentials embedded in URLs stay out of logs.
// Token overrides the transport credential; Anonymous omits it entirely.
type Request struct {
	Method    string
	Path      string
	Body      any
	Token     string
	Anonymous bool
	LogPath   string
}

// Transport is the shared HTTP layer: base URL, bearer credential, fixed
// content type and timeout apply to every call made through it.
type Transport struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTransport builds a Transport. A zero timeout means 30s; a nil
// httpClient gets a fresh client with that timeout.
func NewTransport(baseURL, token string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *Transport {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		userAgent:  defaultUserAgent,
		httpClient: httpClient,
		logger:     logger,
	}
}

// callError is the raw outcome of a failed exchange before it is attributed
// to a channel and operation.
type callError struct {
	kind    error
	status  int
	message string
	err     error
}

func (e *callError) Error() string {
	if e.status != 0 {
		return fmt.Sprintf("HTTP %d: %s", e.status, e.message)
	}
	return e.message
}

func (e *callError) Unwrap() error { return e.err }

// Call performs the exchange and decodes a 2xx JSON body into out (which may
// be nil). Non-2xx responses, network failures and encoding problems are
// returned as *callError. A failure after the request was written is a
// transport error; one before it is a request error.
func (t *Transport) Call(ctx context.Context, r Request, out any) error {
	var body io.Reader
	if r.Body != nil {
		raw, err := json.Marshal(r.Body)
		if err != nil {
			return &callError{kind: domain.ErrRequest, message: "encode request body: " + err.Error(), err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, t.resolve(r.Path), body)
	if err != nil {
		return &callError{kind: domain.ErrRequest, message: err.Error(), err: err}
	}

	token := t.token
	if r.Token != "" {
		token = r.Token
	}
	if token != "" && !r.Anonymous {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	logPath := r.LogPath
	if logPath == "" {
		logPath = r.Path
	}
	t.logger.Debug("provider request", zap.String("method", r.Method), zap.String("path", logPath))

	var written atomic.Bool
	trace := &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				written.Store(true)
			}
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		var ue *url.Error
		if r.LogPath != "" && errors.As(err, &ue) {
			ue.URL = r.LogPath
		}
		t.logger.Debug("provider request failed", zap.String("path", logPath), zap.Error(err))
		kind := domain.ErrRequest
		if written.Load() {
			kind = domain.ErrTransport
		}
		return &callError{kind: kind, message: err.Error(), err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &callError{kind: domain.ErrTransport, message: "read response: " + err.Error(), err: err}
	}
	t.logger.Debug("provider response", zap.Int("status", resp.StatusCode), zap.String("path", logPath))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &callError{kind: domain.ErrProvider, status: resp.StatusCode, message: providerMessage(resp.StatusCode, raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &callError{kind: domain.ErrProvider, status: resp.StatusCode, message: "decode response: " + err.Error(), err: err}
	}
	return nil
}

func (t *Transport) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return t.baseURL + path
}

// providerMessage extracts the human-readable error a provider embeds in its
// response body, falling back to the HTTP status.
func providerMessage(status int, raw []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch v := payload["error"].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
		}
		for _, key := range []string{"message", "description"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
