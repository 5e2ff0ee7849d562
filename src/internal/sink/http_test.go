package sink

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/denull/loggy-agent/src/internal/auth"
	"github.com/denull/loggy-agent/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

type capturedRequest struct {
	path        string
	contentType string
	authHeader  string
	userAgent   string
	body        string
}

type captureServer struct {
	*httptest.Server
	mu       sync.Mutex
	status   int
	requests []capturedRequest
}

func newCaptureServer() *captureServer {
	cs := &captureServer{status: http.StatusOK}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cs.mu.Lock()
		cs.requests = append(cs.requests, capturedRequest{
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			authHeader:  r.Header.Get("Authorization"),
			userAgent:   r.Header.Get("User-Agent"),
			body:        string(body),
		})
		status := cs.status
		cs.mu.Unlock()
		w.WriteHeader(status)
	}))
	return cs
}

func (cs *captureServer) setStatus(code int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.status = code
}

func (cs *captureServer) captured() []capturedRequest {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]capturedRequest(nil), cs.requests...)
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		app      string
		want     string
		wantErr  bool
	}{
		{"trailing slash", "http://127.0.0.1:1065/", "myapp", "http://127.0.0.1:1065/log/myapp", false},
		{"no trailing slash", "http://127.0.0.1:1065", "myapp", "http://127.0.0.1:1065/log/myapp", false},
		{"path prefix", "https://logs.example.com/ingest/", "api", "https://logs.example.com/ingest/log/api", false},
		{"app escaped", "http://localhost:1065", "my app", "http://localhost:1065/log/my%20app", false},
		{"bad scheme", "ftp://localhost", "app", "", true},
		{"missing host", "http://", "app", "", true},
		{"garbage", "://nope", "app", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EndpointURL(tt.endpoint, tt.app)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPSend(t *testing.T) {
	srv := newCaptureServer()
	defer srv.Close()

	h, err := NewHTTP(HTTPOptions{
		Endpoint: srv.URL,
		App:      "myapp",
		Timeout:  2 * time.Second,
	}, newTestLogger())
	require.NoError(t, err)
	defer h.Close()

	h.Send(core.Event{"ts": "2025-03-14T09:26:53.589Z", "level": "info", "message": "hello"})

	reqs := srv.captured()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/log/myapp", reqs[0].path)
	assert.Equal(t, "application/json", reqs[0].contentType)
	assert.Contains(t, reqs[0].userAgent, "loggy-agent/")
	assert.JSONEq(t, `{"ts":"2025-03-14T09:26:53.589Z","level":"info","message":"hello"}`, reqs[0].body)

	stats := h.Stats()
	assert.Equal(t, uint64(1), stats.TotalEvents)
	assert.Zero(t, stats.Failed)
	assert.False(t, stats.LastSent.IsZero())
}

func TestHTTPSendBatch(t *testing.T) {
	srv := newCaptureServer()
	defer srv.Close()

	h, err := NewHTTP(HTTPOptions{Endpoint: srv.URL, App: "myapp"}, newTestLogger())
	require.NoError(t, err)
	defer h.Close()

	h.SendBatch([]core.Event{
		{"message": "first"},
		{"message": "second"},
	})

	reqs := srv.captured()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `[{"message":"first"},{"message":"second"}]`, reqs[0].body)

	stats := h.Stats()
	assert.Equal(t, uint64(2), stats.TotalEvents)
	assert.Equal(t, uint64(1), stats.TotalBatches)

	// Empty batches never reach the wire.
	h.SendBatch(nil)
	assert.Len(t, srv.captured(), 1)
}

func TestHTTPBearerAuth(t *testing.T) {
	srv := newCaptureServer()
	defer srv.Close()

	h, err := NewHTTP(HTTPOptions{
		Endpoint:    srv.URL,
		App:         "myapp",
		Credentials: auth.NewBearerCredentials("tok123"),
	}, newTestLogger())
	require.NoError(t, err)
	defer h.Close()

	h.Send(core.Event{"message": "authed"})

	reqs := srv.captured()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer tok123", reqs[0].authHeader)
}

func TestHTTPFailuresAreDroppedNotRetried(t *testing.T) {
	srv := newCaptureServer()
	defer srv.Close()
	srv.setStatus(http.StatusInternalServerError)

	var mu sync.Mutex
	var observed []error
	h, err := NewHTTP(HTTPOptions{
		Endpoint: srv.URL,
		App:      "myapp",
		OnError: func(err error) {
			mu.Lock()
			observed = append(observed, err)
			mu.Unlock()
		},
	}, newTestLogger())
	require.NoError(t, err)
	defer h.Close()

	h.Send(core.Event{"message": "doomed"})

	// Exactly one request went out; the failure was not retried.
	assert.Len(t, srv.captured(), 1)
	mu.Lock()
	require.Len(t, observed, 1)
	assert.Contains(t, observed[0].Error(), "500")
	mu.Unlock()
	assert.Equal(t, uint64(1), h.Stats().Failed)
}

func TestHTTPUnreachableCollector(t *testing.T) {
	srv := newCaptureServer()
	srv.Close() // nobody listening

	var mu sync.Mutex
	calls := 0
	h, err := NewHTTP(HTTPOptions{
		Endpoint: srv.URL,
		App:      "myapp",
		Timeout:  500 * time.Millisecond,
		OnError: func(error) {
			mu.Lock()
			calls++
			mu.Unlock()
		},
	}, newTestLogger())
	require.NoError(t, err)

	h.Send(core.Event{"message": "void"})

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
	assert.Equal(t, uint64(1), h.Stats().Failed)
}

func TestHTTPUnencodableEventDropped(t *testing.T) {
	srv := newCaptureServer()
	defer srv.Close()

	errs := 0
	h, err := NewHTTP(HTTPOptions{
		Endpoint: srv.URL,
		App:      "myapp",
		OnError:  func(error) { errs++ },
	}, newTestLogger())
	require.NoError(t, err)
	defer h.Close()

	h.Send(core.Event{"bad": func() {}})

	assert.Empty(t, srv.captured(), "nothing reaches the wire")
	assert.Equal(t, 1, errs)
}

func TestNewHTTPValidation(t *testing.T) {
	_, err := NewHTTP(HTTPOptions{Endpoint: "http://localhost:1065"}, newTestLogger())
	assert.Error(t, err, "app identifier required")

	_, err = NewHTTP(HTTPOptions{Endpoint: "not a url", App: "x"}, newTestLogger())
	assert.Error(t, err)
}
