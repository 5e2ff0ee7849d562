package sink

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/denull/loggy-agent/src/internal/auth"
	"github.com/denull/loggy-agent/src/internal/core"
	"github.com/denull/loggy-agent/src/internal/format"
	"github.com/denull/loggy-agent/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// DefaultTimeout bounds a single collector request.
const DefaultTimeout = 10 * time.Second

// HTTP posts events to a collector ingest endpoint as JSON, a single
// object per event or an array per batch. Delivery is fire-and-forget:
// a failed request is dropped after the optional error observer runs,
// never retried.
type HTTP struct {
	url     string
	client  *fasthttp.Client
	creds   *auth.Credentials
	onError func(error)
	logger  *log.Logger
	timeout time.Duration

	totalEvents  atomic.Uint64
	totalBatches atomic.Uint64
	failed       atomic.Uint64
	lastSent     atomic.Value // time.Time
}

// HTTPOptions configures an HTTP sender.
type HTTPOptions struct {
	Endpoint           string // collector base URL
	App                string // application identifier, becomes the path suffix
	Timeout            time.Duration
	InsecureSkipVerify bool
	Credentials        *auth.Credentials
	OnError            func(error)
}

// EndpointURL joins the collector base URL with the ingest path for
// app.
func EndpointURL(endpoint, app string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported endpoint scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/log/" + url.PathEscape(app)
	return u.String(), nil
}

// NewHTTP creates an HTTP sender for the given collector endpoint.
func NewHTTP(opts HTTPOptions, logger *log.Logger) (*HTTP, error) {
	if logger == nil {
		logger = log.NewLogger()
	}
	if opts.App == "" {
		return nil, fmt.Errorf("http sender requires an application identifier")
	}

	target, err := EndpointURL(opts.Endpoint, opts.App)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	h := &HTTP{
		url:     target,
		creds:   opts.Credentials,
		onError: opts.OnError,
		logger:  logger,
		timeout: timeout,
	}
	h.lastSent.Store(time.Time{})

	h.client = &fasthttp.Client{
		MaxConnsPerHost:     10,
		MaxIdleConnDuration: 10 * time.Second,
		ReadTimeout:         timeout,
		WriteTimeout:        timeout,
	}
	if strings.HasPrefix(target, "https://") && opts.InsecureSkipVerify {
		h.client.TLSConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return h, nil
}

// Send posts a single event object.
func (h *HTTP) Send(event core.Event) {
	body, err := format.EncodeEvent(event)
	if err != nil {
		h.fail(err)
		return
	}
	h.totalEvents.Add(1)
	h.post(body)
}

// SendBatch posts the batch as a JSON array.
func (h *HTTP) SendBatch(batch []core.Event) {
	if len(batch) == 0 {
		return
	}
	body, err := format.EncodeBatch(batch)
	if err != nil {
		h.fail(err)
		return
	}
	h.totalEvents.Add(uint64(len(batch)))
	h.totalBatches.Add(1)
	h.post(body)
}

// Close releases idle collector connections.
func (h *HTTP) Close() {
	h.client.CloseIdleConnections()
}

// Stats returns delivery counters.
func (h *HTTP) Stats() Stats {
	lastSent, _ := h.lastSent.Load().(time.Time)
	return Stats{
		Type:         "http",
		TotalEvents:  h.totalEvents.Load(),
		TotalBatches: h.totalBatches.Load(),
		Failed:       h.failed.Load(),
		LastSent:     lastSent,
		Details: map[string]any{
			"url": h.url,
		},
	}
}

func (h *HTTP) post(body []byte) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(h.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("loggy-agent/%s", version.Short()))
	req.SetBody(body)

	header, err := h.creds.Header(time.Now())
	if err != nil {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
		h.fail(err)
		return
	}
	if header != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, header)
	}

	err = h.client.DoTimeout(req, resp, h.timeout)
	statusCode := resp.StatusCode()

	// Release immediately, not deferred
	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)

	if err == nil && statusCode >= 400 {
		err = fmt.Errorf("server returned status %d", statusCode)
	}
	if err != nil {
		h.fail(err)
		return
	}

	h.lastSent.Store(time.Now())
}

// fail accounts a dropped delivery. No retry follows; the observer is
// the only escalation path.
func (h *HTTP) fail(err error) {
	h.failed.Add(1)
	h.logger.Debug("msg", "Delivery dropped",
		"component", "http_sink",
		"error", err)
	if h.onError != nil {
		h.onError(err)
	}
}
