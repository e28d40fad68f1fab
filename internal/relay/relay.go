package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/schoolms/sms-gateway/internal/session"
)

// Sentinel errors for the two caller-distinguishable failure modes. A
// timed-out call and an unreachable backend map to different
// user-visible responses (504 vs 502), so they must stay separable.
var (
	ErrTimeout     = errors.New("backend request timed out")
	ErrUnreachable = errors.New("backend unreachable")
)

const (
	headerTenantID    = "x-tenant-id"
	headerTenantSlug  = "x-tenant-slug"
	refreshPathPrefix = "/api/v1/auth/refresh"
)

var (
	relayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_relay_requests_total",
		Help: "Backend relay requests by method and status class",
	}, []string{"method", "status"})
	relayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_relay_duration_seconds",
		Help:    "Backend relay request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Client is the single chokepoint for calls to the external backend.
// It attaches tenant-context and bearer-auth headers derived from the
// incoming request's cookies and applies a bounded timeout. It never
// retries.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	loginTimeout   time.Duration
}

// New creates a relay client. requestTimeout bounds ordinary calls;
// loginTimeout is the extended bound for tenant login, where backend
// tenant bootstrap can be slow.
func New(baseURL string, requestTimeout, loginTimeout time.Duration) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		requestTimeout: requestTimeout,
		loginTimeout:   loginTimeout,
	}
}

// Options adjusts a single relay call.
type Options struct {
	// Header entries set here win over anything the relay would
	// attach from cookies. Needed for fresh tenant-switch logins.
	Header http.Header
	// LoginTimeout applies the extended login deadline.
	LoginTimeout bool
	// SkipSessionHeaders disables cookie-derived header attachment
	// entirely (platform login runs before any session exists).
	SkipSessionHeaders bool
}

// Do relays one request to the backend. path may include a query
// string. The returned response body must be closed by the caller;
// closing it also releases the timeout.
func (c *Client) Do(ctx context.Context, in *http.Request, method, path string, body io.Reader, opts Options) (*http.Response, error) {
	timeout := c.requestTimeout
	if opts.LoginTimeout {
		timeout = c.loginTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create backend request: %w", err)
	}

	for key, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if !opts.SkipSessionHeaders && in != nil {
		c.attachSessionHeaders(req, in)
	}

	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	relayDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		cancel()
		relayRequests.WithLabelValues(method, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	relayRequests.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// attachSessionHeaders derives tenant-context and auth headers from
// the incoming request's cookies, never overriding headers the caller
// set explicitly.
func (c *Client) attachSessionHeaders(req *http.Request, in *http.Request) {
	if tenantID := session.TenantID(in); tenantID != "" && req.Header.Get(headerTenantID) == "" {
		req.Header.Set(headerTenantID, tenantID)
	}
	if tenantSlug := session.TenantSlug(in); tenantSlug != "" && req.Header.Get(headerTenantSlug) == "" {
		req.Header.Set(headerTenantSlug, tenantSlug)
	}
	if access := session.AccessToken(in); access != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	// The backend refresh endpoint expects the refresh token as a
	// cookie, not a bearer header.
	if strings.HasPrefix(req.URL.Path, refreshPathPrefix) && req.Header.Get("Cookie") == "" {
		if refresh := session.RefreshToken(in); refresh != "" {
			req.Header.Set("Cookie", session.CookieRefresh+"="+refresh)
		}
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// cancelOnClose ties the request timeout's cancel func to the response
// body so the caller can stream the body before the context is
// released.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
