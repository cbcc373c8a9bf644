package partner

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/dinegate/internal/metrics"
)

const (
	// DefaultTimeout bounds every partner call. A timed-out call is reported
	// as ConnectionFailed like any other network error.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps partner response bodies (5MB).
	maxResponseSize = 5 * 1024 * 1024

	consumerHeader = "X-Consumer"
	apiKeyHeader   = "X-API-Key"
)

// Client is the HTTP plumbing shared by all adapters: auth headers, timeout,
// size limit, and metrics. Adapters own everything partner-specific.
type Client struct {
	hc       *http.Client
	partner  ServiceType
	baseURL  string
	apiKey   string
	consumer string
}

func NewClient(p ServiceType, baseURL, apiKey, consumer string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		hc:       &http.Client{Timeout: timeout},
		partner:  p,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		consumer: consumer,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET to path with the given query parameters.
func (c *Client) Get(ctx context.Context, op, path string, query url.Values) (int, []byte, error) {
	return c.do(ctx, op, http.MethodGet, path, query, "", nil)
}

// PostJSON issues a POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, op, path string, body []byte) (int, []byte, error) {
	return c.do(ctx, op, http.MethodPost, path, nil, "application/json", body)
}

// PostForm issues a POST with a form-url-encoded body and no JSON content
// type. The taxi partner rejects JSON content types outright.
func (c *Client) PostForm(ctx context.Context, op, path string, form url.Values) (int, []byte, error) {
	return c.do(ctx, op, http.MethodPost, path, nil, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, contentType string, body []byte) (int, []byte, error) {
	rawURL := c.baseURL + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return 0, nil, NewConnectionFailed(c.partner, op, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set(consumerHeader, c.consumer)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	res, err := c.hc.Do(req)
	metrics.PartnerRequestDuration.WithLabelValues(string(c.partner), op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PartnerRequestsTotal.WithLabelValues(string(c.partner), op, "connection_failed").Inc()
		return 0, nil, NewConnectionFailed(c.partner, op, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		metrics.PartnerRequestsTotal.WithLabelValues(string(c.partner), op, "connection_failed").Inc()
		return res.StatusCode, nil, NewConnectionFailed(c.partner, op, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		metrics.PartnerRequestsTotal.WithLabelValues(string(c.partner), op, "http_error").Inc()
		return res.StatusCode, b, NewHTTPError(c.partner, op, res.StatusCode, b)
	}

	metrics.PartnerRequestsTotal.WithLabelValues(string(c.partner), op, "ok").Inc()
	return res.StatusCode, b, nil
}
