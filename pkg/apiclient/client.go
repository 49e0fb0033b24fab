package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/departure-board/pkg/httpclient"
)

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config is the immutable configuration of a Client. Token, when set, is
// sent as "Authorization: Bearer <token>".
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the resty-backed transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client issues GET requests against a JSON API and classifies the outcome
// into a *Response or a *RequestError.
//
// A Client is safe for concurrent use by multiple goroutines: its
// configuration never changes after New and every Get is independent.
type Client struct {
	baseURL string
	timeout time.Duration
	headers map[string]string
	http    httpclient.Client
	log     Logger
}

// New validates cfg and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("base url is required")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if token := strings.TrimSpace(cfg.Token); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	c := &Client{
		baseURL: base,
		timeout: timeout,
		headers: headers,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(timeout, nil)
	}
	return c, nil
}

func (c *Client) BaseURL() string        { return c.baseURL }
func (c *Client) Timeout() time.Duration { return c.timeout }

// Headers returns a copy of the default request headers.
func (c *Client) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// URL joins endpoint to the base URL with exactly one slash.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// Get requests endpoint with the given query parameters.
//
// Transport failures return a *RequestError without a status code. Error
// statuses (4xx/5xx) return a *RequestError carrying the status and the
// decoded body, or {"error": <raw text>} when the body is not JSON. Success
// bodies that are not JSON are returned as {"raw_content": <raw text>}.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.URL(endpoint)
	c.log.DebugObj("api get request", "api_request", map[string]any{
		"url":    url,
		"params": params,
	})

	resp, err := c.http.Get(ctx, url, c.headers, params)
	if err != nil {
		c.log.ErrorObj("api request failed", "api_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return nil, &RequestError{
			Message: fmt.Sprintf("request failed: %v", err),
			Err:     err,
		}
	}
	return c.classify(resp)
}

func (c *Client) classify(resp httpclient.Response) (*Response, error) {
	code := resp.StatusCode()
	body := resp.Body()

	if code >= http.StatusBadRequest {
		return nil, &RequestError{
			Message:    fmt.Sprintf("HTTP %d: %s", code, reasonPhrase(code, resp.Status())),
			StatusCode: code,
			Body:       decodeBody(body, ErrorKey),
		}
	}

	return NewResponse(code, decodeBody(body, RawContentKey), flattenHeader(resp.Header())), nil
}

// decodeBody parses body as JSON, or wraps the raw text under fallbackKey.
func decodeBody(body []byte, fallbackKey string) Value {
	if v, err := ParseValue(body); err == nil {
		return v
	}
	return Object(map[string]Value{fallbackKey: String(string(body))})
}

// reasonPhrase extracts "Not Found" from a "404 Not Found" status line.
func reasonPhrase(code int, status string) string {
	status = strings.TrimSpace(status)
	if reason, ok := strings.CutPrefix(status, strconv.Itoa(code)); ok {
		if reason = strings.TrimSpace(reason); reason != "" {
			return reason
		}
	}
	if status != "" && !strings.HasPrefix(status, strconv.Itoa(code)) {
		return status
	}
	return http.StatusText(code)
}
