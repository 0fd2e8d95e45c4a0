package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent is the user agent string used for HTTP requests.
// Some rate pages refuse requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTimeout bounds every outbound call.
const DefaultTimeout = 10 * time.Second

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Client performs single-attempt HTTP requests with a bounded timeout.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a client with the given timeout (DefaultTimeout when
// zero) and user agent (DefaultUserAgent when empty).
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Timeout returns the configured per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// DoGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func (c *Client) DoGet(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	return c.do(req, headers)
}

// DoPostJSON marshals payload and POSTs it as application/json.
// The caller is responsible for closing the returned ReadCloser.
func (c *Client) DoPostJSON(ctx context.Context, rawURL string, payload any, headers map[string]string) (io.ReadCloser, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, headers)
}

func (c *Client) do(req *http.Request, headers map[string]string) (io.ReadCloser, int, error) {
	// Set default headers.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	// Override/add custom headers.
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP %s %s: %w", req.Method, stripQuery(req.URL), err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// GetJSON performs a GET and decodes the JSON body into dest.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, dest any) error {
	body, _, err := c.DoGet(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	return decodeJSON(body, dest)
}

// PostJSON performs a JSON POST and decodes the JSON body into dest.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload any, headers map[string]string, dest any) error {
	body, _, err := c.DoPostJSON(ctx, rawURL, payload, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	return decodeJSON(body, dest)
}

// ErrDecode marks a response body that could not be decoded.
var ErrDecode = errors.New("decode response")

func decodeJSON(r io.Reader, dest any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// stripQuery drops the query string, which may carry API keys.
func stripQuery(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.User = nil
	return c.String()
}

// IsTimeout reports whether err is a deadline or client timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
