package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// maxResponseSize bounds how much of a response body is read. Portal
// responses are a line of text.
const maxResponseSize = 1 << 20

// Request is one portal request. A nil Form sends no body and no
// Content-Type.
type Request struct {
	Method string
	Path   string
	Form   *Form
}

// Response is an opaque text response.
type Response struct {
	StatusCode int
	Body       string
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport carries portal requests. Implementations return an error
// wrapping ErrTransport when no response was received; any received
// status, including 4xx and 5xx, is a Response.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// HTTPTransport is a Transport over net/http. Its cookie jar keeps the
// stream session cookie between the gate and the stream page, the way a
// browser would.
type HTTPTransport struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPTransport creates a transport for the portal at baseURL.
//
// Parameters:
//   - baseURL: Portal origin, e.g. "http://192.168.4.1:8080"
//   - timeout: Per-request bound; zero means no timeout
//
// Returns:
//   - *HTTPTransport: Ready to use
//   - error: If baseURL is not an absolute http(s) URL
func NewHTTPTransport(baseURL string, timeout time.Duration) (*HTTPTransport, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing portal url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("portal url must be absolute http(s), got %q", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &HTTPTransport{
		base: base,
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// URL resolves path against the portal origin.
func (t *HTTPTransport) URL(path string) string {
	return t.base.ResolveReference(&url.URL{Path: path}).String()
}

// Do sends req and reads the whole response body as text.
func (t *HTTPTransport) Do(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.URL(req.Path), body)
	if err != nil {
		return nil, fmt.Errorf("%w: building %s %s: %w", ErrTransport, req.Method, req.Path, err)
	}
	if req.Form != nil {
		httpReq.Header.Set("Content-Type", FormContentType)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s response: %w", ErrTransport, req.Method, req.Path, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: string(data)}, nil
}
