package pollinations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"imagelab-cli/internal/interfaces"
)

const (
	// DefaultEndpoint is the public Pollinations text-to-image endpoint
	DefaultEndpoint = "https://image.pollinations.ai/prompt/"
)

// Client represents the Pollinations image API client
type Client struct {
	httpClient *http.Client
	endpoint   string
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock replaces the clock used for the cache-bust parameter
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Pollinations client. A zero timeout leaves the
// transport defaults in charge of how long a request may take.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildURL returns the request URL for req with a cache-bust value derived from at
func (c *Client) BuildURL(req interfaces.ImageRequest, at time.Time) string {
	return fmt.Sprintf("%s%s?width=%d&height=%d&model=%s&cacheBust=%s",
		c.endpoint,
		EncodePrompt(req.Prompt),
		req.Width,
		req.Height,
		url.QueryEscape(req.Model),
		strconv.FormatInt(at.UnixMilli(), 10),
	)
}

// Generate implements the image generation request
func (c *Client) Generate(ctx context.Context, req interfaces.ImageRequest) (*interfaces.ImageResult, error) {
	target := c.BuildURL(req, c.now())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &interfaces.StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &interfaces.BodyReadError{Err: err}
	}

	return &interfaces.ImageResult{
		URL:         target,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// EncodePrompt percent-encodes every byte of s except the unreserved
// characters A-Z a-z 0-9 - . _ ~
func EncodePrompt(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isUnreserved(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0f])
	}
	return b.String()
}

func isUnreserved(ch byte) bool {
	switch {
	case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		return true
	case ch == '-', ch == '.', ch == '_', ch == '~':
		return true
	}
	return false
}
