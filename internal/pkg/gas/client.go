// Package gas fetches the three-table attendance export from a Google Apps
// Script web app.
package gas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	DefaultTimeout = 30 * time.Second

	// Scope granted to service-account tokens sent to the web app.
	DriveReadonlyScope = "https://www.googleapis.com/auth/drive.readonly"

	maxErrorBody     = 500
	maxInvalidBody   = 200
	maxResponseBytes = 64 << 20
)

var ErrInvalidJSON = errors.New("data source returned invalid JSON")

// FetchError is a non-2xx answer from the web app. Body is truncated.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("data source responded with status %d", e.StatusCode)
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. With credentials set it is
// used as the base transport of the authorised client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithCredentialsFile authorises every request with a service-account token
// read from path.
func WithCredentialsFile(path string) Option {
	return func(c *Client) { c.credentialsFile = path }
}

func withClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client implements attendance.Source over HTTP. Every Fetch is a single
// attempt; there are no retries.
type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	timeout         time.Duration
	credentialsFile string
	now             func() time.Time
}

var _ attendance.Source = (*Client)(nil)

func NewClient(ctx context.Context, rawURL string, opts ...Option) (*Client, error) {
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid data source url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid data source url %q: scheme and host are required", rawURL)
	}

	c := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient
	if base == nil {
		base = &http.Client{Timeout: c.timeout}
	}

	if c.credentialsFile == "" {
		c.httpClient = base
		return c, nil
	}

	data, err := os.ReadFile(c.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read google credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}

	authorised := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), creds.TokenSource)
	authorised.Timeout = c.timeout
	c.httpClient = authorised
	return c, nil
}

// Fetch implements attendance.Source.
func (c *Client) Fetch(ctx context.Context) (sheet.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return sheet.Payload{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sheet.Payload{}, fmt.Errorf("%w: %w", attendance.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return sheet.Payload{}, fmt.Errorf("%w: reading body: %w", attendance.ErrSourceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return sheet.Payload{}, &FetchError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	if !json.Valid(body) {
		return sheet.Payload{}, fmt.Errorf("%w: %s", ErrInvalidJSON, truncate(string(body), maxInvalidBody))
	}

	payload, err := sheet.DecodePayload(body)
	if err != nil {
		return sheet.Payload{}, err
	}
	return payload, nil
}

// requestURL appends the getData action and a cache-busting timestamp.
func (c *Client) requestURL() string {
	u := *c.baseURL
	q := u.Query()
	q.Set("action", "getData")
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
