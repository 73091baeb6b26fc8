// Package abs is a thin client for the ABS Data API (SDMX-JSON). Tool
// handlers use it to fetch a single numeric observation per call.
package abs

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client calls the ABS Data API with rate limiting and retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit sets the request rate limit.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		if perSec > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// WithMaxRetries sets the retry budget for 429/5xx responses.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// New creates a Client for the given API base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		userAgent:  "abs-insights/1.0",
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches /data/{dataflow}/{dataKey} as SDMX-JSON.
func (c *Client) Get(ctx context.Context, dataflow, dataKey string, query url.Values) (*Response, error) {
	u := fmt.Sprintf("%s/data/%s/%s", c.baseURL, url.PathEscape(dataflow), url.PathEscape(dataKey))
	if query == nil {
		query = url.Values{}
	}
	query.Set("format", "jsondata")
	u = u + "?" + query.Encode()

	resp, err := c.doWithRetry(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, eris.Wrapf(ErrNoObservation, "abs: no data for %s/%s", dataflow, dataKey)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("abs: unexpected status %d from %s", resp.StatusCode, u)
	}

	return decodeResponse(resp.Body)
}

// Observation fetches the dataset and returns its latest numeric observation.
func (c *Client) Observation(ctx context.Context, dataflow, dataKey string, query url.Values) (float64, error) {
	resp, err := c.Get(ctx, dataflow, dataKey, query)
	if err != nil {
		return 0, err
	}
	v, ok := resp.LatestObservation()
	if !ok {
		return 0, eris.Wrapf(ErrNoObservation, "abs: empty dataset for %s/%s", dataflow, dataKey)
	}
	return v, nil
}

func (c *Client) doWithRetry(ctx context.Context, rawURL string) (*http.Response, error) {
	var lastErr error
	for attempt := range c.maxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "abs: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "abs: create request")
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/vnd.sdmx.data+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("abs request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("abs: http %d from %s", resp.StatusCode, rawURL)
			zap.L().Warn("abs server busy, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}
	return nil, eris.Wrap(lastErr, "abs: all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	base := 500 * time.Millisecond
	maxBackoff := 10 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
