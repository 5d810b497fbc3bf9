// Package httpds retrieves store records from the retailer's REST API.
// Requests carry the API key header, transient failures (429/5xx, network
// errors) are retried with exponential backoff, and store detail pages are
// fetched concurrently with a bounded worker count.
package httpds

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Config configures the API client. Zero values get defaults: Timeout 30s,
// MaxRetries 3, InitialBackoff 200ms, MaxBackoff 5s, Concurrency 8.
type Config struct {
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Concurrency bounds the number of in-flight store detail requests.
	Concurrency int

	// Transport is an optional custom RoundTripper for tests.
	Transport http.RoundTripper
}

// Client is an HTTP client for the store API.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	concurrency    int

	// sleep is injectable to make retry tests fast and deterministic.
	sleep func(context.Context, time.Duration) error
}

// NewClient constructs a Client from Config, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		apiKey:         cfg.APIKey,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		concurrency:    cfg.Concurrency,
		sleep:          sleepWithContext,
	}
}

// getJSON fetches url with retry/backoff and decodes the response body into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(err, "httpds: decode response from %s", url)
	}
	return nil
}

// get performs a GET with the API key header, retrying transient failures.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrap(err, "httpds: build request")
		}
		req.Header.Set("x-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network or transport-level error. Treat as retryable.
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = readErr
			case resp.StatusCode == http.StatusOK:
				return body, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = errors.Errorf("httpds: retryable status %d from GET %s", resp.StatusCode, url)
			default:
				return nil, errors.Errorf("httpds: status %d from GET %s", resp.StatusCode, url)
			}
		}

		if attempt+1 >= attempts {
			return nil, lastErr
		}
		if err := c.sleep(ctx, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// isRetryableStatus reports whether code should trigger a retry. 5xx and 429
// are treated as transient; everything else is final.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns the exponential backoff for the given 0-based retry
// index, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
