// Package usage talks to the venue analytics backend and turns its
// plinechart answers into daily usage series.
package usage

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

const (
	chartPath   = "/vdash/dashboard/plinechart?"
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	contentType = "application/x-www-form-urlencoded; charset=UTF-8"

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 16 << 20
)

var (
	// ErrTransientNetwork covers non-2xx statuses and transport failures.
	// An expired session surfaces the same way.
	ErrTransientNetwork = errors.New("transient network failure")
	// ErrMalformedResponse means the body was not a JSON array. Not retried.
	ErrMalformedResponse = errors.New("malformed response")
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy bounds how a single fetch is retried.
type RetryPolicy struct {
	Sleep       SleepFunc
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy is three attempts one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Second, Sleep: sleepContext}
}

// Options configures a Client.
type Options struct {
	// Transport overrides the pooled transport. Used by tests.
	Transport         http.RoundTripper
	BaseURL           string
	Retry             RetryPolicy
	Timeout           time.Duration
	MaxConnsPerHost   int
	RequestsPerSecond float64
}

// Client fetches usage series. It is safe for concurrent use; all workers
// share one keep-alive connection pool.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	retry   RetryPolicy
}

// NewClient builds a client from opts, filling in defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://venue.wifi.id"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxConnsPerHost <= 0 {
		opts.MaxConnsPerHost = 10
	}
	def := DefaultRetryPolicy()
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = def.MaxAttempts
	}
	if opts.Retry.Delay < 0 {
		opts.Retry.Delay = def.Delay
	}
	if opts.Retry.Sleep == nil {
		opts.Retry.Sleep = def.Sleep
	}

	transport := opts.Transport
	if transport == nil {
		transport = newPooledTransport(opts.MaxConnsPerHost)
	}

	c := &Client{
		http:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		retry:   opts.Retry,
	}
	if opts.RequestsPerSecond > 0 {
		burst := max(1, int(opts.RequestsPerSecond))
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// newPooledTransport returns the shared transport. Certificate validation is
// off: the venue endpoint serves a chain that does not verify. Accepted risk.
func newPooledTransport(maxConns int) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		MaxIdleConns:        maxConns * 2,
		MaxIdleConnsPerHost: maxConns,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// Fetch retrieves the daily series for one location. Transient failures are
// retried per the client's policy; a malformed body fails immediately.
// An empty series is a valid answer, not an error.
func (c *Client) Fetch(ctx context.Context, credential, orgID, locationID string, dr models.DateRange) (models.UsageSeries, error) {
	if err := dr.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		series, err := c.fetchOnce(ctx, credential, orgID, locationID, dr)
		if err == nil {
			return series, nil
		}
		lastErr = err
		if errors.Is(err, ErrMalformedResponse) || ctx.Err() != nil {
			return nil, err
		}

		logger.Debug("usage fetch attempt failed",
			"location", locationID, "attempt", attempt, "error", err)

		if attempt < c.retry.MaxAttempts {
			if err := c.retry.Sleep(ctx, c.retry.Delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%d attempts: %w", c.retry.MaxAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, credential, orgID, locationID string, dr models.DateRange) (models.UsageSeries, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	form := FormValues(orgID, locationID, dr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chartPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create usage request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", "PHPSESSID="+credential)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientNetwork, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransientNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrTransientNetwork, resp.StatusCode)
	}

	return ParseSeries(body)
}

// FormValues builds the plinechart form body for one location and range.
func FormValues(orgID, locationID string, dr models.DateRange) url.Values {
	v := url.Values{}
	v.Set("optionsRadios", "3")
	v.Set("startdate", dr.RemoteStart())
	v.Set("enddate", dr.RemoteEnd())
	v.Set("rr", "3")
	v.Set("vo", orgID)
	v.Set("level", "l2")
	v.Set("locid", locationID)
	v.Set("namasite", "JATENG")
	v.Set("ap", "")
	v.Set("kota", "")
	v.Set("ssid", "")
	v.Set("sitename", "")
	return v
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
