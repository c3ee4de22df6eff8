package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
	"github.com/lxopi/repgo/pkg/common/validation"
	"github.com/lxopi/repgo/pkg/dispatch"
	"github.com/lxopi/repgo/pkg/logging"
	"github.com/lxopi/repgo/pkg/metrics"
)

// DefaultUserAgent identifies repgo requests when no User-Agent is configured.
const DefaultUserAgent = "repgo-httpclient/1.0"

// Config holds configuration options for creating a Client.
type Config struct {
	// MaxRetries bounds retries per request. 0 means a single attempt.
	MaxRetries int

	// Backoff computes the delay before each retry. Nil means no delay.
	Backoff dispatch.BackoffFunc

	// Timeout bounds each attempt. 0 means no per-attempt timeout.
	Timeout time.Duration

	// Limiter paces outgoing attempts when set. Retried attempts are
	// paced like fresh ones.
	Limiter *rate.Limiter

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Headers are added to every request.
	Headers map[string]string

	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper

	// Name labels the client in logs and metrics. Defaults to "httpclient".
	Name string

	// Metrics configures Prometheus instrumentation.
	Metrics metrics.Config
}

func (c Config) validate() error {
	return validation.ValidateNonNegative("httpclient", "maxretries", c.MaxRetries)
}

func (c Config) label() string {
	if c.Name != "" {
		return c.Name
	}
	return "httpclient"
}

// Client is a stubborn HTTP client: it retries transport errors and
// retryable status codes (5xx and 429) with backoff, up to a bound,
// optionally pacing attempts through a rate limiter.
type Client struct {
	http      *http.Client
	config    Config
	userAgent string
	registry  *metrics.Registry
}

// New creates a Client from the given configuration.
func New(config Config) (*Client, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	registry := metrics.DefaultRegistry
	if config.Metrics.Registry != nil {
		registry = metrics.NewRegistry(config.Metrics.Registry)
	}

	return &Client{
		http: &http.Client{
			Transport: config.Transport,
			Timeout:   config.Timeout,
		},
		config:    config,
		userAgent: userAgent,
		registry:  registry,
	}, nil
}

// Get issues a GET request with retry.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, url, "", nil)
}

// Post issues a POST request with retry. The body is replayed on retries.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, url, contentType, body)
}

// Retryable reports whether a status code is worth retrying: server errors
// and throttling responses.
func Retryable(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

func (c *Client) do(ctx context.Context, method, url, contentType string, body []byte) (*http.Response, error) {
	log := logging.WithComponent(c.config.label())

	for attempt := 1; ; attempt++ {
		if c.config.Limiter != nil {
			if err := c.config.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.attempt(ctx, method, url, contentType, body)

		retriesLeft := attempt <= c.config.MaxRetries
		switch {
		case err == nil && !Retryable(resp.StatusCode):
			return resp, nil

		case err == nil && !retriesLeft:
			// Out of retries; the caller inspects the status.
			c.failures(method)
			return resp, nil

		case err == nil:
			log.WithField("status", resp.StatusCode).
				WithField("attempt", attempt).
				Debug("retrying request")
			drain(resp)

		case ctx.Err() != nil:
			return nil, ctx.Err()

		case !retriesLeft:
			c.failures(method)
			return nil, rgerrors.NewOperationError("httpclient", method, err).
				WithContext("url: " + url)

		default:
			log.WithError(err).
				WithField("attempt", attempt).
				Debug("retrying request")
		}

		if !c.waitBackoff(ctx, method, attempt) {
			return nil, ctx.Err()
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, url, contentType string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.config.Metrics.Enabled {
		c.registry.HTTPRequests.WithLabelValues(c.config.label(), method).Inc()
		c.registry.HTTPRequestDuration.WithLabelValues(c.config.label(), method).Observe(time.Since(start).Seconds())
	}
	return resp, err
}

func (c *Client) waitBackoff(ctx context.Context, method string, attempt int) bool {
	if c.config.Metrics.Enabled {
		c.registry.HTTPRetries.WithLabelValues(c.config.label(), method).Inc()
	}
	if c.config.Backoff == nil {
		return ctx.Err() == nil
	}
	delay := c.config.Backoff(attempt)
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) failures(method string) {
	if c.config.Metrics.Enabled {
		c.registry.HTTPFailures.WithLabelValues(c.config.label(), method).Inc()
	}
}

// drain consumes and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
