// Package resilience wraps outbound HTTP calls to the weather and
// geocoding providers with timeouts, a circuit breaker, and bounded
// retries for transient failures.
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the provider's circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider for circuit breaker naming.
	Name string

	// Timeout is the per-request timeout. Default: 10 seconds.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts for transient failures
	// (network errors and 5xx responses). Rate-limit responses are never
	// retried; pacing is the caller's load control. Default: 2.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval. Default: 200ms.
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval. Default: 2 seconds.
	MaxInterval time.Duration

	// CircuitBreaker overrides the circuit breaker configuration.
	CircuitBreaker *CircuitBreakerConfig
}

// DefaultClientConfig returns defaults suitable for the upstream weather
// and geocoding providers.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client is an HTTP client with per-request timeouts, circuit breaking,
// and retry on transient failures.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	cbConfig := cfg.CircuitBreaker
	if cbConfig == nil {
		c := DefaultCircuitBreakerConfig(cfg.Name)
		cbConfig = &c
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: NewCircuitBreaker[*http.Response](*cbConfig),
		config:  cfg,
	}
}

// transientError marks a response or failure as retryable at the
// transport level.
type transientError struct {
	err  error
	resp *http.Response
}

func (e *transientError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return "server error: " + http.StatusText(e.resp.StatusCode)
}

func (e *transientError) Unwrap() error { return e.err }

// Do executes the request. Network errors and 5xx responses are retried
// with exponential backoff up to MaxRetries; every attempt passes through
// the circuit breaker. The final response is returned even when it is a
// 5xx that exhausted retries, so the caller can classify the status.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), req.Context())

	var lastResp *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(req.Context()))
			if err != nil {
				return nil, &transientError{err: err}
			}
			if r.StatusCode >= 500 {
				// Drain so the connection can be reused across retries.
				r.Body.Close()
				return r, &transientError{resp: r}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			var te *transientError
			if errors.As(err, &te) {
				return err
			}
			return backoff.Permanent(err)
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		if lastResp != nil {
			return lastResp, nil
		}
		var te *transientError
		if errors.As(err, &te) && te.err != nil {
			return nil, te.err
		}
		return nil, err
	}
	return lastResp, nil
}

// State returns the current circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the circuit breaker request counts.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}
