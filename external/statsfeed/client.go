package statsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
	"github.com/riskibarqy/volleystats/internal/platform/resilience"
	"github.com/riskibarqy/volleystats/internal/usecase"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (compatible; volleystats/1.0)"
	defaultTimeout      = 30 * time.Second
	defaultRetryDelay   = 2 * time.Second
	defaultMaxBodyBytes = 16 << 20
	maxRedirects        = 5
)

var errStatsFeedTransient = crerr.New("stats feed transient failure")

type ClientConfig struct {
	HTTPClient        *fasthttp.Client
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client downloads box-score PDFs from the federation's stats server.
type Client struct {
	httpClient     *fasthttp.Client
	userAgent      string
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxResponseBodySize:      defaultMaxBodyBytes,
			NoDefaultUserAgentHeader: true,
		}
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breaker := resilience.NewCircuitBreaker(breakerCfg)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("stats feed circuit state changed", "from", string(from), "to", string(to))
	})

	return &Client{
		httpClient:     httpClient,
		userAgent:      userAgent,
		timeout:        timeout,
		maxRetries:     max(cfg.MaxRetries, 0),
		retryDelay:     retryDelay,
		limiter:        rate.NewLimiter(limit, 1),
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchPDF returns the raw bytes behind statsURL. Concurrent calls for the
// same URL share one download.
func (c *Client) FetchPDF(ctx context.Context, statsURL string) ([]byte, error) {
	statsURL = strings.TrimSpace(statsURL)
	if err := validateURL(statsURL); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "stats feed circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: stats server is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err, _ := c.flight.Do(statsURL, func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, statsURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, statsURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		raw, status, err := c.get(ctx, statsURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send request: %v", errStatsFeedTransient, err)
		case status >= 200 && status < 300:
			if len(raw) == 0 {
				return nil, crerr.Newf("stats server returned an empty body for %s", statsURL)
			}
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: stats server status=%d body=%s", errStatsFeedTransient, status, abbreviateBody(raw))
		default:
			return nil, fmt.Errorf("stats server status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := c.retryDelay * time.Duration(1<<attempt)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("stats download failed")
	}
	c.logger.WarnContext(ctx, "stats feed request failed", "url", statsURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, statsURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(statsURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set("Accept", "application/pdf,*/*")
	req.SetTimeout(c.requestTimeout(ctx))

	if err := c.httpClient.DoRedirects(req, resp, maxRedirects); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, err
	}

	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

func (c *Client) requestTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

func validateURL(raw string) error {
	if raw == "" {
		return crerr.New("stats url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return crerr.Wrapf(err, "parse stats url %q", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return crerr.Newf("unsupported stats url scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return crerr.Newf("stats url %q has no host", raw)
	}
	return nil
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errStatsFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
