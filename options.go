package scoreline

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithBaseURL sets the leaderboard service endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHealthTimeout sets the (short) timeout used by CheckHealth.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.healthTimeout = d
	}
}

// WithMaxRetries sets how many retries follow the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithInitialBackoff sets the delay before the first retry.
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.initialDelay = d
	}
}

// WithMaxBackoff caps the backoff delay.
func WithMaxBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithJitter sets the jitter factor (0.0 to 1.0) applied to backoff delays.
// The default of 0 keeps the delay sequence deterministic.
func WithJitter(f float64) Option {
	return func(c *Client) {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		c.jitter = f
	}
}

// WithBackoffStrategy selects the backoff algorithm.
func WithBackoffStrategy(s BackoffStrategy) Option {
	return func(c *Client) {
		c.backoffStrategy = s
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithCache enables response caching with the given cache, typically
// NewMemoryCache(). Without it every read goes to the network.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLeaderboardTTL sets the freshness bound for leaderboard reads.
func WithLeaderboardTTL(d time.Duration) Option {
	return func(c *Client) {
		c.leaderboardTTL = d
	}
}

// WithPlayerTTL sets the freshness bound for player rank reads.
func WithPlayerTTL(d time.Duration) Option {
	return func(c *Client) {
		c.playerTTL = d
	}
}

// WithStatsTTL sets the freshness bound for player stats reads.
func WithStatsTTL(d time.Duration) Option {
	return func(c *Client) {
		c.statsTTL = d
	}
}

// WithTopLimit bounds the snapshot length for top-player reads.
func WithTopLimit(n int) Option {
	return func(c *Client) {
		c.topLimit = n
	}
}

// WithTokenStore shares a token store between clients.
func WithTokenStore(store *TokenStore) Option {
	return func(c *Client) {
		if store != nil {
			c.tokens = store
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables debug logging with the default configuration and, when
// no logger was configured, the default slog logger.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		if _, ok := c.logger.(nopLogger); ok {
			c.logger = NewDefaultLogger()
		}
	}
}

// WithDebugConfig sets a custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithRequestIDGenerator sets a custom request ID generator for debug logs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDeduplication coalesces concurrent identical reads into one upstream
// request. Off by default: redundant reads are idempotent and harmless.
func WithDeduplication() Option {
	return func(c *Client) {
		c.dedup = newDedupTracker()
	}
}

// WithCircuitBreaker short-circuits calls to the degraded path while the
// upstream is known bad.
func WithCircuitBreaker(config CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.breaker = NewCircuitBreaker(config)
	}
}

// WithRateLimiter bounds outgoing request volume with a token bucket.
func WithRateLimiter(maxTokens int, refillRate time.Duration) Option {
	return func(c *Client) {
		c.limiter = NewRateLimiter(maxTokens, refillRate)
	}
}

// WithFallbackPlayers replaces the built-in degraded-mode dataset.
func WithFallbackPlayers(players []PlayerRecord) Option {
	return func(c *Client) {
		if len(players) > 0 {
			c.fallback = players
		}
	}
}

// ValidateConfiguration checks the composed configuration and returns an
// error listing every violation, or nil.
func (c *Client) ValidateConfiguration() error {
	violations := c.configViolations()
	if len(violations) > 0 {
		return &Error{
			Kind:    KindValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("violations: %v", violations),
		}
	}
	return nil
}

func (c *Client) configViolations() []string {
	var violations []string

	if c.baseURL == "" {
		violations = append(violations, "base URL must be set")
	}
	if c.timeout <= 0 {
		violations = append(violations, "timeout must be positive")
	}
	if c.healthTimeout <= 0 {
		violations = append(violations, "health timeout must be positive")
	}
	if c.maxRetries < 0 {
		violations = append(violations, "maxRetries must be non-negative")
	}
	if c.initialDelay <= 0 {
		violations = append(violations, "initial backoff must be positive")
	}
	if c.maxDelay < c.initialDelay {
		violations = append(violations, "max backoff must be greater than or equal to initial backoff")
	}
	if c.multiplier <= 0 {
		violations = append(violations, "backoff multiplier must be positive")
	}
	if c.topLimit <= 0 {
		violations = append(violations, "top limit must be positive")
	}
	if c.cache != nil {
		if c.leaderboardTTL <= 0 {
			violations = append(violations, "leaderboard TTL must be positive when caching is enabled")
		}
		if c.playerTTL <= 0 {
			violations = append(violations, "player TTL must be positive when caching is enabled")
		}
		if c.statsTTL <= 0 {
			violations = append(violations, "stats TTL must be positive when caching is enabled")
		}
	}
	if c.limiter != nil && c.limiter.maxTokens <= 0 {
		violations = append(violations, "rate limiter maxTokens must be positive")
	}

	return violations
}
