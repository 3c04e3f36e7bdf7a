package scoreline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client exposes the leaderboard domain operations, composing the transport,
// retry scheduler, error classifier and response cache. A single instance is
// safe for concurrent use.
type Client struct {
	baseURL         string
	timeout         time.Duration
	healthTimeout   time.Duration
	maxRetries      int
	initialDelay    time.Duration
	maxDelay        time.Duration
	multiplier      float64
	jitter          float64
	backoffStrategy BackoffStrategy

	httpClient *http.Client
	transport  *transport
	retrier    *retrier

	cache          Cache
	leaderboardTTL time.Duration
	playerTTL      time.Duration
	statsTTL       time.Duration
	topLimit       int

	tokens  *TokenStore
	logger  Logger
	debug   *DebugConfig
	metrics *MetricsCollector
	dedup   *dedupTracker
	breaker *CircuitBreaker
	limiter *RateLimiter

	fallback []PlayerRecord
	sleep    func(context.Context, time.Duration) error
	now      func() time.Time

	validationError error
}

// New constructs a Client from functional options. A best effort validation
// is performed; call IsValid / ValidationError for the result.
func New(options ...Option) *Client {
	c := &Client{
		timeout:         10 * time.Second,
		healthTimeout:   2 * time.Second,
		maxRetries:      3,
		initialDelay:    time.Second,
		maxDelay:        30 * time.Second,
		multiplier:      2.0,
		jitter:          0,
		backoffStrategy: BackoffExponential,
		leaderboardTTL:  30 * time.Second,
		playerTTL:       60 * time.Second,
		statsTTL:        5 * time.Minute,
		topLimit:        10,
		tokens:          NewTokenStore(),
		logger:          nopLogger{},
		fallback:        fallbackSeed,
		sleep:           sleepContext,
		now:             time.Now,
	}

	for _, option := range options {
		option(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	c.transport = &transport{
		httpClient: c.httpClient,
		baseURL:    c.baseURL,
		timeout:    c.timeout,
		tokens:     c.tokens,
		logger:     c.logger,
		debug:      c.debug,
	}
	c.retrier = &retrier{
		maxRetries:   c.maxRetries,
		initialDelay: c.initialDelay,
		maxDelay:     c.maxDelay,
		multiplier:   c.multiplier,
		jitter:       c.jitter,
		strategy:     c.backoffStrategy.strategy(),
		sleep:        c.sleep,
		logger:       c.logger,
		debug:        c.debug,
	}

	if err := c.ValidateConfiguration(); err != nil {
		c.validationError = err
	}

	return c
}

// NewFromConfig constructs a Client from a resolved Config; explicit options
// take precedence over the configuration.
func NewFromConfig(cfg Config, options ...Option) *Client {
	c := New(append(cfg.Options(), options...)...)
	if cfg.Verbose {
		cfg.logSummary(c.logger)
	}
	return c
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// TopPlayers returns the top of the leaderboard. Results are cached under
// the leaderboard TTL; when every retry is exhausted on a retryable failure
// the built-in fallback dataset is served with Degraded set.
func (c *Client) TopPlayers(ctx context.Context) (*LeaderboardSnapshot, error) {
	const operation = "top_players"
	key := cacheKey("leaderboard_top", nil)

	if snap, ok := c.cachedSnapshot(operation, key, c.leaderboardTTL); ok {
		return snap, nil
	}

	resp, cerr := c.fetch(ctx, operation, "Leaderboard", transportRequest{
		method: http.MethodGet,
		path:   "/api/leaderboard/top",
	})
	if cerr != nil {
		if cerr.Retryable() {
			return c.degradeSnapshot(operation, c.topLimit, cerr), nil
		}
		return nil, cerr
	}

	snap, derr := decodeSnapshot(resp.Body, c.topLimit, c.now())
	if derr != nil {
		c.metrics.recordError(operation, derr.Kind)
		return nil, derr
	}
	c.storeSnapshot(operation, key, snap)
	return snap, nil
}

// LeaderboardByPeriod returns the leaderboard for a period ("daily",
// "weekly", ...) bounded by limit. Same retry, cache and fallback shape as
// TopPlayers with its own cache key.
func (c *Client) LeaderboardByPeriod(ctx context.Context, period string, limit int, opts ...PeriodOption) (*LeaderboardSnapshot, error) {
	const operation = "leaderboard_period"

	if period == "" {
		period = "all"
	}
	if limit <= 0 {
		limit = c.topLimit
	}
	var pq periodQuery
	for _, opt := range opts {
		opt(&pq)
	}

	params := map[string]string{
		"period": period,
		"limit":  strconv.Itoa(limit),
	}
	query := url.Values{}
	query.Set("period", period)
	query.Set("limit", strconv.Itoa(limit))
	if pq.offset > 0 {
		params["offset"] = strconv.Itoa(pq.offset)
		query.Set("offset", strconv.Itoa(pq.offset))
	}
	key := cacheKey("leaderboard_period", params)

	if snap, ok := c.cachedSnapshot(operation, key, c.leaderboardTTL); ok {
		return snap, nil
	}

	resp, cerr := c.fetch(ctx, operation, "Leaderboard", transportRequest{
		method: http.MethodGet,
		path:   "/api/leaderboard",
		query:  query,
	})
	if cerr != nil {
		if cerr.Retryable() {
			return c.degradeSnapshot(operation, limit, cerr), nil
		}
		return nil, cerr
	}

	snap, derr := decodeSnapshot(resp.Body, limit, c.now())
	if derr != nil {
		c.metrics.recordError(operation, derr.Kind)
		return nil, derr
	}
	c.storeSnapshot(operation, key, snap)
	return snap, nil
}

// PlayerRank returns a single player's leaderboard record. Not-found is a
// legitimate terminal answer and is never substituted with fallback data; on
// a network-class failure the player is looked up in the fallback dataset
// before the error is surfaced.
func (c *Client) PlayerRank(ctx context.Context, userID string) (*PlayerResult, error) {
	return c.playerRead(ctx, "player_rank", "/api/leaderboard/rank/", userID, c.playerTTL)
}

// PlayerStats returns a player's extended record. Identical shape to
// PlayerRank with a longer-lived TTL.
func (c *Client) PlayerStats(ctx context.Context, userID string) (*PlayerResult, error) {
	return c.playerRead(ctx, "player_stats", "/api/leaderboard/stats/", userID, c.statsTTL)
}

func (c *Client) playerRead(ctx context.Context, operation, basePath, userID string, ttl time.Duration) (*PlayerResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		c.metrics.recordError(operation, KindValidation)
		return nil, validationError("User id is required")
	}

	key := cacheKey(operation, map[string]string{"user_id": userID})
	if c.cacheEnabled() {
		if v, ok := c.cache.Get(key, ttl); ok {
			if result, ok := v.(*PlayerResult); ok {
				c.metrics.recordCacheHit(operation)
				if c.debug.logCache() {
					c.logger.Debug("cache hit", "operation", operation, "key", key)
				}
				return result, nil
			}
		}
		c.metrics.recordCacheMiss(operation)
	}

	resp, cerr := c.fetch(ctx, operation, "Player", transportRequest{
		method: http.MethodGet,
		path:   basePath + url.PathEscape(userID),
	})
	if cerr != nil {
		if cerr.networkClass() {
			if rec, ok := fallbackPlayer(c.fallback, userID); ok {
				c.metrics.recordDegraded(operation)
				c.logger.Warn("serving fallback player data",
					"operation", operation, "userID", userID, "cause", cerr.Kind)
				return &PlayerResult{Player: rec, Degraded: true, FetchedAt: c.now()}, nil
			}
		}
		return nil, cerr
	}

	var raw rawPlayer
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		derr := decodeError(err)
		c.metrics.recordError(operation, derr.Kind)
		return nil, derr
	}
	rec := normalizePlayer(raw)
	if rec.UserID == "" {
		rec.UserID = userID
	}

	result := &PlayerResult{Player: rec, FetchedAt: c.now()}
	if c.cacheEnabled() {
		c.cache.Set(key, result)
		c.metrics.recordCacheSize(c.cache.Size())
	}
	return result, nil
}

// SubmitScore writes a score for a player. Writes are validated locally
// before any network call, never served from or written to the read cache,
// and never degrade: failure after retry exhaustion is always surfaced.
func (c *Client) SubmitScore(ctx context.Context, sub Submission) (*SubmissionReceipt, error) {
	const operation = "submit_score"

	sub.UserID = strings.TrimSpace(sub.UserID)
	if sub.UserID == "" {
		c.metrics.recordError(operation, KindValidation)
		return nil, validationError("User id is required")
	}
	if sub.Score < 0 {
		c.metrics.recordError(operation, KindValidation)
		return nil, validationError("Score must not be negative")
	}
	if sub.GameMode == "" {
		sub.GameMode = DefaultGameMode
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = c.now().UTC()
	}

	resp, cerr := c.fetch(ctx, operation, "Submission", transportRequest{
		method: http.MethodPost,
		path:   "/api/leaderboard/submit",
		body:   sub,
	})
	if cerr != nil {
		return nil, cerr
	}

	receipt := SubmissionReceipt{
		UserID:    sub.UserID,
		Score:     sub.Score,
		GameMode:  sub.GameMode,
		Timestamp: sub.Timestamp,
	}
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &receipt); err != nil {
			derr := decodeError(err)
			c.metrics.recordError(operation, derr.Kind)
			return nil, derr
		}
	}
	return &receipt, nil
}

// CheckHealth probes the service with a single short-timeout request,
// bypassing retries and the cache. Callers can use it to proactively prefer
// fallback data.
func (c *Client) CheckHealth(ctx context.Context) error {
	const operation = "health"
	start := c.now()
	c.metrics.recordStart(operation)

	resp, err := c.transport.send(ctx, transportRequest{
		method:  http.MethodGet,
		path:    "/api/health",
		timeout: c.healthTimeout,
	})
	cerr := Classify(resp, err, "Service")
	if cerr != nil {
		cerr.Attempts = 1
		c.metrics.recordEnd(operation, string(cerr.Kind), c.now().Sub(start))
		c.metrics.recordError(operation, cerr.Kind)
		return cerr
	}
	c.metrics.recordEnd(operation, "ok", c.now().Sub(start))
	return nil
}

// ClearCache drops every cached read.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
		c.metrics.recordCacheSize(0)
	}
}

// Tokens returns the client's bearer token store.
func (c *Client) Tokens() *TokenStore {
	return c.tokens
}

func (c *Client) cacheEnabled() bool {
	return c.cache != nil
}

func (c *Client) cachedSnapshot(operation, key string, ttl time.Duration) (*LeaderboardSnapshot, bool) {
	if !c.cacheEnabled() {
		return nil, false
	}
	if v, ok := c.cache.Get(key, ttl); ok {
		if snap, ok := v.(*LeaderboardSnapshot); ok {
			c.metrics.recordCacheHit(operation)
			if c.debug.logCache() {
				c.logger.Debug("cache hit", "operation", operation, "key", key)
			}
			return snap, true
		}
	}
	c.metrics.recordCacheMiss(operation)
	if c.debug.logCache() {
		c.logger.Debug("cache miss", "operation", operation, "key", key)
	}
	return nil, false
}

func (c *Client) storeSnapshot(operation, key string, snap *LeaderboardSnapshot) {
	if !c.cacheEnabled() {
		return
	}
	c.cache.Set(key, snap)
	c.metrics.recordCacheSize(c.cache.Size())
	if c.debug.logCache() {
		c.logger.Debug("response cached", "operation", operation, "key", key)
	}
}

func (c *Client) degradeSnapshot(operation string, limit int, cerr *Error) *LeaderboardSnapshot {
	c.metrics.recordDegraded(operation)
	c.logger.Warn("serving fallback leaderboard data",
		"operation", operation, "cause", cerr.Kind, "attempts", cerr.Attempts)
	return fallbackSnapshot(c.fallback, limit, c.now())
}

// fetch runs one logical operation: rate limit and circuit checks, optional
// de-duplication, then the retry scheduler around the transport.
func (c *Client) fetch(ctx context.Context, operation, resource string, req transportRequest) (*Response, *Error) {
	start := c.now()
	c.metrics.recordStart(operation)

	resp, cerr := c.dispatch(ctx, operation, resource, req)

	status := "ok"
	if cerr != nil {
		status = string(cerr.Kind)
		c.metrics.recordError(operation, cerr.Kind)
	}
	c.metrics.recordEnd(operation, status, c.now().Sub(start))
	return resp, cerr
}

func (c *Client) dispatch(ctx context.Context, operation, resource string, req transportRequest) (*Response, *Error) {
	if c.limiter != nil && !c.limiter.Allow() {
		c.logger.Warn("client-side rate limit exceeded", "operation", operation)
		return nil, &Error{Kind: KindRateLimited, Message: msgRateLimited, Attempts: 0}
	}

	if c.breaker != nil && !c.breaker.Allow() {
		c.logger.Warn("circuit breaker open", "operation", operation)
		return nil, &Error{Kind: KindServerError, Message: msgServer, Attempts: 0}
	}

	if c.dedup != nil && req.method == http.MethodGet {
		key := req.method + " " + req.path + "?" + req.query.Encode()
		entry, owner := c.dedup.getOrCreate(key)
		if !owner {
			c.metrics.recordDedupHit(operation)
			return entry.wait(ctx)
		}
		resp, cerr := c.execute(ctx, operation, resource, req)
		c.dedup.complete(key, resp, cerr)
		return resp, cerr
	}

	return c.execute(ctx, operation, resource, req)
}

func (c *Client) execute(ctx context.Context, operation, resource string, req transportRequest) (*Response, *Error) {
	rt := *c.retrier
	rt.onRetry = func(state RetryState, _ *Error) {
		c.metrics.recordRetry(operation, state.Attempt+1)
	}

	return rt.do(ctx, resource, func(ctx context.Context) (*Response, error) {
		resp, err := c.transport.send(ctx, req)
		if c.breaker != nil {
			if err != nil || (resp != nil && resp.StatusCode >= 500) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return resp, err
	})
}

// decodeSnapshot accepts both the wrapped {"results": [...]} shape the top
// endpoint uses and the plain array the period endpoint returns.
func decodeSnapshot(body []byte, limit int, now time.Time) (*LeaderboardSnapshot, *Error) {
	var wrapped struct {
		Results []rawPlayer `json:"results"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Results != nil {
		return &LeaderboardSnapshot{Players: normalizePlayers(wrapped.Results, limit), FetchedAt: now}, nil
	}

	var plain []rawPlayer
	if err := json.Unmarshal(body, &plain); err != nil {
		return nil, decodeError(err)
	}
	return &LeaderboardSnapshot{Players: normalizePlayers(plain, limit), FetchedAt: now}, nil
}

// periodQuery carries optional parameters for LeaderboardByPeriod.
type periodQuery struct {
	offset int
}

// PeriodOption customizes a LeaderboardByPeriod call.
type PeriodOption func(*periodQuery)

// WithOffset pages past the first results of a period leaderboard.
func WithOffset(n int) PeriodOption {
	return func(pq *periodQuery) {
		if n > 0 {
			pq.offset = n
		}
	}
}
