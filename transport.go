package scoreline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBody bounds how much of an upstream body is read into memory.
const maxResponseBody = 4 << 20

// Response is the normalized outcome of a single HTTP exchange. Any received
// status code is a "success" at this layer; classification happens above.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// transportError tags failures where no HTTP response was received.
type transportError struct {
	timeout bool
	cause   error
}

func (e *transportError) Error() string {
	if e.timeout {
		return fmt.Sprintf("request timed out: %v", e.cause)
	}
	return fmt.Sprintf("network failure: %v", e.cause)
}

func (e *transportError) Unwrap() error { return e.cause }

// transportRequest describes one HTTP exchange to issue.
type transportRequest struct {
	method  string
	path    string
	query   url.Values
	body    any
	timeout time.Duration // overrides the transport default when > 0
}

// transport issues single HTTP requests with a fixed timeout, standard
// headers and an optional bearer token. It performs no retries.
type transport struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	tokens     *TokenStore
	logger     Logger
	debug      *DebugConfig
}

func (t *transport) send(ctx context.Context, req transportRequest) (*Response, error) {
	timeout := t.timeout
	if req.timeout > 0 {
		timeout = req.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := strings.TrimRight(t.baseURL, "/") + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, &transportError{cause: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, &transportError{cause: err}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent())
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := t.tokens.Get(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	var requestID string
	if t.debug.logRequests() {
		requestID = t.debug.requestID()
		t.logger.Debug("request start",
			"requestID", requestID, "method", req.method, "url", u)
	}

	start := time.Now()
	httpResp, err := t.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		terr := &transportError{timeout: isTimeout(err), cause: err}
		if t.debug.logRequests() {
			t.logger.Warn("request failed",
				"requestID", requestID, "method", req.method, "url", u,
				"durationMs", duration.Milliseconds(), "timeout", terr.timeout, "error", err)
		}
		return nil, terr
	}
	defer func() { _ = httpResp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, &transportError{timeout: isTimeout(err), cause: err}
	}

	// Fail-safe logout: a 401 means whatever token we hold is no good.
	if httpResp.StatusCode == http.StatusUnauthorized {
		t.tokens.Clear()
	}

	if t.debug.logRequests() {
		t.logger.Debug("request done",
			"requestID", requestID, "method", req.method, "url", u,
			"status", httpResp.StatusCode, "durationMs", duration.Milliseconds())
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       payload,
		Duration:   duration,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
