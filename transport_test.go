package scoreline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestTransport(serverURL string) *transport {
	return &transport{
		httpClient: &http.Client{},
		baseURL:    serverURL,
		timeout:    5 * time.Second,
		tokens:     NewTokenStore(),
		logger:     nopLogger{},
	}
}

func TestTransportSendsStandardHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer server.Close()

	tr := newTestTransport(server.URL)
	tr.tokens.Set("session-token")

	_, err := tr.send(context.Background(), transportRequest{
		method: http.MethodPost,
		path:   "/api/leaderboard/submit",
		body:   Submission{UserID: "u-1", Score: 10},
	})
	if err != nil {
		t.Fatalf("send() error: %v", err)
	}

	if got.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", got.Get("Accept"))
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Get("Content-Type"))
	}
	if got.Get("Authorization") != "Bearer session-token" {
		t.Errorf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("User-Agent") != userAgent() {
		t.Errorf("User-Agent = %q, want %q", got.Get("User-Agent"), userAgent())
	}
}

func TestTransportOmitsAuthWithoutToken(t *testing.T) {
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
	}))
	defer server.Close()

	tr := newTestTransport(server.URL)
	if _, err := tr.send(context.Background(), transportRequest{method: http.MethodGet, path: "/api/health"}); err != nil {
		t.Fatalf("send() error: %v", err)
	}
	if authorization != "" {
		t.Errorf("Authorization = %q, want none", authorization)
	}
}

func TestTransportTimeoutIsTagged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	tr := newTestTransport(server.URL)
	tr.timeout = 50 * time.Millisecond

	_, err := tr.send(context.Background(), transportRequest{method: http.MethodGet, path: "/api/leaderboard/top"})
	var terr *transportError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T", err)
	}
	if !terr.timeout {
		t.Errorf("timeout flag not set on %v", terr)
	}
}

func TestTransportConnectionFailureIsNotTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	tr := newTestTransport(server.URL)
	_, err := tr.send(context.Background(), transportRequest{method: http.MethodGet, path: "/api/health"})

	var terr *transportError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T", err)
	}
	if terr.timeout {
		t.Error("connection refusal should not be tagged as timeout")
	}
}

func TestTransportPerRequestTimeoutOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	tr := newTestTransport(server.URL)
	tr.timeout = 10 * time.Second

	start := time.Now()
	_, err := tr.send(context.Background(), transportRequest{
		method:  http.MethodGet,
		path:    "/api/health",
		timeout: 30 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected a timeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("request took %v, override not applied", elapsed)
	}
}

func TestTransportReadsErrorBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"score must be positive"}`))
	}))
	defer server.Close()

	tr := newTestTransport(server.URL)
	resp, err := tr.send(context.Background(), transportRequest{method: http.MethodGet, path: "/x"})
	if err != nil {
		t.Fatalf("send() error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"error":"score must be positive"}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if resp.Duration <= 0 {
		t.Error("Duration should be recorded")
	}
}
