package scoreline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsCollectorIsSafe(t *testing.T) {
	var mc *MetricsCollector

	mc.recordStart("op")
	mc.recordEnd("op", "ok", 0)
	mc.recordRetry("op", 1)
	mc.recordDegraded("op")
	mc.recordError("op", KindNetwork)
	mc.recordCacheHit("op")
	mc.recordCacheMiss("op")
	mc.recordCacheSize(3)
	mc.recordDedupHit("op")
}

func TestMetricsRecordRequestLifecycle(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(topPayload))
	}))
	defer server.Close()

	c := newTestClient(server.URL, WithMetricsCollector(mc), WithCache(NewMemoryCache()))

	ctx := context.Background()
	if _, err := c.TopPlayers(ctx); err != nil {
		t.Fatalf("TopPlayers() error: %v", err)
	}
	if _, err := c.TopPlayers(ctx); err != nil {
		t.Fatalf("second TopPlayers() error: %v", err)
	}

	if got := testutil.ToFloat64(mc.requestsTotal.WithLabelValues("top_players", "ok")); got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.cacheMisses.WithLabelValues("top_players")); got != 1 {
		t.Errorf("cache_misses_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.cacheHits.WithLabelValues("top_players")); got != 1 {
		t.Errorf("cache_hits_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.requestsInFlight.WithLabelValues("top_players")); got != 0 {
		t.Errorf("requests_in_flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(mc.cacheSize); got != 1 {
		t.Errorf("cache_entries = %v, want 1", got)
	}
}

func TestMetricsRecordRetriesAndDegradation(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL, WithMetricsCollector(mc), WithMaxRetries(2))

	snap, err := c.TopPlayers(context.Background())
	if err != nil || !snap.Degraded {
		t.Fatalf("snap=%+v err=%v", snap, err)
	}

	if got := testutil.ToFloat64(mc.retriesTotal.WithLabelValues("top_players", "1")); got != 1 {
		t.Errorf("retries_total{attempt=1} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.retriesTotal.WithLabelValues("top_players", "2")); got != 1 {
		t.Errorf("retries_total{attempt=2} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.degradedTotal.WithLabelValues("top_players")); got != 1 {
		t.Errorf("degraded_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.errorsTotal.WithLabelValues("top_players", "server_error")); got != 1 {
		t.Errorf("errors_total = %v, want 1", got)
	}
}
