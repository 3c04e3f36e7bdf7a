package scoreline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollerDeliversSnapshots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(topPayload))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	var snapshots int32
	done := make(chan struct{})
	poller := c.NewPoller(10*time.Millisecond, func(snap *LeaderboardSnapshot) {
		if len(snap.Players) != 3 {
			t.Errorf("snapshot has %d players", len(snap.Players))
		}
		if atomic.AddInt32(&snapshots, 1) == 3 {
			close(done)
		}
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never delivered three snapshots")
	}
	cancel()
}

func TestPollerReportsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	errs := make(chan error, 1)
	poller := c.NewPoller(time.Hour, nil, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Run(ctx)

	select {
	case err := <-errs:
		cerr, ok := err.(*Error)
		if !ok || cerr.Kind != KindNotFound {
			t.Errorf("error = %v, want not found", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller never reported the error")
	}
	cancel()
}

func TestPollerDefaultsInterval(t *testing.T) {
	c := New(WithBaseURL("https://leaderboard.example.com"))
	poller := c.NewPoller(0, nil, nil)
	if poller.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", poller.interval)
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(topPayload))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	poller := c.NewPoller(5*time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}
