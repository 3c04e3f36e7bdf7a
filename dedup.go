package scoreline

import (
	"context"
	"sync"
	"time"
)

// dedupEntry is an in-flight request shared between callers.
type dedupEntry struct {
	mu   sync.Mutex
	resp *Response
	err  *Error
	done chan struct{}
}

// dedupTracker coalesces concurrent identical reads into one upstream call.
// Baseline behavior tolerates redundant reads (they are idempotent), so the
// tracker is opt-in via WithDeduplication.
type dedupTracker struct {
	mu      sync.Mutex
	entries map[string]*dedupEntry
}

func newDedupTracker() *dedupTracker {
	return &dedupTracker{entries: make(map[string]*dedupEntry)}
}

// getOrCreate returns an existing in-flight entry (owner=false) or creates a
// new one (owner=true). The owner must call complete.
func (dt *dedupTracker) getOrCreate(key string) (*dedupEntry, bool) {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	if entry, ok := dt.entries[key]; ok {
		return entry, false
	}
	entry := &dedupEntry{done: make(chan struct{})}
	dt.entries[key] = entry
	return entry, true
}

// complete publishes the owner's result and releases waiters. The entry
// lingers briefly so stragglers arriving right at completion still coalesce.
func (dt *dedupTracker) complete(key string, resp *Response, err *Error) {
	dt.mu.Lock()
	entry, ok := dt.entries[key]
	dt.mu.Unlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	entry.resp = resp
	entry.err = err
	close(entry.done)
	entry.mu.Unlock()

	time.AfterFunc(100*time.Millisecond, func() {
		dt.mu.Lock()
		delete(dt.entries, key)
		dt.mu.Unlock()
	})
}

// wait blocks until the owning request completes or the context cancels.
func (entry *dedupEntry) wait(ctx context.Context) (*Response, *Error) {
	select {
	case <-entry.done:
		entry.mu.Lock()
		resp, err := entry.resp, entry.err
		entry.mu.Unlock()
		return resp, err
	case <-ctx.Done():
		return nil, &Error{Kind: KindNetwork, Message: msgNetwork, Cause: ctx.Err()}
	}
}
