package scoreline

import (
	"context"
	"time"
)

// Poller re-fetches the top leaderboard on a fixed interval, the consumer
// the auto-refresh configuration exists for. Snapshots (including degraded
// ones) are delivered to onSnapshot; classified errors to onError. Either
// callback may be nil.
type Poller struct {
	client     *Client
	interval   time.Duration
	onSnapshot func(*LeaderboardSnapshot)
	onError    func(error)
}

// NewPoller creates a poller around the client. A non-positive interval
// falls back to 30 seconds.
func (c *Client) NewPoller(interval time.Duration, onSnapshot func(*LeaderboardSnapshot), onError func(error)) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:     c,
		interval:   interval,
		onSnapshot: onSnapshot,
		onError:    onError,
	}
}

// Run fetches immediately, then on every tick until ctx is cancelled. It
// blocks; run it in its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	snap, err := p.client.TopPlayers(ctx)
	if err != nil {
		if p.onError != nil {
			p.onError(err)
		}
		return
	}
	if p.onSnapshot != nil {
		p.onSnapshot(snap)
	}
}
