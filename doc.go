// Package scoreline is a resilient client for a remote leaderboard service.
// It mediates between UI components and an upstream HTTP API of uncertain
// availability, layering reliability primitives around every call:
//
//   - Retries with exponential backoff (jitter optional)
//   - TTL-bounded response caching with lazy expiry
//   - A closed error taxonomy with user-presentable messages
//   - Degraded mode: built-in fallback data when the service is unreachable
//   - Optional request de-duplication, circuit breaking and rate limiting
//   - Prometheus metrics and structured debug logging
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - No surprises for callers: reads either succeed, degrade with a flag,
//     or fail with one of eight classified error kinds
//   - Safe concurrent use of a single *Client instance
//
// Typical usage:
//
//	client := scoreline.New(
//	    scoreline.WithBaseURL("https://leaderboard.example.com"),
//	    scoreline.WithMaxRetries(3),
//	    scoreline.WithCache(scoreline.NewMemoryCache()),
//	)
//	snap, err := client.TopPlayers(ctx)
//	if err == nil && snap.Degraded {
//	    // live fetch failed, snap holds the offline dataset
//	}
//
// Configuration can also come from SCORELINE_* environment variables; see
// Load and Config.Options.
package scoreline
