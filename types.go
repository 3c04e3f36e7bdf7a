package scoreline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// UnknownPlayerName is substituted when the upstream payload carries no
	// usable username.
	UnknownPlayerName = "Unknown Player"

	// MaxUsernameLength bounds the visible length of a normalized username.
	MaxUsernameLength = 20

	// DefaultGameMode is filled in on submissions that omit a game mode.
	DefaultGameMode = "standard"
)

// PlayerRecord is one normalized leaderboard row. Records are immutable once
// produced; a refresh replaces the record rather than mutating it.
type PlayerRecord struct {
	// Rank is nil for players the service knows but has not ranked yet
	// (e.g. no games played).
	Rank         *int      `json:"rank"`
	Username     string    `json:"username"`
	Score        int64     `json:"score"`
	CountryTag   string    `json:"country_tag"`
	UserID       string    `json:"user_id"`
	GameMode     string    `json:"game_mode"`
	LastPlayedAt time.Time `json:"last_played_at"`
	TotalGames   int       `json:"total_games"`
	AvgScore     float64   `json:"avg_score"`
	BestScore    int64     `json:"best_score"`
}

// LeaderboardSnapshot is an ordered, rank-ascending view of the leaderboard.
// Degraded is true when the snapshot was served from the built-in fallback
// dataset instead of a live fetch.
type LeaderboardSnapshot struct {
	Players   []PlayerRecord `json:"players"`
	Degraded  bool           `json:"degraded"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// ValidateRanks reports whether ranks are unique and strictly increasing by
// position. The client never enforces this on upstream data; callers that
// need strict leaderboards can opt in.
func (s *LeaderboardSnapshot) ValidateRanks() error {
	prev := 0
	for i, p := range s.Players {
		if p.Rank == nil {
			return fmt.Errorf("player at position %d has no rank", i)
		}
		if *p.Rank <= prev {
			return fmt.Errorf("rank %d at position %d is not strictly increasing", *p.Rank, i)
		}
		prev = *p.Rank
	}
	return nil
}

// PlayerResult wraps a single-player read with the degraded-mode flag.
type PlayerResult struct {
	Player    PlayerRecord `json:"player"`
	Degraded  bool         `json:"degraded"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Submission is a score write. GameMode and Timestamp are optional; missing
// values are defaulted before the request is issued.
type Submission struct {
	UserID    string    `json:"user_id"`
	Score     int64     `json:"score"`
	GameMode  string    `json:"game_mode,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// SubmissionReceipt echoes an accepted score submission.
type SubmissionReceipt struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Score     int64     `json:"score"`
	GameMode  string    `json:"game_mode"`
	Timestamp time.Time `json:"timestamp"`
}

// rawPlayer mirrors the shapes the service is known to emit. Older endpoints
// nest identity under "user" and report the aggregate as "total_score".
type rawPlayer struct {
	User         *rawUser    `json:"user"`
	UserID       string      `json:"user_id"`
	Username     string      `json:"username"`
	Rank         *int        `json:"rank"`
	Score        *int64      `json:"score"`
	TotalScore   *int64      `json:"total_score"`
	CountryTag   string      `json:"country_tag"`
	Country      string      `json:"country"`
	GameMode     string      `json:"game_mode"`
	LastPlayedAt time.Time   `json:"last_played_at"`
	Timestamp    time.Time   `json:"timestamp"`
	TotalGames   *int        `json:"total_games"`
	AvgScore     *float64    `json:"avg_score"`
	BestScore    *int64      `json:"best_score"`
}

type rawUser struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
}

// normalizePlayer maps a raw service payload to a PlayerRecord, applying the
// defaulting rules for every field. It is pure: the same input always yields
// the same record.
func normalizePlayer(raw rawPlayer) PlayerRecord {
	username := raw.Username
	if username == "" && raw.User != nil {
		username = raw.User.Username
	}

	rec := PlayerRecord{
		Username:   sanitizeUsername(username),
		CountryTag: firstNonEmpty(raw.CountryTag, raw.Country),
		UserID:     raw.UserID,
		GameMode:   raw.GameMode,
	}

	if rec.UserID == "" && raw.User != nil {
		rec.UserID = raw.User.ID.String()
	}

	if raw.Rank != nil && *raw.Rank >= 1 {
		rank := *raw.Rank
		rec.Rank = &rank
	}

	score := int64(0)
	switch {
	case raw.Score != nil:
		score = *raw.Score
	case raw.TotalScore != nil:
		score = *raw.TotalScore
	}
	if score > 0 {
		rec.Score = score
	}

	if !raw.LastPlayedAt.IsZero() {
		rec.LastPlayedAt = raw.LastPlayedAt
	} else {
		rec.LastPlayedAt = raw.Timestamp
	}

	if raw.TotalGames != nil && *raw.TotalGames > 0 {
		rec.TotalGames = *raw.TotalGames
	}
	if raw.AvgScore != nil && *raw.AvgScore > 0 {
		rec.AvgScore = *raw.AvgScore
	}
	if raw.BestScore != nil && *raw.BestScore > 0 {
		rec.BestScore = *raw.BestScore
	}

	return rec
}

func normalizePlayers(raws []rawPlayer, limit int) []PlayerRecord {
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}
	players := make([]PlayerRecord, 0, len(raws))
	for _, raw := range raws {
		players = append(players, normalizePlayer(raw))
	}
	return players
}

// sanitizeUsername strips non-printable runes, trims whitespace and bounds
// the result to MaxUsernameLength visible characters. Empty input maps to
// UnknownPlayerName.
func sanitizeUsername(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, name)
	name = strings.TrimSpace(name)

	if name == "" {
		return UnknownPlayerName
	}

	runes := []rune(name)
	if len(runes) > MaxUsernameLength {
		name = strings.TrimSpace(string(runes[:MaxUsernameLength]))
	}
	if name == "" {
		return UnknownPlayerName
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
