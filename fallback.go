package scoreline

import "time"

// fallbackSeed is the built-in degraded-mode dataset: the last leaderboard
// shipped with the client, served when every retry is exhausted on a
// network-class failure. Callers see Degraded=true and are expected to
// disclose the staleness ("using offline data").
var fallbackSeed = []PlayerRecord{
	{Username: "NovaStriker", Score: 98250, CountryTag: "KR", UserID: "fb-001", GameMode: "standard", TotalGames: 412, AvgScore: 1844.2, BestScore: 4120},
	{Username: "IronQuill", Score: 91730, CountryTag: "DE", UserID: "fb-002", GameMode: "standard", TotalGames: 377, AvgScore: 1788.9, BestScore: 3980},
	{Username: "MistralFox", Score: 88410, CountryTag: "FR", UserID: "fb-003", GameMode: "blitz", TotalGames: 540, AvgScore: 1512.4, BestScore: 3755},
	{Username: "CobaltTide", Score: 84005, CountryTag: "BR", UserID: "fb-004", GameMode: "standard", TotalGames: 298, AvgScore: 1690.0, BestScore: 3610},
	{Username: "EmberWitch", Score: 79990, CountryTag: "US", UserID: "fb-005", GameMode: "standard", TotalGames: 265, AvgScore: 1633.5, BestScore: 3544},
	{Username: "QuietThunder", Score: 76120, CountryTag: "JP", UserID: "fb-006", GameMode: "blitz", TotalGames: 451, AvgScore: 1402.1, BestScore: 3407},
	{Username: "SableMarch", Score: 72840, CountryTag: "PL", UserID: "fb-007", GameMode: "standard", TotalGames: 233, AvgScore: 1577.6, BestScore: 3290},
	{Username: "LumenArc", Score: 69310, CountryTag: "ID", UserID: "fb-008", GameMode: "standard", TotalGames: 312, AvgScore: 1466.0, BestScore: 3178},
	{Username: "GlacierPine", Score: 65275, CountryTag: "CA", UserID: "fb-009", GameMode: "endless", TotalGames: 287, AvgScore: 1390.8, BestScore: 3022},
	{Username: "RedshiftOwl", Score: 61990, CountryTag: "IN", UserID: "fb-010", GameMode: "standard", TotalGames: 244, AvgScore: 1350.3, BestScore: 2961},
}

// fallbackSnapshot returns a fresh degraded snapshot. Each call copies the
// seed so callers can never mutate the shared dataset. A limit <= 0 returns
// all entries.
func fallbackSnapshot(players []PlayerRecord, limit int, now time.Time) *LeaderboardSnapshot {
	if limit <= 0 || limit > len(players) {
		limit = len(players)
	}
	out := make([]PlayerRecord, limit)
	for i := 0; i < limit; i++ {
		rec := players[i]
		rank := i + 1
		rec.Rank = &rank
		out[i] = rec
	}
	return &LeaderboardSnapshot{Players: out, Degraded: true, FetchedAt: now}
}

// fallbackPlayer looks a player up in the degraded dataset by user id.
func fallbackPlayer(players []PlayerRecord, userID string) (PlayerRecord, bool) {
	for i, rec := range players {
		if rec.UserID == userID {
			rank := i + 1
			rec.Rank = &rank
			return rec, true
		}
	}
	return PlayerRecord{}, false
}
