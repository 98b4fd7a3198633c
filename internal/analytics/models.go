package analytics

import "time"

// PlayerMatchStats is one player's line in a finished match.
type PlayerMatchStats struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	MatchID    string  `json:"matchId"`
	Rank       int     `json:"rank"`
	Players    int     `json:"players"` // field size
	WPM        float64 `json:"wpm"`
	Accuracy   float64 `json:"accuracy"`
}

type PlayerLifetimeStats struct {
	PlayerID      string  `json:"playerId"`
	PlayerName    string  `json:"playerName"`
	MatchesPlayed int     `json:"matchesPlayed"`
	BestWPM       float64 `json:"bestWpm"`
	AvgWPM        float64 `json:"avgWpm"`
	AvgAccuracy   float64 `json:"avgAccuracy"`
	WinCount      int     `json:"winCount"`
	WinStreak     int     `json:"winStreak"`
	Badges        []Badge `json:"badges"`
}

type LeaderboardEntry struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Value      float64 `json:"value"`
	Rank       int     `json:"rank"`
}

type MatchRecap struct {
	MatchID    string             `json:"matchId"`
	RoomID     string             `json:"roomId"`
	Difficulty string             `json:"difficulty"`
	StartedAt  time.Time          `json:"startedAt"`
	EndedAt    time.Time          `json:"endedAt"`
	Players    []PlayerMatchStats `json:"players"`
}
