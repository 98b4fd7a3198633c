package analytics

import (
	"context"
	"fmt"
	"typerace/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) GetPlayerMatchStats(ctx context.Context, matchID, playerID string) (*PlayerMatchStats, error) {
	stats := &PlayerMatchStats{
		MatchID:  matchID,
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(ctx, `
		SELECT p.name, mr.rank, mr.wpm, mr.accuracy,
			(SELECT COUNT(*) FROM match_results WHERE match_id = $1)
		FROM match_results mr
		JOIN players p ON p.id = mr.player_id
		WHERE mr.match_id = $1 AND mr.player_id = $2
	`, matchID, playerID).Scan(&stats.PlayerName, &stats.Rank, &stats.WPM, &stats.Accuracy, &stats.Players)
	if err != nil {
		return nil, fmt.Errorf("getting match player: %w", err)
	}
	return stats, nil
}

func (q *Queries) GetPlayerLifetimeStats(ctx context.Context, playerID string) (*PlayerLifetimeStats, error) {
	stats := &PlayerLifetimeStats{
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(ctx, `SELECT name FROM players WHERE id = $1`, playerID).Scan(&stats.PlayerName)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	err = q.DB.QueryRow(ctx, `
		SELECT
			COUNT(*) as matches_played,
			COALESCE(MAX(wpm), 0) as best_wpm,
			COALESCE(AVG(wpm), 0) as avg_wpm,
			COALESCE(AVG(accuracy), 0) as avg_accuracy,
			COUNT(*) FILTER (WHERE rank = 1) as win_count
		FROM match_results
		WHERE player_id = $1
	`, playerID).Scan(&stats.MatchesPlayed, &stats.BestWPM, &stats.AvgWPM, &stats.AvgAccuracy, &stats.WinCount)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}

	// Calculate win streak (most recent consecutive wins)
	rows, err := q.DB.Query(ctx, `
		SELECT mr.rank
		FROM match_results mr
		JOIN matches m ON m.id = mr.match_id
		WHERE mr.player_id = $1
		ORDER BY m.ended_at DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting win streak: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var rank int
		if err := rows.Scan(&rank); err != nil {
			return nil, err
		}
		if rank != 1 {
			break
		}
		streak++
	}
	stats.WinStreak = streak

	stats.Badges = EvaluateLifetimeBadges(*stats)

	return stats, nil
}

func leaderboardQuery(category string) (string, error) {
	switch category {
	case "wpm":
		return `
			SELECT p.id, p.name, MAX(mr.wpm)::float8 as value
			FROM players p
			JOIN match_results mr ON mr.player_id = p.id
			GROUP BY p.id, p.name
			ORDER BY value DESC
			LIMIT $1`, nil
	case "accuracy":
		return `
			SELECT p.id, p.name, ROUND(AVG(mr.accuracy)::numeric, 2)::float8 as value
			FROM players p
			JOIN match_results mr ON mr.player_id = p.id
			GROUP BY p.id, p.name
			ORDER BY value DESC
			LIMIT $1`, nil
	case "wins":
		return `
			SELECT p.id, p.name, (COUNT(*) FILTER (WHERE mr.rank = 1))::float8 as value
			FROM players p
			JOIN match_results mr ON mr.player_id = p.id
			GROUP BY p.id, p.name
			ORDER BY value DESC
			LIMIT $1`, nil
	default:
		return "", fmt.Errorf("unknown leaderboard category: %s", category)
	}
}

func (q *Queries) GetLeaderboard(ctx context.Context, category string, limit int) ([]LeaderboardEntry, error) {
	query, err := leaderboardQuery(category)
	if err != nil {
		return nil, err
	}

	rows, err := q.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) GetMatchRecap(ctx context.Context, matchID string) (*MatchRecap, error) {
	recap := &MatchRecap{MatchID: matchID}

	err := q.DB.QueryRow(ctx, `
		SELECT room_id, difficulty, started_at, ended_at FROM matches WHERE id = $1
	`, matchID).Scan(&recap.RoomID, &recap.Difficulty, &recap.StartedAt, &recap.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting match: %w", err)
	}

	rows, err := q.DB.Query(ctx, `
		SELECT mr.player_id, p.name, mr.rank, mr.wpm, mr.accuracy
		FROM match_results mr
		JOIN players p ON p.id = mr.player_id
		WHERE mr.match_id = $1
		ORDER BY mr.rank
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("getting match players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := PlayerMatchStats{MatchID: matchID}
		if err := rows.Scan(&s.PlayerID, &s.PlayerName, &s.Rank, &s.WPM, &s.Accuracy); err != nil {
			return nil, err
		}
		recap.Players = append(recap.Players, s)
	}
	for i := range recap.Players {
		recap.Players[i].Players = len(recap.Players)
	}
	return recap, rows.Err()
}
