package history

import (
	"context"
	"typerace/internal/analytics"
	"typerace/internal/db"
	"typerace/internal/events"

	"github.com/rs/zerolog/log"
)

// PostgresSink stores matches and awards badges.
type PostgresSink struct {
	db      *db.DB
	queries *analytics.Queries
}

func NewPostgresSink(database *db.DB) *PostgresSink {
	return &PostgresSink{db: database, queries: analytics.NewQueries(database)}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) SaveMatch(ctx context.Context, ev events.MatchFinished) error {
	if err := s.db.RecordMatch(ctx, MatchRecord(ev)); err != nil {
		return err
	}

	matchID := ev.MatchID
	for _, stats := range matchStats(ev) {
		for _, b := range analytics.EvaluateMatchBadges(stats) {
			if err := s.db.AwardBadge(ctx, stats.PlayerID, string(b.ID), &matchID); err != nil {
				return err
			}
		}

		// Check lifetime badges
		life, err := s.queries.GetPlayerLifetimeStats(ctx, stats.PlayerID)
		if err != nil {
			log.Warn().Err(err).Str("player", stats.PlayerID).Msg("lifetime stats unavailable")
			continue
		}
		for _, b := range life.Badges {
			if err := s.db.AwardBadge(ctx, stats.PlayerID, string(b.ID), nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// MatchRecord converts ev to its table form. Ranks follow leaderboard order.
func MatchRecord(ev events.MatchFinished) db.MatchRecord {
	rec := db.MatchRecord{
		ID:           ev.MatchID,
		RoomID:       ev.RoomID,
		Difficulty:   ev.Difficulty,
		DurationSecs: ev.Duration,
		StartedAt:    ev.StartedAt,
		EndedAt:      ev.EndedAt,
	}
	for i, st := range ev.Leaderboard {
		rec.Results = append(rec.Results, db.ResultRecord{
			PlayerID:   st.ID,
			PlayerName: st.Name,
			Rank:       i + 1,
			WPM:        st.WPM,
			Accuracy:   st.Accuracy,
		})
	}
	return rec
}

func matchStats(ev events.MatchFinished) []analytics.PlayerMatchStats {
	out := make([]analytics.PlayerMatchStats, len(ev.Leaderboard))
	for i, st := range ev.Leaderboard {
		out[i] = analytics.PlayerMatchStats{
			PlayerID:   st.ID,
			PlayerName: st.Name,
			MatchID:    ev.MatchID,
			Rank:       i + 1,
			Players:    len(ev.Leaderboard),
			WPM:        st.WPM,
			Accuracy:   st.Accuracy,
		}
	}
	return out
}
