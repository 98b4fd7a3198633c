package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"typerace/internal/analytics"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	return min(n, maxLimit)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("cat")
	if category == "" {
		category = "wpm"
	}

	if s.DB == nil {
		// Redis keeps personal bests, enough for the wpm board.
		if s.Recent != nil && category == "wpm" {
			best, err := s.Recent.TopWPM(r.Context(), limitParam(r))
			if err != nil {
				log.Error().Err(err).Msg("redis leaderboard failed")
				writeError(w, http.StatusInternalServerError, "error loading leaderboard")
				return
			}
			writeJSON(w, http.StatusOK, best)
			return
		}
		writeError(w, http.StatusServiceUnavailable, "leaderboard requires a database connection")
		return
	}

	q := analytics.NewQueries(s.DB)
	entries, err := q.GetLeaderboard(r.Context(), category, limitParam(r))
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("leaderboard query failed")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "player stats require a database connection")
		return
	}

	playerID := chi.URLParam(r, "id")
	q := analytics.NewQueries(s.DB)
	stats, err := q.GetPlayerLifetimeStats(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		log.Error().Err(err).Str("player", playerID).Msg("player stats query failed")
		writeError(w, http.StatusInternalServerError, "error loading player stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMatchRecap(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "match history requires a database connection")
		return
	}

	matchID := chi.URLParam(r, "id")
	q := analytics.NewQueries(s.DB)
	recap, err := q.GetMatchRecap(r.Context(), matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		log.Error().Err(err).Str("match", matchID).Msg("match recap query failed")
		writeError(w, http.StatusInternalServerError, "error loading match")
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

func (s *Server) handleMatchPlayer(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "match history requires a database connection")
		return
	}

	matchID, playerID := chi.URLParam(r, "id"), chi.URLParam(r, "player")
	q := analytics.NewQueries(s.DB)
	stats, err := q.GetPlayerMatchStats(r.Context(), matchID, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		log.Error().Err(err).Str("match", matchID).Str("player", playerID).Msg("match player query failed")
		writeError(w, http.StatusInternalServerError, "error loading result")
		return
	}

	type response struct {
		*analytics.PlayerMatchStats
		Badges []analytics.Badge `json:"badges"`
	}
	writeJSON(w, http.StatusOK, response{PlayerMatchStats: stats, Badges: analytics.EvaluateMatchBadges(*stats)})
}

func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	if s.Recent == nil {
		writeError(w, http.StatusServiceUnavailable, "recent matches require a redis connection")
		return
	}

	matches, err := s.Recent.Recent(r.Context(), limitParam(r))
	if err != nil {
		log.Error().Err(err).Msg("recent matches query failed")
		writeError(w, http.StatusInternalServerError, "error loading recent matches")
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
