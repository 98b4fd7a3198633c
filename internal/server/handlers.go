package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"
	"typerace/internal/config"
	"typerace/internal/db"
	"typerace/internal/history"
	"typerace/internal/rooms"
	"typerace/internal/wshub"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const readLimit = 64 << 10

type Server struct {
	Rooms  *rooms.Registry
	Hub    *wshub.Hub
	DB     *db.DB             // nil if no database configured
	Recent *history.RedisSink // nil if no redis configured
	Config config.Config
}

func (s *Server) acceptOptions() *websocket.AcceptOptions {
	if len(s.Config.AllowedOrigins) == 0 || slices.Contains(s.Config.AllowedOrigins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: s.Config.AllowedOrigins}
}

// handleWS upgrades the request and runs the session on this goroutine. The
// write pump is the only writer on the socket.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, s.acceptOptions())
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	client := wshub.NewClient(uuid.NewString(), conn, s.Config.SendBuffer)
	s.Hub.Register(client)
	log.Debug().Str("conn", client.ID).Msg("client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		client.WritePump(ctx)
		cancel()
	}()

	sess := newSession(s, client)
	defer sess.close()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				log.Debug().Str("conn", client.ID).Msg("client disconnected")
			} else if !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Str("conn", client.ID).Msg("read failed")
			}
			return
		}
		sess.handle(data)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_error", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	roomCount, playerCount := s.Rooms.Stats()
	writeJSON(w, http.StatusOK, map[string]int{
		"rooms":       roomCount,
		"players":     playerCount,
		"connections": s.Hub.Count(),
	})
}

func (s *Server) handleRoomSummary(w http.ResponseWriter, r *http.Request) {
	room := s.Rooms.Get(chi.URLParam(r, "id"))
	if room == nil {
		writeError(w, http.StatusNotFound, rooms.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, room.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
