package server

import (
	"encoding/json"
	"sync"
	"typerace/internal/metrics"
	"typerace/internal/players"
	"typerace/internal/protocol"
	"typerace/internal/rooms"
	"typerace/internal/wshub"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// session is the per-connection context. Its fields are touched only by the
// connection's read goroutine, and by close once that goroutine is done.
// The room is held by pointer so a swept code reused by a new room never
// resolves to the wrong one.
type session struct {
	srv      *Server
	client   *wshub.Client
	current  *rooms.Room
	playerID string

	closeOnce sync.Once
}

func newSession(srv *Server, client *wshub.Client) *session {
	return &session{srv: srv, client: client}
}

func (s *session) handle(data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		metrics.InboundMessages.WithLabelValues("malformed").Inc()
		log.Warn().Err(err).Str("conn", s.client.ID).Msg("dropping malformed message")
		return
	}

	switch env.Type {
	case protocol.TypeCreateRoom:
		s.createRoom(env.Payload)
	case protocol.TypeJoinRoom:
		s.joinRoom(env.Payload)
	case protocol.TypeStartGame:
		s.startGame()
	case protocol.TypeUpdateProgress:
		s.updateProgress(env.Payload)
	default:
		metrics.InboundMessages.WithLabelValues("unknown").Inc()
		log.Warn().Str("conn", s.client.ID).Str("type", env.Type).Msg("dropping unknown message")
		return
	}
	metrics.InboundMessages.WithLabelValues(env.Type).Inc()
}

func (s *session) createRoom(raw json.RawMessage) {
	var p protocol.CreateRoomPayload
	if !s.decode(raw, &p) {
		return
	}
	if p.HostID == "" {
		p.HostID = uuid.NewString()
	}

	room, err := s.srv.Rooms.Create(rooms.Member{ID: p.HostID, Name: p.Name, Conn: s.client}, p.Config)
	if err != nil {
		log.Error().Err(err).Str("conn", s.client.ID).Msg("create room failed")
		s.sendError(err.Error())
		return
	}
	s.bind(room, p.HostID)
}

func (s *session) joinRoom(raw json.RawMessage) {
	var p protocol.JoinRoomPayload
	if !s.decode(raw, &p) {
		return
	}
	// Re-joining the room this connection is already in only refreshes state.
	if s.current != nil && s.current == s.srv.Rooms.Get(p.RoomID) &&
		(p.Player.ID == "" || p.Player.ID == s.playerID) {
		s.current.SendState(s.playerID)
		return
	}
	if p.Player.ID == "" {
		p.Player.ID = uuid.NewString()
	}

	room, err := s.srv.Rooms.Join(p.RoomID, rooms.Member{ID: p.Player.ID, Name: p.Player.Name, Conn: s.client})
	if err != nil {
		log.Info().Err(err).Str("conn", s.client.ID).Str("room", p.RoomID).Str("player", p.Player.ID).Msg("join rejected")
		s.sendError(err.Error())
		return
	}
	s.bind(room, p.Player.ID)
}

// bind makes room the session's room, leaving the previous one. The old
// binding is only dropped once the new one exists, so a failed create or
// join keeps the player where they were.
func (s *session) bind(room *rooms.Room, playerID string) {
	s.leave()
	s.current, s.playerID = room, playerID
}

func (s *session) startGame() {
	room := s.room()
	if room == nil {
		return
	}
	if !room.StartGameAs(s.playerID) {
		log.Debug().Str("room", room.ID).Str("player", s.playerID).Msg("start ignored")
	}
}

func (s *session) updateProgress(raw json.RawMessage) {
	var p protocol.ProgressPayload
	if !s.decode(raw, &p) {
		return
	}
	room := s.room()
	if room == nil {
		return
	}
	room.UpdatePlayerProgress(s.playerID, players.Stats{WPM: p.WPM, Progress: p.Progress, Accuracy: p.Accuracy})
}

func (s *session) room() *rooms.Room {
	return s.current
}

// leave drops the bound identity from its room, if any.
func (s *session) leave() {
	if s.current == nil {
		return
	}
	s.srv.Rooms.Leave(s.current, s.playerID)
	s.current, s.playerID = nil, ""
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		s.leave()
		s.srv.Hub.Unregister(s.client.ID)
	})
}

func (s *session) decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Warn().Err(err).Str("conn", s.client.ID).Msg("dropping message with bad payload")
		return false
	}
	return true
}

func (s *session) sendError(msg string) {
	data, err := protocol.ErrorMessage(msg).Encode()
	if err != nil {
		return
	}
	if !s.client.Deliver(data) {
		metrics.DroppedMessages.Inc()
	}
}
