// Package protocol defines the JSON messages exchanged over a room socket.
//
// Every frame is an Envelope {"type": ..., "payload": {...}}. Inbound
// payloads are decoded lazily once the type is known.
package protocol

import "encoding/json"

// Client → server.
const (
	TypeCreateRoom     = "CREATE_ROOM"
	TypeJoinRoom       = "JOIN_ROOM"
	TypeStartGame      = "START_GAME"
	TypeUpdateProgress = "UPDATE_PROGRESS"
)

// Server → client.
const (
	TypeRoomState    = "ROOM_STATE"
	TypePlayerJoined = "PLAYER_JOINED"
	TypePlayerLeft   = "PLAYER_LEFT"
	TypeNewHost      = "NEW_HOST"
	TypeGameStart    = "GAME_START"
	TypePlayerUpdate = "PLAYER_UPDATE"
	TypeGameEnd      = "GAME_END"
	TypeError        = "ERROR"
)

// Envelope is the outer frame of every message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is an outbound frame whose payload is not yet encoded.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// RoomConfig is the per-room game configuration.
type RoomConfig struct {
	Difficulty string `json:"difficulty"`
	Duration   int    `json:"duration"` // seconds
	WordCount  int    `json:"wordCount,omitempty"`
}

type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateRoomPayload struct {
	HostID string     `json:"hostId"`
	Name   string     `json:"name"`
	Config RoomConfig `json:"config"`
}

type JoinRoomPayload struct {
	RoomID string    `json:"roomId"`
	Player PlayerRef `json:"player"`
}

type ProgressPayload struct {
	WPM      float64 `json:"wpm"`
	Progress float64 `json:"progress"`
	Accuracy float64 `json:"accuracy"`
}

type RoomPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	IsHost bool   `json:"isHost"`
}

type RoomStatePayload struct {
	ID      string       `json:"id"`
	Status  string       `json:"status"`
	Config  RoomConfig   `json:"config"`
	Players []RoomPlayer `json:"players"`
	HostID  string       `json:"hostId"`
}

type PlayerJoinedPayload struct {
	Player PlayerRef `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

type NewHostPayload struct {
	HostID string `json:"hostId"`
}

type GameStartPayload struct {
	StartTime int64  `json:"startTime"` // unix milliseconds
	WordList  string `json:"wordList"`
	Duration  int    `json:"duration"`
}

type PlayerUpdatePayload struct {
	PlayerID string  `json:"playerId"`
	WPM      float64 `json:"wpm"`
	Progress float64 `json:"progress"`
	Accuracy float64 `json:"accuracy"`
}

type Standing struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	WPM      float64 `json:"wpm"`
	Accuracy float64 `json:"accuracy"`
}

type GameEndPayload struct {
	Leaderboard []Standing `json:"leaderboard"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// ErrorMessage builds an ERROR frame for the originating connection.
func ErrorMessage(msg string) Message {
	return Message{Type: TypeError, Payload: ErrorPayload{Message: msg}}
}
