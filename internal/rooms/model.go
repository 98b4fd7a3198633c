package rooms

import (
	"errors"
	"fmt"
	"time"
	"typerace/internal/broadcast"
	"typerace/internal/events"
	"typerace/internal/protocol"
)

type Status string

const (
	StatusWaiting  = Status("waiting")
	StatusPlaying  = Status("playing")
	StatusFinished = Status("finished")
)

var (
	ErrNotFound    = errors.New("room not found")
	ErrNotJoinable = errors.New("room is not accepting players")

	ErrGameInProgress  = fmt.Errorf("%w: game already in progress", ErrNotJoinable)
	ErrDuplicatePlayer = fmt.Errorf("%w: player id already in room", ErrNotJoinable)

	ErrNoPlayerID = errors.New("player id is required")
)

// Countdown is the delay between START_GAME and the moment typing opens.
const Countdown = 3 * time.Second

// Member is a player being admitted together with its connection handle.
type Member struct {
	ID   string
	Name string
	Conn broadcast.Subscriber
}

// WordSource produces the session text for a difficulty. n <= 0 selects the
// source's default length.
type WordSource interface {
	WordsN(difficulty string, n int) string
}

// Scheduler runs f once after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type Options struct {
	Words           WordSource
	Bus             *events.Bus // optional
	DefaultDuration int         // seconds
	MaxDuration     int         // seconds
	MaxWordCount    int
	FinishedTTL     time.Duration
	Countdown       time.Duration
	After           Scheduler
	Now             func() time.Time
	Codes           func() (string, error) // room code generator
}

// Summary is a read-only view of a room.
type Summary struct {
	ID        string                `json:"id"`
	Status    Status                `json:"status"`
	Config    protocol.RoomConfig   `json:"config"`
	HostID    string                `json:"hostId"`
	Players   []protocol.RoomPlayer `json:"players"`
	StartTime int64                 `json:"startTime,omitempty"`
	EndTime   int64                 `json:"endTime,omitempty"`
}
