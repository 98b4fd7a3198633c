package events

import (
	"time"
	"typerace/internal/protocol"
)

// MatchFinished describes one completed session.
type MatchFinished struct {
	MatchID     string
	RoomID      string
	Difficulty  string
	Duration    int // seconds
	StartedAt   time.Time
	EndedAt     time.Time
	Leaderboard []protocol.Standing
}

type Bus struct {
	Results chan MatchFinished
}

func NewBus(size int) *Bus {
	if size <= 0 {
		size = 10
	}
	return &Bus{
		Results: make(chan MatchFinished, size),
	}
}

// Publish queues ev without blocking. It reports false when the bus is full.
func (b *Bus) Publish(ev MatchFinished) bool {
	select {
	case b.Results <- ev:
		return true
	default:
		return false
	}
}
