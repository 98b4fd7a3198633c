package broadcast

import (
	"sync"
	"typerace/internal/metrics"
	"typerace/internal/protocol"

	"github.com/rs/zerolog/log"
)

// Subscriber is one member's connection handle.
type Subscriber interface {
	Open() bool
	// Deliver queues data without blocking and reports whether it was accepted.
	Deliver(data []byte) bool
}

// Broadcaster fans messages out to the members of one room.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[string]Subscriber
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]Subscriber),
	}
}

func (b *Broadcaster) Subscribe(id string, s Subscriber) {
	b.mu.Lock()
	b.clients[id] = s
	b.mu.Unlock()
}

func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.clients, id)
	b.mu.Unlock()
}

func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Broadcast encodes msg once and hands it to every open subscriber. Closed
// handles are skipped and full buffers drop the frame for that member only.
// It returns the number of members that accepted the frame.
func (b *Broadcaster) Broadcast(msg protocol.Message) int {
	data, err := msg.Encode()
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("broadcast marshal failed")
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for id, s := range b.clients {
		if !s.Open() {
			continue
		}
		if !s.Deliver(data) {
			metrics.DroppedMessages.Inc()
			log.Warn().Str("player", id).Str("type", msg.Type).Msg("send buffer full, dropping message")
			continue
		}
		delivered++
	}
	return delivered
}

// SendTo delivers msg to a single member.
func (b *Broadcaster) SendTo(id string, msg protocol.Message) bool {
	b.mu.Lock()
	s, ok := b.clients[id]
	b.mu.Unlock()
	if !ok || !s.Open() {
		return false
	}
	data, err := msg.Encode()
	if err != nil {
		return false
	}
	return s.Deliver(data)
}
