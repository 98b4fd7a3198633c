package players

import (
	"sync"
	"time"
	"typerace/internal/utility"
)

// Store keeps a room's members in join order.
type Store struct {
	mu      sync.Mutex
	players map[string]*Player
	order   []string
}

func NewStore() *Store {
	return &Store{
		players: make(map[string]*Player),
	}
}

// Add inserts a player with fresh stats. Adding an existing id replaces its
// entry but keeps its original position.
func (s *Store) Add(id string, name string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	player := &Player{
		ID:       id,
		Name:     name,
		Color:    utility.RandomColorHex(),
		Accuracy: 100,
		JoinedAt: time.Now(),
	}
	if _, exists := s.players[id]; !exists {
		s.order = append(s.order, id)
	}
	s.players[id] = player
	return player
}

func (s *Store) Get(id string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[id]
}

func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.players[id]
	return exists
}

// GetList returns copies of all players in join order.
func (s *Store) GetList() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	playerList := make([]Player, 0, len(s.order))
	for _, id := range s.order {
		playerList = append(playerList, *s.players[id])
	}
	return playerList
}

// First returns the earliest-joined remaining player, or nil when empty.
func (s *Store) First() *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return nil
	}
	return s.players[s.order[0]]
}

func (s *Store) UpdateStats(id string, stats Stats) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, e := s.players[id]; e {
		p.WPM = stats.WPM
		p.Progress = stats.Progress
		p.Accuracy = stats.Accuracy
		return p
	}
	return nil
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[id]; !exists {
		return false
	}
	delete(s.players, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}
