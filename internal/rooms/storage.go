package rooms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"typerace/internal/metrics"
	"typerace/internal/protocol"
	"typerace/internal/words"

	"github.com/rs/zerolog/log"
)

const (
	defaultDifficulty  = words.DifficultyMedium
	defaultDuration    = 60
	defaultMaxDuration = 600
	defaultMaxWords    = 500
	defaultFinishedTTL = 30 * time.Minute

	maxCodeAttempts = 10
)

// Registry is the process-wide directory of live rooms. Its lock guards only
// the map; it is never held while calling into a Room.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	opts  Options
}

func NewRegistry(opts Options) *Registry {
	if opts.Words == nil {
		opts.Words = words.Default(words.DefaultCount)
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = defaultDuration
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = defaultMaxDuration
	}
	if opts.MaxWordCount <= 0 {
		opts.MaxWordCount = defaultMaxWords
	}
	if opts.FinishedTTL <= 0 {
		opts.FinishedTTL = defaultFinishedTTL
	}
	if opts.Countdown <= 0 {
		opts.Countdown = Countdown
	}
	if opts.After == nil {
		opts.After = afterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Codes == nil {
		opts.Codes = GenerateCode
	}
	return &Registry{
		rooms: make(map[string]*Room),
		opts:  opts,
	}
}

// normalizeConfig fills defaults and clamps the client-supplied sizes.
func (s *Registry) normalizeConfig(cfg protocol.RoomConfig) protocol.RoomConfig {
	cfg.Difficulty = strings.ToLower(strings.TrimSpace(cfg.Difficulty))
	if cfg.Difficulty == "" {
		cfg.Difficulty = defaultDifficulty
	}
	if k, ok := s.opts.Words.(interface{ Has(string) bool }); ok && !k.Has(cfg.Difficulty) {
		cfg.Difficulty = words.DifficultyEasy
	}
	if cfg.Duration <= 0 {
		cfg.Duration = s.opts.DefaultDuration
	}
	if cfg.Duration > s.opts.MaxDuration {
		cfg.Duration = s.opts.MaxDuration
	}
	cfg.WordCount = min(max(cfg.WordCount, 0), s.opts.MaxWordCount)
	return cfg
}

// Create registers a new waiting room under a fresh code with host as its
// first member. The room is not visible to Join until the host is in.
func (s *Registry) Create(host Member, cfg protocol.RoomConfig) (*Room, error) {
	if host.ID == "" {
		return nil, ErrNoPlayerID
	}
	cfg = s.normalizeConfig(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()

	for range maxCodeAttempts {
		code, err := s.opts.Codes()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}

		room := newRoom(code, host.ID, cfg, &s.opts)
		room.AddPlayer(host)
		s.rooms[code] = room
		metrics.ActiveRooms.Inc()
		log.Info().Str("room", code).Str("host", host.ID).Str("difficulty", cfg.Difficulty).Int("duration", cfg.Duration).Msg("room created")
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code after %d attempts", maxCodeAttempts)
}

// Join admits m into a waiting room.
func (s *Registry) Join(roomID string, m Member) (*Room, error) {
	room := s.Get(roomID)
	if room == nil {
		return nil, ErrNotFound
	}
	if err := room.admit(m); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Registry) Get(roomID string) *Room {
	code := normalizeCode(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

// RemovePlayer takes playerID out of the room and drops the room once empty.
func (s *Registry) RemovePlayer(roomID, playerID string) {
	if room := s.Get(roomID); room != nil {
		s.Leave(room, playerID)
	}
}

// Leave is RemovePlayer for a caller that already holds the room. A room
// that was swept and whose code now belongs to another room is left alone
// in the directory.
func (s *Registry) Leave(room *Room, playerID string) {
	if room.RemovePlayer(playerID) {
		s.delete(room, "empty")
	}
}

func (s *Registry) delete(room *Room, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[room.ID] != room {
		return
	}
	delete(s.rooms, room.ID)
	metrics.ActiveRooms.Dec()
	log.Info().Str("room", room.ID).Str("reason", reason).Msg("room removed")
}

func (s *Registry) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

// Stats returns the number of live rooms and of players across them.
func (s *Registry) Stats() (rooms, players int) {
	list := s.List()
	for _, r := range list {
		players += r.PlayerCount()
	}
	return len(list), players
}

// Sweep drops rooms that finished more than the configured TTL before now.
func (s *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-s.opts.FinishedTTL)
	removed := 0
	for _, room := range s.List() {
		if !room.finishedBefore(cutoff) {
			continue
		}
		room.close()
		s.delete(room, "finished ttl")
		removed++
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.opts.Now()); n > 0 {
				log.Debug().Int("removed", n).Msg("swept finished rooms")
			}
		}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
