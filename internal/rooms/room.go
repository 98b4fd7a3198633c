package rooms

import (
	"sort"
	"sync"
	"time"
	"typerace/internal/broadcast"
	"typerace/internal/events"
	"typerace/internal/metrics"
	"typerace/internal/players"
	"typerace/internal/protocol"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Room is one typing session. Every mutation holds mu for its whole
// duration, including the broadcast it triggers, so members observe state
// changes in the order they were applied.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	opts       *Options
	hostID     string
	config     protocol.RoomConfig
	status     Status
	players    *players.Store
	members    *broadcast.Broadcaster
	wordList   string
	startTime  time.Time
	endTime    time.Time
	finishedAt time.Time
	stopTimer  func() bool
	closed     bool
}

func newRoom(id, hostID string, cfg protocol.RoomConfig, opts *Options) *Room {
	return &Room{
		ID:        id,
		CreatedAt: opts.Now(),
		opts:      opts,
		hostID:    hostID,
		config:    cfg,
		status:    StatusWaiting,
		players:   players.NewStore(),
		members:   broadcast.NewBroadcaster(),
	}
}

// AddPlayer inserts m with fresh stats and announces it. Status is not
// checked here; admission goes through Registry.Join.
func (r *Room) AddPlayer(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(m)
}

// admit is the checked form of AddPlayer used by the registry.
func (r *Room) admit(m Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrNotFound
	}
	if r.status != StatusWaiting {
		return ErrGameInProgress
	}
	if r.players.Has(m.ID) {
		return ErrDuplicatePlayer
	}
	r.addLocked(m)
	return nil
}

func (r *Room) addLocked(m Member) {
	r.players.Add(m.ID, m.Name)
	if m.Conn != nil {
		r.members.Subscribe(m.ID, m.Conn)
	}
	if r.hostID == "" {
		r.hostID = m.ID
	}

	r.members.Broadcast(protocol.Message{
		Type:    protocol.TypePlayerJoined,
		Payload: protocol.PlayerJoinedPayload{Player: protocol.PlayerRef{ID: m.ID, Name: m.Name}},
	})
	r.broadcastStateLocked()
}

// RemovePlayer drops playerID and reports whether the room is now empty. A
// departing host is replaced by the earliest remaining joiner before the new
// snapshot goes out.
func (r *Room) RemovePlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.players.Remove(playerID) {
		return r.players.Count() == 0
	}
	r.members.Unsubscribe(playerID)

	r.members.Broadcast(protocol.Message{
		Type:    protocol.TypePlayerLeft,
		Payload: protocol.PlayerLeftPayload{PlayerID: playerID},
	})

	if r.players.Count() == 0 {
		r.closeLocked()
		return true
	}

	if playerID == r.hostID {
		r.hostID = r.players.First().ID
		log.Info().Str("room", r.ID).Str("host", r.hostID).Msg("host reassigned")
		r.members.Broadcast(protocol.Message{
			Type:    protocol.TypeNewHost,
			Payload: protocol.NewHostPayload{HostID: r.hostID},
		})
	}
	r.broadcastStateLocked()
	return false
}

// StartGame moves a waiting room to playing and arms the session deadline.
// It is a no-op in any other state.
func (r *Room) StartGame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startLocked()
}

// StartGameAs starts the game only if playerID is the current host.
func (r *Room) StartGameAs(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if playerID == "" || playerID != r.hostID {
		return false
	}
	return r.startLocked()
}

func (r *Room) startLocked() bool {
	if r.status != StatusWaiting || r.closed {
		return false
	}

	r.wordList = r.opts.Words.WordsN(r.config.Difficulty, r.config.WordCount)
	r.status = StatusPlaying
	duration := time.Duration(r.config.Duration) * time.Second
	r.startTime = r.opts.Now().Add(r.opts.Countdown)
	r.endTime = r.startTime.Add(duration)

	r.members.Broadcast(protocol.Message{
		Type: protocol.TypeGameStart,
		Payload: protocol.GameStartPayload{
			StartTime: r.startTime.UnixMilli(),
			WordList:  r.wordList,
			Duration:  r.config.Duration,
		},
	})

	r.stopTimer = r.opts.After(r.opts.Countdown+duration, func() { r.EndGame() })
	metrics.GamesStarted.Inc()
	log.Info().Str("room", r.ID).Int("players", r.players.Count()).Int("duration", r.config.Duration).Msg("game started")
	return true
}

// UpdatePlayerProgress records a player's live stats and sends the delta to
// the room. Unknown players and rooms that are not playing are ignored.
func (r *Room) UpdatePlayerProgress(playerID string, stats players.Stats) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying {
		return false
	}
	p := r.players.UpdateStats(playerID, stats)
	if p == nil {
		return false
	}

	r.members.Broadcast(protocol.Message{
		Type: protocol.TypePlayerUpdate,
		Payload: protocol.PlayerUpdatePayload{
			PlayerID: playerID,
			WPM:      p.WPM,
			Progress: p.Progress,
			Accuracy: p.Accuracy,
		},
	})
	return true
}

// EndGame closes a playing session and publishes the leaderboard. Repeated
// calls, from the deadline or otherwise, do nothing.
func (r *Room) EndGame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying || r.closed {
		return false
	}
	r.status = StatusFinished
	r.finishedAt = r.opts.Now()
	if r.stopTimer != nil {
		r.stopTimer()
	}

	leaderboard := r.leaderboardLocked()
	r.members.Broadcast(protocol.Message{
		Type:    protocol.TypeGameEnd,
		Payload: protocol.GameEndPayload{Leaderboard: leaderboard},
	})
	metrics.GamesFinished.Inc()
	log.Info().Str("room", r.ID).Int("players", len(leaderboard)).Msg("game finished")

	if r.opts.Bus != nil {
		ev := events.MatchFinished{
			MatchID:     uuid.NewString(),
			RoomID:      r.ID,
			Difficulty:  r.config.Difficulty,
			Duration:    r.config.Duration,
			StartedAt:   r.startTime,
			EndedAt:     r.finishedAt,
			Leaderboard: leaderboard,
		}
		if !r.opts.Bus.Publish(ev) {
			log.Warn().Str("room", r.ID).Msg("event bus full, match result not recorded")
		}
	}
	return true
}

// leaderboardLocked ranks players by WPM, highest first. Ties keep join order.
func (r *Room) leaderboardLocked() []protocol.Standing {
	list := r.players.GetList()
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].WPM > list[j].WPM
	})

	standings := make([]protocol.Standing, len(list))
	for i, p := range list {
		standings[i] = protocol.Standing{ID: p.ID, Name: p.Name, WPM: p.WPM, Accuracy: p.Accuracy}
	}
	return standings
}

func (r *Room) stateLocked() protocol.Message {
	return protocol.Message{
		Type: protocol.TypeRoomState,
		Payload: protocol.RoomStatePayload{
			ID:      r.ID,
			Status:  string(r.status),
			Config:  r.config,
			Players: r.playerViewLocked(),
			HostID:  r.hostID,
		},
	}
}

func (r *Room) broadcastStateLocked() {
	r.members.Broadcast(r.stateLocked())
}

func (r *Room) playerViewLocked() []protocol.RoomPlayer {
	list := r.players.GetList()
	view := make([]protocol.RoomPlayer, len(list))
	for i, p := range list {
		view[i] = protocol.RoomPlayer{ID: p.ID, Name: p.Name, Color: p.Color, IsHost: p.ID == r.hostID}
	}
	return view
}

// closeLocked marks the room dead and cancels a pending deadline.
func (r *Room) closeLocked() {
	r.closed = true
	if r.stopTimer != nil {
		r.stopTimer()
	}
}

func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

// SendState sends the current ROOM_STATE to one member only.
func (r *Room) SendState(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members.SendTo(playerID, r.stateLocked())
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *Room) Config() protocol.RoomConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

func (r *Room) WordList() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wordList
}

func (r *Room) PlayerCount() int {
	return r.players.Count()
}

func (r *Room) Player(id string) (players.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.players.Get(id)
	if p == nil {
		return players.Player{}, false
	}
	return *p, true
}

func (r *Room) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		ID:      r.ID,
		Status:  r.status,
		Config:  r.config,
		HostID:  r.hostID,
		Players: r.playerViewLocked(),
	}
	if !r.startTime.IsZero() {
		s.StartTime = r.startTime.UnixMilli()
		s.EndTime = r.endTime.UnixMilli()
	}
	return s
}

// finishedBefore reports whether the room ended before t.
func (r *Room) finishedBefore(t time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == StatusFinished && r.finishedAt.Before(t)
}
