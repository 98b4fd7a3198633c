// Package history persists finished matches to the configured backends.
// Every sink is best effort: a failure is logged and counted, never
// propagated to the rooms that produced the match.
package history

import (
	"context"
	"time"
	"typerace/internal/events"
	"typerace/internal/metrics"
	"typerace/internal/protocol"

	"github.com/rs/zerolog/log"
)

const defaultSinkTimeout = 5 * time.Second

type Sink interface {
	Name() string
	SaveMatch(ctx context.Context, ev events.MatchFinished) error
}

// MatchSummary is the wire and cache form of a finished match.
type MatchSummary struct {
	MatchID     string              `json:"matchId"`
	RoomID      string              `json:"roomId"`
	Difficulty  string              `json:"difficulty"`
	Duration    int                 `json:"duration"`
	StartedAt   time.Time           `json:"startedAt"`
	EndedAt     time.Time           `json:"endedAt"`
	Leaderboard []protocol.Standing `json:"leaderboard"`
}

func Summarize(ev events.MatchFinished) MatchSummary {
	lb := ev.Leaderboard
	if lb == nil {
		lb = []protocol.Standing{}
	}
	return MatchSummary{
		MatchID:     ev.MatchID,
		RoomID:      ev.RoomID,
		Difficulty:  ev.Difficulty,
		Duration:    ev.Duration,
		StartedAt:   ev.StartedAt,
		EndedAt:     ev.EndedAt,
		Leaderboard: lb,
	}
}

// Recorder drains the event bus and hands each match to every sink.
type Recorder struct {
	bus     *events.Bus
	sinks   []Sink
	timeout time.Duration
}

func NewRecorder(bus *events.Bus, timeout time.Duration, sinks ...Sink) *Recorder {
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	return &Recorder{bus: bus, sinks: sinks, timeout: timeout}
}

func (r *Recorder) Sinks() int {
	return len(r.sinks)
}

// Run consumes matches until ctx is done, then flushes whatever is still
// queued on the bus.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case ev := <-r.bus.Results:
			r.Record(ctx, ev)
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case ev := <-r.bus.Results:
			r.Record(context.Background(), ev)
		default:
			return
		}
	}
}

// Record stores ev in every sink and returns how many succeeded.
func (r *Recorder) Record(ctx context.Context, ev events.MatchFinished) int {
	ok := 0
	for _, s := range r.sinks {
		sctx, cancel := context.WithTimeout(ctx, r.timeout)
		err := s.SaveMatch(sctx, ev)
		cancel()
		if err != nil {
			metrics.SinkFailures.WithLabelValues(s.Name()).Inc()
			log.Error().Err(err).Str("sink", s.Name()).Str("match", ev.MatchID).Str("room", ev.RoomID).Msg("saving match failed")
			continue
		}
		ok++
	}
	log.Debug().Str("match", ev.MatchID).Int("sinks", ok).Msg("match recorded")
	return ok
}
