package history

import (
	"context"
	"encoding/json"
	"fmt"
	"typerace/internal/events"

	"github.com/redis/go-redis/v9"
)

const (
	recentKey     = "typerace:matches:recent"
	bestWPMKey    = "typerace:leaderboard:wpm"
	playerNameKey = "typerace:players:names"

	defaultRecent = 100
)

// RedisSink keeps a capped list of recent matches and each player's best WPM.
type RedisSink struct {
	client    *redis.Client
	maxRecent int64
}

// NewRedisSink connects to url (redis://...) and verifies the connection.
func NewRedisSink(ctx context.Context, url string) (*RedisSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedisSinkFromClient(client, defaultRecent), nil
}

func NewRedisSinkFromClient(client *redis.Client, maxRecent int) *RedisSink {
	if maxRecent <= 0 {
		maxRecent = defaultRecent
	}
	return &RedisSink{client: client, maxRecent: int64(maxRecent)}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) SaveMatch(ctx context.Context, ev events.MatchFinished) error {
	data, err := json.Marshal(Summarize(ev))
	if err != nil {
		return fmt.Errorf("encoding match: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, recentKey, data)
		pipe.LTrim(ctx, recentKey, 0, s.maxRecent-1)
		for _, st := range ev.Leaderboard {
			if st.WPM <= 0 {
				continue
			}
			pipe.ZAddArgs(ctx, bestWPMKey, redis.ZAddArgs{
				GT:      true,
				Members: []redis.Z{{Score: st.WPM, Member: st.ID}},
			})
			pipe.HSet(ctx, playerNameKey, st.ID, st.Name)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing match to redis: %w", err)
	}
	return nil
}

// Recent returns up to n matches, newest first.
func (s *RedisSink) Recent(ctx context.Context, n int) ([]MatchSummary, error) {
	if n <= 0 || int64(n) > s.maxRecent {
		n = int(s.maxRecent)
	}
	raw, err := s.client.LRange(ctx, recentKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading recent matches: %w", err)
	}

	out := make([]MatchSummary, 0, len(raw))
	for _, item := range raw {
		var m MatchSummary
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

type BestWPM struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	WPM        float64 `json:"wpm"`
	Rank       int     `json:"rank"`
}

// TopWPM returns the n highest personal bests.
func (s *RedisSink) TopWPM(ctx context.Context, n int) ([]BestWPM, error) {
	if n <= 0 {
		n = 10
	}
	zs, err := s.client.ZRevRangeWithScores(ctx, bestWPMKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading best wpm: %w", err)
	}
	if len(zs) == 0 {
		return []BestWPM{}, nil
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i], _ = z.Member.(string)
	}
	names, err := s.client.HMGet(ctx, playerNameKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading player names: %w", err)
	}

	out := make([]BestWPM, len(zs))
	for i, z := range zs {
		out[i] = BestWPM{PlayerID: ids[i], WPM: z.Score, Rank: i + 1}
		if name, ok := names[i].(string); ok {
			out[i].PlayerName = name
		}
	}
	return out, nil
}

func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
