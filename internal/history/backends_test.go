package history

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"
	"typerace/internal/analytics"
	"typerace/internal/db"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSink(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis tests")
	}
	ctx := context.Background()

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() {
		client.Del(ctx, recentKey, bestWPMKey, playerNameKey)
		client.Close()
	})
	client.Del(ctx, recentKey, bestWPMKey, playerNameKey)

	sink := NewRedisSinkFromClient(client, 2)
	first := testEvent("m1")
	second := testEvent("m2")
	second.Leaderboard[0].WPM = 90 // lower than the first match
	third := testEvent("m3")

	require.NoError(t, sink.SaveMatch(ctx, first))
	require.NoError(t, sink.SaveMatch(ctx, second))
	require.NoError(t, sink.SaveMatch(ctx, third))

	recent, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2, "list is capped")
	assert.Equal(t, "m3", recent[0].MatchID)
	assert.Equal(t, "m2", recent[1].MatchID)

	top, err := sink.TopWPM(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, BestWPM{PlayerID: "a", PlayerName: "Ann", WPM: 110, Rank: 1}, top[0])
	assert.Equal(t, "b", top[1].PlayerID)
}

func TestNATSSink(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL not set, skipping nats tests")
	}

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe(MatchFinishedSubject, msgs)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	sink, err := NewNATSSink(url)
	require.NoError(t, err)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sink.SaveMatch(ctx, testEvent("m1")))

	select {
	case msg := <-msgs:
		var got MatchSummary
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "m1", got.MatchID)
		assert.Len(t, got.Leaderboard, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}

func TestPostgresSink(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := db.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate())
	ctx := context.Background()
	t.Cleanup(func() {
		database.Exec(ctx, "DELETE FROM player_badges")
		database.Exec(ctx, "DELETE FROM match_results")
		database.Exec(ctx, "DELETE FROM matches")
		database.Exec(ctx, "DELETE FROM players")
		database.Close()
	})

	sink := NewPostgresSink(database)
	ev := testEvent(uuid.NewString())
	require.NoError(t, sink.SaveMatch(ctx, ev))

	badges, err := database.GetPlayerBadges(ctx, "a")
	require.NoError(t, err)
	assert.Contains(t, badges, string(analytics.BadgeSpeedster))
	assert.Contains(t, badges, string(analytics.BadgeChampion))

	badges, err = database.GetPlayerBadges(ctx, "b")
	require.NoError(t, err)
	assert.Contains(t, badges, string(analytics.BadgeFlawless))

	recap, err := analytics.NewQueries(database).GetMatchRecap(ctx, ev.MatchID)
	require.NoError(t, err)
	require.Len(t, recap.Players, 2)
	assert.Equal(t, "a", recap.Players[0].PlayerID)
}
