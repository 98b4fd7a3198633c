package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		// Clean up test data
		ctx := context.Background()
		database.conn.ExecContext(ctx, "DELETE FROM player_badges")
		database.conn.ExecContext(ctx, "DELETE FROM match_results")
		database.conn.ExecContext(ctx, "DELETE FROM matches")
		database.conn.ExecContext(ctx, "DELETE FROM players")
		database.Close()
	})
	return database
}

func testMatch(players ...string) MatchRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	m := MatchRecord{
		ID:           uuid.NewString(),
		RoomID:       "ABC234",
		Difficulty:   "medium",
		DurationSecs: 60,
		StartedAt:    now.Add(-63 * time.Second),
		EndedAt:      now,
	}
	for i, id := range players {
		m.Results = append(m.Results, ResultRecord{
			PlayerID:   id,
			PlayerName: "name-" + id,
			Rank:       i + 1,
			WPM:        float64(100 - i*10),
			Accuracy:   95,
		})
	}
	return m
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	// Running again is a no-op
	if err := database.Migrate(); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}

	// Verify tables exist by querying them
	tables := []string{"players", "matches", "match_results", "player_badges"}
	for _, table := range tables {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestUpsertPlayer(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	if err := database.UpsertPlayer(ctx, "p-1", "Alice"); err != nil {
		t.Fatalf("UpsertPlayer() error: %v", err)
	}
	// Upsert again with different data
	if err := database.UpsertPlayer(ctx, "p-1", "Alice Updated"); err != nil {
		t.Fatalf("UpsertPlayer() update error: %v", err)
	}

	p, err := database.GetPlayer(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetPlayer() error: %v", err)
	}
	if p.Name != "Alice Updated" {
		t.Errorf("name = %q, want %q", p.Name, "Alice Updated")
	}
}

func TestGetPlayer_NotFound(t *testing.T) {
	database := getTestDB(t)

	_, err := database.GetPlayer(context.Background(), "nobody")
	if err == nil {
		t.Error("GetPlayer() should return error for nonexistent player")
	}
}

func TestRecordMatch(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	m := testMatch("p-a", "p-b", "p-c")
	if err := database.RecordMatch(ctx, m); err != nil {
		t.Fatalf("RecordMatch() error: %v", err)
	}
	// Same id again is ignored
	if err := database.RecordMatch(ctx, m); err != nil {
		t.Fatalf("RecordMatch() repeat error: %v", err)
	}

	var count int
	database.conn.QueryRow("SELECT COUNT(*) FROM match_results WHERE match_id = $1", m.ID).Scan(&count)
	if count != 3 {
		t.Errorf("result count = %d, want 3", count)
	}

	var rank int
	database.conn.QueryRow("SELECT rank FROM match_results WHERE match_id = $1 AND player_id = 'p-b'", m.ID).Scan(&rank)
	if rank != 2 {
		t.Errorf("rank = %d, want 2", rank)
	}
}

func TestAwardBadge(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	m := testMatch("p-a")
	if err := database.RecordMatch(ctx, m); err != nil {
		t.Fatalf("RecordMatch() error: %v", err)
	}

	if err := database.AwardBadge(ctx, "p-a", "speedster", &m.ID); err != nil {
		t.Fatalf("AwardBadge() error: %v", err)
	}
	// Duplicate award is ignored
	if err := database.AwardBadge(ctx, "p-a", "speedster", nil); err != nil {
		t.Fatalf("AwardBadge() duplicate error: %v", err)
	}

	badges, err := database.GetPlayerBadges(ctx, "p-a")
	if err != nil {
		t.Fatalf("GetPlayerBadges() error: %v", err)
	}
	if len(badges) != 1 || badges[0] != "speedster" {
		t.Errorf("badges = %v, want [speedster]", badges)
	}
}
