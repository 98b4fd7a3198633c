package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type MatchRecord struct {
	ID           string
	RoomID       string
	Difficulty   string
	DurationSecs int
	StartedAt    time.Time
	EndedAt      time.Time
	Results      []ResultRecord
}

// ResultRecord is one player's final standing. Rank starts at 1.
type ResultRecord struct {
	PlayerID   string
	PlayerName string
	Rank       int
	WPM        float64
	Accuracy   float64
}

type PlayerRecord struct {
	ID        string
	Name      string
	CreatedAt time.Time
	LastSeen  time.Time
}

func (d *DB) UpsertPlayer(ctx context.Context, id, name string) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO players (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = $2, last_seen = now()
	`, id, name)
	if err != nil {
		return fmt.Errorf("upserting player: %w", err)
	}
	return nil
}

func (d *DB) GetPlayer(ctx context.Context, id string) (*PlayerRecord, error) {
	p := &PlayerRecord{}
	err := d.conn.QueryRowContext(ctx, `
		SELECT id, name, created_at, last_seen FROM players WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.LastSeen)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return p, nil
}

// RecordMatch stores a finished match and its standings in one transaction.
// Recording the same match id twice is a no-op.
func (d *DB) RecordMatch(ctx context.Context, m MatchRecord) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO matches (id, room_id, difficulty, duration_secs, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, m.ID, m.RoomID, m.Difficulty, m.DurationSecs, m.StartedAt, m.EndedAt)
	if err != nil {
		return fmt.Errorf("recording match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	if err := insertResults(ctx, tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

func insertResults(ctx context.Context, tx *sql.Tx, m MatchRecord) error {
	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO players (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = $2, last_seen = now()
	`)
	if err != nil {
		return fmt.Errorf("preparing player statement: %w", err)
	}
	defer upsert.Close()

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO match_results (match_id, player_id, rank, wpm, accuracy)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("preparing result statement: %w", err)
	}
	defer insert.Close()

	for _, r := range m.Results {
		if _, err := upsert.ExecContext(ctx, r.PlayerID, r.PlayerName); err != nil {
			return fmt.Errorf("upserting player in batch: %w", err)
		}
		if _, err := insert.ExecContext(ctx, m.ID, r.PlayerID, r.Rank, r.WPM, r.Accuracy); err != nil {
			return fmt.Errorf("recording result in batch: %w", err)
		}
	}
	return nil
}
