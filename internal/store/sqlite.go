package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// SQLite persists reservations in a sqlite database. The UNIQUE constraint on
// (horizon_date, start_offset) is what makes TryInsert atomic: the conflict
// clause turns a lost race into zero affected rows instead of an error or an
// overwrite.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at path and runs migrations.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			horizon_date TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			identity_key TEXT NOT NULL,
			display_name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE(horizon_date, start_offset)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_identity ON reservations(identity_key)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func (s *SQLite) TryInsert(ctx context.Context, r *model.Reservation) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, horizon_date, start_offset, identity_key, display_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(horizon_date, start_offset) DO NOTHING`,
		r.ID, r.Horizon.Format("2006-01-02"), r.Start, r.IdentityKey, r.DisplayName, r.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert reservation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *SQLite) Get(ctx context.Context, key model.SlotKey) (*model.Reservation, error) {
	var r model.Reservation
	var horizonDate string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, horizon_date, start_offset, identity_key, display_name, created_at
		FROM reservations
		WHERE horizon_date = ? AND start_offset = ?`,
		key.HorizonDate, key.Start,
	).Scan(&r.ID, &horizonDate, &r.Start, &r.IdentityKey, &r.DisplayName, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	r.Horizon, err = time.ParseInLocation("2006-01-02", horizonDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse horizon date: %w", err)
	}
	return &r, nil
}

func (s *SQLite) ListByHorizon(ctx context.Context, horizon time.Time) ([]model.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, horizon_date, start_offset, identity_key, display_name, created_at
		FROM reservations
		WHERE horizon_date = ?
		ORDER BY start_offset`,
		horizon.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		var r model.Reservation
		var horizonDate string
		if err := rows.Scan(&r.ID, &horizonDate, &r.Start, &r.IdentityKey, &r.DisplayName, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		r.Horizon, err = time.ParseInLocation("2006-01-02", horizonDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse horizon date: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() error { return s.db.Close() }
