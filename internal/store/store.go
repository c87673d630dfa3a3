// Package store keeps an opt-in Postgres history of completed analyses. The
// CLI is fully functional without it; it only activates when a connection
// string is configured.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cinelens/cinelens/internal/report"
)

// Store manages the PostgreSQL connection for the analysis history.
type Store struct {
	conn *pgx.Conn
}

// New establishes a connection and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			duration DOUBLE PRECISION NOT NULL,
			frame_count INT NOT NULL,
			actor_count INT NOT NULL,
			report JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS analyses_created_at_idx ON analyses (created_at DESC);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// SaveAnalysis records one completed report. Re-saving the same report ID
// overwrites the previous row, keeping re-runs idempotent.
func (s *Store) SaveAnalysis(ctx context.Context, r *report.AnalysisReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO analyses (id, title, duration, frame_count, actor_count, report)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			duration = EXCLUDED.duration,
			frame_count = EXCLUDED.frame_count,
			actor_count = EXCLUDED.actor_count,
			report = EXCLUDED.report
	`, r.ID, r.Title, r.Duration, r.FrameCount, len(r.Actors), payload)
	return err
}

// AnalysisRow is one history listing entry.
type AnalysisRow struct {
	ID         string
	Title      string
	CreatedAt  time.Time
	Duration   float64
	FrameCount int
	ActorCount int
}

// ListAnalyses returns stored analyses, newest first.
func (s *Store) ListAnalyses(ctx context.Context) ([]AnalysisRow, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, title, created_at, duration, frame_count, actor_count
		FROM analyses ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalysisRow
	for rows.Next() {
		var row AnalysisRow
		if err := rows.Scan(&row.ID, &row.Title, &row.CreatedAt,
			&row.Duration, &row.FrameCount, &row.ActorCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetReport loads one stored report by ID. Returns nil when the ID is
// unknown.
func (s *Store) GetReport(ctx context.Context, id string) (*report.AnalysisReport, error) {
	var payload []byte
	err := s.conn.QueryRow(ctx, "SELECT report FROM analyses WHERE id = $1", id).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var r report.AnalysisReport
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode stored report: %w", err)
	}
	return &r, nil
}

// Reset drops the history table to clear all stored analyses.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, "DROP TABLE IF EXISTS analyses CASCADE;")
	return err
}
