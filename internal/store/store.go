// Package store archives diagnostic runs in PostgreSQL so past reports can
// be listed and re-opened. The rest of the application works without it; the
// server only wires a Store when DATABASE_URL is set.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Traumerei-sf/tokumei-AI/internal/core"
)

// NewPool opens and pings a pgx connection pool.
func NewPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// Run is one archived diagnostic run.
type Run struct {
	ID             uuid.UUID      `json:"id"`
	JournalName    string         `json:"journal_name"`
	MonthsCount    int            `json:"months_count"`
	RedCount       int            `json:"red_count"`
	SummaryMessage string         `json:"summary_message"`
	Findings       []core.Finding `json:"findings,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// SaveRun inserts one diagnostic run with its findings serialized as JSONB.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	findingsJSON, err := json.Marshal(run.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO diagnostic_runs (id, journal_name, months_count, red_count, summary_message, findings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.JournalName, run.MonthsCount, run.RedCount, run.SummaryMessage, findingsJSON, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert diagnostic run: %w", err)
	}
	return nil
}

// ListRuns returns recent runs, newest first, without their findings payload.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, journal_name, months_count, red_count, summary_message, created_at
		FROM diagnostic_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query diagnostic runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.JournalName, &r.MonthsCount, &r.RedCount, &r.SummaryMessage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan diagnostic run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads one run including its findings.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var (
		r            Run
		findingsJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, journal_name, months_count, red_count, summary_message, findings, created_at
		FROM diagnostic_runs
		WHERE id = $1`, id).
		Scan(&r.ID, &r.JournalName, &r.MonthsCount, &r.RedCount, &r.SummaryMessage, &findingsJSON, &r.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("diagnostic run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query diagnostic run: %w", err)
	}
	if err := json.Unmarshal(findingsJSON, &r.Findings); err != nil {
		return nil, fmt.Errorf("unmarshal findings: %w", err)
	}
	return &r, nil
}
