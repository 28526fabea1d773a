// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package insights

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS question_insights (
	id                   VARCHAR PRIMARY KEY,
	host_id              VARCHAR NOT NULL,
	show_id              VARCHAR NOT NULL,
	question_text        VARCHAR NOT NULL,
	topic                VARCHAR NOT NULL DEFAULT '',
	complexity           DOUBLE NOT NULL,
	length               INTEGER NOT NULL,
	style                VARCHAR NOT NULL,
	source_model         VARCHAR NOT NULL DEFAULT '',
	generated_at         TIMESTAMP NOT NULL,
	was_used             BOOLEAN NOT NULL DEFAULT FALSE,
	used_at              TIMESTAMP,
	time_to_use_seconds  DOUBLE NOT NULL DEFAULT 0,
	chat_activity_change DOUBLE NOT NULL DEFAULT 0,
	viewer_retention     DOUBLE NOT NULL DEFAULT 0,
	sentiment_change     DOUBLE NOT NULL DEFAULT 0,
	engagement_score     DOUBLE NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_question_insights_host ON question_insights (host_id);
CREATE INDEX IF NOT EXISTS idx_question_insights_show ON question_insights (show_id);
`

// Config configures the analytics database.
type Config struct {
	Enabled bool
	// Path of the database file. Empty keeps everything in memory.
	Path      string
	Threads   int
	MaxMemory string
}

// DefaultConfig stores insights next to the other data files.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Path:      "/data/cuecard-insights.duckdb",
		MaxMemory: "512MB",
	}
}

// Store records question insights in DuckDB and answers usage summaries.
type Store struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open opens (or creates) the database and applies the schema.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	if cfg.Path != "" {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create insights directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, maxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open insights database: %w", err)
	}
	// A single connection keeps an in-memory database shared between calls.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply insights schema: %w", err)
	}

	s := &Store{conn: conn, logger: logger.With().Str("component", "insights").Logger()}
	s.logger.Info().Str("path", cfg.Path).Msg("Insights database opened")
	return s, nil
}

// UpsertInsights writes the insights in one transaction, replacing rows with the same ID.
func (s *Store) UpsertInsights(ctx context.Context, insights []models.QuestionInsight) error {
	if len(insights) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO question_insights (
			id, host_id, show_id, question_text, topic, complexity, length, style, source_model,
			generated_at, was_used, used_at, time_to_use_seconds, chat_activity_change,
			viewer_retention, sentiment_change, engagement_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range insights {
		in := &insights[i]
		var usedAt sql.NullTime
		if in.UsedAt != nil {
			usedAt = sql.NullTime{Time: *in.UsedAt, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			in.ID, in.HostID, in.ShowID, in.Text, in.Topic, in.Complexity, in.Length, string(in.Style),
			in.SourceModel, in.GeneratedAt, in.WasUsed, usedAt, in.TimeToUseSeconds,
			in.ChatActivityDelta, in.ViewerRetention, in.SentimentDelta, in.EngagementScore,
		)
		if err != nil {
			return fmt.Errorf("upsert insight %s: %w", in.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insights: %w", err)
	}
	s.logger.Debug().Int("count", len(insights)).Msg("Upserted question insights")
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}
