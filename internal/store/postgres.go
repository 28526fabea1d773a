// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/models"
)

const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS question_history (
	id           UUID PRIMARY KEY,
	show_id      TEXT NOT NULL,
	question     TEXT NOT NULL,
	embedding    vector(%d) NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	confidence   DOUBLE PRECISION NOT NULL,
	source_model TEXT NOT NULL DEFAULT '',
	was_used     BOOLEAN NOT NULL DEFAULT FALSE,
	topic_tags   TEXT[] NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_question_history_show_time
	ON question_history (show_id, created_at DESC);

CREATE TABLE IF NOT EXISTS host_profiles (
	host_id    TEXT PRIMARY KEY,
	profile    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresStore keeps history in a pgvector table and profiles as JSONB.
type PostgresStore struct {
	pool      *pgxpool.Pool
	retention time.Duration
	logger    zerolog.Logger
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects, pings and applies the schema.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenPostgres(ctx context.Context, cfg PostgresConfig, retention time.Duration, logger zerolog.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewPostgresStore(pool, retention, logger)
	if err := s.Migrate(ctx, cfg.Dimensions); err != nil {
		pool.Close()
		return nil, err
	}
	s.logger.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("Connected to PostgreSQL")
	return s, nil
}

// NewPostgresStore wraps an existing pool. The schema must already exist.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPostgresStore(pool *pgxpool.Pool, retention time.Duration, logger zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		pool:      pool,
		retention: retention,
		logger:    logger.With().Str("component", "postgres_store").Logger(),
	}
}

// Migrate creates the tables for embeddings of the given dimension.
func (s *PostgresStore) Migrate(ctx context.Context, dimensions int) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(postgresSchema, dimensions)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// AppendHistory inserts items in one batch.
func (s *PostgresStore) AppendHistory(ctx context.Context, items []models.HistoryItem) ([]string, error) {
	ids := make([]string, len(items))
	batch := &pgx.Batch{}
	for i := range items {
		item := &items[i]
		ids[i] = uuid.New().String()
		tags := item.TopicTags
		if tags == nil {
			tags = []string{}
		}
		batch.Queue(
			`INSERT INTO question_history
				(id, show_id, question, embedding, created_at, confidence, source_model, was_used, topic_tags)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			ids[i], item.ShowID, item.Text, pgvector.NewVector(item.Embedding), item.Timestamp,
			item.Confidence, item.SourceModel, item.WasUsed, tags,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("insert history: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}
	return ids, nil
}

// RecentHistory returns the newest rows for a show within the retention window.
func (s *PostgresStore) RecentHistory(ctx context.Context, showID string, limit int) ([]models.HistoryItem, error) {
	since := time.Time{}
	if s.retention > 0 {
		since = time.Now().Add(-s.retention)
	}
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, show_id, question, embedding::text, created_at, confidence, source_model, was_used, topic_tags
		 FROM question_history
		 WHERE show_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		showID, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryItem
	for rows.Next() {
		var (
			item models.HistoryItem
			raw  string
			vec  pgvector.Vector
		)
		if err := rows.Scan(&item.ID, &item.ShowID, &item.Text, &raw, &item.Timestamp,
			&item.Confidence, &item.SourceModel, &item.WasUsed, &item.TopicTags); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if err := vec.Parse(raw); err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
		item.Embedding = vec.Slice()
		if len(item.TopicTags) == 0 {
			item.TopicTags = nil
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// MarkHistoryUsed sets the used flag of one row.
func (s *PostgresStore) MarkHistoryUsed(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE question_history SET was_used = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark history used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired deletes history rows older than the retention window.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM question_history WHERE created_at < $1`, time.Now().Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("purge history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LoadProfile reads a host profile.
func (s *PostgresStore) LoadProfile(ctx context.Context, hostID string) (*models.HostProfile, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT profile FROM host_profiles WHERE host_id = $1`, hostID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var profile models.HostProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	profile.EnsureMaps()
	return &profile, nil
}

// SaveProfile upserts a host profile.
func (s *PostgresStore) SaveProfile(ctx context.Context, profile *models.HostProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO host_profiles (host_id, profile, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (host_id) DO UPDATE SET profile = EXCLUDED.profile, updated_at = now()`,
		profile.HostID, data,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
