// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/models"
)

// Key layout:
//
//	history:<hex show>:<unix nanos, zero padded>:<id>  -> HistoryItem JSON
//
// Show ids are hex encoded so one id can never be a key prefix of another.
//	history_id:<id>                                    -> history key
//	profile:<host>                                     -> HostProfile JSON
const (
	historyKeyPrefix   = "history:"
	historyIDKeyPrefix = "history_id:"
	profileKeyPrefix   = "profile:"
)

// BadgerStore keeps history and profiles in an embedded BadgerDB.
// History rows expire after the configured retention.
type BadgerStore struct {
	db        *badger.DB
	retention time.Duration
	gcRatio   float64
	logger    zerolog.Logger
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (or creates) the database at cfg.Path.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenBadger(cfg BadgerConfig, retention time.Duration, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := NewBadgerStore(db, retention, logger)
	s.gcRatio = cfg.GCRatio
	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("retention", retention).
		Msg("Badger store opened")
	return s, nil
}

// NewBadgerStore wraps an open database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBadgerStore(db *badger.DB, retention time.Duration, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{
		db:        db,
		retention: retention,
		gcRatio:   0.5,
		logger:    logger.With().Str("component", "badger_store").Logger(),
	}
}

func historyKey(item *models.HistoryItem) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", historyKeyPrefix, hex.EncodeToString([]byte(item.ShowID)), item.Timestamp.UnixNano(), item.ID))
}

func historyShowPrefix(showID string) []byte {
	return []byte(historyKeyPrefix + hex.EncodeToString([]byte(showID)) + ":")
}

func (s *BadgerStore) entry(key, value []byte) *badger.Entry {
	e := badger.NewEntry(key, value)
	if s.retention > 0 {
		e = e.WithTTL(s.retention)
	}
	return e
}

// AppendHistory writes items in one transaction.
func (s *BadgerStore) AppendHistory(ctx context.Context, items []models.HistoryItem) ([]string, error) {
	ids := make([]string, len(items))
	err := s.db.Update(func(txn *badger.Txn) error {
		for i := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := items[i]
			item.ID = uuid.New().String()
			data, err := json.Marshal(&item)
			if err != nil {
				return fmt.Errorf("marshal history item: %w", err)
			}
			key := historyKey(&item)
			if err := txn.SetEntry(s.entry(key, data)); err != nil {
				return fmt.Errorf("set history item: %w", err)
			}
			if err := txn.SetEntry(s.entry([]byte(historyIDKeyPrefix+item.ID), key)); err != nil {
				return fmt.Errorf("set history index: %w", err)
			}
			ids[i] = item.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RecentHistory iterates the show's keys in reverse, so newest rows come first.
func (s *BadgerStore) RecentHistory(ctx context.Context, showID string, limit int) ([]models.HistoryItem, error) {
	var out []models.HistoryItem

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := historyShowPrefix(showID)
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			var item models.HistoryItem
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping unreadable history row")
				continue
			}
			out = append(out, item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

// MarkHistoryUsed rewrites the row with the used flag set, keeping its expiry.
func (s *BadgerStore) MarkHistoryUsed(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		idx, err := txn.Get([]byte(historyIDKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get history index: %w", err)
		}
		key, err := idx.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read history index: %w", err)
		}

		row, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get history item: %w", err)
		}

		var item models.HistoryItem
		if err := row.Value(func(val []byte) error { return json.Unmarshal(val, &item) }); err != nil {
			return fmt.Errorf("unmarshal history item: %w", err)
		}
		if item.WasUsed {
			return nil
		}
		item.WasUsed = true

		data, err := json.Marshal(&item)
		if err != nil {
			return fmt.Errorf("marshal history item: %w", err)
		}
		e := badger.NewEntry(key, data)
		if exp := row.ExpiresAt(); exp > 0 {
			remaining := time.Until(time.Unix(int64(exp), 0)) //nolint:gosec // badger stores unix seconds
			if remaining <= 0 {
				return ErrNotFound
			}
			e = e.WithTTL(remaining)
		}
		return txn.SetEntry(e)
	})
}

// LoadProfile reads a host profile.
func (s *BadgerStore) LoadProfile(_ context.Context, hostID string) (*models.HostProfile, error) {
	var profile models.HostProfile

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + hostID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if err != nil {
		return nil, err
	}
	profile.EnsureMaps()
	return &profile, nil
}

// SaveProfile writes a host profile. Profiles never expire.
func (s *BadgerStore) SaveProfile(_ context.Context, profile *models.HostProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+profile.HostID), data)
	})
}

// Ping checks the database is open.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("store: badger is closed")
	}
	return nil
}

// RunGC reclaims value log space until nothing is left to rewrite.
func (s *BadgerStore) RunGC() error {
	for {
		err := s.db.RunValueLogGC(s.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	s.logger.Info().Msg("Badger store closed")
	return nil
}
