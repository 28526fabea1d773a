// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RemoteCache is a cache shared between processes.
// Missing keys come back as nil entries, not errors.
type RemoteCache interface {
	GetMany(ctx context.Context, texts []string) ([][]float32, error)
	SetMany(ctx context.Context, texts []string, vectors [][]float32) error
}

// RedisCache stores embeddings in Redis, namespaced by model so that
// switching providers never mixes vector spaces.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis backed cache. A zero ttl keeps entries forever.
func NewRedisCache(client *redis.Client, model string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "cuecard:emb:" + model + ":",
		ttl:    ttl,
	}
}

func (r *RedisCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return r.prefix + hex.EncodeToString(sum[:])
}

// GetMany looks up all texts with a single MGET.
func (r *RedisCache) GetMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = r.key(t)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return out, nil
		}
		return nil, fmt.Errorf("mget embeddings: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var vec []float32
		if err := json.Unmarshal([]byte(s), &vec); err != nil {
			continue // treat corrupt entries as misses
		}
		out[i] = vec
	}
	return out, nil
}

// SetMany writes all vectors in one pipeline.
func (r *RedisCache) SetMany(ctx context.Context, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("set embeddings: %d texts, %d vectors", len(texts), len(vectors))
	}
	if len(texts) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for i, t := range texts {
		data, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		pipe.Set(ctx, r.key(t), data, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline set embeddings: %w", err)
	}
	return nil
}
