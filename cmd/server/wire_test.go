// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/cuecard/internal/config"
	"github.com/tomtom215/cuecard/internal/logging"
	"github.com/tomtom215/cuecard/internal/supervisor"
)

func loadTestConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("EMBEDDING_API_KEY", "sk-test")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("INSIGHTS_PATH", filepath.Join(dir, "insights.duckdb"))
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func newTestTree(t *testing.T) *supervisor.SupervisorTree {
	t.Helper()
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	return tree
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"memory store without insights", map[string]string{"INSIGHTS_ENABLED": "false"}},
		{"badger store with insights", map[string]string{"STORE_BACKEND": "badger", "BADGER_IN_MEMORY": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t, tt.env)
			app, err := build(context.Background(), cfg, newTestTree(t))
			if err != nil {
				t.Fatalf("build() error = %v", err)
			}
			if app.sessions == nil {
				t.Fatal("build() returned no session manager")
			}
			if got := len(app.sessions.ActiveShows()); got != 0 {
				t.Errorf("ActiveShows() = %d, want 0", got)
			}
			app.close()
		})
	}
}

func TestBuild_InvalidEventsBackend(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{"INSIGHTS_ENABLED": "false"})
	cfg.Events.Backend = "carrier-pigeon"

	app, err := build(context.Background(), cfg, newTestTree(t))
	if err == nil {
		app.close()
		t.Fatal("build() error = nil, want error for unknown events backend")
	}
}

func TestNewGateway_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadTestConfig(t, map[string]string{
		"INSIGHTS_ENABLED": "false",
		"REDIS_ENABLED":    "true",
		"REDIS_ADDR":       mr.Addr(),
	})

	gateway, client, err := newGateway(context.Background(), cfg, logging.Logger())
	if err != nil {
		t.Fatalf("newGateway() error = %v", err)
	}
	if gateway == nil || client == nil {
		t.Fatal("newGateway() should return a gateway and a redis client")
	}
	defer client.Close()

	if err := (redisPinger{client}).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestRedisPinger_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	if err := (redisPinger{client}).Ping(context.Background()); err == nil {
		t.Error("Ping() error = nil, want error after server closed")
	}
}
