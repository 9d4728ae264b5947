// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"lookout/internal/config"
	"lookout/internal/store"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory so tests never touch real user paths.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	defaults := config.Default()
	cfg := &defaults
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.ChunkDir = filepath.Join(root, "chunks")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.LLM.APIKey = "test-key"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	return cfg
}

// MustOpenStore opens a store against the test configuration and registers
// cleanup.
func MustOpenStore(t *testing.T, cfg *config.Config) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}
