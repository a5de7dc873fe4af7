package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crosspy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: 1\n"), 0o600))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(_ context.Context, cfg *Config) error {
		reloaded <- cfg
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("jobs: 7\n"), 0o600))

	select {
	case cfg := <-reloaded:
		require.Equal(t, 7, cfg.Jobs)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config write")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherKeepsRunningOnInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crosspy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: 1\n"), 0o600))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(_ context.Context, cfg *Config) error {
		reloaded <- cfg
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("toolchain:\n  compiler: icc\n"), 0o600))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("jobs: 2\n"), 0o600))

	select {
	case cfg := <-reloaded:
		require.Equal(t, 2, cfg.Jobs)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher stopped after invalid config")
	}
}
