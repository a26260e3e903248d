package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/userapi/internal/observability"
)

const watchedConfigYAML = `
database:
  dsn: postgres://localhost/app
auth:
  secret: secret
password:
  pepper: pepper
logging:
  level: %s
`

func writeWatchedConfig(t *testing.T, path, level string) {
	t.Helper()
	content := []byte(fmt.Sprintf(watchedConfigYAML, level))
	require.NoError(t, os.WriteFile(path, content, 0o600))
}

func TestNewWatcher_WithOptions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "userapi.yaml")
	logger := observability.NopLogger()

	w, err := NewWatcher(path, func(*Config) {},
		WithDebounceDelay(200*time.Millisecond),
		WithLogger(logger),
		WithErrorCallback(func(error) {}),
	)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	assert.Equal(t, path, w.path)
	assert.Equal(t, 200*time.Millisecond, w.debounceDelay)
	assert.Equal(t, logger, w.logger)
	assert.NotNil(t, w.onError)
	assert.Nil(t, w.Current())
}

func TestWatcher_Start_InvalidConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "userapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	assert.Error(t, w.Start(context.Background()))
	assert.Nil(t, w.Current())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	// Not parallel: relies on file system notifications.
	path := filepath.Join(t.TempDir(), "userapi.yaml")
	writeWatchedConfig(t, path, "info")

	var reloaded atomic.Pointer[Config]
	w, err := NewWatcher(path, func(cfg *Config) { reloaded.Store(cfg) },
		WithDebounceDelay(10*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	require.NotNil(t, w.Current())
	assert.Equal(t, "info", w.Current().Logging.Level)

	writeWatchedConfig(t, path, "debug")

	require.Eventually(t, func() bool {
		cfg := reloaded.Load()
		return cfg != nil && cfg.Logging.Level == "debug"
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, "debug", w.Current().Logging.Level)
}

func TestWatcher_InvalidReloadKeepsPrevious(t *testing.T) {
	// Not parallel: relies on file system notifications.
	path := filepath.Join(t.TempDir(), "userapi.yaml")
	writeWatchedConfig(t, path, "info")

	var failures atomic.Int32
	var reloads atomic.Int32
	w, err := NewWatcher(path, func(*Config) { reloads.Add(1) },
		WithDebounceDelay(10*time.Millisecond),
		WithErrorCallback(func(error) { failures.Add(1) }),
	)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	writeWatchedConfig(t, path, "chatty")

	require.Eventually(t, func() bool {
		return failures.Load() > 0
	}, 5*time.Second, 20*time.Millisecond)

	assert.Zero(t, reloads.Load())
	assert.Equal(t, "info", w.Current().Logging.Level)
}

func TestWatcher_ForceReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "userapi.yaml")
	writeWatchedConfig(t, path, "warn")

	var calls atomic.Int32
	w, err := NewWatcher(path, func(*Config) { calls.Add(1) })
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	require.NoError(t, w.ForceReload())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "warn", w.Current().Logging.Level)
}
