// FILE: lixenwraith/lconfig/watch_test.go
package lconfig

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastWatchOptions() WatchOptions {
	opts := DefaultWatchOptions()
	opts.PollInterval = MinPollInterval
	opts.Debounce = 50 * time.Millisecond
	return opts
}

// settleTime is long enough for a poll, the debounce and a rebuild.
func settleTime(opts WatchOptions) time.Duration {
	return opts.PollInterval*2 + opts.Debounce*debounceSettleMultiplier + time.Second
}

// waitFor reads notifications until one satisfies match or the timeout fires.
func waitFor(t *testing.T, ch <-chan string, timeout time.Duration, match func(string) bool) string {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case key, ok := <-ch:
			require.True(t, ok, "channel closed before expected notification")
			if match(key) {
				return key
			}
		case <-deadline:
			t.Fatal("timeout waiting for notification")
			return ""
		}
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// TestAutoUpdate tests automatic reload on file change
func TestAutoUpdate(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.conf")
	writeConfig(t, configPath, "[server]\nport = 8080\nhost = localhost\n")

	opts := fastWatchOptions()
	w, err := NewWatcher(NewBuilder().WithFile(configPath), opts)
	require.NoError(t, err)
	initial := w.Config()
	port, _ := initial.Int64("server", "port")
	assert.Equal(t, int64(8080), port)

	w.Start()
	defer w.Stop()
	assert.True(t, w.IsWatching())

	changes := w.Subscribe()
	assert.Equal(t, 1, w.WatcherCount())

	// Ensure a distinct modification time on coarse filesystems
	time.Sleep(10 * time.Millisecond)
	writeConfig(t, configPath, "[server]\nport = 9090\nhost = localhost\n")

	key := waitFor(t, changes, settleTime(opts), func(k string) bool {
		return k == "server:port"
	})
	assert.Equal(t, "server:port", key)

	updated := w.Config()
	assert.NotSame(t, initial, updated)
	port, _ = updated.Int64("server", "port")
	assert.Equal(t, int64(9090), port)

	oldPort, _ := initial.Int64("server", "port")
	assert.Equal(t, int64(8080), oldPort, "published snapshots are never mutated")
}

// TestWatcherReload tests manual reloads and change detection
func TestWatcherReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.conf")
	writeConfig(t, configPath, "root = /a\n[app]\ndir = ${root}/x\nkeep = 1\ngone = yes\n")

	w, err := NewWatcher(NewBuilder().WithFile(configPath), fastWatchOptions())
	require.NoError(t, err)

	changed, err := w.Reload(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changed)

	writeConfig(t, configPath, "root = /b\n[app]\ndir = ${root}/x\nkeep = 1\nnew = here\n")
	changed, err = w.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"app:dir", "app:gone", "app:new", "default:root"}, changed,
		"interpolated values count as changed")

	writeConfig(t, configPath, "broken line\n")
	_, err = w.Reload(context.Background())
	assert.ErrorIs(t, err, ErrInvalidLine)
	dir, _ := w.Config().Get("app", "dir")
	assert.Equal(t, "/b/x", dir, "failed reload keeps the last good snapshot")
}

// TestWatcherBuilderIsolation tests that the watcher keeps its own builder copy
func TestWatcherBuilderIsolation(t *testing.T) {
	b := NewBuilder().WithString("k = 1")
	w, err := NewWatcher(b, fastWatchOptions())
	require.NoError(t, err)

	b.WithString("k = 2")
	_, err = w.Reload(context.Background())
	require.NoError(t, err)
	v, _ := w.Config().Get("", "k")
	assert.Equal(t, "1", v)

	_, err = NewWatcher(NewBuilder().WithFile(filepath.Join(t.TempDir(), "absent.conf")), fastWatchOptions())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

// TestWatchFileDeleted tests notification on file deletion
func TestWatchFileDeleted(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.conf")
	writeConfig(t, configPath, "k = v\n")

	opts := fastWatchOptions()
	w, err := NewWatcher(NewBuilder().WithFile(configPath), opts)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	changes := w.Subscribe()
	require.NoError(t, os.Remove(configPath))

	key := waitFor(t, changes, settleTime(opts), func(k string) bool {
		return strings.HasPrefix(k, NotifyFileDeleted)
	})
	assert.Equal(t, NotifyFileDeleted+":"+configPath, key)

	v, _ := w.Config().Get("", "k")
	assert.Equal(t, "v", v, "deletion keeps the current snapshot")
}

// TestWatchPermissionChange tests permission change detection
func TestWatchPermissionChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.conf")
	writeConfig(t, configPath, "k = v\n")
	require.NoError(t, os.Chmod(configPath, 0600))

	opts := fastWatchOptions()
	w, err := NewWatcher(NewBuilder().WithFile(configPath), opts)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	changes := w.Subscribe()
	require.NoError(t, os.Chmod(configPath, 0666))

	key := waitFor(t, changes, settleTime(opts), func(k string) bool {
		return strings.HasPrefix(k, NotifyPermissionsChanged)
	})
	assert.Equal(t, NotifyPermissionsChanged+":"+configPath, key)
}

// TestWatchReloadError tests notification of a failed background reload
func TestWatchReloadError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.conf")
	writeConfig(t, configPath, "k = v\n")

	opts := fastWatchOptions()
	w, err := NewWatcher(NewBuilder().WithFile(configPath), opts)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	changes := w.Subscribe()
	time.Sleep(10 * time.Millisecond)
	writeConfig(t, configPath, "k = v\nnot valid\n")

	key := waitFor(t, changes, settleTime(opts), func(k string) bool {
		return strings.HasPrefix(k, NotifyReloadError)
	})
	assert.Contains(t, key, "invalid line")
}

// TestMaxWatchers tests the subscriber limit and shutdown behavior
func TestMaxWatchers(t *testing.T) {
	opts := fastWatchOptions()
	opts.MaxWatchers = 3
	w, err := NewWatcher(NewBuilder().WithString("k = v"), opts)
	require.NoError(t, err)

	stopped := w.Subscribe()
	_, ok := <-stopped
	assert.False(t, ok, "subscribing before Start yields a closed channel")

	w.Start()
	w.Start()

	channels := make([]<-chan string, 0, opts.MaxWatchers)
	for range opts.MaxWatchers {
		channels = append(channels, w.Subscribe())
	}
	assert.Equal(t, opts.MaxWatchers, w.WatcherCount())

	extra := w.Subscribe()
	_, ok = <-extra
	assert.False(t, ok, "channel beyond the limit is closed")
	assert.Equal(t, opts.MaxWatchers, w.WatcherCount())

	w.Stop()
	assert.False(t, w.IsWatching())
	assert.Equal(t, 0, w.WatcherCount())
	for _, ch := range channels {
		select {
		case _, ok := <-ch:
			assert.False(t, ok, "Stop closes subscriber channels")
		case <-time.After(time.Second):
			t.Fatal("subscriber channel not closed")
		}
	}
}

// TestWatchIncludedFiles tests reloads triggered by included files
func TestWatchIncludedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	mainPath := filepath.Join(tmpDir, "main.conf")
	sharedPath := filepath.Join(tmpDir, "shared.conf")
	laterPath := filepath.Join(tmpDir, "later.conf")
	writeFiles(t, tmpDir, map[string]string{
		"main.conf":   "include = shared.conf\n= later.conf\n[app]\nname = main\n",
		"shared.conf": "[app]\nlevel = info\n",
	})

	opts := fastWatchOptions()
	b := NewBuilder().WithFile(mainPath).WithIncludes(DefaultIncludeOptions())
	w, err := NewWatcher(b, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{sharedPath, laterPath, mainPath}, w.Config().Files())

	w.Start()
	defer w.Stop()
	changes := w.Subscribe()

	time.Sleep(10 * time.Millisecond)
	writeConfig(t, sharedPath, "[app]\nlevel = debug\n")
	waitFor(t, changes, settleTime(opts), func(k string) bool {
		return k == "app:level"
	})
	level, _ := w.Config().Get("app", "level")
	assert.Equal(t, "debug", level)

	writeConfig(t, laterPath, "[app]\nextra = yes\n")
	waitFor(t, changes, settleTime(opts), func(k string) bool {
		return k == "app:extra"
	})
	assert.True(t, w.Config().HasOption("app", "extra"), "a missing include is watched for creation")
}

// TestWatchRestart tests Start right after Stop
func TestWatchRestart(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.conf")
	writeConfig(t, configPath, "k = 1\n")

	opts := fastWatchOptions()
	w, err := NewWatcher(NewBuilder().WithFile(configPath), opts)
	require.NoError(t, err)

	for range 3 {
		w.Start()
		w.Stop()
		w.Start()
		assert.True(t, w.IsWatching())
		time.Sleep(opts.PollInterval)
		assert.True(t, w.IsWatching(), "the old loop must not clear the new loop's state")
	}
	defer w.Stop()

	changes := w.Subscribe()
	writeConfig(t, configPath, "k = 22\n")
	waitFor(t, changes, settleTime(opts), func(k string) bool {
		return k == "default:k"
	})
}

// TestDiffSnapshots tests change key computation
func TestDiffSnapshots(t *testing.T) {
	old := map[string][]string{
		"a:same":    {"1"},
		"a:changed": {"1"},
		"a:longer":  {"1"},
		"b:removed": {"x"},
	}
	next := map[string][]string{
		"a:same":    {"1"},
		"a:changed": {"2"},
		"a:longer":  {"1", "2"},
		"c:added":   {"y"},
	}
	assert.Equal(t, []string{"a:changed", "a:longer", "b:removed", "c:added"}, diffSnapshots(old, next))
	assert.Empty(t, diffSnapshots(old, old))
	assert.Equal(t, []string{"k:v"}, diffSnapshots(nil, map[string][]string{"k:v": {""}}))
}

// TestDebounce tests that rapid writes collapse into one reload
func TestDebounce(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.conf")
	writeConfig(t, configPath, "counter = 0\n")

	opts := fastWatchOptions()
	opts.Debounce = 300 * time.Millisecond
	w, err := NewWatcher(NewBuilder().WithFile(configPath), opts)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	changes := w.Subscribe()
	for i := 1; i <= 5; i++ {
		writeConfig(t, configPath, "counter = "+strings.Repeat("1", i)+"\n")
		time.Sleep(20 * time.Millisecond)
	}

	waitFor(t, changes, settleTime(opts), func(k string) bool {
		return k == "default:counter"
	})
	v, _ := w.Config().Get("", "counter")
	assert.Equal(t, "11111", v, "final state is published")

	select {
	case key := <-changes:
		t.Errorf("unexpected extra notification %q", key)
	case <-time.After(opts.Debounce * debounceSettleMultiplier):
	}
}

// BenchmarkWatchOverhead measures snapshot reads under an active watcher
func BenchmarkWatchOverhead(b *testing.B) {
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "bench.conf")
	var sb strings.Builder
	sb.WriteString("[bench]\n")
	for i := range 100 {
		sb.WriteString("key" + strings.Repeat("x", i%10) + " = value\n")
	}
	if err := os.WriteFile(configPath, []byte(sb.String()), 0644); err != nil {
		b.Fatal(err)
	}

	w, err := NewWatcher(NewBuilder().WithFile(configPath), DefaultWatchOptions())
	if err != nil {
		b.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = w.Config().Get("bench", "key")
	}
}
