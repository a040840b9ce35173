// FILE: lixenwraith/lconfig/include_test.go
package lconfig

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// TestReadFileWithIncludes tests include ordering and resolution
func TestReadFileWithIncludes(t *testing.T) {
	t.Run("OrderAndPrecedence", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"main.conf":       "include = first.conf\n= sub/second.conf\n[app]\nport = 3\n",
			"first.conf":      "[app]\nport = 1\nname = first\n",
			"sub/second.conf": "[app]\nport = 2\nname = second\nextra = yes\n",
		})

		cfg := New()
		require.NoError(t, cfg.ReadFileWithIncludes(filepath.Join(dir, "main.conf"), DefaultIncludeOptions()))

		raw, _ := cfg.GetRaw("app", "port")
		assert.Equal(t, []string{"1", "2", "3"}, raw, "includes in list order, including file last")
		name, _ := cfg.Get("app", "name")
		assert.Equal(t, "second", name)
		extra, _ := cfg.Get("app", "extra")
		assert.Equal(t, "yes", extra)
	})

	t.Run("MissingSkippedSilently", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"main.conf": "include = nope.conf\n= real.conf\nk = main\n",
			"real.conf": "k = real\n",
		})

		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
		cfg := New(WithLogger(logger))
		require.NoError(t, cfg.ReadFileWithIncludes(filepath.Join(dir, "main.conf"), IncludeOptions{}))

		raw, _ := cfg.GetRaw("", "k")
		assert.Equal(t, []string{"real", "main"}, raw)
		assert.Contains(t, logs.String(), "skipping missing include")
	})

	t.Run("NestedRelativeToIncluder", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"main.conf":     "include = conf.d/a.conf\n",
			"conf.d/a.conf": "include = b.conf\nk = a\n",
			"conf.d/b.conf": "k = b\n",
		})
		cfg := New()
		require.NoError(t, cfg.ReadFileWithIncludes(filepath.Join(dir, "main.conf"), DefaultIncludeOptions()))
		raw, _ := cfg.GetRaw("", "k")
		assert.Equal(t, []string{"b", "a"}, raw)
	})

	t.Run("CycleTerminates", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"a.conf": "include = b.conf\nk = a\n",
			"b.conf": "include = a.conf\nk = b\n",
		})
		cfg := New()
		require.NoError(t, cfg.ReadFileWithIncludes(filepath.Join(dir, "a.conf"), DefaultIncludeOptions()))
		raw, _ := cfg.GetRaw("", "k")
		assert.Equal(t, []string{"b", "a"}, raw)
	})

	t.Run("CustomOptionAndMixedFormats", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"main.conf": "[meta]\nfiles = base.toml\n    # commented.conf\n[app]\nk = main\n",
			"base.toml": "[app]\nk = \"toml\"\nn = 5\n",
		})
		cfg := New()
		opts := IncludeOptions{Section: "meta", Option: "files"}
		require.NoError(t, cfg.ReadFileWithIncludes(filepath.Join(dir, "main.conf"), opts))
		raw, _ := cfg.GetRaw("app", "k")
		assert.Equal(t, []string{"toml", "main"}, raw)
		n, _ := cfg.Int64("app", "n")
		assert.Equal(t, int64(5), n)
	})

	t.Run("IncludeParseErrorFails", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"main.conf": "include = bad.conf\nk = main\n",
			"bad.conf":  "not valid\n",
		})
		cfg := New()
		err := cfg.ReadFileWithIncludes(filepath.Join(dir, "main.conf"), DefaultIncludeOptions())
		assert.ErrorIs(t, err, ErrInvalidLine)
		assert.False(t, cfg.HasOption("", "k"))
	})

	t.Run("RootMissing", func(t *testing.T) {
		err := New().ReadFileWithIncludes(filepath.Join(t.TempDir(), "none.conf"), DefaultIncludeOptions())
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})
}

// TestConfigFiles tests the record of files a Config was read from
func TestConfigFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.conf":  "include = a.conf\n= gone.conf\n= a.conf\nk = main\n",
		"a.conf":     "k = a\n",
		"other.toml": "k = \"other\"\n",
	})
	main := filepath.Join(dir, "main.conf")
	other := filepath.Join(dir, "other.toml")

	cfg := New()
	require.NoError(t, cfg.ReadFileWithIncludes(main, DefaultIncludeOptions()))
	require.NoError(t, cfg.ReadFile(other))
	require.NoError(t, cfg.ReadString("k = text"))

	want := []string{filepath.Join(dir, "a.conf"), filepath.Join(dir, "gone.conf"), main, other}
	assert.Equal(t, want, cfg.Files())
	assert.Equal(t, want, cfg.Clone().Files())

	failed := New()
	assert.Error(t, failed.ReadFile(filepath.Join(dir, "absent.conf")))
	assert.Empty(t, failed.Files())
}
