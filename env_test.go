// FILE: lixenwraith/lconfig/env_test.go
package lconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadEnv tests environment overrides of existing options
func TestReadEnv(t *testing.T) {
	newCfg := func(t *testing.T) *Config {
		cfg := New()
		require.NoError(t, cfg.ReadString("debug = false\n.convert.debug = boolean\n[server]\nport = 8080\nlog.level = info\n[my-svc]\nhost = a"))
		return cfg
	}

	t.Run("DefaultTransform", func(t *testing.T) {
		t.Setenv("TEST_SERVER_PORT", "9090")
		t.Setenv("TEST_SERVER_LOG_LEVEL", "debug")
		t.Setenv("TEST_DEBUG", "true")
		t.Setenv("TEST_MY_SVC_HOST", "b")
		t.Setenv("TEST_SERVER_UNKNOWN", "ignored")

		cfg := newCfg(t)
		n := cfg.ReadEnv("TEST_", nil)
		assert.Equal(t, 4, n)

		port, _ := cfg.Int64("server", "port")
		assert.Equal(t, int64(9090), port)
		raw, _ := cfg.GetRaw("server", "port")
		assert.Equal(t, []string{"8080", "9090"}, raw)

		level, _ := cfg.Get("server", "log.level")
		assert.Equal(t, "debug", level)
		debug, _ := cfg.Bool("", "debug")
		assert.True(t, debug)
		host, _ := cfg.Get("my-svc", "host")
		assert.Equal(t, "b", host)
		assert.False(t, cfg.HasOption("server", "unknown"))
	})

	t.Run("ReservedKeysNotOverridden", func(t *testing.T) {
		t.Setenv("TEST__CONVERT_DEBUG", "integer")
		cfg := newCfg(t)
		assert.Equal(t, 0, cfg.ReadEnv("TEST_", nil))
	})

	t.Run("CustomTransform", func(t *testing.T) {
		t.Setenv("port_in_server", "7070")
		cfg := newCfg(t)
		n := cfg.ReadEnv("", func(section, option string) string {
			return strings.ReplaceAll(option, ".", "_") + "_in_" + section
		})
		assert.Equal(t, 1, n)
		port, _ := cfg.Get("server", "port")
		assert.Equal(t, "7070", port)
	})

	t.Run("EmptyValueApplies", func(t *testing.T) {
		t.Setenv("TEST_SERVER_PORT", "")
		cfg := newCfg(t)
		assert.Equal(t, 1, cfg.ReadEnv("TEST_", nil))
		port, _ := cfg.Get("server", "port")
		assert.Equal(t, "", port)
	})
}

// TestDefaultEnvTransform tests variable naming
func TestDefaultEnvTransform(t *testing.T) {
	transform := defaultEnvTransform("APP_")
	assert.Equal(t, "APP_PORT", transform(DefaultSection, "port"))
	assert.Equal(t, "APP_SERVER_PORT", transform("server", "port"))
	assert.Equal(t, "APP_DB_POOL_SIZE", transform("db", "pool.size"))
	assert.Equal(t, "APP_MY_SECTION_K", transform("my section", "k"))
}
