// FILE: lixenwraith/lconfig/view_test.go
package lconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPrefixView tests relative access to dotted option groups
func TestPrefixView(t *testing.T) {
	cfg := mustRead(t, `
db.timeout = 5
[app]
db.host = localhost
db.port = 5432
db.pool.size = 10
.convert.db.port = integer
name = app
`)

	db := cfg.Prefix("app", "db")
	assert.Equal(t, db, cfg.Prefix("app", "db."))

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "port", "pool.size", "timeout"}, keys)
	assert.Equal(t, 4, db.Len())

	host, err := db.Get("host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)

	port, err := db.Value("port")
	require.NoError(t, err)
	assert.Equal(t, int64(5432), port)

	timeout, err := db.Get("timeout")
	require.NoError(t, err)
	assert.Equal(t, "5", timeout, "default options are visible")

	pool := db.Prefix("pool")
	size, err := pool.GetAll("size")
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, size)

	assert.True(t, db.Has("host"))
	assert.False(t, db.Has("name"))

	require.NoError(t, db.Set("user", "admin"))
	user, _ := cfg.Get("app", "db.user")
	assert.Equal(t, "admin", user)

	assert.True(t, db.Remove("user"))
	assert.False(t, cfg.HasOption("app", "db.user"))

	all := cfg.Prefix("app", "")
	allKeys, err := all.Keys()
	require.NoError(t, err)
	assert.Contains(t, allKeys, "name")

	_, err = cfg.Prefix("missing", "db").Keys()
	assert.ErrorIs(t, err, ErrMissingSection)
	assert.Equal(t, 0, cfg.Prefix("missing", "db").Len())
}
