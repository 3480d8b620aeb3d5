package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestOptions_ApplyEnv(t *testing.T) {
	env := envFrom(map[string]string{
		EnvStore:     "redis",
		EnvRedisAddr: "cache:6379",
		EnvRedisDB:   "2",
		EnvDir:       "/srv/automata",
	})

	t.Run("Fills unset fields", func(t *testing.T) {
		var opts Options
		require.NoError(t, opts.ApplyEnv(env))
		assert.Equal(t, "redis", opts.Store)
		assert.Equal(t, "cache:6379", opts.RedisAddr)
		assert.Equal(t, 2, opts.RedisDB)
		assert.Equal(t, "/srv/automata", opts.Dir)
	})

	t.Run("Flags win", func(t *testing.T) {
		opts := Options{Store: "memory", Dir: "./local"}
		require.NoError(t, opts.ApplyEnv(env))
		assert.Equal(t, "memory", opts.Store)
		assert.Equal(t, "./local", opts.Dir)
	})

	t.Run("Invalid DB", func(t *testing.T) {
		var opts Options
		err := opts.ApplyEnv(envFrom(map[string]string{EnvRedisDB: "zero"}))
		assert.ErrorContains(t, err, EnvRedisDB)
	})
}

func TestOptions_Normalize(t *testing.T) {
	opts := Options{}
	require.NoError(t, opts.Normalize())
	assert.Equal(t, StoreFile, opts.Store)
	assert.Equal(t, FormatAuto, opts.Format)

	opts = Options{Store: " Redis "}
	require.NoError(t, opts.Normalize())
	assert.Equal(t, StoreRedis, opts.Store)
	assert.Equal(t, "localhost:6379", opts.RedisAddr)

	opts = Options{Store: "postgres"}
	assert.ErrorContains(t, opts.Normalize(), "unknown store")

	opts = Options{Format: "toml"}
	assert.ErrorContains(t, opts.Normalize(), "unknown format")
}
