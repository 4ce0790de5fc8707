package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gamekit/core/config"
)

// Each test uses its own config type because loaded values are cached per
// type for the process lifetime.

func TestLoad_Defaults(t *testing.T) {
	type defaultsConfig struct {
		Timeout time.Duration `env:"TEST_CFG_DEFAULT_TIMEOUT" envDefault:"10s"`
		Buffer  int           `env:"TEST_CFG_DEFAULT_BUFFER" envDefault:"64"`
	}

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 64, cfg.Buffer)
}

func TestLoad_FromEnvironment(t *testing.T) {
	type envConfig struct {
		Interval time.Duration `env:"TEST_CFG_ENV_INTERVAL" envDefault:"30s"`
		Name     string        `env:"TEST_CFG_ENV_NAME" envDefault:"fallback"`
	}

	t.Setenv("TEST_CFG_ENV_INTERVAL", "5s")
	t.Setenv("TEST_CFG_ENV_NAME", "from-env")

	var cfg envConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, "from-env", cfg.Name)
}

func TestLoad_CachesPerType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_CFG_CACHED_VALUE" envDefault:"initial"`
	}

	t.Setenv("TEST_CFG_CACHED_VALUE", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	require.Equal(t, "first", first.Value)

	// Changing the environment after the first load must not leak through.
	t.Setenv("TEST_CFG_CACHED_VALUE", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value, "second load should return cached value")
}

func TestLoad_RequiredMissing(t *testing.T) {
	type requiredConfig struct {
		Secret string `env:"TEST_CFG_REQUIRED_SECRET,required"`
	}

	var cfg requiredConfig
	require.Error(t, config.Load(&cfg))
}

func TestLoad_NilPointer(t *testing.T) {
	t.Parallel()

	var cfg *struct {
		Value string `env:"TEST_CFG_NIL_VALUE"`
	}
	require.ErrorIs(t, config.Load(cfg), config.ErrNilConfig)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	type panicConfig struct {
		Token string `env:"TEST_CFG_PANIC_TOKEN,required"`
	}

	assert.Panics(t, func() {
		var cfg panicConfig
		config.MustLoad(&cfg)
	})
}
