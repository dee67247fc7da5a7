package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-dice/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

var keys = []string{"APP_NAME", "APP_ENV", "APP_DEBUG", "DICE_RULES", "DICE_LOG_LEVEL", "DICE_INSPECT_ADDR"}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "") // restores the original value afterwards
	require.NoError(t, os.Unsetenv(key))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		unsetEnv(t, k)
	}
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := config.Load("testdata/missing.env")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "dice"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Debug", cfg.App.Debug, false},
		{"Container.RulesPath", cfg.Container.RulesPath, ""},
		{"Container.LogLevel", cfg.Container.LogLevel, "info"},
		{"Inspect.Addr", cfg.Inspect.Addr, ":8000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.True(t, cfg.IsLocal())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_NAME", "billing")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DICE_RULES", "rules.yaml")
	t.Setenv("DICE_LOG_LEVEL", "debug")
	t.Setenv("DICE_INSPECT_ADDR", "127.0.0.1:9000")

	cfg := config.Load()

	assert.Equal(t, "billing", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.IsLocal())
	assert.Equal(t, "rules.yaml", cfg.Container.RulesPath)
	assert.Equal(t, "debug", cfg.Container.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.Inspect.Addr)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=from-file\nDICE_LOG_LEVEL=warn\n"), 0o600))

	cfg := config.Load(path)

	assert.Equal(t, "from-file", cfg.App.Name)
	assert.Equal(t, "warn", cfg.Container.LogLevel)
}

func TestLoad_ProcessEnvBeatsDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_NAME", "from-env")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=from-file\n"), 0o600))

	assert.Equal(t, "from-env", config.Load(path).App.Name)
}

func TestLoad_AppDebug(t *testing.T) {
	t.Setenv("APP_DEBUG", "true")
	assert.True(t, config.Load().App.Debug)

	t.Setenv("APP_DEBUG", "not-a-bool")
	assert.False(t, config.Load().App.Debug)
}

// ── Validate ─────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			App:       config.AppConfig{Name: "dice", Env: "testing"},
			Container: config.ContainerConfig{LogLevel: "warn"},
			Inspect:   config.InspectConfig{Addr: ":8080"},
		}
	}
	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"bad level", func(c *config.Config) { c.Container.LogLevel = "trace" }, "DICE_LOG_LEVEL"},
		{"bad env", func(c *config.Config) { c.App.Env = "staging" }, "APP_ENV"},
		{"bad addr", func(c *config.Config) { c.Inspect.Addr = "8080" }, "DICE_INSPECT_ADDR"},
		{"bad name", func(c *config.Config) { c.App.Name = "my app" }, "APP_NAME"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

// ── raw accessors ────────────────────────────────────────────────────────────

func TestGetters(t *testing.T) {
	t.Setenv("DICE_TEST_STR", "x")
	t.Setenv("DICE_TEST_INT", "7")
	t.Setenv("DICE_TEST_BAD_INT", "seven")
	t.Setenv("DICE_TEST_BOOL", "1")

	assert.Equal(t, "x", config.Get("DICE_TEST_STR", "d"))
	assert.Equal(t, "d", config.Get("DICE_TEST_UNSET", "d"))
	assert.Equal(t, 7, config.GetInt("DICE_TEST_INT", 1))
	assert.Equal(t, 1, config.GetInt("DICE_TEST_BAD_INT", 1))
	assert.Equal(t, 1, config.GetInt("DICE_TEST_UNSET", 1))
	assert.True(t, config.GetBool("DICE_TEST_BOOL", false))
	assert.True(t, config.GetBool("DICE_TEST_UNSET", true))
}
