package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/km-arc/go-dice/framework/http/validation"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Container ContainerConfig
	Inspect   InspectConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

// ContainerConfig configures the resolution engine.
type ContainerConfig struct {
	// RulesPath is a YAML rule file loaded at boot. Empty means none.
	RulesPath string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// InspectConfig configures the HTTP introspection server.
type InspectConfig struct {
	Addr string
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "dice"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
		},
		Container: ContainerConfig{
			RulesPath: env("DICE_RULES", ""),
			LogLevel:  env("DICE_LOG_LEVEL", "info"),
		},
		Inspect: InspectConfig{
			Addr: env("DICE_INSPECT_ADDR", ":8000"),
		},
	}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	return validation.Check(map[string]string{
		"APP_NAME":          c.App.Name,
		"APP_ENV":           c.App.Env,
		"DICE_LOG_LEVEL":    c.Container.LogLevel,
		"DICE_INSPECT_ADDR": c.Inspect.Addr,
	}, validation.Rules{
		"APP_NAME":          "required|alpha_dash",
		"APP_ENV":           "required|in:local,production,testing",
		"DICE_LOG_LEVEL":    "required|in:debug,info,warn,error",
		"DICE_INSPECT_ADDR": "required|addr",
	})
}

// IsLocal reports whether APP_ENV is local.
func (c *Config) IsLocal() bool { return c.App.Env == "local" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
