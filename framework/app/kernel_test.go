package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-dice/framework/app"
	"github.com/km-arc/go-dice/framework/config"
	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/providers"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

type Greeter struct {
	Greeting string
	Log      *zap.Logger
}

func newGreeter(greeting string, log *zap.Logger) *Greeter {
	return &Greeter{Greeting: greeting, Log: log}
}

func testConfig(rulesPath string) *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "dice-test", Env: "testing"},
		Container: config.ContainerConfig{RulesPath: rulesPath, LogLevel: "error"},
		Inspect:   config.InspectConfig{Addr: "127.0.0.1:0"},
	}
}

func newApp(t *testing.T, rulesPath string) *app.Application {
	t.Helper()
	reg := typeinfo.NewRegistry()
	reg.MustRegister("Greeter", newGreeter, typeinfo.Params("greeting", "log"))

	a, err := app.NewWithConfig(reg, testConfig(rulesPath))
	require.NoError(t, err)
	return a
}

func TestNew_SeedsFrameworkServices(t *testing.T) {
	a := newApp(t, "")

	assert.Same(t, a.Config(), container.MustMake[*config.Config](a.Container, providers.ConfigType))
	assert.Same(t, a.Log(), container.MustMake[*zap.Logger](a.Container, providers.LoggerType))
	assert.True(t, a.IsTesting())
	assert.False(t, a.IsProduction())
	assert.False(t, a.IsLocal())
	assert.False(t, a.IsDebug())
}

func TestNew_LoadsRulesAndInjectsLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Greeter:\n  shared: true\n  construct_params:\n    greeting: hello\n"), 0o600))

	a := newApp(t, path)
	require.NoError(t, a.Boot())

	g := container.MustMake[*Greeter](a.Container, "Greeter")
	assert.Equal(t, "hello", g.Greeting)
	assert.Same(t, a.Log(), g.Log)
	assert.Same(t, g, a.MustGet("Greeter"))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig("")
	cfg.Container.LogLevel = "loud"

	_, err := app.NewWithConfig(nil, cfg)
	assert.Error(t, err)
}

func TestNew_BadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Greeter:\n  sharde: true\n"), 0o600))

	_, err := app.NewWithConfig(nil, testConfig(path))
	assert.ErrorContains(t, err, "sharde")
}

func TestRouter_ServesInspectRoutes(t *testing.T) {
	a := newApp(t, "")
	router, err := a.Router()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/types", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Greeter")
	assert.Contains(t, rr.Body.String(), providers.RouterType)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := newApp(t, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, a.Providers.Booted())
}

func TestNewLogger(t *testing.T) {
	cfg := testConfig("")
	cfg.Container.LogLevel = "warn"
	log, err := app.NewLogger(cfg)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))

	cfg.Container.LogLevel = "nope"
	_, err = app.NewLogger(cfg)
	assert.Error(t, err)
}
