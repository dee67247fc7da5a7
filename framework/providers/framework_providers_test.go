package providers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-dice/framework/config"
	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/providers"
	"github.com/km-arc/go-dice/framework/routing"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

type Cache struct{ Size int }

func setup(t *testing.T) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	reg := typeinfo.NewRegistry()
	require.NoError(t, providers.RegisterTypes(reg))
	reg.MustRegister("Cache", func(size int) *Cache { return &Cache{Size: size} }, typeinfo.Params("size"))

	c := container.New(reg)
	return c, container.NewProviderRegistry(c)
}

func TestRegisterTypes_Conflict(t *testing.T) {
	reg := typeinfo.NewRegistry()
	reg.MustRegister("MyLogger", (*zap.Logger)(nil))
	assert.ErrorIs(t, providers.RegisterTypes(reg), typeinfo.ErrConflictingRegistration)
}

func TestConfigServiceProvider(t *testing.T) {
	c, registry := setup(t)
	cfg := &config.Config{App: config.AppConfig{Name: "dice"}}
	log := zap.NewNop()

	require.NoError(t, registry.Register(&providers.ConfigServiceProvider{Config: cfg, Logger: log}))

	assert.Same(t, cfg, container.MustMake[*config.Config](c, providers.ConfigType))
	assert.Same(t, log, container.MustMake[*zap.Logger](c, providers.LoggerType))
}

func TestConfigServiceProvider_RequiresConfig(t *testing.T) {
	_, registry := setup(t)
	assert.Error(t, registry.Register(&providers.ConfigServiceProvider{}))
}

func TestRulesServiceProvider(t *testing.T) {
	c, registry := setup(t)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Cache:\n  shared: true\n  construct_params:\n    size: 64\n"), 0o600))

	require.NoError(t, registry.Register(&providers.RulesServiceProvider{Path: path}))

	cache := container.MustMake[*Cache](c, "Cache")
	assert.Equal(t, 64, cache.Size)
	assert.Same(t, cache, c.MustGet("Cache"))
}

func TestRulesServiceProvider_EmptyPathIsNoop(t *testing.T) {
	c, registry := setup(t)
	require.NoError(t, registry.Register(&providers.RulesServiceProvider{}))
	assert.Equal(t, []string{container.Wildcard}, c.RuleNames())
}

func TestRulesServiceProvider_MissingFile(t *testing.T) {
	_, registry := setup(t)
	err := registry.Register(&providers.RulesServiceProvider{Path: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestInspectServiceProvider_Deferred(t *testing.T) {
	c, registry := setup(t)
	require.NoError(t, registry.Register(&providers.ConfigServiceProvider{Config: &config.Config{}}))
	require.NoError(t, registry.Register(&providers.InspectServiceProvider{}))
	require.NoError(t, registry.Boot())

	assert.False(t, c.HasRule(providers.RouterType))

	router := container.MustMake[*routing.Router](c, providers.RouterType)
	assert.True(t, c.HasRule(providers.RouterType))
	assert.Same(t, router, c.MustGet(providers.RouterType))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/instances", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dice.router")
}
