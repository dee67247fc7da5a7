package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-dice/framework/config"
	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/providers"
	"github.com/km-arc/go-dice/framework/routing"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

// Version is the framework version.
const Version = "0.1.0"

// Application is the top-level application container.
// It embeds the Container so user code can call app.AddRule() and app.Get()
// directly, and owns the provider registry and the type registry.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Types     *typeinfo.Registry

	cfg *config.Config
	log *zap.Logger
}

// New loads configuration from envFiles and bootstraps an application over
// types. The framework's own types are added to types.
//
//	reg := typeinfo.NewRegistry()
//	reg.MustRegister("Mailer", NewMailer, typeinfo.Params("host"))
//	application, err := app.New(reg)
func New(types *typeinfo.Registry, envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	return NewWithConfig(types, cfg)
}

// NewWithConfig is New with an already loaded configuration.
func NewWithConfig(types *typeinfo.Registry, cfg *config.Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = typeinfo.NewRegistry()
	}
	if err := providers.RegisterTypes(types); err != nil {
		return nil, err
	}

	c := container.New(types, container.WithLogger(log))
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Types:     types,
		cfg:       cfg,
		log:       log,
	}

	// Framework core providers, in order.
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg, Logger: log},
		&providers.RulesServiceProvider{Path: cfg.Container.RulesPath},
		&providers.InspectServiceProvider{},
	} {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// NewLogger builds a zap logger for cfg: JSON in production, console
// otherwise, at DICE_LOG_LEVEL.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Container.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	if cfg.App.Env == "production" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level

	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log.Named(cfg.App.Name), nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Log returns the application logger.
func (a *Application) Log() *zap.Logger { return a.log }

// Router resolves the inspection router.
func (a *Application) Router() (*routing.Router, error) {
	return container.Make[*routing.Router](a.Container, providers.RouterType)
}

// Run boots the application (if needed) and serves the inspection router on
// DICE_INSPECT_ADDR until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	router, err := a.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Inspect.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("inspect server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", a.cfg.App.Env),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("inspect server stopped")
	return nil
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }
