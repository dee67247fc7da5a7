package container_test

import (
	"errors"
	"time"

	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

// ── stub types ────────────────────────────────────────────────────────────────

type Logger struct{ Prefix string }

func NewLogger() *Logger { return &Logger{Prefix: "log"} }

type Service struct {
	Name   string
	Logger *Logger
}

func NewService(name string, logger *Logger) *Service {
	return &Service{Name: name, Logger: logger}
}

type Clock interface{ Now() time.Time }

type FixedClock struct{ At time.Time }

func (f *FixedClock) Now() time.Time { return f.At }

type Report struct {
	Clock Clock
	Title string
}

func NewReport(clock Clock, title string) *Report { return &Report{Clock: clock, Title: title} }

type Base struct{ Kind string }

type Derived struct {
	Base
	Extra int
}

type Plugins struct{ Names []string }

func NewPlugins(prefix string, names ...string) *Plugins {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return &Plugins{Names: out}
}

type Options struct{ Values map[string]any }

func NewOptions(values map[string]any) *Options { return &Options{Values: values} }

type Mailer struct {
	Host    string
	Retries int
	Logger  *Logger
}

func NewMailer(host string) *Mailer { return &Mailer{Host: host} }

func (m *Mailer) SetRetries(n int)            { m.Retries = n }
func (m *Mailer) SetLogger(l *Logger)         { m.Logger = l }
func (m *Mailer) Fail() error                 { return errors.New("boom") }
func (m *Mailer) Configure(host string) error { m.Host = host; return nil }

type Broken struct{}

func NewBroken() (*Broken, error) { return nil, errors.New("no network") }

type Chicken struct{ Egg *Egg }
type Egg struct{ Chicken *Chicken }

func NewChicken(e *Egg) *Chicken { return &Chicken{Egg: e} }
func NewEgg(c *Chicken) *Egg     { return &Egg{Chicken: c} }

type Tx struct{ ID int }

type Repo struct{ Tx *Tx }

func NewRepo(tx *Tx) *Repo { return &Repo{Tx: tx} }

type UnitOfWork struct {
	Users  *Repo
	Orders *Repo
	Tx     *Tx
}

func NewUnitOfWork(users, orders *Repo, tx *Tx) *UnitOfWork {
	return &UnitOfWork{Users: users, Orders: orders, Tx: tx}
}

type Introspector struct{ C *container.Container }

func NewIntrospector(c *container.Container) *Introspector { return &Introspector{C: c} }

// ── helpers ───────────────────────────────────────────────────────────────────

func newRegistry() *typeinfo.Registry {
	reg := typeinfo.NewRegistry()
	reg.MustRegister("Logger", NewLogger)
	reg.MustRegister("Service", NewService, typeinfo.Params("name", "logger"))
	reg.MustRegister("FixedClock", (*FixedClock)(nil))
	reg.MustRegister("Report", NewReport, typeinfo.Params("clock", "title"), typeinfo.Default("title", "daily"))
	reg.MustRegister("Base", (*Base)(nil))
	reg.MustRegister("Derived", (*Derived)(nil))
	reg.MustRegister("Plugins", NewPlugins, typeinfo.Params("prefix", "names"))
	reg.MustRegister("Options", NewOptions, typeinfo.Params("values"))
	reg.MustRegister("Mailer", NewMailer, typeinfo.Params("host"), typeinfo.Default("host", "localhost"))
	reg.MustRegister("Broken", NewBroken)
	reg.MustRegister("Chicken", NewChicken)
	reg.MustRegister("Egg", NewEgg)
	reg.MustRegister("Tx", (*Tx)(nil))
	reg.MustRegister("Repo", NewRepo)
	reg.MustRegister("UnitOfWork", NewUnitOfWork, typeinfo.Params("users", "orders", "tx"))
	reg.MustRegister("Introspector", NewIntrospector)
	if err := reg.RegisterInterface("Clock", (*Clock)(nil)); err != nil {
		panic(err)
	}
	return reg
}

func newContainer() *container.Container {
	return container.New(newRegistry())
}
