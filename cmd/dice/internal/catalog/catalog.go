// Package catalog is the demo type catalogue the dice CLI resolves against.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

// ── Types ─────────────────────────────────────────────────────────────────────

type Clock interface{ Now() time.Time }

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Transport interface {
	Send(to, body string) error
}

type SMTPTransport struct {
	Host string
	Port int
}

func NewSMTPTransport(host string, port int) *SMTPTransport {
	return &SMTPTransport{Host: host, Port: port}
}

func (t *SMTPTransport) Send(to, body string) error {
	if t.Host == "" {
		return fmt.Errorf("smtp: no host")
	}
	return nil
}

type Mailer struct {
	Transport Transport
	Log       *zap.Logger
	From      string
	Retries   int
}

func NewMailer(transport Transport, log *zap.Logger, from string) *Mailer {
	return &Mailer{Transport: transport, Log: log, From: from}
}

func (m *Mailer) SetRetries(n int) { m.Retries = n }

type Newsletter struct {
	Mailer      *Mailer
	Clock       Clock
	Subscribers []string
}

func NewNewsletter(mailer *Mailer, clock Clock, subscribers ...string) *Newsletter {
	return &Newsletter{Mailer: mailer, Clock: clock, Subscribers: subscribers}
}

// Describe is a short human summary.
func (n *Newsletter) Describe() string {
	return fmt.Sprintf("newsletter from %s to [%s]", n.Mailer.From, strings.Join(n.Subscribers, ", "))
}

// ── Registration ──────────────────────────────────────────────────────────────

// Registry returns a registry holding the catalogue types.
func Registry() *typeinfo.Registry {
	reg := typeinfo.NewRegistry()
	reg.MustRegister("SystemClock", (*SystemClock)(nil))
	reg.MustRegister("SMTPTransport", NewSMTPTransport,
		typeinfo.Params("host", "port"),
		typeinfo.Default("host", "localhost"),
		typeinfo.Default("port", 25),
	)
	reg.MustRegister("Mailer", NewMailer,
		typeinfo.Params("transport", "log", "from"),
		typeinfo.Default("from", "noreply@localhost"),
	)
	reg.MustRegister("Newsletter", NewNewsletter, typeinfo.Params("mailer", "clock", "subscribers"))
	if err := reg.RegisterInterface("Clock", (*Clock)(nil)); err != nil {
		panic(err)
	}
	if err := reg.RegisterInterface("Transport", (*Transport)(nil)); err != nil {
		panic(err)
	}
	return reg
}

// Provider adds default rules for the catalogue. Types that already have a
// rule, for instance from a rules file, keep it.
type Provider struct {
	container.BaseProvider
}

func (p *Provider) Register(c *container.Container) error {
	defaults := map[string][]container.RuleOption{
		"Clock":     {container.InstanceOf("SystemClock"), container.Shared(true)},
		"Transport": {container.InstanceOf("SMTPTransport"), container.Shared(true)},
		"Mailer":    {container.Shared(true), container.CallMethod("SetRetries", 3)},
	}
	for _, name := range []string{"Clock", "Transport", "Mailer"} {
		if c.HasRule(name) {
			continue
		}
		if err := c.AddRule(name, defaults[name]...); err != nil {
			return err
		}
	}
	return nil
}
