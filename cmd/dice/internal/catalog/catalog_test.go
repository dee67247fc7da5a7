package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-dice/cmd/dice/internal/catalog"
	"github.com/km-arc/go-dice/framework/container"
)

func newContainer(t *testing.T) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	reg := catalog.Registry()
	reg.MustRegister("Log", (*zap.Logger)(nil))

	c := container.New(reg)
	require.NoError(t, c.AddInstances(map[string]any{"Log": zap.NewNop()}))
	return c, container.NewProviderRegistry(c)
}

func TestProvider_DefaultRules(t *testing.T) {
	c, registry := newContainer(t)
	require.NoError(t, registry.Register(&catalog.Provider{}))

	n := container.MustMake[*catalog.Newsletter](c, "Newsletter")
	assert.Empty(t, n.Subscribers)
	assert.Equal(t, 3, n.Mailer.Retries)
	assert.IsType(t, &catalog.SMTPTransport{}, n.Mailer.Transport)
	assert.IsType(t, &catalog.SystemClock{}, n.Clock)
	assert.Same(t, n.Mailer, c.MustGet("Mailer"))
	assert.Equal(t, "newsletter from noreply@localhost to []", n.Describe())
}

func TestProvider_KeepsExistingRules(t *testing.T) {
	c, registry := newContainer(t)
	require.NoError(t, c.AddRule("Mailer", container.ConstructParams(container.Args{"from": "team@example.com"})))
	require.NoError(t, registry.Register(&catalog.Provider{}))

	m := container.MustMake[*catalog.Mailer](c, "Mailer")
	assert.Equal(t, "team@example.com", m.From)
	assert.Zero(t, m.Retries)
	assert.NotSame(t, m, c.MustGet("Mailer"))
}

func TestNewsletter_Subscribers(t *testing.T) {
	c, registry := newContainer(t)
	require.NoError(t, registry.Register(&catalog.Provider{}))

	n := container.MustMake[*catalog.Newsletter](c, "Newsletter",
		container.WithArgs(container.Args{"subscribers": []any{"a@x", "b@x"}}))
	assert.Equal(t, "newsletter from noreply@localhost to [a@x, b@x]", n.Describe())
}

func TestSMTPTransport_Send(t *testing.T) {
	assert.NoError(t, catalog.NewSMTPTransport("localhost", 25).Send("a@x", "hi"))
	assert.Error(t, catalog.NewSMTPTransport("", 25).Send("a@x", "hi"))
}
