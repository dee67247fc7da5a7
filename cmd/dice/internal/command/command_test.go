package command_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-dice/cmd/dice/internal/command"
	"github.com/km-arc/go-dice/framework/app"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "testing")
	t.Setenv("DICE_RULES", "")

	buf := new(bytes.Buffer)
	cli := command.NewCLI(buf, buf)
	root := command.NewRootCommand(cli)
	command.AddCommands(root, cli)
	root.SetArgs(append(args, "--log-level", "error"))

	err := root.Execute()
	return buf.String(), err
}

func writeRules(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dice "+app.Version)
}

// ── lint ──────────────────────────────────────────────────────────────────────

func TestLint_Valid(t *testing.T) {
	path := writeRules(t, `
Transport:
  instance_of: SMTPTransport
SMTPTransport:
  construct_params:
    host: mail.internal
Mailer:
  shared: true
  call:
    - method: SetRetries
      args: [5]
`)
	out, err := run(t, "lint", "-f", path, "--resolve")
	require.NoError(t, err, out)
	assert.Contains(t, out, "3 rules")
}

func TestLint_Problems(t *testing.T) {
	path := writeRules(t, `
Unknown:
  shared: true
Transport:
  instance_of: Nope
Mailer:
  substitutions:
    Transport: Missing
  call:
    - method: Explode
`)
	out, err := run(t, "lint", "-f", path)
	require.ErrorIs(t, err, command.ErrLintFailed)
	assert.Contains(t, out, "Unknown: unknown type")
	assert.Contains(t, out, "instance_of Nope: unknown type")
	assert.Contains(t, out, "substitution Transport: unknown type Missing")
	assert.Contains(t, out, "call Explode: no such method")
	assert.Contains(t, out, "4 problems")
}

func TestLint_ResolveFailure(t *testing.T) {
	path := writeRules(t, `
SMTPTransport:
  construct_params:
    port: many
`)
	out, err := run(t, "lint", "-f", path, "--resolve")
	require.ErrorIs(t, err, command.ErrLintFailed)
	assert.Contains(t, out, "type_mismatch")
}

func TestLint_ParseError(t *testing.T) {
	path := writeRules(t, "Mailer:\n  sharde: true\n")
	out, err := run(t, "lint", "-f", path)
	require.ErrorIs(t, err, command.ErrLintFailed)
	assert.Contains(t, out, "sharde")
}

func TestLint_RequiresFile(t *testing.T) {
	_, err := run(t, "lint")
	assert.Error(t, err)
}

// ── rules ─────────────────────────────────────────────────────────────────────

func TestRules_DumpsAll(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "Mailer:")
	assert.Contains(t, out, "instance_of: SMTPTransport")
	assert.Contains(t, out, "method: SetRetries")
}

func TestRules_RuleFileOverridesDefaults(t *testing.T) {
	path := writeRules(t, "Transport:\n  instance_of: SMTPTransport\n  shared: false\n")
	out, err := run(t, "rules", "Transport", "Newsletter", "-r", path)
	require.NoError(t, err)
	assert.Contains(t, out, `# Transport (rule "Transport")`)
	assert.Contains(t, out, "shared: false")
	assert.Contains(t, out, `# Newsletter (rule "*")`)
}

// ── resolve ───────────────────────────────────────────────────────────────────

func TestResolve_Graph(t *testing.T) {
	out, err := run(t, "resolve", "Newsletter")
	require.NoError(t, err, out)
	assert.Contains(t, out, "*catalog.Newsletter")
}

func TestResolve_Args(t *testing.T) {
	out, err := run(t, "resolve", "SMTPTransport", "--arg", "host=mail.internal", "--arg", "port=2525")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Host:mail.internal Port:2525")
}

func TestResolve_Errors(t *testing.T) {
	out, err := run(t, "resolve", "Nope")
	require.Error(t, err)
	assert.Contains(t, out, "not_found")

	out, err = run(t, "resolve", "SMTPTransport", "--arg", "port=many")
	require.Error(t, err)
	assert.Contains(t, out, "type_mismatch")
	assert.Contains(t, out, "param:  port")

	_, err = run(t, "resolve")
	assert.EqualError(t, err, "requires exactly 1 argument")
}

// ── serve ─────────────────────────────────────────────────────────────────────

func TestServe_ListsRoutesAndStops(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("DICE_RULES", "")

	buf := new(bytes.Buffer)
	cli := command.NewCLI(buf, buf)
	cli.LogLevel = "error"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, command.RunServe(ctx, cli, command.ServeOptions{Addr: "127.0.0.1:0"}))
	assert.Contains(t, buf.String(), "127.0.0.1:0")
	assert.Contains(t, buf.String(), "/resolve/{name}")
	assert.Contains(t, buf.String(), "/types")
}
