package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/bindstore/pkg/store"
)

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: 1\nuser/name: ada\n"), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--env-file", ""))
	err := cmd.Execute()
	return out.String(), err
}

func TestKeysCommand(t *testing.T) {
	out, err := execute(t, "keys", "--seed", writeSeed(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"count", "1"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"user/name", "ada"}, strings.Fields(lines[1]))
}

func TestKeysCommandMatch(t *testing.T) {
	out, err := execute(t, "keys", "--seed", writeSeed(t), "--match", "user/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"user/name", "ada"}, strings.Fields(out))
}

func TestKeysCommandInvalidSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a mapping\n"), 0o644))

	_, err := execute(t, "keys", "--seed", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C001")
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "render", "--seed", writeSeed(t))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "render", []byte(out))
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C002")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestDashboardListsKeysCreatedAfterMount(t *testing.T) {
	s := store.New(map[string]any{"count": 1})
	dash, err := mountDashboard(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer dash.Close()

	require.NoError(t, s.Set("added", "yes"))
	require.NoError(t, s.Create(store.NewSymbol("hidden"), true))

	var b strings.Builder
	require.NoError(t, dash.WriteTo(&b))
	assert.Contains(t, b.String(), "li name=added")
	assert.Contains(t, b.String(), `"yes"`)
	assert.NotContains(t, b.String(), "hidden")
	assert.Less(t, strings.Index(b.String(), "added"), strings.Index(b.String(), "count"))

	require.NoError(t, s.Set("added", "again"))
	b.Reset()
	require.NoError(t, dash.WriteTo(&b))
	assert.Contains(t, b.String(), `"again"`)
}
