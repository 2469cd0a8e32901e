package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/bindstore/internal/errors"
	"github.com/vango-dev/bindstore/pkg/store"
)

func TestDecode(t *testing.T) {
	values, err := Decode(strings.NewReader(`
count: 3
user:
  name: Ada
todos: [write, test]
`))
	require.NoError(t, err)
	assert.Equal(t, 3, values["count"])
	assert.Equal(t, map[string]any{"name": "Ada"}, values["user"])
	assert.Equal(t, []any{"write", "test"}, values["todos"])
}

func TestDecodeEmpty(t *testing.T) {
	values, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestDecodeRejectsNonMapping(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"sequence", "- a\n- b\n"},
		{"scalar", "hello\n"},
		{"empty key", "'': 1\n"},
		{"invalid yaml", "a: [1, 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			var rep *errors.Report
			require.ErrorAs(t, err, &rep)
			assert.Equal(t, "C001", rep.Code)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply(t *testing.T) {
	s := store.New(map[string]any{"count": 0})
	var seen []store.Patch
	require.NoError(t, s.Subscribe("count", store.Func(func(next, prev store.Patch) {
		seen = append(seen, next)
	})))

	require.NoError(t, Apply(s, map[string]any{"count": 5, "name": "x"}))
	assert.Equal(t, 5, s.Get("count"))
	assert.Equal(t, "x", s.Get("name"))
	assert.Len(t, seen, 1)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan map[string]any, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 10*time.Millisecond, func(values map[string]any, err error) {
			if err == nil {
				changes <- values
			}
		})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case values := <-changes:
			assert.Equal(t, 2, values["count"])
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("count: 2\n"), 0o644))
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}
