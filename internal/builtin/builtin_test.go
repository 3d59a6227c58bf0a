package builtin

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/runhost/internal/args"
	"github.com/opencode-ai/runhost/internal/command"
)

// lockedBuffer guards a bytes.Buffer written from a command goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func lookup(t *testing.T, out *lockedBuffer, name string) command.Registration {
	t.Helper()
	registry := command.NewRegistry()
	require.NoError(t, registry.Register(Registrations(out, zerolog.Nop())...))
	reg, err := registry.Resolve(name)
	require.NoError(t, err)
	return *reg
}

func construct(reg command.Registration, tokens ...string) (command.Command, error) {
	dict, err := args.Parse(tokens)
	if err != nil {
		return nil, err
	}
	cfg, err := reg.Bind(dict)
	if err != nil {
		return nil, err
	}
	return reg.Build(cfg)
}

func build(t *testing.T, out *lockedBuffer, name string, tokens ...string) command.Command {
	t.Helper()
	cmd, err := construct(lookup(t, out, name), tokens...)
	require.NoError(t, err)
	return cmd
}

func TestRegistrations(t *testing.T) {
	var names []string
	for _, reg := range Registrations(&bytes.Buffer{}, zerolog.Nop()) {
		names = append(names, reg.Name)
		assert.NotEmpty(t, reg.Description, reg.Name)
	}
	assert.Equal(t, []string{"Echo", "Wait", "Watch", "Probe", "Glob"}, names)
}

func TestEcho(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"default repeat", []string{"-Message=hello"}, "hello\n"},
		{"upper", []string{"-Message=hello", "-Upper"}, "HELLO\n"},
		{"repeat", []string{"-message=hi", "-repeat=3"}, "hi\nhi\nhi\n"},
		{"zero repeat", []string{"-Message=hi", "-Repeat=0"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &lockedBuffer{}
			cmd := build(t, out, "echo", tt.tokens...)
			require.NoError(t, cmd.Execute(context.Background()))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestEchoRejectsNegativeRepeat(t *testing.T) {
	_, err := construct(lookup(t, &lockedBuffer{}, "echo"), "-Message=x", "-Repeat=-1")
	assert.ErrorContains(t, err, "repeat must not be negative")
}

func TestEchoStopsWhenCancelled(t *testing.T) {
	out := &lockedBuffer{}
	cmd := build(t, out, "echo", "-Message=x", "-Repeat=100")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, cmd.Execute(ctx), context.Canceled)
	assert.Empty(t, out.String())
}

func TestWaitDuration(t *testing.T) {
	out := &lockedBuffer{}
	cmd := build(t, out, "wait", "-Duration=10ms")

	require.NoError(t, cmd.Execute(context.Background()))
	assert.Equal(t, "waiting 10ms\n", out.String())
}

func TestWaitUntilCancelled(t *testing.T) {
	cmd := build(t, &lockedBuffer{}, "wait")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, cmd.Execute(ctx), context.DeadlineExceeded)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	out := &lockedBuffer{}
	cmd := build(t, out, "watch", "-Path="+dir, "-Count=1")

	done := make(chan error, 1)
	go func() { done <- cmd.Execute(context.Background()) }()

	// The watcher is added asynchronously; keep touching files until it reports.
	for i := 0; ; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "f"+strings.Repeat("x", i%5)), []byte("x"), 0644))
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.Contains(t, out.String(), dir)
			return
		case <-time.After(20 * time.Millisecond):
		}
		if i > 250 {
			t.Fatal("watch did not report an event")
		}
	}
}

func TestWatchCancelled(t *testing.T) {
	cmd := build(t, &lockedBuffer{}, "watch", "-Path="+t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.Execute(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestWatchMissingPath(t *testing.T) {
	cmd := build(t, &lockedBuffer{}, "watch", "-Path="+filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, cmd.Execute(context.Background()))
}

func TestProbeFindsPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "ready")
	out := &lockedBuffer{}
	cmd := build(t, out, "probe", "-Path="+target, "-Interval=5ms", "-Timeout=5s")

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(target, nil, 0644)
	}()

	require.NoError(t, cmd.Execute(context.Background()))
	assert.Contains(t, out.String(), "found "+target)
}

func TestProbeTimeout(t *testing.T) {
	target := filepath.Join(t.TempDir(), "never")
	cmd := build(t, &lockedBuffer{}, "probe", "-Path="+target, "-Interval=5ms", "-Timeout=40ms")

	err := cmd.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, context.Canceled)
}

func TestProbeCancelled(t *testing.T) {
	target := filepath.Join(t.TempDir(), "never")
	cmd := build(t, &lockedBuffer{}, "probe", "-Path="+target, "-Interval=5ms")

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, cmd.Execute(ctx), context.DeadlineExceeded)
}

func TestProbeRejectsZeroInterval(t *testing.T) {
	_, err := construct(lookup(t, &lockedBuffer{}, "probe"), "-Path=/tmp", "-Interval=0s")
	assert.ErrorContains(t, err, "interval must be positive")
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.go", "sub/b.go", "sub/c_test.go", "x.txt"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	out := &lockedBuffer{}
	require.NoError(t, build(t, out, "glob", "-Pattern=**/*.go", "-Root="+root).Execute(context.Background()))
	assert.ElementsMatch(t, []string{"a.go", "sub/b.go", "sub/c_test.go"}, strings.Fields(out.String()))

	out = &lockedBuffer{}
	require.NoError(t, build(t, out, "glob", "-Pattern=**/*.go", "-Root="+root, "-Exclude=**/*_test.go, a.go").Execute(context.Background()))
	assert.Equal(t, []string{"sub/b.go"}, strings.Fields(out.String()))
}

func TestGlobRejectsInvalidPattern(t *testing.T) {
	_, err := construct(lookup(t, &lockedBuffer{}, "glob"), "-Pattern=[")
	assert.ErrorContains(t, err, "invalid pattern")
}
