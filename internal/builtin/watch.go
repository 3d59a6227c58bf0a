package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/opencode-ai/runhost/internal/binder"
	"github.com/opencode-ai/runhost/internal/command"
)

// WatchConfig configures the watch command.
type WatchConfig struct {
	Path  string
	Count int
}

var watchTable = binder.NewTable(
	binder.Path("Path", func(c *WatchConfig) *string { return &c.Path }).
		Require().Describe("file or directory to watch"),
	binder.Int("Count", func(c *WatchConfig) *int { return &c.Count }).
		Describe("exit after this many events; runs until interrupted when 0"),
)

// WatchCommand prints file system events for a path.
type WatchCommand struct {
	cfg    *WatchConfig
	out    io.Writer
	logger zerolog.Logger
}

func (c *WatchCommand) Execute(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(c.cfg.Path); err != nil {
		return fmt.Errorf("watch %s: %w", c.cfg.Path, err)
	}
	c.logger.Debug().Str("path", c.cfg.Path).Msg("watcher initialized")

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			fmt.Fprintf(c.out, "%s %s\n", ev.Op, ev.Name)
			seen++
			if c.cfg.Count > 0 && seen >= c.cfg.Count {
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func watchRegistration(out io.Writer, logger zerolog.Logger) command.Registration {
	return command.Define(command.NameOf(&WatchCommand{}), watchTable,
		func(cfg *WatchConfig) (command.Command, error) {
			if cfg.Count < 0 {
				return nil, fmt.Errorf("count must not be negative: %d", cfg.Count)
			}
			return &WatchCommand{cfg: cfg, out: out, logger: logger}, nil
		},
		command.WithDescription("print file system events for a path"),
	)
}
