package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/opencode-ai/runhost/internal/binder"
	"github.com/opencode-ai/runhost/internal/command"
)

const (
	// ProbeInitialInterval is the first delay between probes.
	ProbeInitialInterval = 100 * time.Millisecond
	// ProbeMaxInterval caps the delay between probes.
	ProbeMaxInterval = 5 * time.Second
)

// ProbeConfig configures the probe command.
type ProbeConfig struct {
	Path     string
	Interval time.Duration
	Timeout  time.Duration
}

var probeTable = binder.NewTable(
	binder.Path("Path", func(c *ProbeConfig) *string { return &c.Path }).
		Require().Describe("path that must appear"),
	binder.Duration("Interval", func(c *ProbeConfig) *time.Duration { return &c.Interval }).
		Describe("initial delay between probes (default 100ms)"),
	binder.Duration("Timeout", func(c *ProbeConfig) *time.Duration { return &c.Timeout }).
		Describe("give up after this long; probes until interrupted when omitted"),
)

// ProbeCommand polls with exponential backoff until a path exists.
type ProbeCommand struct {
	cfg    *ProbeConfig
	out    io.Writer
	logger zerolog.Logger
}

func (c *ProbeCommand) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.Interval
	b.MaxInterval = ProbeMaxInterval
	b.MaxElapsedTime = c.cfg.Timeout
	b.Reset()
	return backoff.WithContext(b, ctx)
}

func (c *ProbeCommand) Execute(ctx context.Context) error {
	attempts := 0
	probe := func() error {
		attempts++
		_, err := os.Stat(c.cfg.Path)
		return err
	}
	notify := func(err error, next time.Duration) {
		c.logger.Debug().Err(err).Dur("next", next).Msg("probe failed")
	}

	if err := backoff.RetryNotify(probe, c.newBackoff(ctx), notify); err != nil {
		return fmt.Errorf("probe %s after %d attempts: %w", c.cfg.Path, attempts, err)
	}
	fmt.Fprintf(c.out, "found %s after %d attempts\n", c.cfg.Path, attempts)
	return nil
}

func probeRegistration(out io.Writer, logger zerolog.Logger) command.Registration {
	return command.Define(command.NameOf(&ProbeCommand{}), probeTable,
		func(cfg *ProbeConfig) (command.Command, error) {
			if cfg.Interval <= 0 {
				return nil, fmt.Errorf("interval must be positive: %s", cfg.Interval)
			}
			return &ProbeCommand{cfg: cfg, out: out, logger: logger}, nil
		},
		command.WithDescription("wait for a path to appear, backing off between checks"),
		command.WithDefaults(func(c *ProbeConfig) { c.Interval = ProbeInitialInterval }),
	)
}
