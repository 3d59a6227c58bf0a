package builtin

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/opencode-ai/runhost/internal/binder"
	"github.com/opencode-ai/runhost/internal/command"
)

// WaitConfig configures the wait command.
type WaitConfig struct {
	Duration time.Duration
}

var waitTable = binder.NewTable(
	binder.Duration("Duration", func(c *WaitConfig) *time.Duration { return &c.Duration }).
		Describe("how long to wait, e.g. 10s; waits until interrupted when omitted"),
)

// WaitCommand blocks until its duration elapses or it is cancelled.
type WaitCommand struct {
	cfg *WaitConfig
	out io.Writer
}

func (c *WaitCommand) Execute(ctx context.Context) error {
	if c.cfg.Duration <= 0 {
		fmt.Fprintln(c.out, "waiting until interrupted")
		<-ctx.Done()
		return ctx.Err()
	}

	fmt.Fprintf(c.out, "waiting %s\n", c.cfg.Duration)
	timer := time.NewTimer(c.cfg.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func waitRegistration(out io.Writer) command.Registration {
	return command.Define(command.NameOf(&WaitCommand{}), waitTable,
		func(cfg *WaitConfig) (command.Command, error) {
			return &WaitCommand{cfg: cfg, out: out}, nil
		},
		command.WithDescription("block for a duration or until interrupted"),
	)
}
