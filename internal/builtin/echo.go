package builtin

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/opencode-ai/runhost/internal/binder"
	"github.com/opencode-ai/runhost/internal/command"
)

// EchoConfig configures the echo command.
type EchoConfig struct {
	Message string
	Repeat  int
	Upper   bool
}

var echoTable = binder.NewTable(
	binder.String("Message", func(c *EchoConfig) *string { return &c.Message }).
		Require().Describe("text to print"),
	binder.Int("Repeat", func(c *EchoConfig) *int { return &c.Repeat }).
		Describe("how many times to print the message (default 1)"),
	binder.Bool("Upper", func(c *EchoConfig) *bool { return &c.Upper }).
		Describe("print the message in upper case"),
)

// EchoCommand prints a message and completes.
type EchoCommand struct {
	cfg *EchoConfig
	out io.Writer
}

func (c *EchoCommand) Execute(ctx context.Context) error {
	msg := c.cfg.Message
	if c.cfg.Upper {
		msg = strings.ToUpper(msg)
	}
	for i := 0; i < c.cfg.Repeat; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(c.out, msg); err != nil {
			return err
		}
	}
	return nil
}

func echoRegistration(out io.Writer) command.Registration {
	return command.Define(command.NameOf(&EchoCommand{}), echoTable,
		func(cfg *EchoConfig) (command.Command, error) {
			if cfg.Repeat < 0 {
				return nil, fmt.Errorf("repeat must not be negative: %d", cfg.Repeat)
			}
			return &EchoCommand{cfg: cfg, out: out}, nil
		},
		command.WithDescription("print a message and exit"),
		command.WithDefaults(func(c *EchoConfig) { c.Repeat = 1 }),
	)
}
