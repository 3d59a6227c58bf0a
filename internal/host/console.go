// Package host runs a single command in the foreground of a console: it
// starts the command, reports its status, translates CTRL+C into a graceful
// stop and maps the outcome to a process exit code.
package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/opencode-ai/runhost/internal/args"
	"github.com/opencode-ai/runhost/internal/binder"
	"github.com/opencode-ai/runhost/internal/command"
	"github.com/opencode-ai/runhost/internal/event"
	"github.com/opencode-ai/runhost/internal/lifecycle"
	"github.com/opencode-ai/runhost/internal/status"
)

// Process exit codes.
const (
	ExitSuccess   = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

// DefaultStopTimeout bounds how long an interrupt waits for the command.
const DefaultStopTimeout = 5 * time.Second

// Console is the foreground host of one lifecycle.Starter.
type Console struct {
	starter     *lifecycle.Starter
	bus         *event.Bus
	logger      zerolog.Logger
	in          io.Reader
	out         io.Writer
	signals     <-chan os.Signal
	stopTimeout time.Duration
	confirm     bool
	noColor     bool
	width       int
}

// Option configures a Console.
type Option func(*Console)

// WithInput sets the reader used for the confirmation prompt.
func WithInput(r io.Reader) Option { return func(c *Console) { c.in = r } }

// WithOutput sets where progress and usage are printed.
func WithOutput(w io.Writer) Option { return func(c *Console) { c.out = w } }

// WithSignals replaces SIGINT/SIGTERM with the given channel.
func WithSignals(ch <-chan os.Signal) Option { return func(c *Console) { c.signals = ch } }

// WithStopTimeout sets how long an interrupt waits for the command to unwind.
func WithStopTimeout(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.stopTimeout = d
		}
	}
}

// WithConfirm asks for confirmation before starting.
func WithConfirm(confirm bool) Option { return func(c *Console) { c.confirm = confirm } }

// WithNoColor disables colored status lines.
func WithNoColor(noColor bool) Option { return func(c *Console) { c.noColor = noColor } }

// WithLogger sets the host logger.
func WithLogger(logger zerolog.Logger) Option { return func(c *Console) { c.logger = logger } }

// WithBus follows the lifecycle events of bus: stop requests are announced on
// the output and every event is logged at debug level. bus should be the one
// the starter publishes to.
func WithBus(bus *event.Bus) Option { return func(c *Console) { c.bus = bus } }

// WithWidth fixes the usage wrap width instead of probing the terminal.
func WithWidth(width int) Option { return func(c *Console) { c.width = width } }

// New creates a console host for starter.
func New(starter *lifecycle.Starter, opts ...Option) *Console {
	c := &Console{
		starter:     starter,
		logger:      zerolog.Nop(),
		in:          os.Stdin,
		out:         os.Stdout,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.width <= 0 {
		c.width = Width(c.out)
	}
	return c
}

// Run starts argv, waits for the command to finish or to be interrupted and
// returns the exit code.
func (c *Console) Run(ctx context.Context, argv []string) int {
	if c.confirm && !c.confirmed() {
		fmt.Fprintln(c.out, "Aborted.")
		_ = c.starter.Stop(ctx)
		return ExitCancelled
	}

	if c.bus != nil {
		defer c.follow(c.bus)()
	}

	statuses, unsubscribe := c.starter.Status().Subscribe()
	defer unsubscribe()

	if err := c.starter.Start(ctx, argv); err != nil {
		code := c.startFailed(argv, err)
		_ = c.starter.Stop(ctx)
		return code
	}

	fmt.Fprintln(c.out, "Please press CTRL+C to break...")

	signals := c.signals
	if signals == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		signals = ch
	}

wait:
	for {
		select {
		case st, ok := <-statuses:
			if !ok {
				break wait
			}
			c.printStatus(st)
		case sig := <-signals:
			fmt.Fprintln(c.out)
			c.logger.Info().Str("signal", sig.String()).Msg("interrupt received")
			if err := c.stop(ctx); err != nil {
				c.paint(color.FgRed).Fprintf(c.out, "%v\n", err)
				fmt.Fprintln(c.out, "Exiting...")
				return ExitCancelled
			}
		}
	}

	_ = c.starter.Stop(ctx)
	if err := c.starter.Err(); err != nil {
		c.paint(color.FgRed).Fprintf(c.out, "Error: %v\n", err)
	}
	fmt.Fprintln(c.out, "Exiting...")
	return ExitCode(c.starter.Status().Last())
}

// follow subscribes to the lifecycle events of bus and returns the function
// that ends the subscriptions.
func (c *Console) follow(bus *event.Bus) func() {
	unsubStopping := bus.Subscribe(event.CommandStopping, func(e event.Event) {
		if data, ok := e.Data.(event.StoppingData); ok {
			c.paint(color.FgYellow).Fprintf(c.out, "Stopping %s...\n", data.Command)
		}
	})
	unsubAll := bus.SubscribeAll(func(e event.Event) {
		c.logger.Debug().
			Str("event", string(e.Type)).
			Interface("data", e.Data).
			Msg("lifecycle event")
	})
	return func() {
		unsubStopping()
		unsubAll()
	}
}

func (c *Console) stop(ctx context.Context) error {
	stopCtx, cancel := context.WithTimeout(ctx, c.stopTimeout)
	defer cancel()

	err := c.starter.Stop(stopCtx)
	if errors.Is(err, lifecycle.ErrStopTimeout) {
		return fmt.Errorf("command did not stop within %s", c.stopTimeout)
	}
	return err
}

// confirmed prompts on the input reader and reports whether the answer was y.
func (c *Console) confirmed() bool {
	fmt.Fprint(c.out, "Do you want to continue? (y/n) ")
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// startFailed reports a synchronous Start error and picks its exit code.
func (c *Console) startFailed(argv []string, err error) int {
	red := c.paint(color.FgRed)
	red.Fprintf(c.out, "Error: %v\n", err)

	var unknown *command.UnknownCommandError
	switch {
	case errors.Is(err, lifecycle.ErrUsage):
		c.printCommands(c.starter.Commands())
		return ExitUsage
	case errors.As(err, &unknown):
		c.printCommands(unknown.Known)
		return ExitUsage
	case errors.Is(err, args.ErrMalformedArgument),
		errors.Is(err, binder.ErrMissingRequired),
		errors.Is(err, binder.ErrUnknownArgument),
		errors.Is(err, binder.ErrUnconvertible):
		if uerr := c.starter.Usage(argv[0], c.out, c.width); uerr != nil {
			c.logger.Warn().Err(uerr).Msg("print usage")
		}
		return ExitUsage
	default:
		return ExitFailure
	}
}

func (c *Console) printCommands(names []string) {
	fmt.Fprintln(c.out, "Supported commands:")
	if len(names) == 0 {
		fmt.Fprintln(c.out, "  (none)")
	}
	for _, name := range names {
		fmt.Fprintf(c.out, "  - %s\n", name)
	}
}

func (c *Console) printStatus(st status.Status) {
	attr := color.FgCyan
	switch st {
	case status.Succeeded:
		attr = color.FgGreen
	case status.Failed:
		attr = color.FgRed
	case status.Cancelled:
		attr = color.FgYellow
	}
	fmt.Fprintf(c.out, "Status: %s\n", c.paint(attr).Sprint(st))
}

func (c *Console) paint(attr color.Attribute) *color.Color {
	p := color.New(attr)
	if c.noColor {
		p.DisableColor()
	}
	return p
}

// ExitCode maps a final status to a process exit code.
func ExitCode(st status.Status) int {
	switch st {
	case status.Succeeded:
		return ExitSuccess
	case status.Cancelled:
		return ExitCancelled
	default:
		return ExitFailure
	}
}
