package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/runhost/internal/event"
	"github.com/opencode-ai/runhost/internal/host"
	"github.com/opencode-ai/runhost/internal/lifecycle"
)

var runCmd = &cobra.Command{
	Use:   "run <command> [-Name=Value ...]",
	Short: "Run a command in the foreground",
	Long: `Run a registered command in the foreground until it completes or
CTRL+C is pressed. Arguments after the command name are flag tokens of the
form -Name=Value or /Name=Value; a bare -Name sets a boolean argument.

Global flags must come before 'run'.

Examples:
  runhost run echo -Message=hello -Repeat=3
  runhost run wait
  runhost --print-logs --log-level debug run probe -Path=/tmp/ready -Timeout=30s
  runhost run glob -Pattern=**/*.go -Exclude=vendor/**`,
	DisableFlagParsing: true,
	RunE:               runCommand,
}

func runCommand(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	bus := event.NewBus()
	var tapDone <-chan error
	closeLog := func() {}
	if a.config.EventLog != "" {
		w, closeFn, err := openEventLog(cmd, a.config.EventLog)
		if err != nil {
			bus.Close()
			return err
		}
		closeLog = closeFn
		if tapDone, err = bus.Tap(context.Background(), w); err != nil {
			bus.Close()
			closeLog()
			return err
		}
	}

	starter := lifecycle.New("runhost", a.logger,
		lifecycle.WithVersion(Version),
		lifecycle.WithBus(bus),
		lifecycle.WithRegistry(a.registry),
	)

	console := host.New(starter,
		host.WithInput(cmd.InOrStdin()),
		host.WithOutput(cmd.OutOrStdout()),
		host.WithBus(bus),
		host.WithLogger(a.logger),
		host.WithStopTimeout(a.config.StopTimeout.Std()),
		host.WithConfirm(a.config.Confirm),
		host.WithNoColor(a.config.NoColor),
	)

	code := console.Run(cmd.Context(), args)

	// Closing the bus ends the tap; every event was written before Publish returned.
	bus.Close()
	if tapDone != nil {
		if err := <-tapDone; err != nil {
			a.logger.Warn().Err(err).Msg("write event log")
		}
	}
	closeLog()

	if code != host.ExitSuccess {
		return &ExitError{Code: code}
	}
	return nil
}

// openEventLog opens the JSON event log; "-" selects stderr.
func openEventLog(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "-" {
		return cmd.ErrOrStderr(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	return f, func() { f.Close() }, nil
}
