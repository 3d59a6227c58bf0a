// Package lifecycle starts a registered command from raw arguments, runs it on
// its own goroutine and tears it down, signaling exactly one terminal status.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/opencode-ai/runhost/internal/args"
	"github.com/opencode-ai/runhost/internal/command"
	"github.com/opencode-ai/runhost/internal/event"
	"github.com/opencode-ai/runhost/internal/status"
)

// execution is the state of the single run owned by a Starter.
type execution struct {
	runID   string
	reg     *command.Registration
	cfg     any
	cmd     command.Command
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time
}

// Starter orchestrates one command run.
type Starter struct {
	name     string
	version  string
	logger   zerolog.Logger
	registry *command.Registry
	bus      *event.Bus
	stream   *status.Stream

	mu      sync.Mutex
	state   State
	stopped bool
	exec    *execution
	err     error
}

// New creates a Starter for the program called name.
func New(name string, logger zerolog.Logger, opts ...Option) *Starter {
	s := &Starter{
		name:    name,
		version: "dev",
		logger:  logger,
		stream:  status.NewStream(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = command.NewRegistry()
	}
	return s
}

// Register adds commands to the registry.
func (s *Starter) Register(regs ...command.Registration) error {
	return s.registry.Register(regs...)
}

// Commands returns the registered command names in registration order.
func (s *Starter) Commands() []string {
	return s.registry.Names()
}

// Usage prints the argument table of the named command.
func (s *Starter) Usage(name string, w io.Writer, width int) error {
	reg, err := s.registry.Resolve(name)
	if err != nil {
		return err
	}
	return reg.Usage(w, width)
}

// Start resolves argv[0], binds the remaining flag tokens onto a fresh
// configuration, emits Running and launches the command body. Usage, lookup
// and binding errors return before anything is signaled.
func (s *Starter) Start(ctx context.Context, argv []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.state == Stopped {
		return ErrStopped
	}
	if s.state != Idle {
		return ErrAlreadyStarted
	}
	s.state = Starting

	s.logger.Info().
		Str("version", s.version).
		Msgf("starting %s version %s", s.name, s.version)

	name, tokens, err := args.Split(argv)
	if err != nil {
		s.state = Stopped
		s.logger.Warn().Msg("please specify arguments")
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	reg, err := s.registry.Resolve(name)
	if err != nil {
		s.state = Stopped
		s.logger.Error().Err(err).Msg("command lookup failed")
		for _, known := range s.registry.Names() {
			s.logger.Info().Msgf("  - %s", known)
		}
		return err
	}

	dict, err := args.Parse(tokens)
	if err != nil {
		s.state = Stopped
		s.logger.Error().Err(err).Str("command", reg.Name).Msg("invalid arguments")
		return fmt.Errorf("parse arguments for %s: %w", reg.Name, err)
	}

	cfg, err := reg.Bind(dict)
	if err != nil {
		s.state = Stopped
		s.logger.Error().Err(err).Str("command", reg.Name).Msg("invalid arguments")
		return fmt.Errorf("bind arguments for %s: %w", reg.Name, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	exec := &execution{
		runID:   ulid.Make().String(),
		reg:     reg,
		cfg:     cfg,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}
	s.exec = exec
	s.state = Running
	s.stream.Emit(status.Running)

	cmd, err := reg.Build(cfg)
	if err != nil {
		cancel()
		s.finishLocked(exec, status.Failed, err)
		close(exec.done)
		return s.err
	}
	exec.cmd = cmd

	s.logger.Debug().
		Str("command", reg.Name).
		Str("run", exec.runID).
		Stringer("args", dict).
		Msg("command started")
	s.publish(event.CommandStarted, event.StartedData{
		RunID:   exec.runID,
		Command: reg.Name,
		Args:    tokens,
	})

	go s.run(runCtx, exec)
	return nil
}

// run executes the command body and records its outcome.
func (s *Starter) run(ctx context.Context, exec *execution) {
	defer close(exec.done)

	cancelled, err := execute(ctx, exec.cmd)
	final := classify(cancelled, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(exec, final, err)
}

// execute runs cmd, converting a panic into a *PanicError. cancelled
// reports whether ctx was already cancelled when the body returned; a Stop
// arriving after that does not turn a finished run into a cancelled one.
func execute(ctx context.Context, cmd command.Command) (cancelled bool, err error) {
	defer func() {
		cancelled = ctx.Err() != nil
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return false, cmd.Execute(ctx)
}

// classify maps the result of a command body to its terminal status.
// A body that unwinds after cancellation was cancelled, not failed.
func classify(cancelled bool, err error) status.Status {
	switch {
	case err == nil && cancelled:
		return status.Cancelled
	case err == nil:
		return status.Succeeded
	case errors.Is(err, context.Canceled):
		return status.Cancelled
	case cancelled && errors.Is(err, context.DeadlineExceeded):
		return status.Cancelled
	default:
		return status.Failed
	}
}

// finishLocked emits the terminal status and closes the stream. It must be
// called with s.mu held, once per execution.
func (s *Starter) finishLocked(exec *execution, final status.Status, cause error) {
	elapsed := time.Since(exec.started)
	log := s.logger.With().
		Str("command", exec.reg.Name).
		Str("run", exec.runID).
		Dur("elapsed", elapsed).
		Logger()

	var errText string
	switch final {
	case status.Succeeded:
		s.state = Succeeded
		log.Info().Msg("command succeeded")
	case status.Cancelled:
		s.state = Cancelled
		log.Info().Msg("command cancelled")
	default:
		s.state = Failed
		s.err = &ExecutionError{Command: exec.reg.Name, RunID: exec.runID, Err: cause}
		errText = s.err.Error()
		entry := log.Error().Err(cause)
		var perr *PanicError
		if errors.As(cause, &perr) {
			entry = entry.Bytes("stack", perr.Stack)
		}
		entry.Msg("command failed")
	}

	s.stream.Emit(final)
	s.stream.Close()

	s.publish(event.CommandFinished, event.FinishedData{
		RunID:    exec.runID,
		Command:  exec.reg.Name,
		Status:   final.String(),
		Error:    errText,
		Duration: elapsed,
	})
}

// Stop cancels the run, waits for the body to unwind and guarantees the
// status stream is closed. It is safe to call any number of times, from any
// goroutine. If ctx ends first Stop returns ErrStopTimeout; the stream is
// still finalized when the body eventually returns.
func (s *Starter) Stop(ctx context.Context) error {
	s.mu.Lock()
	first := !s.stopped
	s.stopped = true
	exec := s.exec
	if exec == nil {
		s.state = Stopped
		s.mu.Unlock()
		s.stream.Close()
		return nil
	}
	if first && s.state == Running {
		s.logger.Info().
			Str("command", exec.reg.Name).
			Str("run", exec.runID).
			Msg("stopping command")
		s.publishSync(event.CommandStopping, event.StoppingData{
			RunID:   exec.runID,
			Command: exec.reg.Name,
		})
	}
	exec.cancel()
	s.mu.Unlock()

	select {
	case <-exec.done:
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrStopTimeout, ctx.Err())
	}

	s.mu.Lock()
	s.state = Stopped
	s.mu.Unlock()
	s.stream.Close()
	return nil
}

func (s *Starter) publish(eventType event.EventType, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{Type: eventType, Data: data})
}

// publishSync delivers an event before returning. It is called with s.mu
// held, so subscribers must not call back into the Starter.
func (s *Starter) publishSync(eventType event.EventType, data any) {
	if s.bus == nil {
		return
	}
	s.bus.PublishSync(event.Event{Type: eventType, Data: data})
}

// Status returns the status stream of the run.
func (s *Starter) Status() *status.Stream {
	return s.stream
}

// Done is closed once the status stream closes.
func (s *Starter) Done() <-chan struct{} {
	return s.stream.Done()
}

// State returns the current lifecycle state.
func (s *Starter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the *ExecutionError of a failed run, or nil.
func (s *Starter) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Command returns the constructed command, or nil before a successful Start.
func (s *Starter) Command() command.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exec == nil {
		return nil
	}
	return s.exec.cmd
}

// Config returns the bound configuration, a pointer to the command's
// configuration type, or nil before a successful bind.
func (s *Starter) Config() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exec == nil {
		return nil
	}
	return s.exec.cfg
}

// RunID returns the ULID of the current run, or "" before Start.
func (s *Starter) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exec == nil {
		return ""
	}
	return s.exec.runID
}

// CommandName returns the resolved name of the current run's command.
func (s *Starter) CommandName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exec == nil {
		return ""
	}
	return s.exec.reg.Name
}
