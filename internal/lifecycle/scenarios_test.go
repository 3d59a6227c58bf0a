package lifecycle_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/opencode-ai/runhost/internal/args"
	"github.com/opencode-ai/runhost/internal/binder"
	"github.com/opencode-ai/runhost/internal/command"
	"github.com/opencode-ai/runhost/internal/event"
	"github.com/opencode-ai/runhost/internal/lifecycle"
	"github.com/opencode-ai/runhost/internal/status"
)

type oneConfig struct {
	Data string
}

type blockingConfig struct {
	Ignore bool
}

type fixture struct {
	entered chan struct{}
	release chan struct{}
	fail    error
}

func (f *fixture) registrations() []command.Registration {
	one := command.Define("One",
		binder.NewTable(
			binder.String("Data", func(c *oneConfig) *string { return &c.Data }).Require(),
		),
		func(cfg *oneConfig) (command.Command, error) {
			return command.Func(func(ctx context.Context) error {
				return f.fail
			}), nil
		},
		command.WithDescription("completes immediately"),
	)

	blocking := command.Define("Blocking",
		binder.NewTable(
			binder.Bool("Ignore", func(c *blockingConfig) *bool { return &c.Ignore }),
		),
		func(cfg *blockingConfig) (command.Command, error) {
			return command.Func(func(ctx context.Context) error {
				close(f.entered)
				if cfg.Ignore {
					<-f.release
					return nil
				}
				<-ctx.Done()
				return ctx.Err()
			}), nil
		},
	)

	return []command.Registration{one, blocking}
}

// drain reads every status left on a closed subscription.
func drain(ch <-chan status.Status) []status.Status {
	var out []status.Status
	for s := range ch {
		out = append(out, s)
	}
	return out
}

var _ = Describe("Starter", func() {
	var (
		ctx         context.Context
		fx          *fixture
		logs        *bytes.Buffer
		starter     *lifecycle.Starter
		statuses    <-chan status.Status
		unsubscribe func()
	)

	BeforeEach(func() {
		ctx = context.Background()
		fx = &fixture{entered: make(chan struct{}), release: make(chan struct{})}
		logs = &bytes.Buffer{}
		starter = lifecycle.New("runhost", zerolog.New(logs), lifecycle.WithVersion("1.2.3"))
		Expect(starter.Register(fx.registrations()...)).To(Succeed())
		statuses, unsubscribe = starter.Status().Subscribe()
	})

	AfterEach(func() {
		unsubscribe()
	})

	Describe("a command that completes", func() {
		It("binds its arguments and signals Running then Succeeded", func() {
			Expect(starter.Start(ctx, []string{"One", "-Data=Test"})).To(Succeed())

			Eventually(starter.Done()).Should(BeClosed())
			Expect(drain(statuses)).To(Equal([]status.Status{status.Running, status.Succeeded}))

			cfg, ok := starter.Config().(*oneConfig)
			Expect(ok).To(BeTrue())
			Expect(cfg.Data).To(Equal("Test"))
			Expect(starter.State()).To(Equal(lifecycle.Succeeded))
			Expect(starter.Err()).NotTo(HaveOccurred())
			Expect(starter.RunID()).To(HaveLen(26))
			Expect(starter.CommandName()).To(Equal("One"))
		})

		It("resolves the command name case-insensitively", func() {
			Expect(starter.Start(ctx, []string{"one", "/data=Test"})).To(Succeed())
			Eventually(starter.Done()).Should(BeClosed())
			Expect(starter.Config().(*oneConfig).Data).To(Equal("Test"))
		})

		It("logs the startup banner", func() {
			Expect(starter.Start(ctx, []string{"One", "-Data=Test"})).To(Succeed())
			Eventually(starter.Done()).Should(BeClosed())
			Expect(starter.Stop(ctx)).To(Succeed())
			Expect(logs.String()).To(ContainSubstring("starting runhost version 1.2.3"))
		})
	})

	Describe("a command that fails", func() {
		It("signals Failed and keeps the error", func() {
			fx.fail = errors.New("boom")
			Expect(starter.Start(ctx, []string{"One", "-Data=x"})).To(Succeed())

			Eventually(starter.Done()).Should(BeClosed())
			Expect(drain(statuses)).To(Equal([]status.Status{status.Running, status.Failed}))
			Expect(starter.Err()).To(MatchError(lifecycle.ErrExecution))
			Expect(starter.Err()).To(MatchError(ContainSubstring("boom")))
			Expect(starter.State()).To(Equal(lifecycle.Failed))
		})
	})

	Describe("stopping a blocked command", func() {
		BeforeEach(func() {
			Expect(starter.Start(ctx, []string{"Blocking"})).To(Succeed())
			Eventually(fx.entered).Should(BeClosed())
		})

		It("signals Running then Cancelled", func() {
			Expect(starter.Stop(ctx)).To(Succeed())

			Expect(starter.Status().Closed()).To(BeTrue())
			Expect(drain(statuses)).To(Equal([]status.Status{status.Running, status.Cancelled}))
			Expect(starter.State()).To(Equal(lifecycle.Stopped))
			Expect(starter.Err()).NotTo(HaveOccurred())
		})

		It("treats a second Stop as a no-op", func() {
			Expect(starter.Stop(ctx)).To(Succeed())
			Expect(starter.Stop(ctx)).To(Succeed())

			Expect(drain(statuses)).To(Equal([]status.Status{status.Running, status.Cancelled}))
			Expect(starter.Status().Last()).To(Equal(status.Cancelled))
		})

		It("signals once when Stop is called concurrently", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					errs <- starter.Stop(ctx)
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(drain(statuses)).To(Equal([]status.Status{status.Running, status.Cancelled}))
		})

		It("refuses to start again", func() {
			Expect(starter.Start(ctx, []string{"One", "-Data=x"})).To(MatchError(lifecycle.ErrAlreadyStarted))
			Expect(starter.Stop(ctx)).To(Succeed())
			Expect(starter.Start(ctx, []string{"One", "-Data=x"})).To(MatchError(lifecycle.ErrStopped))
		})
	})

	Describe("a command that ignores cancellation", func() {
		It("times out Stop and still finalizes the stream later", func() {
			Expect(starter.Start(ctx, []string{"Blocking", "-Ignore"})).To(Succeed())
			Eventually(fx.entered).Should(BeClosed())

			stopCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			Expect(starter.Stop(stopCtx)).To(MatchError(lifecycle.ErrStopTimeout))
			Expect(starter.Status().Closed()).To(BeFalse())

			close(fx.release)
			Eventually(starter.Done()).Should(BeClosed())
			Expect(drain(statuses)).To(Equal([]status.Status{status.Running, status.Cancelled}))
		})
	})

	Describe("cancelling the start context", func() {
		It("signals Cancelled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			Expect(starter.Start(runCtx, []string{"Blocking"})).To(Succeed())
			Eventually(fx.entered).Should(BeClosed())

			cancel()
			Eventually(starter.Done()).Should(BeClosed())
			Expect(drain(statuses)).To(Equal([]status.Status{status.Running, status.Cancelled}))
		})
	})

	Describe("start failures", func() {
		expectSilent := func() {
			Consistently(statuses, 50*time.Millisecond).ShouldNot(Receive())
			Expect(starter.Status().Last()).To(Equal(status.NotStarted))
			Expect(starter.State()).To(Equal(lifecycle.Stopped))
		}

		It("reports usage for empty arguments", func() {
			err := starter.Start(ctx, nil)
			Expect(err).To(MatchError(lifecycle.ErrUsage))
			Expect(err).To(MatchError(command.ErrNoCommand))
			expectSilent()
			Expect(logs.String()).To(ContainSubstring("please specify arguments"))
		})

		It("reports unknown commands with the registered names", func() {
			err := starter.Start(ctx, []string{"Two"})

			var unknown *command.UnknownCommandError
			Expect(errors.As(err, &unknown)).To(BeTrue())
			Expect(unknown.Name).To(Equal("Two"))
			Expect(unknown.Known).To(Equal([]string{"One", "Blocking"}))
			Expect(err).To(MatchError(command.ErrUnknownCommand))
			expectSilent()
			Expect(logs.String()).To(ContainSubstring("  - One"))
			Expect(logs.String()).To(ContainSubstring("  - Blocking"))
		})

		It("reports a missing required argument even with unknown keys present", func() {
			err := starter.Start(ctx, []string{"One", "-Other=1"})
			Expect(err).To(MatchError(binder.ErrMissingRequired))
			expectSilent()
		})

		It("reports unknown arguments", func() {
			err := starter.Start(ctx, []string{"One", "-Data=x", "-Other=1"})
			Expect(err).To(MatchError(binder.ErrUnknownArgument))
			expectSilent()
		})

		It("reports malformed arguments", func() {
			err := starter.Start(ctx, []string{"One", "Data=x"})
			Expect(err).To(MatchError(args.ErrMalformedArgument))
			expectSilent()
		})

		It("closes the stream on Stop without signaling", func() {
			Expect(starter.Start(ctx, nil)).To(HaveOccurred())
			Expect(starter.Stop(ctx)).To(Succeed())
			Eventually(statuses).Should(BeClosed())
			Expect(starter.Status().Last()).To(Equal(status.NotStarted))
		})
	})

	Describe("Stop before Start", func() {
		It("closes the stream and prevents a later Start", func() {
			Expect(starter.Stop(ctx)).To(Succeed())
			Eventually(statuses).Should(BeClosed())
			Expect(starter.Start(ctx, []string{"One", "-Data=x"})).To(MatchError(lifecycle.ErrStopped))
		})
	})

	Describe("lifecycle events", func() {
		It("publishes started, stopping and finished", func() {
			bus := event.NewBus()
			defer bus.Close()

			var mu sync.Mutex
			var seen []event.EventType
			bus.SubscribeAll(func(e event.Event) {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, e.Type)
			})
			types := func() []event.EventType {
				mu.Lock()
				defer mu.Unlock()
				return append([]event.EventType(nil), seen...)
			}

			starter = lifecycle.New("runhost", zerolog.Nop(), lifecycle.WithBus(bus))
			Expect(starter.Register(fx.registrations()...)).To(Succeed())
			Expect(starter.Start(ctx, []string{"Blocking"})).To(Succeed())
			Eventually(fx.entered).Should(BeClosed())
			Expect(starter.Stop(ctx)).To(Succeed())
			Expect(types()).To(ContainElement(event.CommandStopping))

			Eventually(types).Should(ConsistOf(
				event.CommandStarted,
				event.CommandStopping,
				event.CommandFinished,
			))
		})
	})
})
