/*
Package event provides a pub/sub bus for command lifecycle events.

The lifecycle orchestrator publishes an event when a run starts, when a stop is
requested, and when the run finishes. Hosts subscribe to render progress or to
keep an audit log; the orchestrator never depends on anyone listening.

# Event Types

  - command.started: the command was constructed and its body launched (StartedData)
  - command.stopping: a stop was requested while the body was running (StoppingData)
  - command.finished: the run reached a terminal status (FinishedData)

# Basic Usage

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.CommandFinished, func(e event.Event) {
		data := e.Data.(event.FinishedData)
		log.Info().Str("status", data.Status).Msg("run finished")
	})
	defer unsubscribe()

# Subscriber Safety Guidelines

When using PublishSync, subscribers are called synchronously in the publisher's
goroutine. The orchestrator publishes command.stopping this way from Stop,
while holding its lock, so subscribers MUST:

  - Complete quickly
  - Never call the orchestrator from within a subscriber
  - Never call Publish/PublishSync from within a subscriber

# JSON Tap

Every event is also marshalled to JSON and published on the watermill topic
AllTopic. Tap copies that topic to a writer, one JSON document per line:

	done, err := bus.Tap(ctx, os.Stderr)

Publishing waits until every tap has written the event, so a tap sees every
event published after Tap returns. Closing the bus ends all taps.
*/
package event
