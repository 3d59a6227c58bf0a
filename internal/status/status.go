// Package status provides the lifecycle status of a command run and the
// broadcast stream that publishes it.
package status

import (
	"context"
	"sync"
	"sync/atomic"
)

// Status is the observable state of a command run.
type Status int

const (
	NotStarted Status = iota
	Running
	Succeeded
	Failed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a run.
func (s Status) Terminal() bool {
	return s == Succeeded || s == Failed || s == Cancelled
}

// maxSequence is the longest legal sequence: Running then one terminal status.
const maxSequence = 2

type subscriber struct {
	id uint64
	ch chan Status
}

// Stream broadcasts the status sequence of a single run. It accepts at most
// Running followed by one terminal status, and is closed at most once.
// Subscriber channels are buffered for the whole sequence so Emit never
// blocks on a slow observer.
type Stream struct {
	mu     sync.Mutex
	last   Status
	subs   []subscriber
	nextID uint64
	closed atomic.Bool
	done   chan struct{}
}

// NewStream creates an open stream in the NotStarted state.
func NewStream() *Stream {
	return &Stream{done: make(chan struct{})}
}

// Subscribe registers an observer. The channel receives every status emitted
// after the call and is closed when the stream closes. Subscribing to a
// closed stream yields an already closed channel. The returned func
// unsubscribes and closes the channel; it is safe to call more than once.
func (s *Stream) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, maxSequence)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		close(ch)
		return ch, func() {}
	}

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, ch: ch})
	return ch, func() { s.unsubscribe(id) }
}

func (s *Stream) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

// Emit publishes next to all current subscribers. It returns false, and
// publishes nothing, when next is not a legal successor of the last status
// or the stream is closed.
func (s *Stream) Emit(next Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() || !legal(s.last, next) {
		return false
	}
	s.last = next
	for _, sub := range s.subs {
		sub.ch <- next
	}
	return true
}

func legal(from, to Status) bool {
	switch {
	case from == NotStarted:
		return to == Running
	case from == Running:
		return to.Terminal()
	default:
		return false
	}
}

// Close ends the stream and closes every subscriber channel. Only the first
// call has an effect; it returns whether this call closed the stream.
func (s *Stream) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed.CompareAndSwap(false, true) {
		return false
	}
	for _, sub := range s.subs {
		close(sub.ch)
	}
	s.subs = nil
	close(s.done)
	return true
}

// Last returns the most recently emitted status.
func (s *Stream) Last() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool {
	return s.closed.Load()
}

// Done is closed when the stream closes.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the stream closes and returns the last status.
func (s *Stream) Wait(ctx context.Context) (Status, error) {
	select {
	case <-s.done:
		return s.Last(), nil
	case <-ctx.Done():
		return s.Last(), ctx.Err()
	}
}
