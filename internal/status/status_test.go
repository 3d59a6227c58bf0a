package status

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan Status) []Status {
	var out []Status
	for s := range ch {
		out = append(out, s)
	}
	return out
}

func TestStream_Sequence(t *testing.T) {
	s := NewStream()
	ch, unsub := s.Subscribe()
	defer unsub()

	assert.True(t, s.Emit(Running))
	assert.True(t, s.Emit(Succeeded))
	assert.True(t, s.Close())

	assert.Equal(t, []Status{Running, Succeeded}, drain(ch))
	assert.Equal(t, Succeeded, s.Last())
	assert.True(t, s.Closed())
}

func TestStream_RejectsIllegalTransitions(t *testing.T) {
	s := NewStream()
	ch, _ := s.Subscribe()

	assert.False(t, s.Emit(Succeeded), "terminal before running")
	assert.False(t, s.Emit(NotStarted))
	assert.True(t, s.Emit(Running))
	assert.False(t, s.Emit(Running), "running twice")
	assert.True(t, s.Emit(Cancelled))
	assert.False(t, s.Emit(Failed), "second terminal")
	s.Close()
	assert.False(t, s.Emit(Running), "after close")

	assert.Equal(t, []Status{Running, Cancelled}, drain(ch))
}

func TestStream_CloseOnce(t *testing.T) {
	s := NewStream()
	assert.True(t, s.Close())
	assert.False(t, s.Close())
}

func TestStream_SubscribeAfterClose(t *testing.T) {
	s := NewStream()
	s.Emit(Running)
	s.Emit(Failed)
	s.Close()

	ch, unsub := s.Subscribe()
	unsub()
	_, ok := <-ch
	assert.False(t, ok, "late subscriber only sees completion")
}

func TestStream_LateSubscriberMissesEarlierValues(t *testing.T) {
	s := NewStream()
	s.Emit(Running)

	ch, _ := s.Subscribe()
	s.Emit(Succeeded)
	s.Close()

	assert.Equal(t, []Status{Succeeded}, drain(ch))
}

func TestStream_Unsubscribe(t *testing.T) {
	s := NewStream()
	ch, unsub := s.Subscribe()
	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok)
	assert.True(t, s.Emit(Running))
	assert.True(t, s.Close())
}

func TestStream_Wait(t *testing.T) {
	s := NewStream()
	go func() {
		s.Emit(Running)
		s.Emit(Succeeded)
		s.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := s.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, Succeeded, got)
}

func TestStream_WaitTimeout(t *testing.T) {
	s := NewStream()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStream_ConcurrentTerminal(t *testing.T) {
	s := NewStream()
	ch, _ := s.Subscribe()
	s.Emit(Running)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for _, st := range []Status{Succeeded, Failed, Cancelled, Succeeded} {
		wg.Add(2)
		go func(st Status) {
			defer wg.Done()
			if s.Emit(st) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(st)
		go func() {
			defer wg.Done()
			s.Close()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, accepted, 1)
	got := drain(ch)
	assert.Equal(t, Running, got[0])
	assert.LessOrEqual(t, len(got), 2)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "unknown", Status(42).String())
	assert.True(t, Failed.Terminal())
	assert.False(t, Running.Terminal())
}
