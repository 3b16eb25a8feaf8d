package pointer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestStreamPushRecvOrder(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.Push("a"))
	require.NoError(t, s.Push("b"))
	s.Close()

	ctx := context.Background()
	v, ok, err := s.Recv(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok, err = s.Recv(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok, err = s.Recv(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStreamRecvBlocksUntilPush(t *testing.T) {
	s := NewStream()
	done := make(chan string, 1)
	go func() {
		v, ok, _ := s.Recv(context.Background())
		if ok {
			done <- v.(string)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Push("late"))

	select {
	case v := <-done:
		assert.Equal(t, "late", v)
	case <-time.After(time.Second):
		t.Fatal("Recv never observed the pushed value")
	}
}

func TestStreamPushAfterCloseFails(t *testing.T) {
	s := NewStream()
	s.Close()
	assert.ErrorIs(t, s.Push("x"), ErrStreamClosed)
}

func TestStreamCloseIdempotent(t *testing.T) {
	s := NewStream()
	s.Close()
	s.Close() // must not panic or block

	_, ok, err := s.Recv(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestStreamRecvRespectsContext(t *testing.T) {
	s := NewStream()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok, err := s.Recv(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestForwarderEmitsEndSentinel(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.Push("x"))
	require.NoError(t, s.Push("y"))
	s.Close()

	var got []interface{}
	var ended bool
	f := &Forwarder{}
	err := f.Run(context.Background(), s, func(v interface{}, end bool) error {
		if end {
			ended = true
			return nil
		}
		got = append(got, v)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"x", "y"}, got)
	assert.True(t, ended)
}

func TestForwarderRespectsLimiter(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.Push("x"))
	require.NoError(t, s.Push("y"))
	require.NoError(t, s.Push("z"))
	s.Close()

	const interval = 30 * time.Millisecond
	f := &Forwarder{Limiter: rate.NewLimiter(rate.Every(interval), 1)}

	start := time.Now()
	var got []interface{}
	err := f.Run(context.Background(), s, func(v interface{}, end bool) error {
		if !end {
			got = append(got, v)
		}
		return nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, []interface{}{"x", "y", "z"}, got)
	// Burst of 1 forces the limiter to wait out the interval before each
	// of the two items after the first, so forwarding all three takes at
	// least 2 intervals.
	assert.GreaterOrEqual(t, elapsed, 2*interval)
}

func TestForwarderRunCancelsWithLimiter(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.Push("x"))
	require.NoError(t, s.Push("y"))

	// burst of 1 lets the first item through immediately; the second
	// item's reservation then waits until the context deadline.
	f := &Forwarder{Limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := f.Run(ctx, s, func(v interface{}, end bool) error {
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
