package pointer

import (
	"context"
	"errors"
	"sync"
)

// ErrStreamClosed is returned by Push once a Stream has already ended.
var ErrStreamClosed = errors.New("pointer: stream closed")

// Stream is the local, in-process representation of one direction of data
// flow across a stream pointer. It is deliberately symmetric: whichever
// side owns the data produces it with Push/Close, and whichever side
// forwards or consumes it calls Recv in a loop until the second return
// value is false. The same type backs all four roles a stream pointer
// can play (minting-side source, minting-side sink, receiving-side
// mirror source, receiving-side mirror sink) — only which side calls
// Push versus Recv differs.
//
// Values flow as an unbounded, order-preserving queue (notification
// params are delivered in send order) with an explicit end marker,
// replacing an event-emitter/duplex-stream idiom with something that
// maps directly onto ordered notification frames.
type Stream struct {
	mu    sync.Mutex
	queue []interface{}
	ended bool
	err   error
	wake  chan struct{} // closed and replaced whenever queue/ended changes
}

// NewStream creates an empty, open Stream.
func NewStream() *Stream {
	return &Stream{wake: make(chan struct{})}
}

// Push enqueues a value for later delivery via Recv. It returns
// ErrStreamClosed if the stream has already ended.
func (s *Stream) Push(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrStreamClosed
	}
	s.queue = append(s.queue, v)
	s.broadcastLocked()
	return nil
}

// Close marks the stream ended with no error, carried over the wire as a
// `null` params element. Idempotent: closing an already-ended stream is
// a no-op.
func (s *Stream) Close() {
	s.CloseWithError(nil)
}

// CloseWithError marks the stream ended, optionally carrying a local
// error. The wire protocol does not distinguish remote stream errors
// from a clean end: both collapse to a single `null` notification once
// forwarded. The error is preserved locally so a handler or caller on
// the owning side can still observe why its own producer stopped.
func (s *Stream) CloseWithError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.err = err
	s.broadcastLocked()
}

// broadcastLocked wakes every Recv waiting on the stream. Caller holds mu.
func (s *Stream) broadcastLocked() {
	close(s.wake)
	s.wake = make(chan struct{})
}

// Recv blocks until a value is available, the stream ends, or ctx is
// done. ok is false when the stream has ended and every previously pushed
// value has already been delivered (err is then the error the stream was
// closed with, if any), or when ctx is done first (err is then ctx.Err()).
func (s *Stream) Recv(ctx context.Context) (v interface{}, ok bool, err error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			v = s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return v, true, nil
		}
		if s.ended {
			err = s.err
			s.mu.Unlock()
			return nil, false, err
		}
		wake := s.wake
		s.mu.Unlock()

		if ctx == nil {
			<-wake
			continue
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-wake:
		}
	}
}

// Ended reports whether the stream has been closed (by either Close or
// CloseWithError), regardless of whether every queued value has been
// drained yet.
func (s *Stream) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Endpoint pairs a Stream with the Kind it should be minted/bound as — a
// stream endpoint is tied to exactly one pointer for its lifetime. A
// handler returns an *Endpoint in its result values to have the
// dispatcher mint a pointer for it; the dispatcher itself produces
// *Endpoint values when binding a response's stream pointers on the
// client side.
type Endpoint struct {
	*Stream
	Kind Kind
}

// NewReadableEndpoint wraps a fresh Stream as a Readable endpoint: the
// owning side produces values by pushing into it, and the dispatcher
// forwards them outward as notifications.
func NewReadableEndpoint() *Endpoint {
	return &Endpoint{Stream: NewStream(), Kind: Readable}
}

// NewWritableEndpoint wraps a fresh Stream as a Writable endpoint: the
// dispatcher pushes inbound notification payloads into it, and the
// owning side consumes them by calling Recv.
func NewWritableEndpoint() *Endpoint {
	return &Endpoint{Stream: NewStream(), Kind: Writable}
}
