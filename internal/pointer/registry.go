package pointer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Registry is a per-connection mapping from stream-pointer URLs to their
// local Stream endpoints: written on the minting side when a handler
// result installs a new pointer, and on the receiving side when a
// response is rebound to a local mirror endpoint.
type Registry struct {
	mu        sync.Mutex
	endpoints map[string]*Stream
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]*Stream)}
}

// Register installs stream under pointer. Pointers are unique per
// connection; registering the same pointer string twice replaces the
// previous entry, which should not happen in practice since Mint always
// produces a fresh id.
func (r *Registry) Register(p Pointer, s *Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints[p.String()] = s
}

// Lookup returns the stream registered under the literal pointer string,
// if any — this is how a stream-pointer notification is distinguished
// from an ordinary application notification.
func (r *Registry) Lookup(pointerString string) (*Stream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.endpoints[pointerString]
	return s, ok
}

// Deregister removes pointer from the registry once its stream has
// ended or finished forwarding.
func (r *Registry) Deregister(pointerString string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.endpoints, pointerString)
}

// InvalidateAll ends every registered stream with err — used on
// transport close to signal end/error on every still-registered
// endpoint — and empties the registry.
func (r *Registry) InvalidateAll(err error) {
	r.mu.Lock()
	endpoints := r.endpoints
	r.endpoints = make(map[string]*Stream)
	r.mu.Unlock()

	for _, s := range endpoints {
		s.CloseWithError(err)
	}
}

// Len reports how many pointers are currently registered, for tests and
// diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.endpoints)
}

// Forwarder pulls values from a locally-owned Stream and hands them to a
// sink function — typically "wrap as a notification and write it" —
// until the stream ends, then calls sink once more with (nil, true) to
// signal the end-of-stream `null` terminator: each data chunk becomes a
// notification, and end or error becomes a single params=[null]
// notification.
//
// Limiter is optional credit-based flow control at the producer
// boundary. A nil Limiter forwards as fast as the local stream produces,
// which is the default: no back-pressure unless a caller opts in.
type Forwarder struct {
	Limiter *rate.Limiter
}

// Run drains s via Recv and invokes sink(value, end) for each item and
// once more for the terminal end event. It returns when the stream ends or
// ctx is cancelled.
func (f *Forwarder) Run(ctx context.Context, s *Stream, sink func(value interface{}, end bool) error) error {
	for {
		if f.Limiter != nil {
			r := f.Limiter.Reserve()
			if delay := r.Delay(); delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					r.Cancel()
					return ctx.Err()
				case <-timer.C:
				}
			}
		}

		v, ok, err := s.Recv(ctx)
		if !ok {
			return sink(nil, true)
		}
		_ = err // Recv only returns a non-nil err alongside ok=false
		if serr := sink(v, false); serr != nil {
			return serr
		}
	}
}
