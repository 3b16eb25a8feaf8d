package dispatch

import (
	"strconv"
	"sync"
)

// Completion is invoked exactly once when a pending call reaches a
// terminal response: result holds the (possibly stream-rebound) positional
// success values, or err is the failure.
type Completion func(result []interface{}, err error)

// CallRegistry is the client-side mapping from request id to pending
// completion. A request id is live from New until the first Complete
// call for that id; a second Complete for the same id finds nothing and
// is a no-op, so duplicate responses for an id reach no completion; the
// client dispatcher reports them as unhandled.
type CallRegistry struct {
	mu      sync.Mutex
	pending map[string]Completion
	nextID  uint64
}

// NewCallRegistry returns an empty registry.
func NewCallRegistry() *CallRegistry {
	return &CallRegistry{pending: make(map[string]Completion)}
}

// New allocates a fresh request id and installs completion for it,
// returning the id to stamp onto the outgoing request.
func (c *CallRegistry) New(completion Completion) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := strconv.FormatUint(c.nextID, 10)
	c.pending[id] = completion
	return id
}

// Complete retires id and invokes its completion, if one is still
// pending. It reports whether a pending call was found, so callers can
// emit `unhandled` for a response whose id matches nothing instead of
// crashing.
func (c *CallRegistry) Complete(id string, result []interface{}, err error) bool {
	c.mu.Lock()
	completion, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	completion(result, err)
	return true
}

// InvalidateAll completes every still-pending call with err — used when
// the underlying transport closes, so no caller blocks forever — and
// empties the registry.
func (c *CallRegistry) InvalidateAll(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]Completion)
	c.mu.Unlock()

	for _, completion := range pending {
		completion(nil, err)
	}
}

// Len reports the number of live request ids, for tests and diagnostics.
func (c *CallRegistry) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
