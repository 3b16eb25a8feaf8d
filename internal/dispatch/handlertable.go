package dispatch

import "sync"

// Complete is the single completion continuation a Handler is handed
//: it accepts an error, or a list of positional success
// values, and must be called exactly once.
type Complete func(err error, values ...interface{})

// Handler is a user-supplied routine bound to a method name.
// Any value in values that is a *pointer.Endpoint (passed as
// interface{} to keep this package independent of the pointer package's
// import in its public signature) is rebound to a freshly minted
// stream-pointer by the dispatcher before the result is written to the
// wire.
type Handler func(params []interface{}, done Complete)

// HandlerTable maps method names to Handlers.
type HandlerTable struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewHandlerTable returns an empty table.
func NewHandlerTable() *HandlerTable {
	return &HandlerTable{handlers: make(map[string]Handler)}
}

// Register binds method to h, replacing any previous binding.
func (t *HandlerTable) Register(method string, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[method] = h
}

// Lookup returns the handler bound to method, if any.
func (t *HandlerTable) Lookup(method string) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handlers[method]
	return h, ok
}
