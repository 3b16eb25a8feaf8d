package mascara

import "github.com/161chihuahuas/mascara/internal/dispatch"

// Complete is called by a Handler exactly once to finish a request: either
// a non-nil err (which becomes an error response) or zero or more result
// values (which become a success response). Any *Stream among the result
// values is minted into a stream-pointer URL before the response is sent.
type Complete = dispatch.Complete

// Handler answers one JSON-RPC request. params are the request's
// positional arguments, already stripped of any stream-pointer
// rebinding; nothing in the engine binds pointers inbound to a request,
// so a handler wanting to accept a caller-supplied stream must be given
// one via an earlier call that minted it.
type Handler = dispatch.Handler

// UnhandledEvent describes one inbound message the dispatcher could not
// route: an unregistered notification method, a stray response to an
// unknown call id, or a request/response kind the connection side does
// not answer.
type UnhandledEvent struct {
	Method string
	ID     *string
}
