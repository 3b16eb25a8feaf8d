// Package protoerr defines the error taxonomy of the mascara protocol
// engine: transport failure, frame-decode failure, unknown method,
// handler failure, invalid stream reference, and stray messages. Only
// the first two are fatal to a connection; the rest are recovered from
// locally.
package protoerr

import "errors"

// Sentinel errors surfaced to callers of Client and Server.
var (
	// ErrConnectionClosed is returned to a call still pending when the
	// underlying transport closes or errors; a call made after that fails
	// with the transport's own write error.
	ErrConnectionClosed = errors.New("mascara: connection closed")

	// ErrInvalidMethod is the message-shaped error sent back to a peer
	// that invoked a method absent from the Handler Table.
	ErrInvalidMethod = errors.New("mascara: Invalid method")

	// ErrMalformedFrame marks a complete frame that failed to parse as
	// any of the four JSON-RPC message kinds.
	ErrMalformedFrame = errors.New("mascara: malformed frame")

	// ErrInvalidStreamReference marks a notification whose method does
	// not parse as a stream-pointer URL at all.
	ErrInvalidStreamReference = errors.New("mascara: invalid stream reference")
)

// RemoteError wraps the message of a JSON-RPC error response or a
// synchronous handler failure, so callers can distinguish "the peer said no"
// from a local/transport failure.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// NewRemoteError builds a RemoteError carrying a caller-supplied message,
// defaulting to the generic code the core uses for all application
// errors — a single generic error category, not a graded code space.
func NewRemoteError(message string) *RemoteError {
	return &RemoteError{Code: GenericErrorCode, Message: message}
}

// GenericErrorCode is the sole error code the core itself assigns;
// specific codes beyond this are not part of the wire contract.
const GenericErrorCode = -32000
