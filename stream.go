package mascara

import "github.com/161chihuahuas/mascara/internal/pointer"

// Stream is a handle to one live, unbounded, ordered sequence of values
// that travels over the wire as stream-pointer notifications instead of
// living inline in a single response. A handler returns one to have its
// result minted into a pointer URL; a caller receives one bound to a
// pointer URL found in a response.
//
// Kind reflects the minting side's view: the minting side Pushes into a
// Readable stream and the peer's bound copy delivers those values via
// Recv; the peer Pushes into its bound copy of a Writable stream and the
// minting side receives those values via Recv.
type Stream = pointer.Endpoint

// StreamKind distinguishes a readable stream (values flow from the minting
// side to the peer) from a writable one (values flow from the peer to the
// minting side).
type StreamKind = pointer.Kind

const (
	Readable StreamKind = pointer.Readable
	Writable StreamKind = pointer.Writable
)

// NewReadableStream creates a stream a handler can return as a result
// value; the engine mints it into a pointer URL and forwards every Push
// on it to the caller as notifications.
func NewReadableStream() *Stream {
	return pointer.NewReadableEndpoint()
}

// NewWritableStream creates a stream a handler can return as a result
// value; the engine mints it into a pointer URL, and inbound
// notifications addressed to that pointer are delivered via Recv.
func NewWritableStream() *Stream {
	return pointer.NewWritableEndpoint()
}
