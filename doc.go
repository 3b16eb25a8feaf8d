// Package mascara implements a bidirectional JSON-RPC 2.0 protocol engine
// that embeds live object streams inside its own control channel: a
// response can carry a stream-pointer URL that the receiving peer rebinds
// to a local stream endpoint, with that endpoint's data carried by
// ordinary JSON-RPC notifications on the same duplex connection.
//
// The engine is transport-agnostic: Server and Client are driven by a
// ServerFactory/ClientFactory the caller supplies (see the transport
// subpackage for TCP, Unix-socket, in-memory, and WebSocket
// implementations). Method handlers, authentication, process bootstrap,
// and logging policy are the caller's concern; this package owns only the
// framing codec, the dispatch state machine, and the lifecycle of minted
// streams.
package mascara
