package mascara

import "io"

// Conn is one duplex byte-stream connection. Any net.Conn, including
// net.Pipe()'s two ends and a websocket.NetConn wrapper, satisfies it
// without adaptation.
type Conn interface {
	io.ReadWriteCloser
}

// Listener accepts inbound Conns. Returned by a ServerFactory.
type Listener interface {
	Accept() (Conn, error)
	Close() error
}

// ServerFactory binds an address to a Listener. The transport subpackage
// provides TCP, Unix-socket, in-memory, and WebSocket implementations;
// callers may supply their own for any other bidirectional byte stream —
// the engine itself is agnostic to the choice of underlying transport.
type ServerFactory interface {
	Listen(addr string) (Listener, error)
}

// ClientFactory dials an address and returns a connected Conn.
type ClientFactory interface {
	Dial(addr string) (Conn, error)
}
