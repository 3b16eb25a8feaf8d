package transport

import (
	"net"
	"sync"

	"github.com/161chihuahuas/mascara"
)

// Pipe returns a connected pair of in-memory mascara.Conns backed by
// net.Pipe, for embedding a Server and Client in one process without a
// real socket.
func Pipe() (client, server mascara.Conn) {
	c, s := net.Pipe()
	return c, s
}

// MemoryListener adapts a stream of pre-established server-side Conns
// (e.g. produced by Pipe, or by a test driving both ends directly) into
// a mascara.Listener, so Server.Listen can be exercised without any real
// transport.
type MemoryListener struct {
	conns     chan mascara.Conn
	closeOnce sync.Once
	closed    chan struct{}
}

// NewMemoryListener returns a MemoryListener with no connections queued.
func NewMemoryListener() *MemoryListener {
	return &MemoryListener{
		conns:  make(chan mascara.Conn),
		closed: make(chan struct{}),
	}
}

// Offer hands conn to the next Accept call, blocking until that happens
// or the listener is closed.
func (l *MemoryListener) Offer(conn mascara.Conn) {
	select {
	case l.conns <- conn:
	case <-l.closed:
	}
}

// Accept implements mascara.Listener.
func (l *MemoryListener) Accept() (mascara.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

// Close implements mascara.Listener; it is safe to call more than once.
func (l *MemoryListener) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return nil
}

type memoryServerFactory struct {
	listener *MemoryListener
}

// Memory wraps an existing MemoryListener as a mascara.ServerFactory; addr
// is ignored since the listener is already bound to its queue.
func Memory(listener *MemoryListener) mascara.ServerFactory {
	return memoryServerFactory{listener: listener}
}

func (f memoryServerFactory) Listen(addr string) (mascara.Listener, error) {
	return f.listener, nil
}
