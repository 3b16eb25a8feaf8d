// Package transport provides ready-made mascara.ServerFactory and
// mascara.ClientFactory implementations over TCP, Unix domain sockets, an
// in-memory pipe, and WebSocket. The choice of transport is otherwise
// entirely up to the embedder; the protocol engine is agnostic to it.
package transport

import (
	"net"

	"github.com/161chihuahuas/mascara"
)

type netListener struct {
	ln net.Listener
}

func (l *netListener) Accept() (mascara.Conn, error) {
	return l.ln.Accept()
}

func (l *netListener) Close() error {
	return l.ln.Close()
}

type tcpServerFactory struct{}

// TCP returns a mascara.ServerFactory that listens on a TCP address
// ("host:port").
func TCP() mascara.ServerFactory { return tcpServerFactory{} }

func (tcpServerFactory) Listen(addr string) (mascara.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &netListener{ln: ln}, nil
}

type tcpClientFactory struct{}

// TCPClient returns a mascara.ClientFactory that dials a TCP address.
func TCPClient() mascara.ClientFactory { return tcpClientFactory{} }

func (tcpClientFactory) Dial(addr string) (mascara.Conn, error) {
	return net.Dial("tcp", addr)
}
