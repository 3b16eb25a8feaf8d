package transport

import (
	"context"
	"net"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/161chihuahuas/mascara"
)

// wsConn adapts a *websocket.Conn to mascara.Conn's plain
// io.ReadWriteCloser shape via websocket.NetConn, treating the whole
// connection as one binary byte stream the way nhooyr.io/websocket
// recommends for callers that don't care about WebSocket's own message
// framing.
func wsConn(c *websocket.Conn) mascara.Conn {
	return websocket.NetConn(context.Background(), c, websocket.MessageBinary)
}

type wsListener struct {
	ln    net.Listener
	srv   *http.Server
	conns chan mascara.Conn
}

func (l *wsListener) handle(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	select {
	case l.conns <- wsConn(c):
	case <-r.Context().Done():
		c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (l *wsListener) Accept() (mascara.Conn, error) {
	c, ok := <-l.conns
	if !ok {
		return nil, net.ErrClosed
	}
	return c, nil
}

func (l *wsListener) Close() error {
	return l.ln.Close()
}

type wsServerFactory struct{}

// Websocket returns a mascara.ServerFactory that serves one WebSocket
// endpoint at the root path of a plain HTTP listener on addr.
func Websocket() mascara.ServerFactory { return wsServerFactory{} }

func (wsServerFactory) Listen(addr string) (mascara.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l := &wsListener{ln: ln, conns: make(chan mascara.Conn)}
	l.srv = &http.Server{Handler: http.HandlerFunc(l.handle)}
	go l.srv.Serve(ln)
	return l, nil
}

type wsClientFactory struct{}

// WebsocketClient returns a mascara.ClientFactory that dials a ws:// or
// wss:// URL.
func WebsocketClient() mascara.ClientFactory { return wsClientFactory{} }

func (wsClientFactory) Dial(addr string) (mascara.Conn, error) {
	c, _, err := websocket.Dial(context.Background(), addr, nil)
	if err != nil {
		return nil, err
	}
	return wsConn(c), nil
}
