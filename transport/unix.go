package transport

import (
	"net"
	"os"

	"github.com/161chihuahuas/mascara"
)

type unixServerFactory struct{}

// Unix returns a mascara.ServerFactory that listens on a Unix domain
// socket path, removing any stale socket file left at that path before
// binding (the same stale-socket cleanup a daemon's own bootstrap
// performs before calling Listen — see internal/daemonutil).
func Unix() mascara.ServerFactory { return unixServerFactory{} }

func (unixServerFactory) Listen(addr string) (mascara.Listener, error) {
	if info, err := os.Stat(addr); err == nil && info.Mode()&os.ModeSocket != 0 {
		os.Remove(addr)
	}
	ln, err := net.Listen("unix", addr)
	if err != nil {
		return nil, err
	}
	return &netListener{ln: ln}, nil
}

type unixClientFactory struct{}

// UnixClient returns a mascara.ClientFactory that dials a Unix domain
// socket path.
func UnixClient() mascara.ClientFactory { return unixClientFactory{} }

func (unixClientFactory) Dial(addr string) (mascara.Conn, error) {
	return net.Dial("unix", addr)
}
