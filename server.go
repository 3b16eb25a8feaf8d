package mascara

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/161chihuahuas/mascara/internal/dispatch"
	"github.com/161chihuahuas/mascara/internal/obslog"
	"github.com/161chihuahuas/mascara/internal/pointer"
	"github.com/161chihuahuas/mascara/internal/protoerr"
	"github.com/161chihuahuas/mascara/internal/wire"
)

// ServerOption configures a Server at construction time.
type ServerOption func(*Server)

// WithScheme sets the stream-pointer scheme this Server mints, fixed per
// deployment. Defaults to "mascara".
func WithScheme(scheme string) ServerOption {
	return func(s *Server) { s.scheme = scheme }
}

// WithLogger attaches a logger; defaults to a silent obslog.NullLogger.
func WithLogger(logger obslog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithStrictFraming makes a malformed complete frame fatal to the
// connection instead of held.
func WithStrictFraming() ServerOption {
	return func(s *Server) { s.strict = true }
}

// WithMaxConnections caps the number of connections served concurrently;
// once the cap is reached, Listen holds further accepted connections
// until a served connection finishes. n <= 0 means unlimited, the
// default.
func WithMaxConnections(n int) ServerOption {
	return func(s *Server) { s.maxConnections = n }
}

// WithStreamRateLimit paces every outbound stream forwarder (one per
// minted Readable stream) at r events per second with burst capacity
// burst. Each connection gets its own limiter so one slow peer cannot
// starve another's streams. No limit is applied by default — streams
// forward as fast as their source produces.
func WithStreamRateLimit(r rate.Limit, burst int) ServerOption {
	return func(s *Server) { s.rateLimit, s.rateBurst, s.rateLimited = r, burst, true }
}

// Server accepts connections from a ServerFactory and dispatches inbound
// requests and notifications to a shared Handler Table, one dispatcher
// and Stream Registry per connection. The server side keeps no Call
// Registry, since it issues no requests of its own.
type Server struct {
	handlers       *dispatch.HandlerTable
	scheme         string
	logger         obslog.Logger
	strict         bool
	maxConnections int
	rateLimit      rate.Limit
	rateBurst      int
	rateLimited    bool

	onUnhandled func(UnhandledEvent)

	mu       sync.Mutex
	listener Listener
}

// NewServer creates a Server with no registered handlers.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		handlers: dispatch.NewHandlerTable(),
		scheme:   pointer.DefaultScheme,
		logger:   obslog.NullLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle registers h to answer requests for method. Registering under an
// already-registered name replaces the previous handler.
func (s *Server) Handle(method string, h Handler) {
	s.handlers.Register(method, h)
}

// OnUnhandled sets the callback invoked for every inbound message no
// connection's dispatcher could route.
func (s *Server) OnUnhandled(fn func(UnhandledEvent)) {
	s.onUnhandled = fn
}

// Listen binds addr via factory and serves connections until ctx is
// canceled or a connection accept fails fatally; it always closes the
// listener before returning. Each accepted connection is served in its
// own goroutine under an errgroup, so one connection's unexpected error
// does not affect the others — connections are independent failure
// domains.
func (s *Server) Listen(ctx context.Context, factory ServerFactory, addr string) error {
	ln, err := factory.Listen(addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})

	var sem chan struct{}
	if s.maxConnections > 0 {
		sem = make(chan struct{}, s.maxConnections)
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				// Not the shutdown path: returning err cancels ctx, which
				// closes the listener and ends every served connection.
				group.Go(func() error { return err })
			}
			break
		}
		if sem != nil {
			sem <- struct{}{}
		}
		group.Go(func() error {
			defer func() {
				if sem != nil {
					<-sem
				}
			}()
			s.serveConn(ctx, conn)
			return nil
		})
	}
	return group.Wait()
}

// Close stops accepting new connections by closing the listener, if any.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) serveConn(ctx context.Context, conn Conn) {
	defer conn.Close()
	// Closing conn on cancellation unblocks a Read still waiting on the peer.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	framer := wire.NewFramer(conn)
	deframer := wire.NewDeframer()
	deframer.Strict = s.strict
	streams := pointer.NewRegistry()

	var limiter *rate.Limiter
	if s.rateLimited {
		limiter = rate.NewLimiter(s.rateLimit, s.rateBurst)
	}

	disp := &dispatch.Server{
		Handlers: s.handlers,
		Streams:  streams,
		Framer:   framer,
		Scheme:   s.scheme,
		Logger:   s.logger,
		Limiter:  limiter,
		Unhandled: func(msg wire.Message) {
			s.emitUnhandled(msg)
		},
	}

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			streams.InvalidateAll(protoerr.ErrConnectionClosed)
			return
		default:
		}

		n, readErr := conn.Read(buf)
		if n > 0 {
			msgs, feedErr := deframer.Feed(buf[:n])
			for _, msg := range msgs {
				disp.Dispatch(msg)
			}
			if feedErr != nil {
				s.logger.Error("server: frame decode error: %v", feedErr)
				if deframer.Strict {
					streams.InvalidateAll(protoerr.ErrMalformedFrame)
					return
				}
			}
		}
		if readErr != nil {
			streams.InvalidateAll(protoerr.ErrConnectionClosed)
			return
		}
	}
}

func (s *Server) emitUnhandled(msg wire.Message) {
	if s.onUnhandled == nil {
		return
	}
	s.onUnhandled(UnhandledEvent{Method: msg.Method, ID: msg.ID})
}
