package mascara

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/161chihuahuas/mascara/internal/dispatch"
	"github.com/161chihuahuas/mascara/internal/obslog"
	"github.com/161chihuahuas/mascara/internal/pointer"
	"github.com/161chihuahuas/mascara/internal/protoerr"
	"github.com/161chihuahuas/mascara/internal/wire"
)

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithClientLogger attaches a logger; defaults to a silent
// obslog.NullLogger.
func WithClientLogger(logger obslog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithClientStrictFraming makes a malformed complete frame fatal to the
// connection instead of held.
func WithClientStrictFraming() ClientOption {
	return func(c *Client) { c.strict = true }
}

// WithClientStreamRateLimit paces every outbound stream forwarder (one
// per Writable stream bound from a response) at r events per second with
// burst capacity burst. No limit is applied by default.
func WithClientStreamRateLimit(r rate.Limit, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// Client is one connection's caller-side handle: it issues requests and
// notifications and routes inbound responses and stream notifications
// back to their callers.
type Client struct {
	conn     Conn
	framer   *wire.Framer
	calls    *dispatch.CallRegistry
	streams  *pointer.Registry
	disp     *dispatch.Client
	logger   obslog.Logger
	strict   bool
	limiter  *rate.Limiter

	onUnhandled func(UnhandledEvent)
	onError     func(error)

	closeOnce    sync.Once
	teardownOnce sync.Once
	done         chan struct{}
}

// Connect dials addr via factory and starts the connection's read loop.
// The returned Client is ready to Invoke and Notify immediately.
func Connect(factory ClientFactory, addr string, opts ...ClientOption) (*Client, error) {
	conn, err := factory.Dial(addr)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:    conn,
		framer:  wire.NewFramer(conn),
		calls:   dispatch.NewCallRegistry(),
		streams: pointer.NewRegistry(),
		logger:  obslog.NullLogger{},
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.disp = &dispatch.Client{
		Calls:   c.calls,
		Streams: c.streams,
		Framer:  c.framer,
		Logger:  c.logger,
		Limiter: c.limiter,
		Unhandled: func(msg wire.Message) {
			c.emitUnhandled(msg)
		},
	}

	go c.readLoop()
	return c, nil
}

// OnUnhandled sets the callback invoked for every inbound message the
// dispatcher could not route.
func (c *Client) OnUnhandled(fn func(UnhandledEvent)) {
	c.onUnhandled = fn
}

// OnError sets the callback invoked once when the connection fails or is
// closed; pending calls and streams are invalidated before this fires.
func (c *Client) OnError(fn func(error)) {
	c.onError = fn
}

// Invoke sends a request for method with params and blocks until the
// matching response arrives, ctx is canceled, or the connection closes.
// A success response's result is returned with any stream-pointer string
// rebound to a local *Stream; an error response surfaces as a non-nil
// error satisfying errors.As into *protoerr.RemoteError.
func (c *Client) Invoke(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	type outcome struct {
		result []interface{}
		err    error
	}
	ch := make(chan outcome, 1)

	id := c.calls.New(func(result []interface{}, err error) {
		ch <- outcome{result: result, err: err}
	})

	if err := c.framer.Write(wire.NewRequest(id, method, params)); err != nil {
		c.calls.Complete(id, nil, err)
		return nil, err
	}

	select {
	case o := <-ch:
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, protoerr.ErrConnectionClosed
	}
}

// Notify sends a one-way notification; there is no response to wait for.
func (c *Client) Notify(method string, params ...interface{}) error {
	return c.framer.Write(wire.NewNotification(method, params))
}

// Close closes the underlying connection and invalidates every pending
// call and live stream with protoerr.ErrConnectionClosed.
func (c *Client) Close() error {
	err := c.closeConn()
	c.teardown(protoerr.ErrConnectionClosed)
	return err
}

// closeConn closes the underlying connection at most once, whether
// reached via Close or via teardown from the read loop.
func (c *Client) closeConn() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	deframer := wire.NewDeframer()
	deframer.Strict = c.strict

	buf := make([]byte, 4096)
	for {
		n, readErr := c.conn.Read(buf)
		if n > 0 {
			msgs, feedErr := deframer.Feed(buf[:n])
			for _, msg := range msgs {
				c.disp.Dispatch(msg)
			}
			if feedErr != nil {
				c.logger.Error("client: frame decode error: %v", feedErr)
				if deframer.Strict {
					c.teardown(protoerr.ErrMalformedFrame)
					return
				}
			}
		}
		if readErr != nil {
			c.teardown(protoerr.ErrConnectionClosed)
			return
		}
	}
}

func (c *Client) teardown(cause error) {
	c.closeConn()
	c.teardownOnce.Do(func() {
		close(c.done)
		c.calls.InvalidateAll(cause)
		c.streams.InvalidateAll(cause)
		if c.onError != nil {
			c.onError(cause)
		}
	})
}

func (c *Client) emitUnhandled(msg wire.Message) {
	if c.onUnhandled == nil {
		return
	}
	c.onUnhandled(UnhandledEvent{Method: msg.Method, ID: msg.ID})
}
