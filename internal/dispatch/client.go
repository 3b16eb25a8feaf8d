package dispatch

import (
	"golang.org/x/time/rate"

	"github.com/161chihuahuas/mascara/internal/obslog"
	"github.com/161chihuahuas/mascara/internal/pointer"
	"github.com/161chihuahuas/mascara/internal/protoerr"
	"github.com/161chihuahuas/mascara/internal/wire"
)

// Client holds everything the client-side dispatcher needs for its single
// connection: the Call Registry, this connection's Stream Registry, the
// Framer (needed to forward a bound Writable endpoint's local writes back
// to the minting side), and a logger.
type Client struct {
	Calls   *CallRegistry
	Streams *pointer.Registry
	Framer  *wire.Framer
	Logger  obslog.Logger
	// Limiter, if non-nil, throttles every outbound stream forwarder on
	// this connection at a shared rate. Nil means no throttling.
	Limiter *rate.Limiter
	// Unhandled is invoked for every message the dispatcher cannot
	// route: an unregistered notification method or a stray response.
	// May be nil.
	Unhandled func(wire.Message)
}

func (c *Client) emitUnhandled(msg wire.Message) {
	if c.Unhandled != nil {
		c.Unhandled(msg)
	}
}

// Dispatch routes one decoded message to the client-side dispatcher.
func (c *Client) Dispatch(msg wire.Message) {
	switch msg.Kind {
	case wire.KindSuccess:
		c.dispatchSuccess(msg)
	case wire.KindError:
		c.dispatchError(msg)
	case wire.KindNotification:
		c.dispatchNotification(msg)
	case wire.KindRequest:
		// The core client never answers inbound requests; there is no
		// client-side Handler Table.
		c.Logger.Debug("client: unhandled request method=%s", msg.Method)
		c.emitUnhandled(msg)
	}
}

func (c *Client) dispatchSuccess(msg wire.Message) {
	if msg.ID == nil {
		c.emitUnhandled(msg)
		return
	}
	result := c.bindResultStreams(msg.Result)
	if !c.Calls.Complete(*msg.ID, result, nil) {
		c.Logger.Debug("client: unhandled success id=%s", *msg.ID)
		c.emitUnhandled(msg)
	}
}

func (c *Client) dispatchError(msg wire.Message) {
	if msg.ID == nil {
		c.emitUnhandled(msg)
		return
	}
	remoteErr := &protoerr.RemoteError{Message: msg.Error.Message, Code: msg.Error.Code}
	if !c.Calls.Complete(*msg.ID, nil, remoteErr) {
		c.Logger.Debug("client: unhandled error id=%s", *msg.ID)
		c.emitUnhandled(msg)
	}
}

func (c *Client) dispatchNotification(msg wire.Message) {
	p, isPointer := pointer.Parse(msg.Method)
	if isPointer {
		if stream, found := c.Streams.Lookup(p.String()); found {
			deliverStreamPayload(stream, msg.Params, c.Streams, p.String())
			return
		}
	}
	c.Logger.Debug("client: unhandled notification method=%s", msg.Method)
	c.emitUnhandled(msg)
}

// bindResultStreams scans a success result array for stream-pointer
// strings and rebinds each to a local mirror *pointer.Endpoint. A
// Writable pointer's mirror is a local producer: the dispatcher starts
// an outbound forwarder so local Pushes become notifications back to the
// minting side. A Readable pointer's mirror is a local consumer fed by
// inbound notifications, requiring no forwarder.
func (c *Client) bindResultStreams(result []interface{}) []interface{} {
	out := make([]interface{}, len(result))
	for i, v := range result {
		str, ok := v.(string)
		if !ok {
			out[i] = v
			continue
		}
		p, ok := pointer.Parse(str)
		if !ok {
			out[i] = v
			continue
		}

		stream := pointer.NewStream()
		c.Streams.Register(p, stream)
		if p.Kind == pointer.Writable {
			go forwardOutbound(c.Framer, p.String(), stream, c.Streams, c.Logger, c.Limiter)
		}
		out[i] = &pointer.Endpoint{Stream: stream, Kind: p.Kind}
	}
	return out
}
