// Package dispatch implements the server and client dispatcher state
// machines: routing a decoded wire.Message by kind to the Handler Table
// or Call Registry, rebinding stream pointers through the Stream
// Registry, and recovering from every non-fatal error category without
// tearing down the connection.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/161chihuahuas/mascara/internal/obslog"
	"github.com/161chihuahuas/mascara/internal/pointer"
	"github.com/161chihuahuas/mascara/internal/protoerr"
	"github.com/161chihuahuas/mascara/internal/wire"
)

// Server holds everything the server-side dispatcher needs for one
// connection: the Handler Table (shared across connections), this
// connection's Stream Registry, the Framer to write responses and
// notifications on, the configured pointer scheme, and a logger.
type Server struct {
	Handlers *HandlerTable
	Streams  *pointer.Registry
	Framer   *wire.Framer
	Scheme   string
	Logger   obslog.Logger
	// Limiter, if non-nil, throttles every outbound stream forwarder on
	// this connection at a shared rate — optional credit-based flow
	// control at the pointer boundary. Nil means no throttling.
	Limiter *rate.Limiter
	// Unhandled is invoked for every message the dispatcher cannot route:
	// an unregistered notification method or a stray response. May be
	// nil.
	Unhandled func(wire.Message)
}

func (s *Server) emitUnhandled(msg wire.Message) {
	if s.Unhandled != nil {
		s.Unhandled(msg)
	}
}

// Dispatch routes one decoded message to the server-side dispatcher.
func (s *Server) Dispatch(msg wire.Message) {
	switch msg.Kind {
	case wire.KindNotification:
		s.dispatchNotification(msg)
	case wire.KindRequest:
		s.dispatchRequest(msg)
	case wire.KindSuccess, wire.KindError:
		// Servers in this profile do not issue outbound requests, so a
		// response arriving here has nothing to correlate to.
		s.Logger.Debug("server: unhandled response id=%v", idString(msg.ID))
		s.emitUnhandled(msg)
	}
}

func (s *Server) dispatchNotification(msg wire.Message) {
	p, isPointer := pointer.Parse(msg.Method)
	if isPointer {
		if stream, found := s.Streams.Lookup(p.String()); found {
			deliverStreamPayload(stream, msg.Params, s.Streams, p.String())
			return
		}
	}
	s.Logger.Debug("server: unhandled notification method=%s", msg.Method)
	s.emitUnhandled(msg)
}

func (s *Server) dispatchRequest(msg wire.Message) {
	id := msg.ID
	h, ok := s.Handlers.Lookup(msg.Method)
	if !ok {
		s.sendError(id, protoerr.GenericErrorCode, fmt.Sprintf("%s: %s", protoerr.ErrInvalidMethod, msg.Method))
		return
	}

	method := msg.Method
	complete := func(err error, values ...interface{}) {
		defer func() {
			if r := recover(); r != nil {
				s.Logger.Error("server: panic in completion for %s: %v", method, r)
			}
		}()
		if err != nil {
			s.sendError(id, remoteCode(err), err.Error())
			return
		}
		s.sendSuccess(id, s.mintResultStreams(values))
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				// A synchronous handler exception produces an error
				// response and does not tear down the connection.
				s.sendError(id, protoerr.GenericErrorCode, fmt.Sprintf("%v", r))
			}
		}()
		h(msg.Params, complete)
	}()
}

// mintResultStreams replaces every *pointer.Endpoint in values with its
// minted pointer-URL string, registering the endpoint and, for Readable
// endpoints, starting the outbound forwarder.
func (s *Server) mintResultStreams(values []interface{}) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		ep, ok := v.(*pointer.Endpoint)
		if !ok {
			result[i] = v
			continue
		}
		p := pointer.Mint(s.Scheme, ep.Kind)
		s.Streams.Register(p, ep.Stream)
		result[i] = p.String()
		if ep.Kind == pointer.Readable {
			go forwardOutbound(s.Framer, p.String(), ep.Stream, s.Streams, s.Logger, s.Limiter)
		}
	}
	return result
}

func (s *Server) sendError(id *string, code int, message string) {
	if err := s.Framer.Write(wire.NewError(id, code, message)); err != nil {
		s.Logger.Error("server: write error response: %v", err)
	}
}

func (s *Server) sendSuccess(id *string, result []interface{}) {
	if id == nil {
		return
	}
	if err := s.Framer.Write(wire.NewSuccess(*id, result)); err != nil {
		s.Logger.Error("server: write success response: %v", err)
	}
}

// deliverStreamPayload pushes each params element into stream in order,
// closing and deregistering it at the first nil element.
func deliverStreamPayload(stream *pointer.Stream, params []interface{}, streams *pointer.Registry, key string) {
	for _, item := range params {
		if item == nil {
			stream.Close()
			streams.Deregister(key)
			return
		}
		_ = stream.Push(item)
	}
}

// forwardOutbound drains stream and writes each value as a notification
// under pointerString, finishing with a single params=[null] notification
// and deregistering the pointer. limiter, if non-nil, paces the forwarder
// at a shared per-connection rate.
func forwardOutbound(framer *wire.Framer, pointerString string, stream *pointer.Stream, streams *pointer.Registry, logger obslog.Logger, limiter *rate.Limiter) {
	f := &pointer.Forwarder{Limiter: limiter}
	err := f.Run(context.Background(), stream, func(v interface{}, end bool) error {
		if end {
			defer streams.Deregister(pointerString)
			return framer.Write(wire.NewNotification(pointerString, []interface{}{nil}))
		}
		return framer.Write(wire.NewNotification(pointerString, []interface{}{v}))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stream forward %s: %v", pointerString, err)
	}
}

func remoteCode(err error) int {
	var re *protoerr.RemoteError
	if errors.As(err, &re) {
		return re.Code
	}
	return protoerr.GenericErrorCode
}

func idString(id *string) string {
	if id == nil {
		return "<nil>"
	}
	return *id
}
