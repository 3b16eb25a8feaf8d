package wire

import (
	"strings"
)

// Deframer is a stateful byte-to-message transform. It
// accumulates an append-only buffer of undelivered bytes and, on each Feed
// call, splits on "\r\n" and parses frames from the front of the split
// list, stopping at the first one that fails to parse. The unconsumed
// remainder (including a legitimately partial trailing frame) is rejoined
// with "\r\n" and kept for the next Feed call.
//
// Strict selects which of two behaviors applies when a *complete* frame
// (one with more frames following it) fails to parse: Strict=false (the
// default) holds the buffer position and reports the failure without
// discarding anything further; Strict=true treats it as a protocol error
// fatal to the connection.
type Deframer struct {
	buf    string
	Strict bool
}

// NewDeframer returns a Deframer in lenient (hold) mode.
func NewDeframer() *Deframer {
	return &Deframer{}
}

// Feed appends chunk to the internal buffer and returns every message that
// can be fully decoded from the front of the buffer. A non-nil err means a
// complete frame failed to parse; it is returned in both modes, together
// with whatever messages parsed before the bad frame, and the bad frame
// (and everything after it) stays held in the buffer. With Strict set, the
// connection using this Deframer must then be torn down; in lenient mode
// the caller may surface it as an `unhandled` observation or await more
// bytes.
func (d *Deframer) Feed(chunk []byte) ([]Message, error) {
	d.buf += string(chunk)

	if !strings.Contains(d.buf, terminator) {
		return nil, nil
	}

	parts := strings.Split(d.buf, terminator)
	// The last element is whatever follows the final CRLF seen so far: it
	// may be empty (buffer ended exactly on a terminator) or a genuinely
	// partial frame. Either way it is never a candidate to parse yet.
	pending := parts[len(parts)-1]
	parts = parts[:len(parts)-1]

	var msgs []Message
	var stoppedAt int
	var stopErr error
	stopped := false

	for i, part := range parts {
		if part == "" {
			// An empty frame (back-to-back terminators) carries nothing;
			// skip it rather than treating it as malformed.
			continue
		}
		msg, err := Parse([]byte(part))
		if err != nil {
			hasMore := i < len(parts)-1
			if d.Strict && hasMore {
				// Fatal: leave the buffer in a well-defined state even
				// though the connection using this Deframer is about to
				// be torn down by the caller.
				d.buf = strings.Join(append(parts[i:], pending), terminator)
				return msgs, err
			}
			stopped = true
			stoppedAt = i
			stopErr = err
			break
		}
		msgs = append(msgs, msg)
	}

	if stopped {
		d.buf = strings.Join(append(append([]string{}, parts[stoppedAt:]...), pending), terminator)
		return msgs, stopErr
	}

	d.buf = pending
	return msgs, nil
}

// Pending reports the number of undelivered bytes currently buffered, for
// diagnostics and tests.
func (d *Deframer) Pending() int {
	return len(d.buf)
}
