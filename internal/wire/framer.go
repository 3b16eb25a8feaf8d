package wire

import (
	"fmt"
	"io"
	"sync"
)

const terminator = "\r\n"

// Framer serializes messages onto an underlying writer, one complete frame
// per call: UTF8(JSON(message)) followed by the two-byte terminator. It
// serializes concurrent writers with a mutex so two frames' bytes are
// never interleaved and the terminator is never split.
type Framer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewFramer wraps w for frame-at-a-time writes.
func NewFramer(w io.Writer) *Framer {
	return &Framer{w: w}
}

// Write encodes msg as JSON and appends the CRLF terminator, writing the
// whole frame in one call under the framer's lock.
func (f *Framer) Write(msg Message) error {
	body, err := msg.MarshalJSON()
	if err != nil {
		return fmt.Errorf("wire: encode frame: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.w.Write(body); err != nil {
		return fmt.Errorf("wire: write frame: %w", err)
	}
	if _, err := f.w.Write([]byte(terminator)); err != nil {
		return fmt.Errorf("wire: write frame terminator: %w", err)
	}
	return nil
}
