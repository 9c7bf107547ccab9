// Package framer isolates one complete top-level JSON object from a byte
// stream by counting braces. It does not parse JSON.
//
// Braces inside string values are not special: a '{' or '}' inside a quoted
// value will desynchronise the depth counter. The forecast payloads this is
// used for never contain literal braces in their strings.
package framer

import (
	"errors"
	"fmt"
)

// ErrIncomplete reports that the stream ended or was abandoned while an
// object was still being accumulated.
var ErrIncomplete = errors.New("framer: incomplete object")

// Event is the result of feeding one byte.
type Event int

const (
	// Idle means the byte arrived before any object started.
	Idle Event = iota
	// Continue means an object is being accumulated.
	Continue
	// Complete means the byte closed the outermost brace; Object returns it.
	Complete
)

func (e Event) String() string {
	switch e {
	case Idle:
		return "idle"
	case Continue:
		return "continue"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Framer accumulates bytes from the first '{' until the matching '}'.
// A Framer is reused for the lifetime of the process and is not safe for
// concurrent use.
type Framer struct {
	depth        int
	accumulating bool
	buf          []byte
	last         []byte
	sizeHint     int
}

// New returns a framer whose buffer is pre-sized to sizeHint bytes.
func New(sizeHint int) *Framer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Framer{
		sizeHint: sizeHint,
		buf:      make([]byte, 0, sizeHint),
	}
}

// Feed consumes one byte.
func (f *Framer) Feed(b byte) Event {
	switch b {
	case '{':
		if !f.accumulating {
			f.accumulating = true
			f.buf = f.buf[:0]
		}
		f.depth++
		f.buf = append(f.buf, b)
		return Continue
	case '}':
		if !f.accumulating {
			// stray close before any object
			return Idle
		}
		f.depth--
		f.buf = append(f.buf, b)
		if f.depth == 0 {
			f.complete()
			return Complete
		}
		return Continue
	}

	if !f.accumulating {
		return Idle
	}
	f.buf = append(f.buf, b)
	return Continue
}

// complete hands the buffer to the caller and resets for the next object.
func (f *Framer) complete() {
	f.last = f.buf
	f.buf = make([]byte, 0, f.sizeHint)
	f.accumulating = false
	f.depth = 0
}

// Object returns the most recently completed object, from its opening '{'
// to its matching '}'. The slice is owned by the caller; the framer never
// writes to it again.
func (f *Framer) Object() []byte {
	return f.last
}

// Abort discards any partial object and resets the framer. It reports
// whether a partial object was thrown away.
func (f *Framer) Abort() bool {
	discarded := f.accumulating
	f.accumulating = false
	f.depth = 0
	f.buf = f.buf[:0]
	return discarded
}

// Accumulating reports whether an object has started but not completed.
func (f *Framer) Accumulating() bool {
	return f.accumulating
}

// Depth is the number of unmatched '{' in the current object.
func (f *Framer) Depth() int {
	return f.depth
}

// Len is the number of bytes accumulated for the current object.
func (f *Framer) Len() int {
	return len(f.buf)
}
