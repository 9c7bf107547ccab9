// Package stream drives a framer.Framer from a non-blocking byte source with
// a bounded poll loop.
package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/stuartleeks/home-dash/forecast-ring/framer"
)

var (
	ErrTimeout  = errors.New("stream: timed out waiting for data")
	ErrNoObject = errors.New("stream: connection closed before an object started")
	ErrTooLarge = errors.New("stream: object exceeds size limit")
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxDuration = 30 * time.Second
)

// Reader polls a Source until the framer completes one object.
type Reader struct {
	Framer *framer.Framer
	Clock  clock.Clock
	// Timeout is the longest gap allowed between two received bytes.
	Timeout time.Duration
	// PollDelay is slept after an empty poll. Sources that already wait
	// (ConnSource) can leave it at zero.
	PollDelay time.Duration
	// MaxDuration bounds a whole read, however steadily bytes arrive; zero
	// disables it.
	MaxDuration time.Duration
	// MaxObjectBytes caps a partial object, and separately the bytes skipped
	// before it starts; zero disables both caps.
	MaxObjectBytes int
}

func NewReader(f *framer.Framer, clk clock.Clock) *Reader {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Reader{
		Framer:      f,
		Clock:       clk,
		Timeout:     DefaultTimeout,
		MaxDuration: DefaultMaxDuration,
	}
}

// ReadObject returns the first complete object read from src. On any error
// the framer is reset before returning.
func (r *Reader) ReadObject(ctx context.Context, src Source) ([]byte, error) {
	f := r.Framer
	start := r.Clock.Now()
	lastByte := start
	skipped := 0

	for {
		if err := ctx.Err(); err != nil {
			f.Abort()
			return nil, err
		}
		if r.MaxDuration > 0 && r.Clock.Since(start) > r.MaxDuration {
			return nil, r.timedOut()
		}

		if b, ok := src.NextByte(); ok {
			lastByte = r.Clock.Now()
			if f.Feed(b) == framer.Complete {
				return f.Object(), nil
			}
			if !f.Accumulating() {
				skipped++
			}
			if r.MaxObjectBytes > 0 && (f.Len() > r.MaxObjectBytes || skipped > r.MaxObjectBytes) {
				f.Abort()
				return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, r.MaxObjectBytes)
			}
			continue
		}

		if !src.IsOpen() {
			if f.Abort() {
				return nil, framer.ErrIncomplete
			}
			return nil, ErrNoObject
		}

		if r.Timeout > 0 && r.Clock.Since(lastByte) > r.Timeout {
			return nil, r.timedOut()
		}

		if r.PollDelay > 0 {
			r.Clock.Sleep(r.PollDelay)
		}
	}
}

// timedOut resets the framer and reports whether an object was cut short.
func (r *Reader) timedOut() error {
	if r.Framer.Abort() {
		return fmt.Errorf("%w: %w", ErrTimeout, framer.ErrIncomplete)
	}
	return ErrTimeout
}
