package stream

import (
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// Source yields bytes from a live connection without blocking.
type Source interface {
	// NextByte returns the next available byte, or false if none has
	// arrived yet or the source is closed.
	NextByte() (byte, bool)
	// IsOpen distinguishes "no data yet" from "connection closed".
	IsOpen() bool
}

const (
	DefaultPollSlice = 10 * time.Millisecond
	defaultChunkSize = 512
)

// ConnSource reads a net.Conn in chunks. Each refill waits at most
// PollSlice for data, so NextByte returns promptly when the peer is quiet.
type ConnSource struct {
	conn      net.Conn
	pollSlice time.Duration
	buf       []byte
	pos       int
	end       int
	closed    bool
	err       error
}

func NewConnSource(conn net.Conn, pollSlice time.Duration) *ConnSource {
	if pollSlice <= 0 {
		pollSlice = DefaultPollSlice
	}
	return &ConnSource{
		conn:      conn,
		pollSlice: pollSlice,
		buf:       make([]byte, defaultChunkSize),
	}
}

func (s *ConnSource) NextByte() (byte, bool) {
	if s.pos < s.end {
		b := s.buf[s.pos]
		s.pos++
		return b, true
	}
	if s.closed {
		return 0, false
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(s.pollSlice)); err != nil {
		s.close(err)
		return 0, false
	}
	n, err := s.conn.Read(s.buf)
	s.pos, s.end = 0, n
	if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		// keep whatever arrived with the error; IsOpen stays true until drained
		s.close(err)
	}
	if n == 0 {
		return 0, false
	}
	s.pos = 1
	return s.buf[0], true
}

func (s *ConnSource) IsOpen() bool {
	return !s.closed || s.pos < s.end
}

// Err returns the read error that closed the source, or nil on clean EOF.
func (s *ConnSource) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

func (s *ConnSource) close(err error) {
	s.closed = true
	s.err = err
}

// ReaderSource adapts an io.Reader. A zero-length read with no error is
// treated as "no data yet"; io.EOF closes the source.
type ReaderSource struct {
	r      io.Reader
	buf    []byte
	pos    int
	end    int
	closed bool
	err    error
}

func NewReaderSource(r io.Reader, chunkSize int) *ReaderSource {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &ReaderSource{r: r, buf: make([]byte, chunkSize)}
}

func (s *ReaderSource) NextByte() (byte, bool) {
	if s.pos >= s.end {
		if s.closed {
			return 0, false
		}
		n, err := s.r.Read(s.buf)
		s.pos, s.end = 0, n
		if err != nil {
			s.closed = true
			s.err = err
		}
		if n == 0 {
			return 0, false
		}
	}
	b := s.buf[s.pos]
	s.pos++
	return b, true
}

func (s *ReaderSource) IsOpen() bool {
	return !s.closed || s.pos < s.end
}

// Err returns the read error that closed the source, or nil on clean EOF.
func (s *ReaderSource) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}
