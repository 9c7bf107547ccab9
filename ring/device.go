package ring

import "sync"

// Strip is an addressable LED strip. Colours set with SetPixelColor become
// visible on Show.
type Strip interface {
	NumPixels() int
	SetPixelColor(i int, c Color)
	Show() error
}

// Servo positions the sun indicator.
type Servo interface {
	Write(angle int) error
}

const (
	MinAngle = 0
	MaxAngle = 180
)

func ClampAngle(angle int) int {
	if angle < MinAngle {
		return MinAngle
	}
	if angle > MaxAngle {
		return MaxAngle
	}
	return angle
}

// Pixels is an in-memory strip. It can be read while animations run.
type Pixels struct {
	mu      sync.RWMutex
	pending []Color
	shown   []Color
	shows   int
}

func NewPixels(n int) *Pixels {
	return &Pixels{
		pending: make([]Color, n),
		shown:   make([]Color, n),
	}
}

func (p *Pixels) NumPixels() int {
	return len(p.pending)
}

// SetPixelColor ignores out of range indexes, as the hardware library does.
func (p *Pixels) SetPixelColor(i int, c Color) {
	if i < 0 || i >= len(p.pending) {
		return
	}
	p.mu.Lock()
	p.pending[i] = c
	p.mu.Unlock()
}

func (p *Pixels) Show() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	copy(p.shown, p.pending)
	p.shows++
	return nil
}

// Shown returns a copy of the last frame pushed with Show.
func (p *Pixels) Shown() []Color {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Color, len(p.shown))
	copy(out, p.shown)
	return out
}

// Shows counts frames pushed so far.
func (p *Pixels) Shows() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.shows
}

// ServoState is an in-memory servo.
type ServoState struct {
	mu    sync.RWMutex
	angle int
}

func (s *ServoState) Write(angle int) error {
	s.mu.Lock()
	s.angle = ClampAngle(angle)
	s.mu.Unlock()
	return nil
}

func (s *ServoState) Angle() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.angle
}
