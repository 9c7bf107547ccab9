package ring

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/stuartleeks/home-dash/forecast-ring/decision"
)

const (
	DefaultWipeWait = 50 * time.Millisecond
	thunderWipeWait = 30 * time.Millisecond
	idleRainbowWait = 20 * time.Millisecond
)

// Snapshot is what the ring and servo currently show.
type Snapshot struct {
	Pixels   []Color
	Angle    int
	State    decision.State
	HasState bool
}

// Display drives the strip and servo together.
type Display struct {
	anim    *Animator
	servo   Servo
	palette Palette
	wait    time.Duration

	mu       sync.RWMutex
	state    decision.State
	hasState bool
	angle    int
	onChange func(Snapshot)
	pixels   func() []Color
}

// NewDisplay wires a display. Pixels strips are readable for snapshots;
// other strips snapshot as the palette colour of the current state.
func NewDisplay(strip Strip, servo Servo, clk clock.Clock, palette Palette) *Display {
	if clk == nil {
		clk = clock.NewClock()
	}
	if palette == nil {
		palette = DefaultPalette()
	}
	d := &Display{
		anim:    &Animator{Strip: strip, Clock: clk},
		servo:   servo,
		palette: palette,
		wait:    DefaultWipeWait,
	}
	if p, ok := strip.(*Pixels); ok {
		d.pixels = p.Shown
	}
	return d
}

// SetWipeWait changes the per-pixel delay of wipe patterns.
func (d *Display) SetWipeWait(wait time.Duration) {
	d.wait = wait
}

// OnChange registers a callback run after every SetWeather.
func (d *Display) OnChange(fn func(Snapshot)) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// SetWeather plays the pattern for state and then moves the servo.
func (d *Display) SetWeather(ctx context.Context, state decision.State, angle int) error {
	if err := d.play(ctx, state); err != nil {
		return fmt.Errorf("show %s: %w", state, err)
	}
	angle = ClampAngle(angle)
	if err := d.servo.Write(angle); err != nil {
		return fmt.Errorf("servo %d: %w", angle, err)
	}

	d.mu.Lock()
	d.state = state
	d.hasState = true
	d.angle = angle
	fn := d.onChange
	d.mu.Unlock()

	if fn != nil {
		fn(d.Snapshot())
	}
	return nil
}

func (d *Display) play(ctx context.Context, state decision.State) error {
	c := d.palette.For(state)
	switch state {
	case decision.Thunder:
		for t := 0; t < 3; t++ {
			if err := d.anim.ColorWipe(ctx, d.palette.For(decision.Rainy), d.scaled(thunderWipeWait)); err != nil {
				return err
			}
			if err := d.anim.ColorWipe(ctx, c, 0); err != nil {
				return err
			}
		}
		return nil
	case decision.Haily:
		if err := d.anim.TheaterChase(ctx, c, d.wait); err != nil {
			return err
		}
		return d.anim.ColorWipe(ctx, c, 0)
	default:
		return d.anim.ColorWipe(ctx, c, d.wait)
	}
}

// scaled keeps fixed pattern delays proportional to the configured wipe wait.
func (d *Display) scaled(base time.Duration) time.Duration {
	if d.wait <= 0 {
		return 0
	}
	return base * d.wait / DefaultWipeWait
}

// Idle plays one rainbow pass between polls.
func (d *Display) Idle(ctx context.Context) error {
	return d.anim.Rainbow(ctx, d.scaled(idleRainbowWait))
}

func (d *Display) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := Snapshot{Angle: d.angle, State: d.state, HasState: d.hasState}
	if d.pixels != nil {
		snap.Pixels = d.pixels()
	} else {
		n := d.anim.Strip.NumPixels()
		snap.Pixels = make([]Color, n)
		if d.hasState {
			for i := range snap.Pixels {
				snap.Pixels[i] = d.palette.For(d.state)
			}
		}
	}
	return snap
}

// ServoAngle maps the later slot's humidity to the sun indicator: dry air
// swings the servo to 180, saturated air to 0.
func ServoAngle(humidity float64) int {
	h := math.Max(0, math.Min(humidity, 100))
	return ClampAngle(int(math.Round((1 - h/100) * MaxAngle)))
}
