package ring

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
)

// Animator plays frame-by-frame patterns on a strip. Each frame waits on
// Clock; animations stop early when ctx is done.
type Animator struct {
	Strip Strip
	Clock clock.Clock
}

func (a *Animator) frame(ctx context.Context, wait time.Duration) error {
	if err := a.Strip.Show(); err != nil {
		return err
	}
	if wait > 0 {
		a.Clock.Sleep(wait)
	}
	return ctx.Err()
}

// ColorWipe fills the dots one after the other with a colour.
func (a *Animator) ColorWipe(ctx context.Context, c Color, wait time.Duration) error {
	for i := 0; i < a.Strip.NumPixels(); i++ {
		a.Strip.SetPixelColor(i, c)
		if err := a.frame(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

func (a *Animator) Rainbow(ctx context.Context, wait time.Duration) error {
	n := a.Strip.NumPixels()
	for j := 0; j < 256; j++ {
		for i := 0; i < n; i++ {
			a.Strip.SetPixelColor(i, Wheel(byte((i+j)&255)))
		}
		if err := a.frame(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

// RainbowCycle spreads the wheel evenly over the ring and turns it five times.
func (a *Animator) RainbowCycle(ctx context.Context, wait time.Duration) error {
	n := a.Strip.NumPixels()
	if n == 0 {
		return nil
	}
	for j := 0; j < 256*5; j++ {
		for i := 0; i < n; i++ {
			a.Strip.SetPixelColor(i, Wheel(byte((i*256/n+j)&255)))
		}
		if err := a.frame(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

// TheaterChase crawls every third pixel for ten cycles.
func (a *Animator) TheaterChase(ctx context.Context, c Color, wait time.Duration) error {
	for j := 0; j < 10; j++ {
		if err := a.chase(ctx, wait, func(int) Color { return c }); err != nil {
			return err
		}
	}
	return nil
}

func (a *Animator) TheaterChaseRainbow(ctx context.Context, wait time.Duration) error {
	for j := 0; j < 256; j++ {
		if err := a.chase(ctx, wait, func(i int) Color { return Wheel(byte((i + j) % 255)) }); err != nil {
			return err
		}
	}
	return nil
}

func (a *Animator) chase(ctx context.Context, wait time.Duration, colorAt func(i int) Color) error {
	n := a.Strip.NumPixels()
	for q := 0; q < 3; q++ {
		for i := 0; i+q < n; i += 3 {
			a.Strip.SetPixelColor(i+q, colorAt(i))
		}
		if err := a.frame(ctx, wait); err != nil {
			return err
		}
		for i := 0; i+q < n; i += 3 {
			a.Strip.SetPixelColor(i+q, Off)
		}
	}
	return nil
}
