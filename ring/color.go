// Package ring models the addressable LED ring and the servo, and plays the
// animations that show each weather state.
package ring

import (
	"fmt"
	"image/color"
	"strings"
)

type Color struct {
	R, G, B uint8
}

var (
	Off    = Color{}
	White  = Color{255, 255, 255}
	Blue   = Color{20, 20, 255}
	Yellow = Color{127, 127, 0}
)

func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex formats the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseHex accepts #rgb or #rrggbb, with or without the leading '#'.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var c Color
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%2x%2x%2x", &c.R, &c.G, &c.B); err != nil {
			return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &c.R, &c.G, &c.B); err != nil {
			return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	return c, nil
}

// Wheel maps 0..255 onto a colour wheel that goes red, green, blue and
// back to red.
func Wheel(pos byte) Color {
	pos = 255 - pos
	if pos < 85 {
		return Color{255 - pos*3, 0, pos * 3}
	}
	if pos < 170 {
		pos -= 85
		return Color{0, pos * 3, 255 - pos*3}
	}
	pos -= 170
	return Color{pos * 3, 255 - pos*3, 0}
}
