package ring

import (
	"fmt"

	"github.com/stuartleeks/home-dash/forecast-ring/decision"
)

// Palette is the colour each weather state is drawn with.
type Palette map[decision.State]Color

func DefaultPalette() Palette {
	return Palette{
		decision.Cloudy:  White,
		decision.Rainy:   Blue,
		decision.Thunder: White,
		decision.Clear:   Yellow,
		decision.Snowy:   {200, 220, 255},
		decision.Haily:   White,
	}
}

func (p Palette) For(s decision.State) Color {
	if c, ok := p[s]; ok {
		return c
	}
	return DefaultPalette()[s]
}

// With returns a copy of p with colours overridden by state name.
func (p Palette) With(overrides map[string]Color) (Palette, error) {
	out := make(Palette, len(p))
	for s, c := range p {
		out[s] = c
	}
	for name, c := range overrides {
		s, err := decision.ParseState(name)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		out[s] = c
	}
	return out, nil
}
