package data

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedForecast = errors.New("malformed forecast")
	ErrTooFewSlots       = errors.New("forecast has fewer than two slots")
)

// Slot is one forecast time bucket.
type Slot struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
}

// Forecast holds the two slots the ring compares: now (list[0]) and
// later (list[1]).
type Forecast struct {
	City  string `json:"city"`
	Now   Slot   `json:"now"`
	Later Slot   `json:"later"`
}

type owmForecast struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []owmSlot `json:"list"`
}

type owmSlot struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (s owmSlot) toSlot() Slot {
	slot := Slot{
		Temperature: s.Main.Temp,
		Humidity:    s.Main.Humidity,
	}
	if len(s.Weather) > 0 {
		slot.Description = s.Weather[0].Description
	}
	return slot
}

// ParseForecast extracts the city name and the first two forecast slots
// from an OpenWeatherMap forecast object.
func ParseForecast(object []byte) (*Forecast, error) {
	var raw owmForecast
	if err := json.Unmarshal(object, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedForecast, err)
	}
	if len(raw.List) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrTooFewSlots, len(raw.List))
	}

	return &Forecast{
		City:  raw.City.Name,
		Now:   raw.List[0].toSlot(),
		Later: raw.List[1].toSlot(),
	}, nil
}
