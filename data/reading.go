package data

import (
	"fmt"
	"time"

	"github.com/stuartleeks/home-dash/forecast-ring/decision"
)

type FetchedAt time.Time

const fetchedAtFormat = "2006-01-02T15:04:05"

func (r *FetchedAt) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid time format: %s", b)
	}
	b = b[1 : len(b)-1]
	t, err := time.Parse(fetchedAtFormat, string(b))
	if err != nil {
		return err
	}
	*r = FetchedAt(t)
	return nil
}
func (r FetchedAt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(r).Format(fetchedAtFormat) + `"`), nil
}

// Reading is the outcome of one successful poll cycle.
type Reading struct {
	CycleID  string            `json:"cycle_id"`
	Forecast Forecast          `json:"forecast"`
	Changes  []decision.Change `json:"changes"`
	// State is the pattern on the ring; nil until a transition has been shown.
	State     *decision.State `json:"state,omitempty"`
	Angle     int             `json:"angle"`
	FetchedAt FetchedAt       `json:"fetched_at"`
}

const LatestReadingKey = "latest"

// HasChange reports whether the cycle triggered any transition.
func (r *Reading) HasChange() bool {
	return len(r.Changes) > 0
}
