// Package decision compares the weather description of the current forecast
// slot with the next one and names the transition worth showing.
package decision

import (
	"fmt"
	"strings"
)

// State is a visual weather state the ring can show.
type State int

const (
	Cloudy State = iota
	Rainy
	Thunder
	Clear
	Snowy
	Haily
)

var stateNames = [...]string{
	Cloudy:  "cloudy",
	Rainy:   "rainy",
	Thunder: "thunder",
	Clear:   "clear",
	Snowy:   "snowy",
	Haily:   "haily",
}

// States lists every state in declaration order.
func States() []State {
	return []State{Cloudy, Rainy, Thunder, Clear, Snowy, Haily}
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseState(name string) (State, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Cloudy, fmt.Errorf("unknown weather state %q", name)
}

// Keyword is a word searched for in forecast descriptions.
type Keyword string

const (
	KeywordClear Keyword = "clear"
	KeywordRain  Keyword = "rain"
	KeywordSnow  Keyword = "snow"
	KeywordHail  Keyword = "hail"
)

// Keywords are checked in this order; a later match overrides the pattern
// left by an earlier one.
var Keywords = []Keyword{KeywordClear, KeywordRain, KeywordSnow, KeywordHail}

// StateFor maps a keyword to the state shown when it appears.
func StateFor(k Keyword) State {
	switch k {
	case KeywordRain:
		return Rainy
	case KeywordSnow:
		return Snowy
	case KeywordHail:
		return Haily
	default:
		return Clear
	}
}

// Change is one triggered transition.
type Change struct {
	Keyword Keyword `json:"keyword"`
	State   State   `json:"state"`
	Later   string  `json:"later"`
}

// Message is the human readable announcement for the change.
func (c Change) Message() string {
	if c.Keyword == KeywordClear {
		return "It is going to be sunny later! Predicted " + c.Later
	}
	return fmt.Sprintf("Oh no! It is going to %s later! Predicted %s", c.Keyword, c.Later)
}

// Transition reports whether keyword is absent from now but present in
// later. Matching is a case-sensitive substring test.
func Transition(now, later string, keyword Keyword) bool {
	return !strings.Contains(now, string(keyword)) && strings.Contains(later, string(keyword))
}

// Evaluate returns the transitions between the two descriptions, in
// Keywords order. An empty result means no change.
func Evaluate(now, later string) []Change {
	var changes []Change
	for _, k := range Keywords {
		if Transition(now, later, k) {
			changes = append(changes, Change{Keyword: k, State: StateFor(k), Later: later})
		}
	}
	return changes
}

// Final returns the change whose pattern stays visible once all changes
// have been applied in order.
func Final(changes []Change) (Change, bool) {
	if len(changes) == 0 {
		return Change{}, false
	}
	return changes[len(changes)-1], true
}
