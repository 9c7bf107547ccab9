// Package poller runs the forecast cycle: fetch one object, extract the two
// slots, decide what changed and show it on the ring.
package poller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/gofrs/uuid"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/rs/zerolog"

	"github.com/stuartleeks/home-dash/forecast-ring/appinsightsutils"
	"github.com/stuartleeks/home-dash/forecast-ring/data"
	"github.com/stuartleeks/home-dash/forecast-ring/decision"
	"github.com/stuartleeks/home-dash/forecast-ring/framer"
	"github.com/stuartleeks/home-dash/forecast-ring/ring"
	"github.com/stuartleeks/home-dash/forecast-ring/stream"
)

// Fetcher returns one complete forecast object per call.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Display shows weather states; *ring.Display implements it.
type Display interface {
	SetWeather(ctx context.Context, state decision.State, angle int) error
	Idle(ctx context.Context) error
}

type Options struct {
	Fetcher   Fetcher
	Display   Display
	Cache     *data.Cache[string, data.Reading]
	Telemetry appinsights.TelemetryClient
	Logger    zerolog.Logger
	Clock     clock.Clock

	// Interval between successful polls.
	Interval time.Duration
	// RetryInterval is the loop tick; until the first success a poll is
	// attempted on every tick.
	RetryInterval time.Duration
	// IdleAnimation replaces the tick wait with a rainbow pass.
	IdleAnimation bool
}

// Poller is the single owner of the fetch/decide/display session.
type Poller struct {
	opts Options

	lastAttempt time.Time
	connected   bool
	state       decision.State
	hasState    bool
	angle       int
}

func New(opts Options) *Poller {
	if opts.Clock == nil {
		opts.Clock = clock.NewClock()
	}
	if opts.Cache == nil {
		opts.Cache = data.NewCacheWithClock[string, data.Reading](2*opts.Interval, opts.Clock)
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 5 * time.Second
	}
	return &Poller{opts: opts}
}

// Latest returns the last good reading, or nil if none is fresh.
func (p *Poller) Latest() *data.Reading {
	return p.opts.Cache.Peek(data.LatestReadingKey)
}

// Connected reports whether any poll has succeeded yet.
func (p *Poller) Connected() bool {
	return p.connected
}

// Poll runs one cycle. Failures leave the display untouched; the caller
// tries again on the next interval.
func (p *Poller) Poll(ctx context.Context) (*data.Reading, error) {
	cycleID := newCycleID()
	log := p.opts.Logger.With().Str("cycle", cycleID).Logger()
	start := p.opts.Clock.Now()

	reading, err := p.poll(ctx, cycleID, log)

	result := appinsightsutils.PollResult{
		CycleID:  cycleID,
		Duration: p.opts.Clock.Since(start),
		Err:      err,
	}
	if err != nil {
		logFailure(log, err)
	} else {
		result.City = reading.Forecast.City
		if reading.State != nil {
			result.State = reading.State.String()
		}
		result.Changed = reading.HasChange()
		result.TemperatureNow = reading.Forecast.Now.Temperature
		result.TemperatureLater = reading.Forecast.Later.Temperature
	}
	appinsightsutils.TrackPoll(p.opts.Telemetry, result)
	return reading, err
}

func (p *Poller) poll(ctx context.Context, cycleID string, log zerolog.Logger) (*data.Reading, error) {
	log.Debug().Msg("requesting forecast")
	object, err := p.opts.Fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	forecast, err := data.ParseForecast(object)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("city", forecast.City).
		Str("now", forecast.Now.Description).
		Str("later", forecast.Later.Description).
		Float64("temp_now", forecast.Now.Temperature).
		Float64("temp_later", forecast.Later.Temperature).
		Msg("forecast received")

	changes := decision.Evaluate(forecast.Now.Description, forecast.Later.Description)
	angle := ring.ServoAngle(forecast.Later.Humidity)
	for _, change := range changes {
		log.Info().Str("keyword", string(change.Keyword)).Msg(change.Message())
		if err := p.opts.Display.SetWeather(ctx, change.State, angle); err != nil {
			return nil, fmt.Errorf("display: %w", err)
		}
		p.state = change.State
		p.hasState = true
		p.angle = angle
	}
	if len(changes) == 0 {
		log.Debug().Msg("no change")
	}

	p.connected = true
	reading := &data.Reading{
		CycleID:   cycleID,
		Forecast:  *forecast,
		Changes:   changes,
		Angle:     p.angle,
		FetchedAt: data.FetchedAt(p.opts.Clock.Now().UTC()),
	}
	if p.hasState {
		state := p.state
		reading.State = &state
	}
	p.opts.Cache.Set(data.LatestReadingKey, reading)
	return reading, nil
}

func (p *Poller) due() bool {
	if !p.connected || p.lastAttempt.IsZero() {
		return true
	}
	return p.opts.Clock.Since(p.lastAttempt) >= p.opts.Interval
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if p.due() {
			p.lastAttempt = p.opts.Clock.Now()
			_, _ = p.Poll(ctx)
		}
		if ctx.Err() != nil {
			return nil
		}

		if p.opts.IdleAnimation {
			if err := p.opts.Display.Idle(ctx); err != nil && ctx.Err() == nil {
				p.opts.Logger.Warn().Err(err).Msg("idle animation failed")
				p.wait(ctx)
			}
			continue
		}
		p.wait(ctx)
	}
}

func (p *Poller) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-p.opts.Clock.After(p.opts.RetryInterval):
	}
}

func logFailure(log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		log.Debug().Err(err).Msg("poll cancelled")
	case errors.Is(err, framer.ErrIncomplete):
		log.Warn().Err(err).Msg("incomplete forecast object, no update this cycle")
	case errors.Is(err, stream.ErrTimeout):
		log.Warn().Err(err).Msg("client timeout")
	case errors.Is(err, data.ErrMalformedForecast), errors.Is(err, data.ErrTooFewSlots):
		log.Warn().Err(err).Msg("could not parse forecast")
	default:
		log.Warn().Err(err).Msg("poll failed")
	}
}

func newCycleID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return id.String()
}
