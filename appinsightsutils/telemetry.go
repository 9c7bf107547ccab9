package appinsightsutils

import (
	"time"

	"github.com/microsoft/ApplicationInsights-Go/appinsights"
)

// NewClient returns a telemetry client. With no instrumentation key the
// client is created disabled so tracking calls are no-ops.
func NewClient(instrumentationKey, role string) appinsights.TelemetryClient {
	telemetryConfig := appinsights.NewTelemetryConfiguration(instrumentationKey)
	// Configure how many items can be sent in one call to the data collector:
	telemetryConfig.MaxBatchSize = 8192
	// Configure the maximum delay before sending queued telemetry:
	telemetryConfig.MaxBatchInterval = 2 * time.Second

	client := appinsights.NewTelemetryClientFromConfig(telemetryConfig)
	client.Context().Tags.Cloud().SetRole(role)
	if instrumentationKey == "" {
		client.SetIsEnabled(false)
	}
	return client
}

// PollResult summarises one poll cycle for telemetry.
type PollResult struct {
	CycleID          string
	City             string
	State            string
	Changed          bool
	TemperatureNow   float64
	TemperatureLater float64
	Duration         time.Duration
	Err              error
}

// TrackPoll records a forecast-poll event, plus temperature metrics when
// the cycle succeeded.
func TrackPoll(client appinsights.TelemetryClient, result PollResult) {
	if client == nil || !client.IsEnabled() {
		return
	}

	e := appinsights.NewEventTelemetry("forecast-poll")
	e.Tags.Operation().SetId(result.CycleID)
	e.Properties["cycle-id"] = result.CycleID
	e.Measurements["duration-ms"] = float64(result.Duration.Milliseconds())
	if result.Err != nil {
		e.Properties["outcome"] = "failed"
		e.Properties["error"] = result.Err.Error()
		client.Track(e)
		return
	}

	e.Properties["outcome"] = "ok"
	e.Properties["city"] = result.City
	e.Properties["state"] = result.State
	if result.Changed {
		e.Properties["changed"] = "true"
	} else {
		e.Properties["changed"] = "false"
	}
	client.Track(e)

	client.TrackMetric("forecast.temperature.now", result.TemperatureNow)
	client.TrackMetric("forecast.temperature.later", result.TemperatureLater)
	client.TrackMetric("forecast.poll.duration_ms", float64(result.Duration.Milliseconds()))
}
