package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzhttp"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/rs/zerolog"

	"github.com/stuartleeks/home-dash/forecast-ring/appinsightsutils"
	"github.com/stuartleeks/home-dash/forecast-ring/config"
	"github.com/stuartleeks/home-dash/forecast-ring/data"
	"github.com/stuartleeks/home-dash/forecast-ring/framer"
	"github.com/stuartleeks/home-dash/forecast-ring/logging"
	"github.com/stuartleeks/home-dash/forecast-ring/owm"
	"github.com/stuartleeks/home-dash/forecast-ring/poller"
	"github.com/stuartleeks/home-dash/forecast-ring/ring"
	"github.com/stuartleeks/home-dash/forecast-ring/stream"
)

const appName = "forecast-ring"

func main() {
	fmt.Printf("Forecast ring starting...[%d]\n", os.Getpid())

	_, err := os.Stat(".env")
	if err == nil {
		err := godotenv.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error loading .env file")
			os.Exit(1)
		}
	}

	log := logging.Init(appName)

	cfg, err := config.Load(config.GetConfigFilePath())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Info().
		Str("city", cfg.City).
		Str("server", cfg.Address()).
		Dur("interval", cfg.PollInterval).
		Int("leds", cfg.LEDCount).
		Msg("configuration loaded")

	palette, err := loadPalette(cfg.PaletteFile)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid palette")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	appInsightsClient := appinsightsutils.NewClient(cfg.InstrumentationKey, appName)
	defer func() {
		select {
		case <-appInsightsClient.Channel().Close(5 * time.Second):
		case <-time.After(10 * time.Second):
		}
	}()

	clk := clock.NewClock()
	display := ring.NewDisplay(ring.NewPixels(cfg.LEDCount), &ring.ServoState{}, clk, palette)
	if cfg.RenderPath != "" {
		display.OnChange(func(snap ring.Snapshot) {
			if err := saveRingImage(cfg.RenderPath, snap); err != nil {
				log.Warn().Err(err).Msg("failed to save ring image")
			}
		})
	}

	reader := stream.NewReader(framer.New(4096), clk)
	reader.Timeout = cfg.ReadTimeout
	reader.MaxDuration = cfg.FetchTimeout
	reader.MaxObjectBytes = cfg.MaxObjectBytes

	client := owm.NewClient(cfg.Host, cfg.Port, cfg.APIKey, cfg.City, reader)
	client.Units = cfg.Units
	client.Count = cfg.Count
	defer client.Close()

	p := poller.New(poller.Options{
		Fetcher:       client,
		Display:       display,
		Cache:         data.NewCacheWithClock[string, data.Reading](2*cfg.PollInterval+cfg.FetchTimeout, clk),
		Telemetry:     appInsightsClient,
		Logger:        log,
		Clock:         clk,
		Interval:      cfg.PollInterval,
		RetryInterval: cfg.RetryInterval,
		IdleAnimation: cfg.IdleAnimation,
	})

	go func() {
		if err := serveAPI(ctx, cfg.ListenAddr, appInsightsClient, p, display, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("status server failed")
		}
	}()

	if err := p.Run(ctx); err != nil {
		log.Error().Err(err).Msg("poller stopped")
	}
	log.Info().Msg("Forecast ring stopped")
}

func loadPalette(path string) (ring.Palette, error) {
	palette := ring.DefaultPalette()
	if path == "" {
		return palette, nil
	}
	overrides, err := data.JsonReadSharedLock[map[string]ring.Color](path)
	if err != nil {
		return nil, err
	}
	return palette.With(*overrides)
}

func serveAPI(ctx context.Context, address string, appInsightsClient appinsights.TelemetryClient, readings ReadingSource, display Snapshotter, log zerolog.Logger) error {
	log.Info().Str("address", address).Msg("listening")
	l, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", address, err)
	}

	server := &http.Server{
		Addr:              address,
		Handler:           newHandler(appInsightsClient, readings, display),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = server.Shutdown(context.Background())
	}()
	return server.Serve(l)
}

func newHandler(appInsightsClient appinsights.TelemetryClient, readings ReadingSource, display Snapshotter) http.Handler {
	mux := appinsightsutils.NewServeMuxWithTrace(appInsightsClient)
	registerHandlers(mux, NewApiRouter(appInsightsClient, readings, display))
	return gzhttp.GzipHandler(mux)
}

func registerHandlers(mux *appinsightsutils.ServeMuxWithTrace, api *ApiRouter) {
	mux.HandleFunc("GET /", api.Hello)
	mux.HandleFunc("GET /weather", api.WeatherGet)
	mux.HandleFuncWithContext("GET /ring.png", api.RingImageGet)
}
