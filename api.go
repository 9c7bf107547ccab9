package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/rs/zerolog/log"

	"github.com/stuartleeks/home-dash/forecast-ring/data"
	"github.com/stuartleeks/home-dash/forecast-ring/ring"
)

const maxCachedImages = 32

// ReadingSource supplies the last good forecast reading.
type ReadingSource interface {
	Latest() *data.Reading
}

// Snapshotter supplies what the ring currently shows.
type Snapshotter interface {
	Snapshot() ring.Snapshot
}

type ApiRouter struct {
	appInsightsClient appinsights.TelemetryClient
	readings          ReadingSource
	display           Snapshotter
	imageCache        *data.Cache[string, []byte]
}

func NewApiRouter(appInsightsClient appinsights.TelemetryClient, readings ReadingSource, display Snapshotter) *ApiRouter {
	if appInsightsClient == nil {
		panic("appInsightsClient is required")
	}
	return &ApiRouter{
		appInsightsClient: appInsightsClient,
		readings:          readings,
		display:           display,
		imageCache:        data.NewCache[string, []byte](10 * time.Minute).WithMaxItems(maxCachedImages),
	}
}

func (api *ApiRouter) Hello(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
		return
	}
	fmt.Fprintf(w, "Hello from the forecast ring 🌦")
}

func (api *ApiRouter) WeatherGet(w http.ResponseWriter, r *http.Request) {
	reading := api.readings.Latest()
	if reading == nil {
		http.Error(w, "no forecast yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reading); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (api *ApiRouter) trackImageCacheEvent(cacheHit bool, reason string) {
	e := appinsights.NewEventTelemetry("ring-image-cache")
	e.Properties["cache-hit"] = fmt.Sprintf("%t", cacheHit)
	e.Properties["reason"] = reason
	api.appInsightsClient.Track(e)
}

func (api *ApiRouter) RingImageGet(w http.ResponseWriter, r *http.Request, telemetry *appinsights.RequestTelemetry) {
	size := ringImageSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < minImageSize || v > ringImageSize {
			http.Error(w, fmt.Sprintf("size must be between %d and %d", minImageSize, ringImageSize), http.StatusBadRequest)
			return
		}
		size = v
	}

	snap := api.display.Snapshot()
	reading := api.readings.Latest()
	etag := snapshotETag(snap, reading, size)
	telemetry.Properties["Etag"] = etag
	w.Header().Set("Etag", `"`+etag+`"`)

	if ifNoneMatch := r.Header.Get("If-None-Match"); ifNoneMatch != "" {
		telemetry.Properties["If-None-Match"] = ifNoneMatch
		if strings.Trim(ifNoneMatch, `"`) == etag {
			api.trackImageCacheEvent(true, "etag-match")
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	imageBytes := api.imageCache.Get(etag)
	if imageBytes != nil {
		api.trackImageCacheEvent(true, "rendered-before")
	} else {
		api.trackImageCacheEvent(false, "render")
		rendered, err := renderPNG(snap, reading, size)
		if err != nil {
			log.Error().Err(err).Msg("ring image render failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		imageBytes = &rendered
		api.imageCache.Set(etag, imageBytes)
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(*imageBytes)
}

func renderPNG(snap ring.Snapshot, reading *data.Reading, size int) ([]byte, error) {
	dc, err := drawRingImage(snap, reading)
	if err != nil {
		return nil, err
	}
	var img image.Image = dc.Image()
	if size != ringImageSize {
		img = scaleImage(img, size)
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// snapshotETag hashes everything the rendered image depends on.
func snapshotETag(snap ring.Snapshot, reading *data.Reading, size int) string {
	d := xxhash.New()
	for _, c := range snap.Pixels {
		_, _ = d.Write([]byte{c.R, c.G, c.B})
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(snap.Angle)<<32|uint64(size)<<8|uint64(snap.State))
	_, _ = d.Write(b[:])
	if snap.HasState {
		_, _ = d.WriteString("state")
	}
	if reading != nil {
		_, _ = d.WriteString(reading.CycleID)
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
