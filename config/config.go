package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvConfigFile         = "FORECAST_RING_CONFIG"
	EnvDataDir            = "FORECAST_RING_DATA_DIR"
	EnvAPIKey             = "OWM_API_KEY"
	EnvCity               = "OWM_CITY"
	EnvHost               = "OWM_HOST"
	EnvPort               = "OWM_PORT"
	EnvUnits              = "OWM_UNITS"
	EnvPollInterval       = "POLL_INTERVAL"
	EnvReadTimeout        = "READ_TIMEOUT"
	EnvFetchTimeout       = "FETCH_TIMEOUT"
	EnvRetryInterval      = "RETRY_INTERVAL"
	EnvLEDCount           = "LED_COUNT"
	EnvListenAddr         = "LISTEN_ADDR"
	EnvRenderPath         = "RENDER_PATH"
	EnvPaletteFile        = "PALETTE_FILE"
	EnvIdleAnimation      = "IDLE_ANIMATION"
	EnvMaxObjectBytes     = "MAX_OBJECT_BYTES"
	EnvInstrumentationKey = "APPLICATIONINSIGHTS_INSTRUMENTATION_KEY"
)

func GetConfigFilePath() string {
	return os.Getenv(EnvConfigFile)
}

func GetDataDir() string {
	return os.Getenv(EnvDataDir)
}

func GetApplicationInsightsInstrumentationKey() string {
	return os.Getenv(EnvInstrumentationKey)
}

type Config struct {
	APIKey string
	City   string
	Host   string
	Port   int
	Units  string
	// Count is the number of forecast slots requested; only the first two are used.
	Count int

	PollInterval time.Duration
	ReadTimeout  time.Duration
	// FetchTimeout bounds a whole response read, including slow trickles.
	FetchTimeout   time.Duration
	RetryInterval  time.Duration
	MaxObjectBytes int

	LEDCount      int
	IdleAnimation bool
	RenderPath    string
	PaletteFile   string

	ListenAddr         string
	InstrumentationKey string
}

func Default() Config {
	return Config{
		Host:           "api.openweathermap.org",
		Port:           80,
		Units:          "metric",
		Count:          2,
		PollInterval:   10 * time.Minute,
		ReadTimeout:    5 * time.Second,
		FetchTimeout:   30 * time.Second,
		RetryInterval:  5 * time.Second,
		MaxObjectBytes: 64 * 1024,
		LEDCount:       35,
		ListenAddr:     ":8080",
	}
}

type fileConfig struct {
	APIKey         string `toml:"api_key"`
	City           string `toml:"city"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Units          string `toml:"units"`
	Count          int    `toml:"count"`
	PollInterval   string `toml:"poll_interval"`
	ReadTimeout    string `toml:"read_timeout"`
	FetchTimeout   string `toml:"fetch_timeout"`
	RetryInterval  string `toml:"retry_interval"`
	MaxObjectBytes int    `toml:"max_object_bytes"`
	LEDCount       int    `toml:"led_count"`
	IdleAnimation  bool   `toml:"idle_animation"`
	RenderPath     string `toml:"render_path"`
	PaletteFile    string `toml:"palette_file"`
	ListenAddr     string `toml:"listen_addr"`
}

// Load builds the configuration from defaults, the optional TOML file at
// path and then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("api_key") {
		cfg.APIKey = strings.TrimSpace(raw.APIKey)
	}
	if meta.IsDefined("city") {
		cfg.City = strings.TrimSpace(raw.City)
	}
	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("units") {
		cfg.Units = strings.TrimSpace(raw.Units)
	}
	if meta.IsDefined("count") {
		cfg.Count = raw.Count
	}
	if meta.IsDefined("poll_interval") {
		if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval); err != nil {
			return err
		}
	}
	if meta.IsDefined("read_timeout") {
		if cfg.ReadTimeout, err = parseDuration("read_timeout", raw.ReadTimeout); err != nil {
			return err
		}
	}
	if meta.IsDefined("fetch_timeout") {
		if cfg.FetchTimeout, err = parseDuration("fetch_timeout", raw.FetchTimeout); err != nil {
			return err
		}
	}
	if meta.IsDefined("retry_interval") {
		if cfg.RetryInterval, err = parseDuration("retry_interval", raw.RetryInterval); err != nil {
			return err
		}
	}
	if meta.IsDefined("max_object_bytes") {
		cfg.MaxObjectBytes = raw.MaxObjectBytes
	}
	if meta.IsDefined("led_count") {
		cfg.LEDCount = raw.LEDCount
	}
	if meta.IsDefined("idle_animation") {
		cfg.IdleAnimation = raw.IdleAnimation
	}
	if meta.IsDefined("render_path") {
		cfg.RenderPath = strings.TrimSpace(raw.RenderPath)
	}
	if meta.IsDefined("palette_file") {
		cfg.PaletteFile = strings.TrimSpace(raw.PaletteFile)
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.APIKey, EnvAPIKey)
	setString(&cfg.City, EnvCity)
	setString(&cfg.Host, EnvHost)
	setString(&cfg.Units, EnvUnits)
	setString(&cfg.ListenAddr, EnvListenAddr)
	setString(&cfg.RenderPath, EnvRenderPath)
	setString(&cfg.PaletteFile, EnvPaletteFile)
	setString(&cfg.InstrumentationKey, EnvInstrumentationKey)

	for name, dst := range map[string]*int{
		EnvPort:           &cfg.Port,
		EnvLEDCount:       &cfg.LEDCount,
		EnvMaxObjectBytes: &cfg.MaxObjectBytes,
	} {
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		*dst = v
	}

	for name, dst := range map[string]*time.Duration{
		EnvPollInterval:  &cfg.PollInterval,
		EnvReadTimeout:   &cfg.ReadTimeout,
		EnvFetchTimeout:  &cfg.FetchTimeout,
		EnvRetryInterval: &cfg.RetryInterval,
	} {
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		d, err := parseDuration(name, raw)
		if err != nil {
			return err
		}
		*dst = d
	}

	if raw, ok := lookup(EnvIdleAnimation); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvIdleAnimation, err)
		}
		cfg.IdleAnimation = v
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("api key is required"))
	}
	if c.City == "" {
		errs = append(errs, errors.New("city is required"))
	}
	if c.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Count < 2 {
		errs = append(errs, fmt.Errorf("count must be at least 2, got %d", c.Count))
	}
	if c.PollInterval <= 0 || c.ReadTimeout <= 0 || c.FetchTimeout <= 0 || c.RetryInterval <= 0 {
		errs = append(errs, errors.New("durations must be positive"))
	}
	if c.FetchTimeout > 0 && c.FetchTimeout < c.ReadTimeout {
		errs = append(errs, fmt.Errorf("fetch timeout %s is shorter than read timeout %s", c.FetchTimeout, c.ReadTimeout))
	}
	if c.LEDCount <= 0 {
		errs = append(errs, fmt.Errorf("led count must be positive, got %d", c.LEDCount))
	}
	if c.MaxObjectBytes < 0 {
		errs = append(errs, errors.New("max object bytes must not be negative"))
	}
	return errors.Join(errs...)
}

// Address is the forecast API host:port.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func lookup(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}

func setString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func parseDuration(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return d, nil
}
