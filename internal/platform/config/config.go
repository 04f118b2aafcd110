package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"9230"`

	// CompositorSocket is the unix socket the display hint sink talks to.
	CompositorSocket string `env:"COMPOSITOR_SOCKET"`
	// PerfHALSocket is the unix socket of the power HAL daemon. Empty
	// means no load-hint channel: sessions requesting an ADPF boost fail.
	PerfHALSocket string `env:"PERF_HAL_SOCKET"`
	// TraceMarkerPath is the kernel trace_marker file. Empty disables
	// tracing.
	TraceMarkerPath string `env:"TRACE_MARKER_PATH" default:"/sys/kernel/tracing/trace_marker"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	LeakWarnAfter    time.Duration `env:"LEAK_WARN_AFTER" default:"1m"`
	LeakScanInterval time.Duration `env:"LEAK_SCAN_INTERVAL" default:"30s"`

	MaxEventClients     int     `env:"MAX_EVENT_CLIENTS" default:"50"`
	EventsRatePerSecond float64 `env:"EVENTS_RATE_PER_SECOND" default:"5"`
	EventsBurst         int     `env:"EVENTS_BURST" default:"10"`
	// AllowedOrigin is the browser origin permitted on the event stream,
	// in addition to same-origin and non-browser clients.
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`

	// DisplayRoots seeds the display registry at startup as comma-separated
	// "display:root" pairs, e.g. "0:4100,1:4200". Displays can still be
	// registered and unregistered at runtime.
	DisplayRoots string `env:"DISPLAY_ROOTS"`
}

// ParseDisplayRoots parses the DisplayRoots pairs into display ID to
// root handle mappings.
func (c *Config) ParseDisplayRoots() (map[int32]uint64, error) {
	roots := make(map[int32]uint64)
	if c.DisplayRoots == "" {
		return roots, nil
	}
	for _, pair := range strings.Split(c.DisplayRoots, ",") {
		id, root, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("DISPLAY_ROOTS entry %q is not a display:root pair", pair)
		}
		display, err := strconv.ParseInt(id, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("DISPLAY_ROOTS display %q: %w", id, err)
		}
		handle, err := strconv.ParseUint(root, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("DISPLAY_ROOTS root %q: %w", root, err)
		}
		roots[int32(display)] = handle
	}
	return roots, nil
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.CompositorSocket == "" {
		return fmt.Errorf("COMPOSITOR_SOCKET is required")
	}
	if cfg.LeakWarnAfter <= 0 {
		return fmt.Errorf("LEAK_WARN_AFTER must be positive, got %s", cfg.LeakWarnAfter)
	}
	if cfg.LeakScanInterval <= 0 {
		return fmt.Errorf("LEAK_SCAN_INTERVAL must be positive, got %s", cfg.LeakScanInterval)
	}
	if cfg.MaxEventClients <= 0 {
		return fmt.Errorf("MAX_EVENT_CLIENTS must be positive, got %d", cfg.MaxEventClients)
	}
	if cfg.EventsBurst <= 0 {
		return fmt.Errorf("EVENTS_BURST must be positive, got %d", cfg.EventsBurst)
	}
	return nil
}
