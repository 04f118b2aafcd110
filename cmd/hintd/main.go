package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/hintd/internal/adapter/compositor"
	"github.com/pscheid92/hintd/internal/adapter/displayregistry"
	"github.com/pscheid92/hintd/internal/adapter/ftrace"
	"github.com/pscheid92/hintd/internal/adapter/httpserver"
	"github.com/pscheid92/hintd/internal/adapter/perfchannel"
	"github.com/pscheid92/hintd/internal/adapter/websocket"
	"github.com/pscheid92/hintd/internal/app"
	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/hinter"
	"github.com/pscheid92/hintd/internal/platform/config"
	"github.com/pscheid92/hintd/internal/platform/logging"
	"github.com/sony/gobreaker"
)

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	sink := setupSink(cfg)
	defer func() { _ = sink.Close() }()

	registry := setupRegistry(cfg)

	// The load-hint channel is optional and hot-swappable: the holder
	// starts empty when no power HAL socket is configured, and sessions
	// requesting a boost fail with a configuration error until one is
	// swapped in.
	holder := perfchannel.NewHolder(nil)
	var channel *perfchannel.Channel
	if cfg.PerfHALSocket != "" {
		channel = setupChannel(cfg)
		defer func() { _ = channel.Close() }()
		holder.Swap(channel)
	}

	tracer, traceCloser := setupTracer(cfg)
	if traceCloser != nil {
		defer func() { _ = traceCloser.Close() }()
	}

	hub := websocket.NewHub(cfg.MaxEventClients)
	publisher := websocket.NewPublisher(hub)

	svc := app.NewService(hinter.New(sink, registry, holder, tracer, publisher, clock))

	monitor := app.NewLeakMonitor(svc, clock, cfg.LeakWarnAfter, cfg.LeakScanInterval)
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	go monitor.Run(monitorCtx)

	checkOrigin := websocket.NewCheckOrigin(cfg.AllowedOrigin, cfg.AppEnv == "development")
	srv := httpserver.NewServer(cfg, svc, hub, checkOrigin, healthChecks(channel))

	done := runGracefulShutdown(srv, svc, hub, stopMonitor)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupSink(cfg *config.Config) *compositor.Sink {
	sink, err := compositor.Dial(cfg.CompositorSocket)
	if err != nil {
		slog.Error("Failed to connect to compositor", "socket", cfg.CompositorSocket, "error", err)
		os.Exit(1)
	}
	return sink
}

func setupRegistry(cfg *config.Config) *displayregistry.Registry {
	registry := displayregistry.New()
	roots, err := cfg.ParseDisplayRoots()
	if err != nil {
		slog.Error("Failed to parse display roots", "error", err)
		os.Exit(1)
	}
	for display, root := range roots {
		registry.Register(domain.DisplayID(display), domain.RootHandle(root))
	}
	return registry
}

func setupChannel(cfg *config.Config) *perfchannel.Channel {
	channel, err := perfchannel.Dial(cfg.PerfHALSocket)
	if err != nil {
		slog.Error("Failed to connect to power HAL", "socket", cfg.PerfHALSocket, "error", err)
		os.Exit(1)
	}
	return channel
}

// setupTracer opens the kernel trace marker. A missing or unwritable
// marker is not fatal: tracing degrades to a no-op.
func setupTracer(cfg *config.Config) (domain.Tracer, *ftrace.Tracer) {
	if cfg.TraceMarkerPath == "" {
		return domain.NopTracer{}, nil
	}
	tracer, err := ftrace.Open(cfg.TraceMarkerPath)
	if err != nil {
		slog.Warn("Trace marker unavailable, tracing disabled", "path", cfg.TraceMarkerPath, "error", err)
		return domain.NopTracer{}, nil
	}
	return tracer, tracer
}

func healthChecks(channel *perfchannel.Channel) []httpserver.HealthCheck {
	if channel == nil {
		return nil
	}
	return []httpserver.HealthCheck{
		{
			Name: "power_hal",
			Check: func(_ context.Context) error {
				if channel.State() == gobreaker.StateOpen {
					return fmt.Errorf("load-hint channel circuit breaker is open")
				}
				return nil
			},
		},
	}
}

func runGracefulShutdown(srv *httpserver.Server, svc *app.Service, hub *websocket.Hub, stopMonitor context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		stopMonitor()

		// Retract every outstanding hint before the process exits, so the
		// compositor and power HAL are not left boosted.
		svc.CloseAll()
		hub.Stop()

		close(done)
	}()

	return done
}
