// Package app wires the editor's components together and runs the process:
// logging router, configuration provider, modifier catalog, editor core, the
// app loop, and the HTTP/websocket surface.
package app

import (
	"context"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"itemforge/server/internal/catalog"
	"itemforge/server/internal/config"
	"itemforge/server/internal/editor"
	servernet "itemforge/server/internal/net"
	"itemforge/server/internal/net/ws"
	"itemforge/server/internal/observability"
	"itemforge/server/internal/session"
	"itemforge/server/internal/telemetry"
	"itemforge/server/logging"
	loggingSinks "itemforge/server/logging/sinks"
)

const defaultTickInterval = 50 * time.Millisecond

type Config struct {
	Addr          string
	ConfigDir     string
	Logger        telemetry.Logger
	Observability observability.Config
}

// Run assembles everything and serves until the context is cancelled or the
// HTTP server fails.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = "config"
	}
	if raw := os.Getenv("ENABLE_PPROF_TRACE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Observability.EnablePprofTrace = value
		} else {
			logger.Printf("invalid ENABLE_PPROF_TRACE=%q: %v", raw, err)
		}
	}

	logConfig := logging.DefaultConfig()
	sinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout)},
	}
	router, err := logging.NewRouter(nil, logConfig, sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	settingsPath := filepath.Join(cfg.ConfigDir, "settings.yaml")
	panelPath := filepath.Join(cfg.ConfigDir, "panel.yaml")
	provider, err := config.NewProvider(settingsPath, panelPath, logger)
	if err != nil {
		return err
	}

	loader, err := catalog.Load(filepath.Join(cfg.ConfigDir, "modifiers", "definitions.json"))
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	registry := session.NewRegistry()
	gateway := ws.NewGateway(logger)
	loop := NewLoop(defaultTickInterval)

	core, err := editor.New(editor.Deps{
		Config:    provider,
		Catalog:   loader,
		Sessions:  registry,
		Opener:    gateway,
		Scheduler: loop,
		Notifier:  gateway,
		Publisher: router,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		return err
	}
	loop.OnTick(core.Tick)

	watchPaths := []string{settingsPath, panelPath, filepath.Join(cfg.ConfigDir, "modifiers", "definitions.json")}
	if err := config.Watch(ctx, watchPaths, logger, func() {
		loop.Dispatch(func() {
			if rerr := core.Reload(nil); rerr != nil {
				logger.Printf("config watch reload failed: %v", rerr)
			}
		})
	}); err != nil {
		logger.Printf("config watcher disabled: %v", err)
	}

	wsHandler := ws.NewHandler(core, gateway, loop, ws.HandlerConfig{Logger: logger})
	handler := servernet.NewHTTPHandler(wsHandler, registry, loader, servernet.HTTPHandlerConfig{
		Logger:        logger,
		Observability: cfg.Observability,
		Metrics:       metrics,
	})

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(loopCtx)
	}()

	srv := &nethttp.Server{Addr: cfg.Addr, Handler: handler}
	logger.Printf("server listening on %s", srv.Addr)

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		loop.Dispatch(core.CloseAll)
		cancelLoop()
		<-loopDone
		return ctx.Err()
	case err := <-serveDone:
		cancelLoop()
		<-loopDone
		return fmt.Errorf("server failed: %w", err)
	}
}
