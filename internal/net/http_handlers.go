// Package net assembles the HTTP surface of the reference host: the
// websocket endpoint, health and diagnostics, and the metrics exporter.
package net

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/pprof"
	"time"

	"itemforge/server/internal/catalog"
	"itemforge/server/internal/net/ws"
	"itemforge/server/internal/observability"
	"itemforge/server/internal/session"
	"itemforge/server/internal/telemetry"
)

type HTTPHandlerConfig struct {
	Logger        telemetry.Logger
	Observability observability.Config
	Metrics       *observability.Metrics
}

func NewHTTPHandler(wsHandler *ws.Handler, sessions *session.Registry, loader *catalog.Loader, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	started := time.Now()

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/ws", wsHandler.Handle)

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status         string `json:"status"`
			ServerTime     int64  `json:"serverTime"`
			UptimeSeconds  int64  `json:"uptimeSeconds"`
			ActiveSessions int    `json:"activeSessions"`
			CatalogSize    int    `json:"catalogSize"`
		}{
			Status:         "ok",
			ServerTime:     time.Now().UnixMilli(),
			UptimeSeconds:  int64(time.Since(started).Seconds()),
			ActiveSessions: sessions.Count(),
			CatalogSize:    loader.Catalog().Len(),
		}
		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics.Handler())
	}

	if cfg.Observability.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return mux
}

func httpError(w nethttp.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	w.Write([]byte(message))
}
