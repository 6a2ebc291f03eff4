package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	pprofhttp "net/http/pprof"
	"sync"
	"time"

	"mprobe/internal/config"
)

const (
	pprofShutdownTimeout = 3 * time.Second
	pprofReadHeaderTO    = 2 * time.Second
)

// startPprofServer starts the optional pprof HTTP endpoint of the probe agent.
// Params: ctx controls lifecycle; cfg provides enabled/listen options; logger reports runtime events.
// Returns: stop function (idempotent) and startup error.
func startPprofServer(ctx context.Context, cfg config.PprofConfig, logger *slog.Logger) (func(), error) {
	if !cfg.Enabled {
		return func() {}, nil
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", cfg.Listen, err)
	}

	server := &http.Server{
		Handler:           pprofMux(),
		ReadHeaderTimeout: pprofReadHeaderTO,
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), pprofShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("pprof shutdown error", slog.String("error", err.Error()))
			}
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("pprof server failed",
				slog.String("addr", cfg.Listen),
				slog.String("error", serveErr.Error()),
			)
		}
	}()

	logger.Info("pprof server started", slog.String("addr", cfg.Listen))
	return stop, nil
}

// pprofMux builds the debug endpoint mux.
// Params: none.
// Returns: mux serving the standard pprof handlers.
func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprofhttp.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprofhttp.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprofhttp.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprofhttp.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprofhttp.Trace)
	return mux
}
