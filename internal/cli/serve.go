package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ShutdownTimeout bounds how long in-flight requests may take after a stop signal.
const ShutdownTimeout = 5 * time.Second

// Watcher signals flow reloads.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// ServeOptions configures RunServe.
type ServeOptions struct {
	Addr    string
	Handler http.Handler
	Logger  *slog.Logger
	// Watcher, when set, keeps the flow hot-reloaded while serving.
	Watcher Watcher
	// Ready receives the bound address once the listener is up.
	Ready chan<- string
}

// RunServe serves HTTP until ctx is cancelled, then shuts down gracefully.
func RunServe(ctx context.Context, opts ServeOptions) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if opts.Watcher != nil {
		reloads, err := opts.Watcher.Watch(ctx)
		if err != nil {
			opts.Logger.Warn("Hot reload disabled", "err", err)
		} else {
			go func() {
				for range reloads {
					opts.Logger.Info("Flow reloaded")
				}
			}()
		}
	}

	serverErrors := make(chan error, 1)
	go func() {
		opts.Logger.Info("Starting botflow server", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()
	if opts.Ready != nil {
		opts.Ready <- ln.Addr().String()
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		opts.Logger.Info("Start shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			opts.Logger.Error("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		opts.Logger.Info("botflow server stopped gracefully")
		return nil
	}
}
