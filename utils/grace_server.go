package utils

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	// Uploads of several hundred megabytes need long body reads.
	DefaultReadTimeout  = 15 * time.Minute
	DefaultWriteTimeout = 15 * time.Minute
	DefaultIdleTimeout  = 2 * time.Minute
	ShutdownTimeout     = 30 * time.Second
)

// NewServer creates an http.Server with the service timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
}

// GraceServer serves until ctx is cancelled, then drains in-flight requests.
func GraceServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := NewServer(addr, handler)
	errCh := make(chan error, 1)
	go func() {
		Sugar.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	Sugar.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Sugar.Errorf("HTTP server shutdown error: %v", err)
		return err
	}
	Sugar.Info("HTTP server shutdown success")
	return nil
}
