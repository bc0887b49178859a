package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "net/http/pprof"

	"github.com/bluesky-social/hallmonitor/pkg/env"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checks service health for the /ping endpoint. A non-nil error results in a 503.
type HealthFunc func() error

// Serves /metrics, /version, and /ping (plus pprof) on addr until ctx is done. An empty addr disables the server.
func RunServer(ctx context.Context, cancel context.CancelFunc, addr string, healthy HealthFunc) error {
	if addr == "" {
		slog.Info("metrics server disabled")
		return nil
	}

	defer cancel()

	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/version", env.VersionHandler)
	http.HandleFunc("/ping", PingHandler(healthy))

	srv := &http.Server{
		Addr:         addr,
		Handler:      nil,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down metrics server", "err", err)
		}
	}()

	slog.Info("metrics server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func PingHandler(healthy HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if healthy != nil {
			if err := healthy(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprintf(w, "unhealthy: %s", err)
				return
			}
		}
		_, _ = fmt.Fprintf(w, "OK")
	}
}
