package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const pingTimeout = 2 * time.Second

// HealthCheck reports whether a dependency the API needs is reachable.
type HealthCheck func(ctx context.Context) error

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request)
}

type pingHandler struct {
	logger *slog.Logger
	check  HealthCheck
}

// NewPingHandler - answers /ping with "pong" while check passes. A nil check always passes.
func NewPingHandler(logger *slog.Logger, check HealthCheck) PingHandler {
	return &pingHandler{
		logger: logger.With("component", "ping"),
		check:  check,
	}
}

func (that *pingHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if that.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := that.check(ctx); err != nil {
			that.logger.Warn("health check failed", "error", err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Debug("failed to write pong", "error", err)
	}
}
