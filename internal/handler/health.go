package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health returns a health check handler that verifies the upload directory is reachable.
func Health(logger *slog.Logger, store pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK

		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("health: storage check failed", "err", err)
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
