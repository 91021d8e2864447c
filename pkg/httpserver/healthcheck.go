package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/edutrack/institute/pkg/logger"
)

// Check is a named dependency check.
type Check struct {
	Name string
	Ping func(context.Context) error
}

// LivenessHandler always answers 200 {"status":"ALIVE"}.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "ALIVE", nil)
	}
}

// ReadinessHandler runs every check with a per-request timeout. Any failure
// yields 503 with the failing check names listed.
func ReadinessHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		var failed []string
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				log.WarnContext(ctx, "readiness check failed",
					slog.String("check", c.Name),
					logger.Error(err),
					logger.Component("health"),
				)
				failed = append(failed, c.Name)
			}
		}
		if len(failed) > 0 {
			writeHealth(w, http.StatusServiceUnavailable, "NOT_READY", failed)
			return
		}
		writeHealth(w, http.StatusOK, "READY", nil)
	}
}

func writeHealth(w http.ResponseWriter, code int, status string, failed []string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(struct {
		Status string   `json:"status"`
		Failed []string `json:"failed,omitempty"`
	}{status, failed})
}
