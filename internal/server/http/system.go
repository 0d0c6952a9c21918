package http

import (
	"net/http"
	"time"

	"github.com/grapelabs/grape/internal/server/store"
	"github.com/grapelabs/grape/pkg/httpx"
	"github.com/grapelabs/grape/pkg/slogx"
)

// HealthHandler is the liveness probe: up, version, uptime.
func HealthHandler(startTime time.Time, buildVersion string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteSuccess(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"version":        buildVersion,
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		})
	})
}

// StatusHandler reports readiness including a store ping.
func StatusHandler(env string, st store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		database := "ok"
		status := "operational"
		code := http.StatusOK
		if err := st.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Error("store ping failed", "err", err)
			database = "unreachable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteSuccess(w, code, map[string]string{
			"status":      status,
			"environment": env,
			"database":    database,
		})
	})
}
