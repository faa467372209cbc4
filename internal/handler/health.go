package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck is one named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler returns a health check endpoint that runs every probe and
// reports 503 when any of them fails.
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{}
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[c.Name] = err.Error()
				continue
			}
			result[c.Name] = "ok"
		}

		body := map[string]interface{}{"status": "healthy", "checks": result}
		if status != http.StatusOK {
			body["status"] = "unhealthy"
		}
		RespondJSON(w, status, body)
	}
}
