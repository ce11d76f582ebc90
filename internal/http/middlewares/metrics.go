package middlewares

import (
	"net/http"
	"time"

	"github.com/dropsaas/portal/internal/metrics"
)

// WithMetrics registra contadores y latencias por request.
// Usa el patrón de ruta de chi cuando está disponible para no explotar
// la cardinalidad con paths que traen IDs.
func WithMetrics(routePattern func(r *http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if routePattern != nil {
				if p := routePattern(r); p != "" {
					path = p
				}
			}
			metrics.ObserveRequest(r.Method, path, rec.status, time.Since(start).Seconds())
		})
	}
}
