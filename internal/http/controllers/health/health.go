// Package health expone liveness y readiness.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropsaas/portal/internal/cache"
	"github.com/dropsaas/portal/internal/http/helpers"
)

// Pinger es cualquier dependencia chequeable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller maneja /healthz y /readyz.
type Controller struct {
	Store Pinger
	Cache cache.Client
}

// NewController crea el controller de health.
func NewController(store Pinger, c cache.Client) *Controller {
	return &Controller{Store: store, Cache: c}
}

// Healthz responde 200 si el proceso está vivo.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz chequea store y cache con timeout corto.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if c.Store != nil {
		if err := c.Store.Ping(ctx); err != nil {
			checks["store"] = err.Error()
			ready = false
		} else {
			checks["store"] = "ok"
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			ready = false
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, map[string]any{"ready": ready, "checks": checks})
}
