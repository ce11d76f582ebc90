// Package pages sirve el contenido público del sitio de marketing.
package pages

import (
	"net/http"

	"github.com/dropsaas/portal/internal/http/helpers"
)

// Controller sirve /api/pages/landing.
type Controller struct {
	// Landing viene de config; se re-emite tal cual (el shape del
	// contenido es del equipo de marketing, no nuestro).
	Landing map[string]any
}

// NewController crea el controller de páginas.
func NewController(landing map[string]any) *Controller {
	return &Controller{Landing: landing}
}

// Landing responde GET /api/pages/landing.
func (c *Controller) LandingPage(w http.ResponseWriter, r *http.Request) {
	content := c.Landing
	if content == nil {
		content = map[string]any{}
	}
	helpers.WriteJSON(w, http.StatusOK, content)
}
