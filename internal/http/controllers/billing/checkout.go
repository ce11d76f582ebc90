// Package billing contiene el proxy de checkout (user-gated).
package billing

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	corebilling "github.com/dropsaas/portal/internal/billing"
	"github.com/dropsaas/portal/internal/http/errors"
	"github.com/dropsaas/portal/internal/http/helpers"
	"github.com/dropsaas/portal/internal/http/middlewares"
	"github.com/dropsaas/portal/internal/observability/logger"
)

// CheckoutClient es la capability que necesita el controller.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, p corebilling.CheckoutParams) (*corebilling.CheckoutSession, error)
}

// Controller maneja /api/billing/checkout.
type Controller struct {
	Client CheckoutClient
}

// NewController crea el controller de billing.
func NewController(client CheckoutClient) *Controller {
	return &Controller{Client: client}
}

type checkoutRequest struct {
	PriceID  string `json:"priceId"`
	Quantity int    `json:"quantity"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// CreateCheckout responde POST /api/billing/checkout.
// Pass-through fino: el principal viene del gate, la API de pagos hace el resto.
func (c *Controller) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetPrincipal(r.Context())
	if p == nil {
		errors.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var req checkoutRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.PriceID == "" {
		errors.WriteError(w, errors.ErrMissingFields.WithDetail("priceId requerido"))
		return
	}

	cs, err := c.Client.CreateCheckoutSession(r.Context(), corebilling.CheckoutParams{
		PriceID:           req.PriceID,
		Quantity:          req.Quantity,
		CustomerEmail:     p.Email,
		ClientReferenceID: p.ID,
		IdempotencyKey:    uuid.NewString(),
	})
	if err != nil {
		logger.From(r.Context()).Error("checkout creation failed",
			logger.UserID(p.ID),
			logger.Err(err),
		)
		errors.WriteError(w, errors.ErrUpstreamUnavailable.WithDetail("no se pudo crear el checkout"))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, checkoutResponse{URL: cs.URL})
}
