// Package billing habla con la API de pagos hosteada (checkout sessions).
//
// El cliente se construye una vez en main y se inyecta a los handlers:
// nada de clientes globales armados lazy en el primer request.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

// Config del cliente de pagos.
type Config struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string

	// BaseURL se pisa en tests; default api.stripe.com.
	BaseURL string
	// Timeout del cliente HTTP. Default 10s.
	Timeout time.Duration
}

// Client crea checkout sessions contra la API de pagos.
type Client struct {
	secretKey  string
	successURL string
	cancelURL  string
	baseURL    string
	http       *http.Client
}

// New valida la configuración y construye el cliente. Falla temprano:
// una clave faltante rompe el arranque, no el primer checkout.
func New(cfg Config) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("billing: secret key requerida")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("billing: success_url y cancel_url requeridas")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		secretKey:  cfg.SecretKey,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		baseURL:    strings.TrimRight(base, "/"),
		http:       &http.Client{Timeout: timeout},
	}, nil
}

// CheckoutParams describe la sesión de checkout a crear.
type CheckoutParams struct {
	PriceID           string
	Quantity          int
	CustomerEmail     string
	ClientReferenceID string // id del principal, para reconciliar el webhook
	IdempotencyKey    string
}

// CheckoutSession es la proyección que el portal necesita de la respuesta.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession crea una checkout session de suscripción.
// Sin retries: un fallo se reporta al caller de inmediato.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if p.PriceID == "" {
		return nil, fmt.Errorf("billing: price id requerido")
	}
	qty := p.Quantity
	if qty <= 0 {
		qty = 1
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	form.Set("line_items[0][price]", p.PriceID)
	form.Set("line_items[0][quantity]", strconv.Itoa(qty))
	if p.CustomerEmail != "" {
		form.Set("customer_email", p.CustomerEmail)
	}
	if p.ClientReferenceID != "" {
		form.Set("client_reference_id", p.ClientReferenceID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if p.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", p.IdempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing: checkout request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("billing: checkout http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var cs CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&cs); err != nil {
		return nil, fmt.Errorf("billing: decode checkout session: %w", err)
	}
	if cs.URL == "" {
		return nil, fmt.Errorf("billing: checkout session sin URL")
	}
	return &cs, nil
}
