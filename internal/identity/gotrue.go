package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client habla con un proveedor GoTrue-style (Supabase Auth y compatibles).
//
// Si JWTSecret está configurado, GetUser verifica el access token localmente
// (HS256) y se ahorra el round-trip; si no, consulta /auth/v1/user.
type Client struct {
	baseURL   string
	anonKey   string
	jwtSecret []byte
	http      *http.Client
}

// ClientConfig configura el cliente del proveedor.
type ClientConfig struct {
	BaseURL   string // ej: https://xyz.supabase.co
	AnonKey   string // apikey pública del proyecto
	JWTSecret string // opcional: habilita verificación local

	// Timeout del cliente HTTP. El host no impone ninguno, así que acá
	// siempre queda uno explícito. Default: 10s.
	Timeout time.Duration
}

// NewClient valida la configuración y construye el cliente.
// Falla al construirse, no en el primer uso.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("identity: base URL o JWT secret requeridos")
	}
	if cfg.BaseURL != "" && cfg.AnonKey == "" {
		return nil, fmt.Errorf("identity: anon key requerida para %s", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		anonKey:   cfg.AnonKey,
		jwtSecret: []byte(cfg.JWTSecret),
		http:      &http.Client{Timeout: timeout},
	}, nil
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GetUser implementa Provider.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*Principal, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}

	if len(c.jwtSecret) > 0 {
		return c.verifyLocal(accessToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: user lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var u userResponse
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, fmt.Errorf("identity: decode user: %w", err)
		}
		if u.ID == "" {
			return nil, ErrNoSession
		}
		return &Principal{ID: u.ID, Email: u.Email}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrNoSession
	default:
		return nil, fmt.Errorf("identity: user lookup http %d", resp.StatusCode)
	}
}

// SignOut implementa Provider. Un 401 del proveedor cuenta como éxito:
// la sesión ya no existe, que es el estado buscado.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if c.baseURL == "" || accessToken == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity: sign out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 || resp.StatusCode == http.StatusUnauthorized {
		return nil
	}
	return fmt.Errorf("identity: sign out http %d", resp.StatusCode)
}
