package identity

import (
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// verifyLocal valida el access token HS256 con el secreto del proveedor
// y extrae el principal de las claims. Cualquier token inválido o vencido
// es ErrNoSession: para el gate es lo mismo que no traer cookie.
func (c *Client) verifyLocal(accessToken string) (*Principal, error) {
	claims := jwtv5.MapClaims{}
	_, err := jwtv5.ParseWithClaims(accessToken, claims, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg %v", t.Header["alg"])
		}
		return c.jwtSecret, nil
	}, jwtv5.WithValidMethods([]string{"HS256"}), jwtv5.WithExpirationRequired())
	if err != nil {
		return nil, ErrNoSession
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrNoSession
	}
	email, _ := claims["email"].(string)
	return &Principal{ID: sub, Email: email}, nil
}
