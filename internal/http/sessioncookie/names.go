package sessioncookie

import (
	"encoding/json"
	"net/url"
	"strings"
)

// SessionNames es la lista fija de cookies que componen "la sesión".
// El logout limpia TODAS, estén presentes o no: un sign-out parcial deja
// al browser en un estado mitad logueado que es peor que cualquiera de
// los dos extremos. Los nombres son contrato externo con el cliente web.
var SessionNames = []string{
	"sb-access-token",
	"sb-refresh-token",
	"supabase-auth-token",
	"supabase.auth.token",
	"sb-localhost-auth-token",
	"sb-localhost-auth-token-code-verifier",
}

// accessTokenCookies: dónde buscar el access token, en orden de preferencia.
var accessTokenCookies = []string{
	"sb-access-token",
	"sb-localhost-auth-token",
	"supabase-auth-token",
	"supabase.auth.token",
}

// AccessToken extrae el access token de la sesión, si hay.
// Las cookies legacy guardan un JSON {"access_token": "..."} o un array
// ["...", ...]; las nuevas guardan el JWT pelado.
func AccessToken(j *Jar) (string, bool) {
	for _, name := range accessTokenCookies {
		v, ok := j.Get(name)
		if !ok || v == "" {
			continue
		}
		if tok := parseTokenValue(v); tok != "" {
			return tok, true
		}
	}
	return "", false
}

func parseTokenValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	// Los clientes web URL-encodean el JSON (comillas y comas no son bytes
	// válidos de cookie); decodificar antes de inspeccionar.
	if strings.Contains(v, "%") {
		if dec, err := url.QueryUnescape(v); err == nil {
			v = dec
		}
	}
	if !strings.HasPrefix(v, "{") && !strings.HasPrefix(v, "[") {
		return v
	}
	// Formato objeto legacy
	var obj struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(v), &obj); err == nil && obj.AccessToken != "" {
		return obj.AccessToken
	}
	// Formato array legacy: [access, refresh, ...]
	var arr []string
	if err := json.Unmarshal([]byte(v), &arr); err == nil && len(arr) > 0 {
		return arr[0]
	}
	return ""
}

// ClearSession encola el borrado de todo el Session Cookie Set.
// secure solo en prod: en dev el browser descarta cookies Secure sobre http
// y el borrado nunca llegaría a aplicarse.
func ClearSession(j *Jar, secure bool) {
	for _, name := range SessionNames {
		j.Remove(name, Options{
			HttpOnly: true,
			Secure:   secure,
			SameSite: 0, // Lax por defecto
		})
	}
}
