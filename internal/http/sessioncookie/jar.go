// Package sessioncookie implementa el adapter de cookies de sesión.
//
// Las escrituras no van directo al ResponseWriter: se acumulan como
// mutaciones pendientes y se aplican exactamente una vez con Apply(),
// sobre la respuesta final. Algunos hosts snapshotean headers al construir
// el objeto de respuesta; si la mutación se hace sobre una respuesta
// intermedia, el Set-Cookie se pierde en silencio. El jar evita eso.
package sessioncookie

import (
	"net/http"
	"time"
)

// Options cubre los atributos de cookie que el portal necesita controlar.
type Options struct {
	MaxAge   int // segundos; <0 emite Max-Age=0 (borrado inmediato)
	Path     string
	Domain   string
	SameSite http.SameSite
	Secure   bool
	HttpOnly bool
}

// Jar acumula mutaciones de cookies para un request.
// No es seguro para uso concurrente; un request = un jar.
type Jar struct {
	req     *http.Request
	pending []*http.Cookie
	applied bool
}

// New crea un jar sobre el request actual.
func New(r *http.Request) *Jar {
	return &Jar{req: r}
}

// Get devuelve el valor de la cookie y si existe.
// Las mutaciones pendientes pisan lo que vino en el request; una cookie
// removida en este mismo request se reporta ausente. Nunca retorna error.
func (j *Jar) Get(name string) (string, bool) {
	for i := len(j.pending) - 1; i >= 0; i-- {
		if j.pending[i].Name == name {
			if j.pending[i].MaxAge < 0 {
				return "", false
			}
			return j.pending[i].Value, true
		}
	}
	ck, err := j.req.Cookie(name)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

// Set encola una escritura de cookie.
func (j *Jar) Set(name, value string, o Options) {
	j.pending = append(j.pending, build(name, value, o))
}

// Remove encola el borrado de una cookie (Max-Age=0, Expires en el pasado).
// Es válido remover una cookie que no estaba presente en el request.
func (j *Jar) Remove(name string, o Options) {
	o.MaxAge = -1
	j.pending = append(j.pending, build(name, "", o))
}

// Apply escribe todas las mutaciones pendientes sobre la respuesta final.
// Debe llamarse una sola vez, antes de WriteHeader; llamadas posteriores
// son no-op para no duplicar headers si el handler rearma la respuesta.
func (j *Jar) Apply(w http.ResponseWriter) {
	if j.applied {
		return
	}
	j.applied = true
	for _, ck := range j.pending {
		http.SetCookie(w, ck)
	}
}

// Pending expone las mutaciones encoladas (para tests y relays).
func (j *Jar) Pending() []*http.Cookie {
	return j.pending
}

func build(name, value string, o Options) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		HttpOnly: o.HttpOnly,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
	if ck.Path == "" {
		ck.Path = "/"
	}
	if ck.SameSite == 0 {
		ck.SameSite = http.SameSiteLaxMode
	}
	switch {
	case o.MaxAge > 0:
		ck.MaxAge = o.MaxAge
		ck.Expires = time.Now().Add(time.Duration(o.MaxAge) * time.Second).UTC()
	case o.MaxAge < 0:
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0).UTC()
	}
	return ck
}
