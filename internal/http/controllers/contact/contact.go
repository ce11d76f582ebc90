// Package contact releva el formulario de contacto público al inbox del equipo.
package contact

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dropsaas/portal/internal/email"
	"github.com/dropsaas/portal/internal/http/errors"
	"github.com/dropsaas/portal/internal/http/helpers"
	"github.com/dropsaas/portal/internal/observability/logger"
	"github.com/dropsaas/portal/internal/util"
)

// Controller maneja POST /api/contact.
type Controller struct {
	Sender email.Sender
	Inbox  string
}

// NewController crea el controller de contacto.
func NewController(sender email.Sender, inbox string) *Controller {
	return &Controller{Sender: sender, Inbox: inbox}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit recibe el formulario, lo reenvía por email y responde 202.
// El contenido del template es deliberadamente mínimo; el mensaje del
// usuario viaja como texto plano escapado.
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Email == "" || req.Message == "" {
		errors.WriteError(w, errors.ErrMissingFields.WithDetail("email y message son requeridos"))
		return
	}
	if len(req.Message) > 10_000 {
		errors.WriteError(w, errors.ErrBadRequest.WithDetail("mensaje demasiado largo"))
		return
	}

	id := uuid.NewString()
	subject := fmt.Sprintf("[contacto] %s (%s)", req.Name, req.Email)
	text := fmt.Sprintf("id: %s\nfrom: %s <%s>\n\n%s", id, req.Name, req.Email, req.Message)
	htmlBody := fmt.Sprintf("<p><b>%s</b> &lt;%s&gt;</p><pre>%s</pre>",
		html.EscapeString(req.Name), html.EscapeString(req.Email), html.EscapeString(req.Message))

	if err := c.Sender.Send(c.Inbox, subject, htmlBody, text); err != nil {
		logger.From(r.Context()).Error("contact relay failed", logger.ID(id), logger.Err(err))
		errors.WriteError(w, errors.ErrUpstreamUnavailable.WithDetail("no se pudo enviar el mensaje"))
		return
	}

	logger.From(r.Context()).Info("contact message relayed",
		logger.ID(id),
		logger.Email(util.MaskEmail(req.Email)),
	)
	helpers.WriteJSON(w, http.StatusAccepted, map[string]string{"id": id})
}
