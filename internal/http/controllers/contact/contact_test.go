package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeSender struct {
	err     error
	to      string
	subject string
	text    string
	calls   int
}

func (f *fakeSender) Send(to, subject, htmlBody, textBody string) error {
	f.calls++
	f.to, f.subject, f.text = to, subject, textBody
	return f.err
}

func submit(t *testing.T, c *Controller, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", "/api/contact", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.Submit(rec, r)
	return rec
}

func TestSubmit(t *testing.T) {
	sender := &fakeSender{}
	c := NewController(sender, "soporte@dropsaas.dev")

	rec := submit(t, c, `{"name":"Ana","email":"ana@x.com","message":"hola"}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body)
	}
	if sender.calls != 1 || sender.to != "soporte@dropsaas.dev" {
		t.Fatalf("sender calls=%d to=%q", sender.calls, sender.to)
	}
	if !strings.Contains(sender.text, "hola") {
		t.Fatalf("cuerpo sin mensaje: %q", sender.text)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["id"] == "" {
		t.Fatalf("respuesta sin id: %s", rec.Body)
	}
}

func TestSubmit_MissingFields(t *testing.T) {
	sender := &fakeSender{}
	c := NewController(sender, "soporte@dropsaas.dev")

	for _, body := range []string{
		`{}`,
		`{"email":"ana@x.com"}`,
		`{"message":"hola"}`,
		`{"email":"   ","message":"  "}`,
	} {
		rec := submit(t, c, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if sender.calls != 0 {
		t.Fatalf("sender no debe llamarse con requests inválidos")
	}
}

func TestSubmit_RelayFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp: connection refused")}
	c := NewController(sender, "soporte@dropsaas.dev")

	rec := submit(t, c, `{"email":"ana@x.com","message":"hola"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
