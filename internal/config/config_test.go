package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.Env != "dev" || c.Server.Addr != ":8080" || c.Cache.Kind != "memory" {
		t.Fatalf("defaults inesperados: %+v", c)
	}
	if c.RoleTTL() != 30*time.Second {
		t.Fatalf("RoleTTL = %v", c.RoleTTL())
	}
	if c.IsProd() {
		t.Fatalf("dev no es prod")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  env: prod
server:
  addr: ":9090"
identity:
  base_url: https://xyz.supabase.co
  anon_key: anon
storage:
  dsn: postgres://portal:pw@localhost/portal
authz:
  role_ttl: 2m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.IsProd() || c.Server.Addr != ":9090" {
		t.Fatalf("config = %+v", c)
	}
	if c.RoleTTL() != 2*time.Minute {
		t.Fatalf("RoleTTL = %v", c.RoleTTL())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("IDENTITY_JWT_SECRET", "s3cr3t")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":7070" {
		t.Fatalf("env no pisó el archivo: %s", c.Server.Addr)
	}
	if c.Identity.JWTSecret != "s3cr3t" {
		t.Fatalf("JWTSecret = %q", c.Identity.JWTSecret)
	}
}

func TestLoad_MissingFileIsOK(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err != nil {
		t.Fatalf("archivo ausente no es error: %v", err)
	}
}

func TestValidate_ReportsAllMissing(t *testing.T) {
	c, _ := Load("")
	err := c.Validate()
	if err == nil {
		t.Fatalf("config vacía debería fallar Validate")
	}
	for _, want := range []string{"identity.base_url", "storage.dsn"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error no menciona %s: %v", want, err)
		}
	}
}

func TestValidate_BillingRequiresKeys(t *testing.T) {
	c, _ := Load("")
	c.Identity.JWTSecret = "s"
	c.Storage.DSN = "postgres://x"
	c.Billing.Enabled = true

	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "billing.secret_key") {
		t.Fatalf("billing habilitado sin claves debería fallar: %v", err)
	}

	c.Billing.Enabled = false
	if err := c.Validate(); err != nil {
		t.Fatalf("billing deshabilitado no exige claves: %v", err)
	}
}

func TestValidate_SMTPRequiresInbox(t *testing.T) {
	c, _ := Load("")
	c.Identity.JWTSecret = "s"
	c.Storage.DSN = "postgres://x"
	c.SMTP.Enabled = true
	c.SMTP.Host = "smtp.dropsaas.dev"
	c.SMTP.From = "portal@dropsaas.dev"

	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "contact.inbox") {
		t.Fatalf("smtp sin inbox debería fallar: %v", err)
	}
}
