// Package config carga la configuración del portal desde YAML + variables
// de entorno. Las env vars pisan lo que venga del archivo.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// Identity: proveedor de identidad hosteado (GoTrue-style).
	Identity struct {
		BaseURL string `yaml:"base_url"`
		AnonKey string `yaml:"anon_key"`
		// JWTSecret habilita la verificación local del access token (HS256).
		// Si está vacío, cada resolución de sesión llama al endpoint /user.
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"identity"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Authz struct {
		// RoleTTL es cuánto vive la resolución de rol en cache.
		RoleTTL string `yaml:"role_ttl"`
	} `yaml:"authz"`

	Billing struct {
		Enabled    bool   `yaml:"enabled"`
		SecretKey  string `yaml:"secret_key"`
		SuccessURL string `yaml:"success_url"`
		CancelURL  string `yaml:"cancel_url"`
	} `yaml:"billing"`

	SMTP struct {
		Enabled            bool   `yaml:"enabled"`
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Contact struct {
		// Inbox es el destino de los mensajes del formulario de contacto.
		Inbox string `yaml:"inbox"`
		// RateMax / RateWindow limitan el formulario por IP.
		RateMax    int    `yaml:"rate_max"`
		RateWindow string `yaml:"rate_window"`
	} `yaml:"contact"`

	// Landing: contenido público servido por /api/pages/landing.
	// El shape es libre; se re-emite tal cual.
	Landing map[string]any `yaml:"landing"`
}

// Load lee el YAML (si existe) y aplica overrides de entorno.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyEnv() {
	setStr(&c.App.Env, "APP_ENV")
	setStr(&c.Server.Addr, "SERVER_ADDR")

	setStr(&c.Identity.BaseURL, "IDENTITY_BASE_URL")
	setStr(&c.Identity.AnonKey, "IDENTITY_ANON_KEY")
	setStr(&c.Identity.JWTSecret, "IDENTITY_JWT_SECRET")

	setStr(&c.Storage.DSN, "DATABASE_DSN")

	setStr(&c.Cache.Kind, "CACHE_KIND")
	setStr(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setStr(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Cache.Redis.DB, "REDIS_DB")

	setBool(&c.Billing.Enabled, "BILLING_ENABLED")
	setStr(&c.Billing.SecretKey, "BILLING_SECRET_KEY")
	setStr(&c.Billing.SuccessURL, "BILLING_SUCCESS_URL")
	setStr(&c.Billing.CancelURL, "BILLING_CANCEL_URL")

	setBool(&c.SMTP.Enabled, "SMTP_ENABLED")
	setStr(&c.SMTP.Host, "SMTP_HOST")
	setInt(&c.SMTP.Port, "SMTP_PORT")
	setStr(&c.SMTP.Username, "SMTP_USERNAME")
	setStr(&c.SMTP.Password, "SMTP_PASSWORD")
	setStr(&c.SMTP.From, "SMTP_FROM")
	setStr(&c.Contact.Inbox, "CONTACT_INBOX")
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Authz.RoleTTL == "" {
		c.Authz.RoleTTL = "30s"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Contact.RateMax == 0 {
		c.Contact.RateMax = 5
	}
	if c.Contact.RateWindow == "" {
		c.Contact.RateWindow = "1m"
	}
}

// IsProd indica si corremos en producción (afecta cookies Secure, logs JSON).
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

// RoleTTL parsea Authz.RoleTTL; default 30s si es inválido.
func (c *Config) RoleTTL() time.Duration {
	d, err := time.ParseDuration(c.Authz.RoleTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ContactRateWindow parsea Contact.RateWindow; default 1m.
func (c *Config) ContactRateWindow() time.Duration {
	d, err := time.ParseDuration(c.Contact.RateWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// MemoryTTL parsea Cache.Memory.DefaultTTL; 0 = sin expiración.
func (c *Config) MemoryTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.Memory.DefaultTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Validate chequea la configuración requerida y falla temprano.
// La regla es: todo cliente inyectado valida su config al construirse,
// no en el primer uso (un server que arranca con claves faltantes
// solo explota en producción cuando ya es tarde).
func (c *Config) Validate() error {
	var missing []string

	if c.Identity.BaseURL == "" && c.Identity.JWTSecret == "" {
		missing = append(missing, "identity.base_url (o identity.jwt_secret)")
	}
	if c.Identity.BaseURL != "" && c.Identity.AnonKey == "" {
		missing = append(missing, "identity.anon_key")
	}
	if c.Storage.DSN == "" {
		missing = append(missing, "storage.dsn")
	}
	if c.Billing.Enabled {
		if c.Billing.SecretKey == "" {
			missing = append(missing, "billing.secret_key")
		}
		if c.Billing.SuccessURL == "" {
			missing = append(missing, "billing.success_url")
		}
		if c.Billing.CancelURL == "" {
			missing = append(missing, "billing.cancel_url")
		}
	}
	if c.SMTP.Enabled {
		if c.SMTP.Host == "" {
			missing = append(missing, "smtp.host")
		}
		if c.SMTP.From == "" {
			missing = append(missing, "smtp.from")
		}
		if c.Contact.Inbox == "" {
			missing = append(missing, "contact.inbox")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: faltan valores requeridos: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}
