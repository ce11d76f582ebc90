package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropsaas/portal/internal/authz"
	"github.com/dropsaas/portal/internal/billing"
	"github.com/dropsaas/portal/internal/cache"
	"github.com/dropsaas/portal/internal/config"
	"github.com/dropsaas/portal/internal/email"
	adminctrl "github.com/dropsaas/portal/internal/http/controllers/admin"
	authctrl "github.com/dropsaas/portal/internal/http/controllers/auth"
	billingctrl "github.com/dropsaas/portal/internal/http/controllers/billing"
	contactctrl "github.com/dropsaas/portal/internal/http/controllers/contact"
	healthctrl "github.com/dropsaas/portal/internal/http/controllers/health"
	pagesctrl "github.com/dropsaas/portal/internal/http/controllers/pages"
	userctrl "github.com/dropsaas/portal/internal/http/controllers/user"
	"github.com/dropsaas/portal/internal/http/router"
	"github.com/dropsaas/portal/internal/identity"
	"github.com/dropsaas/portal/internal/metrics"
	"github.com/dropsaas/portal/internal/observability/logger"
	"github.com/dropsaas/portal/internal/rate"
	"github.com/dropsaas/portal/internal/store/pg"
	migrations "github.com/dropsaas/portal/migrations/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using system environment")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "portal",
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Store ──
	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		lg.Fatal("store init failed", logger.Err(err))
	}
	defer store.Close()

	if os.Getenv("AUTO_MIGRATE") == "1" {
		if err := store.ApplyMigrations(ctx, migrations.FS); err != nil {
			lg.Fatal("migrations failed", logger.Err(err))
		}
	}

	// ── Cache ──
	cacheClient, err := cache.New(cache.Config{
		Driver:     cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.MemoryTTL(),
	})
	if err != nil {
		lg.Fatal("cache init failed", logger.Err(err))
	}
	defer func() { _ = cacheClient.Close() }()

	// ── Identity + authz ──
	provider, err := identity.NewClient(identity.ClientConfig{
		BaseURL:   cfg.Identity.BaseURL,
		AnonKey:   cfg.Identity.AnonKey,
		JWTSecret: cfg.Identity.JWTSecret,
	})
	if err != nil {
		lg.Fatal("identity client init failed", logger.Err(err))
	}
	sessions := identity.NewResolver(provider)
	roles := authz.NewRoleResolver(store, cacheClient, cfg.RoleTTL())

	// ── Clientes inyectados opcionales ──
	var billingController *billingctrl.Controller
	if cfg.Billing.Enabled {
		payments, err := billing.New(billing.Config{
			SecretKey:  cfg.Billing.SecretKey,
			SuccessURL: cfg.Billing.SuccessURL,
			CancelURL:  cfg.Billing.CancelURL,
		})
		if err != nil {
			lg.Fatal("billing client init failed", logger.Err(err))
		}
		billingController = billingctrl.NewController(payments)
	}

	var contactController *contactctrl.Controller
	var contactLimiter rate.Limiter
	if cfg.SMTP.Enabled {
		sender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			From:               cfg.SMTP.From,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})
		if err != nil {
			lg.Fatal("smtp sender init failed", logger.Err(err))
		}
		contactController = contactctrl.NewController(sender, cfg.Contact.Inbox)

		// El formulario público se limita por IP; con redis el límite se
		// comparte entre réplicas.
		if cfg.Cache.Kind == "redis" {
			contactLimiter = rate.NewRedisLimiter(rdb.NewClient(&rdb.Options{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
			}), "rl:contact:", cfg.Contact.RateMax, cfg.ContactRateWindow())
		} else {
			contactLimiter = rate.NewMemoryLimiter(cfg.Contact.RateMax, cfg.ContactRateWindow())
		}
	}

	metricsHandler, err := metrics.Register(nil)
	if err != nil {
		lg.Fatal("metrics init failed", logger.Err(err))
	}

	// ── Router ──
	handler := router.New(router.Deps{
		Sessions: sessions,
		Roles:    roles,
		Auth:     authctrl.NewController(provider, sessions, roles, store, cfg.IsProd()),
		Admin:    adminctrl.NewController(store, roles),
		User:     userctrl.NewController(roles),
		Billing:  billingController,
		Contact:  contactController,

		ContactLimiter: contactLimiter,
		Pages:    pagesctrl.NewController(cfg.Landing),
		Health:   healthctrl.NewController(store, cacheClient),

		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("portal listening", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Fatal("server failed", logger.Err(err))
	}
	lg.Info("shutdown complete")
}
