package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"

	"oitivas-pro/internal/api"
	"oitivas-pro/internal/app"
	"oitivas-pro/internal/auth"
	"oitivas-pro/internal/config"
	"oitivas-pro/internal/database"
	"oitivas-pro/internal/docstore"
	"oitivas-pro/internal/email"
	"oitivas-pro/internal/firebase"
	"oitivas-pro/internal/scheduler"
	"oitivas-pro/internal/signaling"
	"oitivas-pro/internal/tenant"
	"oitivas-pro/internal/workers"
	"oitivas-pro/pkg/logger"
	"oitivas-pro/pkg/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("❌ Erro config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("❌ Erro config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	boot := log.WithComponent("main")
	boot.Info("🚀 Iniciando Servidor OitivasPro...")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		boot.WithError(err).Warnf("⚠️ Fuso %q inválido, usando UTC", cfg.Timezone)
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		docs     docstore.Store
		services *firebase.Services
	)
	switch cfg.StoreBackend {
	case config.BackendFirebase:
		services, err = firebase.NewServices(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseDatabaseURL)
		if err != nil {
			boot.Fatalf("❌ Erro Firebase: %v", err)
		}
		docs = docstore.NewFirebaseStore(services.Database)
		boot.Info("✅ Firebase inicializado com sucesso")
	case config.BackendPostgres:
		db, err := database.NewDB(cfg.DatabaseURL)
		if err != nil {
			boot.Fatalf("❌ Erro DB: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			boot.Fatalf("❌ Erro schema: %v", err)
		}
		docs = docstore.NewPostgresStore(db)
		boot.Info("✅ Postgres inicializado com sucesso")
	default:
		docs = docstore.NewMemoryStore()
		boot.Warn("⚠️ Usando armazenamento em memória, dados não persistem")
	}

	authenticator, verifier := buildAuth(ctx, cfg, services, boot)

	resolver, err := tenant.NewResolver(tenant.Scheme(cfg.TenantScheme))
	if err != nil {
		boot.Fatalf("❌ Erro tenant: %v", err)
	}

	registry := app.NewRegistry(app.Deps{
		Docs:     docs,
		Auth:     authenticator,
		Resolver: resolver,
		Root:     cfg.StoreRoot,
		Location: loc,
	}, log)
	hub := signaling.NewHub(log.WithComponent("signaling"))

	wm := workers.NewWorkerManager(log.WithComponent("workers"))
	idle := time.Duration(cfg.SessionIdleTimeoutMin) * time.Minute
	wm.RegisterWorker(workers.NewSessionJanitor(registry, idle, log.WithComponent("janitor")))
	wm.Start()
	defer wm.Stop()

	if cfg.DigestEnabled {
		startDigest(ctx, cfg, loc, registry, log)
	}

	server := api.NewServer(api.Options{
		Registry:  registry,
		Hub:       hub,
		Verifier:  verifier,
		Docs:      docs,
		Logger:    log,
		Location:  loc,
		Backend:   cfg.StoreBackend,
		Workers:   wm,
		StaticDir: "./web",
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	boot.WithField("port", cfg.Port).Info("✅ Servidor pronto")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		boot.Fatalf("❌ Erro servidor: %v", err)
	}
	boot.Info("👋 Servidor encerrado")
}

// buildAuth prefere o Firebase Auth e cai para a lista AUTH_USERS.
func buildAuth(ctx context.Context, cfg *config.Config, services *firebase.Services, log *logrus.Entry) (auth.Authenticator, api.TokenVerifier) {
	if cfg.FirebaseAPIKey != "" {
		var client *fbauth.Client
		if services != nil {
			client = services.Auth
		}
		fa, err := auth.NewFirebaseAuthenticator(ctx, cfg.FirebaseAPIKey, client)
		if err != nil {
			log.Fatalf("❌ Erro Firebase Auth: %v", err)
		}
		log.Info("✅ Login via Firebase Auth")
		return fa, fa
	}

	users, err := auth.ParseUsers(cfg.AuthUsers)
	if err != nil {
		log.Fatalf("❌ Erro AUTH_USERS: %v", err)
	}
	log.WithField("users", users.Len()).Info("✅ Login via AUTH_USERS")
	return users, nil
}

func startDigest(ctx context.Context, cfg *config.Config, loc *time.Location, registry *app.Registry, log *logger.Logger) {
	entry := log.WithComponent("scheduler")

	mailer, err := email.NewEmailService(cfg)
	if err != nil {
		entry.WithError(err).Warn("⚠️ Resumo diário desativado: e-mail indisponível")
		return
	}

	recipients := func() []scheduler.Recipient {
		var out []scheduler.Recipient
		seen := make(map[string]bool)
		for _, a := range registry.Active() {
			p, ok := a.Principal()
			if !ok || p.Email == "" || seen[p.Email] {
				continue
			}
			seen[p.Email] = true
			out = append(out, scheduler.Recipient{Email: p.Email, Unit: models.UnitName(p.Email), Items: a.Items()})
		}
		return out
	}

	sch, err := scheduler.NewScheduler(cfg.DigestCron, loc, mailer, recipients, entry)
	if err != nil {
		entry.WithError(err).Warn("⚠️ Erro ao criar scheduler")
		return
	}
	if err := sch.Start(ctx); err != nil {
		entry.WithError(err).Warn("⚠️ Erro ao iniciar scheduler")
		return
	}
	entry.Info("✅ Scheduler iniciado")
}
