package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"instadoc/internal/audit"
	astore "instadoc/internal/audit/store"
	"instadoc/internal/identity"
	idstore "instadoc/internal/identity/store"
	"instadoc/internal/platform/config"
	"instadoc/internal/platform/httpserver"
	"instadoc/internal/platform/logger"
	platformredis "instadoc/internal/platform/redis"
	"instadoc/internal/profile"
	pstore "instadoc/internal/profile/store"
	"instadoc/internal/registration"
	reghandler "instadoc/internal/registration/handler"
	regmetrics "instadoc/internal/registration/metrics"
	"instadoc/internal/session"
	httptransport "instadoc/internal/transport/http"
	"instadoc/internal/upload"
	"instadoc/internal/verification"
	"instadoc/internal/verification/dispatch"
	vmetrics "instadoc/internal/verification/metrics"
	vstore "instadoc/internal/verification/store"
)

// main wires the dependency graph and owns the process lifecycle. Every
// backing service degrades to an in-process implementation when its endpoint
// is not configured, so a bare `go run ./cmd/server` serves the whole flow.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthCheck{}

	// Challenge store: Redis when configured, else in-memory.
	var challenges verification.ChallengeStore = vstore.NewMemory()
	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		challenges = vstore.NewRedis(rdb.Client)
		checks["redis"] = rdb.Health
		log.Info("challenge store: redis")
	} else {
		log.Info("challenge store: memory")
	}

	// Durable stores: Postgres when configured, else in-memory.
	var users identity.UserStore = idstore.NewMemory()
	var docs profile.DocumentStore = pstore.NewMemory()
	var trailStore audit.Store = astore.NewMemory()
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		identityStore := idstore.NewPostgres(pool)
		documentStore := pstore.NewPostgres(pool)
		auditStore, err := astore.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("audit store connection failed", "error", err)
			os.Exit(1)
		}
		defer auditStore.Close()

		for _, migrate := range []func(context.Context) error{
			identityStore.Migrate, documentStore.Migrate, auditStore.Migrate,
		} {
			if err := migrate(ctx); err != nil {
				log.Error("migration failed", "error", err)
				os.Exit(1)
			}
		}

		users, docs, trailStore = identityStore, documentStore, auditStore
		checks["postgres"] = pool.Ping
		log.Info("durable stores: postgres")
	} else {
		log.Info("durable stores: memory")
	}

	// Mail dispatch: HTTP collaborator when configured, else log-only.
	var dispatcher verification.Dispatcher
	if cfg.MailDispatchURL != "" {
		dispatcher = dispatch.New(cfg.MailDispatchURL)
	} else {
		dispatcher = devDispatcher{log: log}
		log.Warn("mail dispatch not configured, codes are logged")
	}

	// Object storage: resumable HTTP store when configured, else in-memory.
	var objects upload.ObjectStore = upload.NewMemoryStore()
	if cfg.ObjectStoreURL != "" {
		objects = upload.NewHTTPStore(cfg.ObjectStoreURL)
	}

	trail := audit.NewTrail(audit.WithLogger(log))
	worker := audit.NewWorker(trailStore, trail.Inbox(), audit.WithWorkerLogger(log))
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	coordinator := registration.NewCoordinator(
		verification.NewGate(dispatcher,
			verification.WithLogger(log),
			verification.WithMetrics(vmetrics.New()),
		),
		challenges,
		identity.NewLocalProvider(users, identity.WithLogger(log)),
		upload.NewClient(objects, upload.WithLogger(log)),
		profile.NewWriter(docs, profile.WithLogger(log)),
		registration.DefaultFormConfig(),
		registration.WithLogger(log),
		registration.WithMetrics(regmetrics.New()),
		registration.WithTrail(trail),
	)

	sessions := session.NewManager([]byte(cfg.JWTSigningKey), session.WithTTL(cfg.CookieTTL))

	router := httptransport.NewRouter(reghandler.New(coordinator, sessions, log), checks)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("instadoc listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// devDispatcher stands in for the mail collaborator in local development.
// The code lands in the log instead of a mailbox.
type devDispatcher struct {
	log *slog.Logger
}

func (d devDispatcher) Dispatch(ctx context.Context, email, code string) error {
	d.log.InfoContext(ctx, "verification code (dev dispatch)", "email", email, "otp", code)
	return nil
}
