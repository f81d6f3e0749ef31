// Package main is the entry point for the Vereda Tours API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/vereda-tours/internal/config"
	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/handler"
	"github.com/pkordes/vereda-tours/internal/imagestore"
	"github.com/pkordes/vereda-tours/internal/middleware"
	"github.com/pkordes/vereda-tours/internal/receipt"
	"github.com/pkordes/vereda-tours/internal/repo"
	"github.com/pkordes/vereda-tours/internal/selection"
	"github.com/pkordes/vereda-tours/internal/service"
	"github.com/pkordes/vereda-tours/migrations"
)

// repos groups the persistence backends selected by config.Store.
type repos struct {
	plans        repo.PlanRepo
	guides       repo.GuideRepo
	users        repo.UserRepo
	reservations repo.ReservationRepo
	close        func()
}

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before the configured one exists.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	ctx := context.Background()
	store, err := openRepos(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer store.close()
	slog.Info("storage ready", "store", cfg.Store)

	images, err := imagestore.New(cfg.UploadDir, cfg.ImageBaseURL)
	if err != nil {
		slog.Error("failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	selections, closeSelections := openSelectionStore(ctx, cfg)
	defer closeSelections()

	// --- Services ---------------------------------------------------------
	auth := service.NewAuthService(store.users, cfg.JWTSecret, cfg.TokenTTL)
	users := service.NewUserService(store.users)
	if err := bootstrapAdmin(ctx, users, cfg); err != nil {
		slog.Error("failed to bootstrap administrator", "error", err)
		os.Exit(1)
	}

	srv := handler.NewServer(handler.Services{
		Plans:        service.NewPlanService(store.plans, images, logger),
		Guides:       service.NewGuideService(store.guides, logger),
		Users:        users,
		Auth:         auth,
		Reservations: service.NewReservationService(store.reservations, store.plans, store.guides, store.users, receipt.Renderer{}, logger),
		Selection:    service.NewSelectionService(selections, store.plans),
		Images:       images,
	}, logger, time.UTC)

	// --- Router -----------------------------------------------------------
	router := handler.NewRouter(srv, handler.RouterOptions{
		Log:          logger,
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Tenant:       cfg.TenantID,
		Auth:         auth,
		LoginLimiter: middleware.NewRateLimiter(cfg.LoginRatePerMin),
		UploadDir:    images.Root(),
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for receipt rendering and image uploads.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openRepos returns Postgres repos (after applying migrations) or memory
// repos, depending on cfg.Store.
func openRepos(ctx context.Context, cfg config.Config) (repos, error) {
	if cfg.Store == config.StoreMemory {
		mem := repo.NewMemoryRepos(cfg.MockLatency)
		return repos{
			plans:        mem.Plans,
			guides:       mem.Guides,
			users:        mem.Users,
			reservations: mem.Reservations,
			close:        func() {},
		}, nil
	}

	if err := migrate(ctx, cfg.DatabaseURL); err != nil {
		return repos{}, err
	}

	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return repos{}, fmt.Errorf("create pool: %w", err)
	}
	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return repos{}, fmt.Errorf("ping: %w", err)
	}
	return repos{
		plans:        repo.NewPlanRepo(pool),
		guides:       repo.NewGuideRepo(pool),
		users:        repo.NewUserRepo(pool),
		reservations: repo.NewReservationRepo(pool),
		close:        pool.Close,
	}, nil
}

// migrate applies pending goose migrations through the database/sql pgx driver.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		slog.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// openSelectionStore uses Redis when REDIS_ADDR is set and an in-process
// store otherwise. An unreachable Redis falls back to memory with a warning.
func openSelectionStore(ctx context.Context, cfg config.Config) (selection.Store, func()) {
	if cfg.RedisAddr == "" {
		return selection.NewMemoryStore(cfg.SelectionTTL), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, keeping selections in memory", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return selection.NewMemoryStore(cfg.SelectionTTL), func() {}
	}
	slog.Info("redis connection established", "addr", cfg.RedisAddr)
	return selection.NewRedisStore(rdb, cfg.SelectionTTL), func() { _ = rdb.Close() }
}

// bootstrapAdmin creates the configured administrator unless the email is
// already registered.
func bootstrapAdmin(ctx context.Context, users *service.UserService, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	_, err := users.Create(ctx, domain.User{
		Name:  "Administrator",
		Email: cfg.AdminEmail,
		Role:  domain.RoleAdministrator,
	}, cfg.AdminPassword)
	switch {
	case errors.Is(err, domain.ErrConflict):
		return nil
	case err != nil:
		return err
	}
	slog.Info("administrator created", "email", cfg.AdminEmail)
	return nil
}
