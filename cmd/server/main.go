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
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/recallmail/recall/internal/crypto"
	"github.com/recallmail/recall/internal/database"
	"github.com/recallmail/recall/internal/oauth"
	"github.com/recallmail/recall/internal/oauthstate"
	"github.com/recallmail/recall/internal/platform/config"
	"github.com/recallmail/recall/internal/platform/logging"
	"github.com/recallmail/recall/internal/platform/version"
	"github.com/recallmail/recall/internal/redis"
	"github.com/recallmail/recall/internal/server"
)

func main() {
	// The guard runs before anything else: no listener may bind with
	// missing or weak secrets.
	config.LoadDotenv()
	guard := config.NewGuard(config.DefaultPolicy())
	guard.ValidateOrExit()

	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	pool := setupDB(ctx, cfg)
	defer pool.Close()

	rdb := setupRedis(ctx, cfg)
	defer func() { _ = rdb.Close() }()

	cipher, err := crypto.NewCipher(cfg.TokenEncryptionSecret)
	if err != nil {
		slog.Error("Failed to create credential cipher", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	stateCodec, err := oauthstate.NewCodec(cfg.StateSigningSecret, clock)
	if err != nil {
		slog.Error("Failed to create state codec", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, server.Deps{
		Users:       database.NewUserRepo(pool),
		Connections: database.NewConnectionRepo(pool, cipher),
		States:      stateCodec,
		OAuthClient: oauth.NewProviderClient(cfg),
		Limiter:     redis.NewConnectRateLimiter(rdb, clock, cfg.ConnectRatePerMinute),
		RedisHealth: redis.HealthChecker{Client: rdb},
		PgHealth:    pool,
	})

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port, "env", cfg.AppEnv, "build", version.Get().String())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func setupDB(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(connectCtx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	rdb, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	return rdb
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}
