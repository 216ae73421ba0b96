package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/storage/redis/v3"
	"github.com/joho/godotenv"

	"crimestats/internal/auth"
	"crimestats/internal/config"
	"crimestats/internal/db"
	"crimestats/internal/geo"
	"crimestats/internal/jobs"
	"crimestats/internal/logger"
	"crimestats/internal/metrics"
	"crimestats/internal/query"
	"crimestats/internal/server"
	"crimestats/internal/source"
)

func main() {
	// .env is optional
	_ = godotenv.Load()
	logger.Setup()

	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	template, err := geo.LoadTemplate(cfg.GeoTemplatePath)
	if err != nil {
		return err
	}
	slog.Info("geo template loaded", "path", cfg.GeoTemplatePath, "features", template.Len())

	// Shared Redis storage for the limiter and the dataset cache
	var storage *redis.Storage
	if cfg.RedisURL != "" {
		storage = redis.New(redis.Config{URL: cfg.RedisURL})
		defer storage.Close()
		slog.Info("using redis storage")
	}

	var database *db.DB
	if cfg.UsesPostgres() {
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("migrations completed successfully")
	}

	src, err := newSource(ctx, cfg, database)
	if err != nil {
		return err
	}

	if cfg.CacheTTL > 0 {
		var cache source.Cache = source.NewMemoryCache()
		if storage != nil {
			cache = storage
		}
		cached := source.NewCached(src, cache, cfg.CacheTTL)
		src = cached

		if cfg.CacheWarmInterval > 0 {
			go jobs.NewCacheWarmer(cached, cfg.CacheWarmInterval).Start(ctx)
		}
	}

	var counter metrics.RecordCounter
	if database != nil {
		counter = database
	}
	metrics.Init(counter)

	creds, tokens, err := newLocalAuth(cfg)
	if err != nil {
		return err
	}

	var oidcClient *auth.OIDC
	if cfg.OIDCEnabled() {
		oidcClient, err = auth.NewOIDC(ctx, auth.OIDCConfig{
			Issuer:       cfg.OIDCIssuer,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
		})
		if err != nil {
			slog.Warn("OIDC authentication is disabled", "error", err)
		}
	} else {
		slog.Info("OIDC authentication is disabled. Set OIDC_ISSUER to enable.")
	}

	var limiterStorage fiber.Storage
	if storage != nil {
		limiterStorage = storage
	}
	srv := server.New(cfg, limiterStorage)

	deps := server.Deps{
		Query:       query.NewService(src, template),
		Credentials: creds,
		Tokens:      tokens,
		OIDC:        oidcClient,
	}
	if database != nil {
		deps.DB = database
	}
	srv.RegisterRoutes(deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	return srv.Shutdown()
}

func newSource(ctx context.Context, cfg *config.Config, database *db.DB) (source.Source, error) {
	switch cfg.DatasetSource {
	case config.SourceS3:
		slog.Info("dataset source", "kind", "s3", "bucket", cfg.S3Bucket, "key", cfg.S3Key)
		return source.NewS3(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Key)
	case config.SourcePostgres:
		slog.Info("dataset source", "kind", "postgres")
		return source.NewPostgres(database), nil
	default:
		slog.Info("dataset source", "kind", "file", "path", cfg.DatasetPath)
		return source.NewFile(cfg.DatasetPath), nil
	}
}

func newLocalAuth(cfg *config.Config) (*auth.Credentials, *auth.Tokens, error) {
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config file: %w", err)
	}
	creds, err := auth.NewCredentials(yamlCfg.UserHashes())
	if err != nil {
		return nil, nil, err
	}
	if creds.Len() == 0 {
		slog.Warn("no local users configured; POST /login will reject every request")
	}

	secret := cfg.TokenSecret
	if secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, nil, err
		}
		secret = hex.EncodeToString(b)
		slog.Warn("TOKEN_SECRET not set; using an ephemeral secret")
	}

	tokens, err := auth.NewTokens(secret, cfg.TokenTTL)
	if err != nil {
		return nil, nil, err
	}
	return creds, tokens, nil
}
