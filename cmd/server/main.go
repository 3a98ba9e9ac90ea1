package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/memories/backend/internal/router"
	"github.com/anonto42/memories/backend/pkg/config"
	"github.com/anonto42/memories/backend/pkg/firebase"
	"github.com/anonto42/memories/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Memories API server",
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run PostgreSQL auto-migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	}
	rootCmd.AddCommand(serveCmd, migrateCmd)
	// serve is the default when no subcommand is given
	rootCmd.RunE = serveCmd.RunE

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("memories-api", "info")
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, log, err
	}
	return cfg, logger.New("memories-api", cfg.LogLevel), nil
}

func migrate() error {
	cfg, log, err := load()
	if err != nil {
		return err
	}
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize databases")
		return err
	}
	defer db.CloseDB()

	if err := router.Migrate(db.Postgres); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		return err
	}
	log.Info().Msg("PostgreSQL auto-migrations completed.")
	return nil
}

func serve(ctx context.Context) error {
	cfg, log, err := load()
	if err != nil {
		return err
	}

	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize databases")
		return err
	}
	defer db.CloseDB()
	if err := router.Migrate(db.Postgres); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		return err
	}

	firebaseApp, err := firebase.InitFirebase(ctx, firebase.Options{
		CredentialsPath: cfg.FirebaseCredentialsPath,
		StorageBucket:   cfg.StorageBucket,
		WithFirestore:   cfg.DocStore == "firestore",
		WithStorage:     cfg.ObjectStore == "firebase",
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize Firebase")
		return err
	}
	defer firebaseApp.Close()
	log.Info().Msg("Firebase app initialized.")

	deps := router.Dependencies{
		Config:   cfg,
		Postgres: db.Postgres,
		Mongo:    db.Mongo,
		Firebase: firebaseApp,
		Logger:   log,
	}
	if cfg.RedisAddr != "" {
		deps.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer deps.Redis.Close()
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			log.Error().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
			return err
		}
	}
	if cfg.NatsURL != "" {
		deps.Nats, err = nats.Connect(cfg.NatsURL, nats.Name("memories-api"))
		if err != nil {
			log.Error().Err(err).Str("url", cfg.NatsURL).Msg("Failed to connect to NATS")
			return err
		}
		defer deps.Nats.Drain()
	}

	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e, cfg, log)
	if err := router.SetupRoutes(e, deps); err != nil {
		log.Error().Err(err).Msg("Failed to configure routes")
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Memories API starting")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("Shutting down")
	return e.Shutdown(shutdownCtx)
}
