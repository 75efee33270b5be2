package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/config"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/infrastructure/ai"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/infrastructure/dynamo"
	mongostore "github.com/Vansh545/bright-wellbeing-sub001/internal/infrastructure/mongo"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/infrastructure/smtp"
	transporthttp "github.com/Vansh545/bright-wellbeing-sub001/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	if envErr != nil {
		logger.Info().Msg("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := &transporthttp.Deps{
		Mailer: smtp.NewMailer(cfg),
		AI:     ai.NewClient(cfg.AI),
		Logger: logger,
	}
	closeStore, err := openStore(ctx, cfg, logger, deps)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open store")
	}
	defer closeStore()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Str("backend", cfg.StoreBackend).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}

// openStore wires the repositories for the configured backend into deps and
// returns a function that releases the connection.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, deps *transporthttp.Deps) (func(), error) {
	switch cfg.StoreBackend {
	case "mongo":
		client, db, err := mongostore.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		verifications, err := mongostore.NewVerificationRepo(ctx, db)
		if err != nil {
			closeFn()
			return nil, err
		}
		users, err := mongostore.NewUserRepo(ctx, db)
		if err != nil {
			closeFn()
			return nil, err
		}
		deps.VerificationRepo = verifications
		deps.UserRepo = users
		return closeFn, nil
	default:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Creates tables that don't exist yet.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables, logger)
		deps.VerificationRepo = dynamo.NewVerificationRepo(client, cfg.DynamoTables.OTPVerifications)
		deps.UserRepo = dynamo.NewUserRepo(client, cfg.DynamoTables.Users)
		return func() {}, nil
	}
}

func newLogger(cfg *config.Config) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var l zerolog.Logger
	if cfg.AppEnv == "development" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stderr)
	}
	l = l.Level(level).With().Timestamp().Str("service", "wellbeing-api").Logger()
	return &l
}
