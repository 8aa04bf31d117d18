// @title           Stockroom API
// @version         1.0
// @description     Inventory management backend: items, suppliers, audit log and reports.
// @BasePath        /
// @securityDefinitions.apikey TokenAuth
// @in              header
// @name            Authorization
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

	"stockroom/internal/config"
	"stockroom/internal/infra"
	"stockroom/internal/router"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exited")
}

// setupLogger: JSON lines in production, console output elsewhere.
func setupLogger(cfg *config.Config) {
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func run(cfg *config.Config) error {
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.DatabaseDriver, err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = infra.NewRedis(cfg.RedisURL); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
	} else {
		log.Info().Msg("REDIS_URL not set, rate limiting in process memory")
	}

	if cfg.PasswordResetDelivery == "email" && cfg.SMTPHost == "" {
		log.Warn().Msg("PASSWORD_RESET_DELIVERY=email but SMTP_HOST is empty; reset requests will fail")
	}
	if cfg.IsProduction() && cfg.SecretKey == "change-me-in-production" {
		log.Warn().Msg("SECRET_KEY is the default value")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(cfg, router.Deps{DB: db, Redis: rdb}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Port).
			Str("env", cfg.Env).
			Str("db", cfg.DatabaseDriver).
			Bool("redis", rdb != nil).
			Msg("stockroom listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
