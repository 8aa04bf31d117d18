// cmd/seeduser/main.go — creates or updates a superuser.
// Usage: go run ./cmd/seeduser -username admin -email admin@example.com -password 's3cretpass'
package main

import (
	"context"
	"flag"
	"os"

	"stockroom/internal/config"
	"stockroom/internal/infra"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/security"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	username := flag.String("username", "admin", "username")
	email := flag.String("email", "admin@stockroom.local", "email")
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "password (or SEED_PASSWORD)")
	flag.Parse()

	if len(*password) < security.MinPasswordLength {
		log.Fatal().Int("min", security.MinPasswordLength).Msg("password too short")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	hash, err := security.NewBcryptHasher(bcrypt.DefaultCost).Hash(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	user, err := users.FindByUsername(ctx, *username)
	switch {
	case err == nil:
		user.Email = *email
		user.PasswordHash = hash
		user.IsActive, user.IsStaff, user.IsSuperuser = true, true, true
		err = users.Update(ctx, user)
	case repository.IsNotFound(err):
		user = &model.User{
			Username:     *username,
			Email:        *email,
			PasswordHash: hash,
			IsActive:     true,
			IsStaff:      true,
			IsSuperuser:  true,
		}
		err = users.Create(ctx, user)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("seed error")
	}
	log.Info().Str("username", user.Username).Str("email", user.Email).Msg("superuser created/updated")
}
