package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/config"
	"homefinder-backend/internal/infrastructure/database"
	"homefinder-backend/pkg/logger"
)

func main() {
	list := flag.Bool("list", false, "print the embedded migrations and exit")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	if *list {
		names, err := database.MigrationNames()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read migrations")
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	applied, err := database.Migrate(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Int("applied", applied).Msg("Migration failed")
	}

	log.Info().Int("applied", applied).Msg("Migrations complete")
}
