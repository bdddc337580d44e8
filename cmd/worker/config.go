package main

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// workerConfig holds the settings that only the worker process reads. Everything shared
// with the API comes from internal/config through the container.
type workerConfig struct {
	Concurrency int
	HealthAddr  string
}

func loadWorkerConfig() *workerConfig {
	cfg := &workerConfig{
		Concurrency: 10,
		HealthAddr:  getEnv("WORKER_HEALTH_ADDR", ":9999"),
	}
	if v, err := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY")); err == nil && v > 0 {
		cfg.Concurrency = v
	}

	log.Info().
		Int("concurrency", cfg.Concurrency).
		Str("health_addr", cfg.HealthAddr).
		Msg("[Config] Worker settings loaded")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
