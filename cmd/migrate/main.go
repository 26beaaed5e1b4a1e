package main

import (
	"context"

	"shopcart/internal/config"
	"shopcart/internal/db"
	"shopcart/internal/logging"
	"shopcart/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger := logging.NewLogger("migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.PoolConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	logger.Info().Msg("migrations applied")
}
