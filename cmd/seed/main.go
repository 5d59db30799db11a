package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/idol-catalog/config"
	"github.com/oksasatya/idol-catalog/internal/container"
	pginfra "github.com/oksasatya/idol-catalog/internal/infrastructure/postgres"
	"github.com/oksasatya/idol-catalog/internal/router"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

// Seeds the demo catalog into postgres. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.StorageDriver = "postgres"
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)

	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.IdolEventsQueue)
		if err != nil {
			log.Fatalf("failed to init rabbitmq: %v", err)
		}
		defer pub.Close()
		container.SetRabbitPub(pub)
	}

	repos := router.BuildRepositories()
	rep, err := router.NewSeeder(repos, logger).Run(ctx)
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	fmt.Printf("seeded: idols created=%d skipped=%d, users created=%d (password 1234)\n",
		rep.IdolsCreated, rep.IdolsSkipped, rep.UsersCreated)
}
