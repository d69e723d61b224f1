package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"image-search-be/internal/bootstrap"
	"image-search-be/internal/config"
	"image-search-be/internal/server"
	"image-search-be/internal/tracer"
	"image-search-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start consumer: %v", err)
	}

	container.RetryScheduler.Start(ctx)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server, stop background work on shutdown
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down...")
		container.RetryScheduler.Stop()
		cancel()
		_ = srv.GetApp().Shutdown()
	}()

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
