package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-tutoring-be/internal/bootstrap"
	"ai-tutoring-be/internal/config"
	"ai-tutoring-be/internal/server"
	"ai-tutoring-be/internal/tracer"
	"ai-tutoring-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// Inactivity monitors do not survive restarts; re-arm them for
	// sessions that were still in progress.
	if err := container.TutorService.ResumeMonitors(context.Background()); err != nil {
		log.Printf("Warning: failed to resume session monitors: %v", err)
	}

	// 5. Run Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	container.TutorService.Shutdown()
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
