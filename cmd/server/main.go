// Command main is the entry point for the Murmur backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"murmur/internal/bootstrap"
	"murmur/internal/config"
	"murmur/internal/genclient"
	"murmur/internal/server"
	"murmur/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect DB and Redis; heal counter drift before traffic starts.
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{ReconcileCounters: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	client := service.NewPersonaClient(genclient.New(cfg.PersonaBaseURL))
	srv, err := server.NewServerWithDeps(cfg, db, redisClient, client)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Scheduler().Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		os.Exit(0)
	}()

	log.Fatal(srv.Start())
}
