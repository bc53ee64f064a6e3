package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/room4-2/voicepanel/config"
	"github.com/room4-2/voicepanel/coordinator"
	"github.com/room4-2/voicepanel/gemini"
	"github.com/room4-2/voicepanel/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := services.NewClient(cfg)

	var responder coordinator.Responder
	switch cfg.LLMBackend {
	case "gemini":
		geminiResponder, err := gemini.NewResponder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini responder: %v", err)
		}
		defer geminiResponder.Close()
		responder = geminiResponder
		log.Printf("🤖 LLM backend: gemini (%s)", cfg.GeminiModel)
	default:
		responder = coordinator.NewOllamaResponder(client, cfg.OllamaModel)
		log.Printf("🤖 LLM backend: ollama (%s)", cfg.OllamaModel)
	}

	registry := coordinator.NewRegistry(cfg, coordinator.ConnectRedis(cfg))

	// Start cleanup routine
	go registry.StartCleanupRoutine(ctx)

	srv := coordinator.NewServer(cfg, registry, coordinator.NewPipeline(client, responder))

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
