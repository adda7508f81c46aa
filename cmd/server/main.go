package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"handbookbot-backend/handlers"
	"handbookbot-backend/repository"
	"handbookbot-backend/service"
	"handbookbot-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

// run wires the server and blocks until it stops. Deferred cleanup runs before main exits.
func run(ctx context.Context) error {
	// Initialize storage
	blobStore, err := storage.NewStorageFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer storage.Close(blobStore)
	log.Println("Storage initialized")

	// Initialize repositories
	regulationRepo := repository.NewRegulationRepository(blobStore, os.Getenv("REGULATIONS_KEY"))
	docs := regulationRepo.Load(ctx)
	log.Printf("Loaded %d regulations", len(docs))

	// Initialize services
	completionService, closeCompletion := initCompletion(ctx)
	defer closeCompletion()
	conversationService := service.NewConversationService(
		service.ConversationWithRegulations(regulationRepo),
		service.ConversationWithCompleter(completionService),
		service.ConversationWithModel(envOr("GEMINI_MODEL", service.DefaultModel)),
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(conversationService, regulationRepo)
	regulationHandler := handlers.NewRegulationHandler(regulationRepo)

	adminPasswordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminPasswordHash == "" {
		log.Println("Warning: ADMIN_PASSWORD_HASH not set, regulation management is disabled")
	}

	// Setup Gin router
	r := gin.Default()
	handlers.RegisterRoutes(r, chatHandler, regulationHandler, adminPasswordHash)

	// Start server
	port := envOr("PORT", "8080")

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// initCompletion builds the completion service and the func that releases its Gemini client.
// A missing key is not fatal: every answer then carries the configuration message instead.
func initCompletion(ctx context.Context) (*service.CompletionService, func()) {
	apiKey := os.Getenv("GEMINI_API_KEY")

	timeout := service.DefaultCompletionTimeout
	if raw := os.Getenv("COMPLETION_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("Warning: Invalid COMPLETION_TIMEOUT %q, using %s", raw, timeout)
		} else {
			timeout = parsed
		}
	}

	opts := []service.CompletionServiceOption{
		service.CompletionWithAPIKey(apiKey),
		service.CompletionWithTimeout(timeout),
	}

	completion := service.NewCompletionService(opts...)
	if !completion.HasCredential() {
		log.Println("Warning: GEMINI_API_KEY not set")
		return completion, func() {}
	}

	generator, err := service.NewGeminiGenerator(ctx, apiKey)
	if err != nil {
		log.Printf("Warning: Failed to initialize Gemini: %v", err)
		return completion, func() {}
	}
	log.Println("Gemini client initialized")

	closeGenerator := func() {
		if err := generator.Close(); err != nil {
			log.Printf("Warning: Failed to close Gemini client: %v", err)
		}
	}
	return service.NewCompletionService(append(opts, service.CompletionWithGenerator(generator))...), closeGenerator
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
