package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/macronotes/backend/config"
	httpDelivery "github.com/macronotes/backend/internal/delivery/http"
	"github.com/macronotes/backend/internal/infrastructure/cache"
	"github.com/macronotes/backend/internal/infrastructure/docstore"
	"github.com/macronotes/backend/internal/infrastructure/foodstore"
	"github.com/macronotes/backend/internal/usecase"
)

func main() {
	// Local .env is optional; environment variables win either way
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting MacroNotes Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Food directory: %s", cfg.Store.FoodDir)
	log.Printf("Blocks database: %s", cfg.Store.BlocksDB)

	// Initialize infrastructure dependencies
	foods, err := foodstore.New(cfg.Store.FoodDir, cfg.Parser.EnableDebugLogging)
	if err != nil {
		log.Fatalf("Failed to open food database: %v", err)
	}
	defer foods.Close()

	blocks, err := docstore.New(cfg.Store.BlocksDB)
	if err != nil {
		log.Fatalf("Failed to open blocks database: %v", err)
	}
	defer blocks.Close()

	blockCache := cache.NewMemoryCache(cfg.Cache.TTL)
	log.Printf("Block cache TTL: %s", cfg.Cache.TTL)

	// Food file edits change resolution results, so drop everything
	foods.SetOnReload(func() {
		if err := blockCache.Clear(context.Background()); err != nil {
			log.Printf("Failed to clear block cache: %v", err)
		}
	})

	// Initialize usecase layer
	resolver := usecase.NewResolver(foods, cfg.Parser.EnableDebugLogging)
	parser := usecase.NewBlockParser(resolver, cfg.Parser.EnableDebugLogging)
	calc := usecase.NewCalcService(blocks, parser, cfg.Parser.EnableDebugLogging)

	if cfg.Parser.EnableDebugLogging {
		log.Printf("Parser debug logging enabled")
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(calc, resolver, blocks, blockCache)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
