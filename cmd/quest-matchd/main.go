package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	locationmatcher "github.com/questhunt/location-matcher"
	"github.com/questhunt/location-matcher/internal/config"
	"github.com/questhunt/location-matcher/internal/server"
	"github.com/questhunt/location-matcher/pkg/catalogue"
	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/ollama"
	"github.com/questhunt/location-matcher/pkg/openai"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config (empty uses defaults)")
	flag.Parse()

	// Optional .env; real deployments inject the provider key directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	cat, err := loadCatalogue(cfg)
	if err != nil {
		log.Fatalf("catalogue: %v", err)
	}
	log.Printf("catalogue loaded: %d locations", cat.Size())

	vc, err := buildClient(cfg)
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	m := locationmatcher.New(cat, vc, locationmatcher.Options{
		Model:           cfg.Provider.Model,
		Temperature:     cfg.Provider.Temperature,
		MaxOutputTokens: cfg.Provider.MaxOutputTokens,
		MaxPayloadBytes: cfg.Server.MaxUploadBytes,
		SendFormat:      cfg.Send.Format,
		SendMaxDim:      cfg.Send.MaxDim,
		SendQuality:     cfg.Send.Quality,
	})

	srv := server.New(m, server.Options{
		Addr:           cfg.Server.Addr,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
	log.Println("shutdown complete")
}

func loadCatalogue(cfg *config.Config) (*catalogue.Catalogue, error) {
	if cfg.Catalogue.Path == "" {
		return catalogue.Default(), nil
	}
	return catalogue.Load(cfg.Catalogue.Path)
}

func buildClient(cfg *config.Config) (client.VisionClient, error) {
	switch cfg.Provider.Backend {
	case "ollama":
		url := cfg.Provider.BaseURL
		if url == "" {
			url = "http://localhost:11434"
		}
		return ollama.NewClient(url, cfg.ProviderTimeout())
	default: // openai, enforced by config validation
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.Provider.BaseURL,
			APIKeyEnv: cfg.Provider.APIKeyEnv,
			Timeout:   cfg.ProviderTimeout(),
		})
	}
}
