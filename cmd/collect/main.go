package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/mlebreton/veille-aap/internal/collector"
	"github.com/mlebreton/veille-aap/internal/config"
	"github.com/mlebreton/veille-aap/internal/ingest"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("VEILLE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	c := collector.New(cfg.Collector, ingest.NewHTTPRetriever())
	if err := c.Run(context.Background()); err != nil {
		log.Printf("Collection failed: %v", err)
		log.Printf("Existing seed was preserved at %s", cfg.Collector.OutputPath)
		os.Exit(1)
	}
}
