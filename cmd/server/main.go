package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/mlebreton/veille-aap/internal/api"
	"github.com/mlebreton/veille-aap/internal/board"
	"github.com/mlebreton/veille-aap/internal/config"
	"github.com/mlebreton/veille-aap/internal/ingest"
	"github.com/mlebreton/veille-aap/internal/overlay"
	"github.com/mlebreton/veille-aap/internal/storage"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfgPath := os.Getenv("VEILLE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slot, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer slot.Close()

	ov := overlay.NewStore(slot, cfg.Storage.Namespace)
	loader := ingest.NewLoader(cfg.Dataset.Candidates, ingest.NewAutoRetriever(""))
	b := board.New(loader, ov)

	if err := b.Reload(context.Background()); err != nil {
		// Not fatal: the board serves its previous (or empty) state.
		log.Printf("Initial dataset load failed: %v", err)
	}

	srv := api.NewServer(b, cfg.CORSOrigins)
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := srv.Start(cfg.Port); err != nil {
		log.Fatal(err)
	}
}
